package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/config"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
)

// Backend is a store that can also list past imports.
type Backend interface {
	importer.Upserter
	RecentBatches(ctx context.Context, limit int) ([]Batch, error)
}

// Open returns a Postgres store when cfg names a database and the
// in-memory store otherwise. The returned close func is never nil.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Backend, func(), error) {
	if !cfg.Enabled() {
		slog.Warn("no database configured, imports are kept in memory")
		return NewMemory(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	pg := NewPostgres(pool)
	if cfg.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return pg, pool.Close, nil
}
