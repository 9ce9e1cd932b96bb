package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/config"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer/schemas"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/logging"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/store"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/web"
)

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	if cfg.Import.SchemaDir != "" {
		n, err := schemas.LoadDir(os.DirFS(cfg.Import.SchemaDir))
		if err != nil {
			slog.Error("failed to load schemas", "dir", cfg.Import.SchemaDir, "error", err)
			os.Exit(1)
		}
		slog.Info("schemas loaded", "dir", cfg.Import.SchemaDir, "count", n)
	}
	for _, def := range importer.All() {
		slog.Debug("import type registered", "key", def.Schema.Key, "columns", len(def.Schema.Columns))
	}

	ctx := context.Background()
	backend, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Validate has already checked the name.
	engine, _ := sheet.ParseEngine(cfg.Import.Engine)
	limiter := importer.NewLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	service := importer.NewService(backend, limiter, importer.ServiceOptions{
		MaxFileSize:   cfg.Import.MaxFileSize,
		Timeout:       cfg.Import.Timeout,
		Engine:        engine,
		RejectInvalid: cfg.Import.RejectInvalid,
	})

	server := web.NewServer(cfg, service, backend)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown incomplete", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		closeStore()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
