package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/vessel"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MaxBatchRows bounds the statements queued in one pgx.Batch.
var MaxBatchRows = 500

// rowStatement builds the upsert statement and arguments for one row. The
// statement must return a single boolean: true when the row was inserted.
type rowStatement func(schema importer.ColumnSchema, key string, row importer.ParsedRow, importID string) (string, []any)

// typedTables maps schema keys to statements writing a dedicated table.
// Other schemas are stored as JSON in import_records.
var typedTables = map[string]rowStatement{
	"vessels": vesselStatement,
}

// Postgres upserts rows into PostgreSQL. Each call runs in one
// transaction and records an import_batches row.
type Postgres struct {
	db TxBeginner
}

// NewPostgres returns a store over db, typically a *pgxpool.Pool.
func NewPostgres(db TxBeginner) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the embedded migrations that have not run yet, in file
// name order.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		if err := p.applyMigration(ctx, name, version); err != nil {
			return fmt.Errorf("migration %s: %w", version, err)
		}
	}
	return nil
}

func (p *Postgres) applyMigration(ctx context.Context, name, version string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var applied bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&applied); err != nil {
		return err
	}
	if applied {
		return nil
	}

	body, err := migrations.ReadFile(name)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Upsert writes rows keyed by their record key. A key already present is
// updated in place; the result separates inserts from updates.
func (p *Postgres) Upsert(ctx context.Context, schema importer.ColumnSchema, rows []importer.ParsedRow) (importer.UpsertResult, error) {
	res := importer.UpsertResult{Total: len(rows)}
	batch := batchFromContext(ctx, schema.Key, res)

	statement, typed := typedTables[schema.Key]
	if !typed {
		statement = recordStatement
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for start := 0; start < len(rows); start += MaxBatchRows {
		end := min(start+MaxBatchRows, len(rows))
		inserted, err := sendRows(ctx, tx, schema, rows[start:end], batch.ID, statement)
		if err != nil {
			return res, err
		}
		res.Inserted += inserted
		res.Updated += end - start - inserted
	}

	batch.Inserted, batch.Updated = res.Inserted, res.Updated
	if _, err := tx.Exec(ctx,
		`INSERT INTO import_batches (id, schema_key, filename, total, inserted, updated, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ToPgUUID(batch.ID), batch.Schema, batch.Filename, batch.Total, batch.Inserted, batch.Updated, batch.ImportedAt,
	); err != nil {
		return res, fmt.Errorf("record import batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// sendRows queues one statement per row and returns how many inserted.
func sendRows(ctx context.Context, tx pgx.Tx, schema importer.ColumnSchema, rows []importer.ParsedRow, importID string, statement rowStatement) (int, error) {
	b := &pgx.Batch{}
	for _, row := range rows {
		sql, args := statement(schema, rowKey(row), row, importID)
		b.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, b)
	inserted := 0
	for _, row := range rows {
		var isNew bool
		if err := br.QueryRow().Scan(&isNew); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("sheet row %d: %w", row.SheetRow, err)
		}
		if isNew {
			inserted++
		}
	}
	return inserted, br.Close()
}

// RecentBatches returns up to limit imports, newest first.
func (p *Postgres) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.Query(ctx,
		`SELECT id::text, schema_key, filename, total, inserted, updated, imported_at
		 FROM import_batches ORDER BY imported_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import batches: %w", err)
	}
	batches, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Batch, error) {
		var b Batch
		err := r.Scan(&b.ID, &b.Schema, &b.Filename, &b.Total, &b.Inserted, &b.Updated, &b.ImportedAt)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan import batches: %w", err)
	}
	return batches, nil
}

// Ping checks that the database answers.
func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	if err := p.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	if one != 1 {
		return errors.New("unexpected ping result")
	}
	return nil
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

const upsertRecordSQL = `INSERT INTO import_records (schema_key, record_key, payload, import_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (schema_key, record_key) DO UPDATE SET
	payload    = EXCLUDED.payload,
	import_id  = EXCLUDED.import_id,
	updated_at = now()
RETURNING (xmax = 0)`

func recordStatement(schema importer.ColumnSchema, key string, row importer.ParsedRow, importID string) (string, []any) {
	return upsertRecordSQL, []any{schema.Key, key, row.Payload(schema), ToPgUUID(importID)}
}

// vesselColumns lists the typed columns after record_key and key_tier, in
// argument order.
var vesselColumns = []string{
	vessel.ColVesselName,
	vessel.ColCommodity,
	"quantity",
	vessel.ColLoadingStart,
	"loading_end",
	vessel.ColDepartureCountry,
	vessel.ColDepartureCountryCode,
	vessel.ColDeparturePort,
	"departure_terminal",
	vessel.ColDepartureLocation,
	vessel.ColDestinationCountry,
	vessel.ColDestinationCountryCode,
	vessel.ColDestinationPort,
	vessel.ColDestinationLocation,
	"shipper",
	"receiver",
}

var upsertVesselSQL = buildVesselSQL()

func buildVesselSQL() string {
	cols := append([]string{"record_key", "key_tier"}, vesselColumns...)
	cols = append(cols, "import_id")

	placeholders := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "record_key" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	updates = append(updates, "updated_at = now()")

	return fmt.Sprintf("INSERT INTO vessel_movements (%s)\nVALUES (%s)\nON CONFLICT (record_key) DO UPDATE SET\n\t%s\nRETURNING (xmax = 0)",
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ",\n\t"),
	)
}

func vesselStatement(schema importer.ColumnSchema, key string, row importer.ParsedRow, importID string) (string, []any) {
	return upsertVesselSQL, vesselArgs(key, row.Payload(schema), importID)
}

// vesselArgs converts a payload to the arguments of upsertVesselSQL.
func vesselArgs(key string, payload map[string]string, importID string) []any {
	args := make([]any, 0, len(vesselColumns)+3)
	args = append(args, key, payload[vessel.ColKeyTier])
	for _, c := range vesselColumns {
		switch c {
		case "quantity":
			args = append(args, ToPgNumeric(payload[c]))
		case vessel.ColLoadingStart, "loading_end":
			args = append(args, ToPgDate(payload[c]))
		default:
			args = append(args, ToPgText(payload[c]))
		}
	}
	return append(args, ToPgUUID(importID))
}
