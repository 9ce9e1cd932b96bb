// Package store persists parsed import rows.
//
// Two importer.Upserter implementations are provided: Postgres writes to
// PostgreSQL through pgx and Memory keeps everything in process for dry
// runs and tests. Both report how many rows were inserted versus updated
// so a re-import of the same file shows up as updates only.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

// TxBeginner is a DBTX that can open transactions, such as *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// Batch is one recorded import.
type Batch struct {
	ID         string    `json:"id"`
	Schema     string    `json:"schema"`
	Filename   string    `json:"filename"`
	Total      int       `json:"total"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	ImportedAt time.Time `json:"importedAt"`
}

// rowKey returns the identity a row is stored under. Schemas without an
// enricher never set a key; their rows are always inserted.
func rowKey(row importer.ParsedRow) string {
	if row.Key != "" {
		return row.Key
	}
	return uuid.NewString()
}

// batchFromContext describes the import carried by ctx. Imports started
// outside the service get a fresh id.
func batchFromContext(ctx context.Context, schema string, res importer.UpsertResult) Batch {
	b := Batch{
		Schema:     schema,
		Total:      res.Total,
		Inserted:   res.Inserted,
		Updated:    res.Updated,
		ImportedAt: time.Now().UTC(),
	}
	if info, ok := importer.ImportFromContext(ctx); ok {
		b.ID, b.Filename = info.ID, info.Filename
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return b
}
