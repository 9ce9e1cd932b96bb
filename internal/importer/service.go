package importer

// service.go wraps the pure pipeline with everything an import request
// needs around it: size check, import slot, timeout, upsert and logging.
//
// Rows that fail validation are never sent to the upserter. With
// RejectInvalid the whole file is refused instead.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/logging"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

var (
	// ErrFileTooLarge is returned when a file exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidRows is returned by Import under RejectInvalid when any row
	// has an empty required field.
	ErrInvalidRows = errors.New("required field is empty")

	// ErrNoUpserter is returned by Import when the service was built
	// without a store.
	ErrNoUpserter = errors.New("no upsert store configured")
)

// Defaults for ServiceOptions zero values.
const (
	DefaultMaxFileSize = 20 << 20
	DefaultTimeout     = 2 * time.Minute
)

// ServiceOptions tunes a Service.
type ServiceOptions struct {
	MaxFileSize   int64         // Bytes; <= 0 selects DefaultMaxFileSize
	Timeout       time.Duration // Per import; <= 0 selects DefaultTimeout
	Engine        sheet.Engine  // Default codec when a request names none
	RejectInvalid bool          // Refuse the whole file on any validation error
}

// Request is one file submitted for preview or import.
type Request struct {
	Schema   string
	Filename string
	Data     []byte
	Engine   sheet.Engine // Optional override of ServiceOptions.Engine
}

// Report is what an import or preview returns to the caller.
type Report struct {
	ImportID string        `json:"importId"`
	Filename string        `json:"filename,omitempty"`
	Result   *Result       `json:"result"`
	Upsert   *UpsertResult `json:"upsert,omitempty"`
	Skipped  int           `json:"skipped"` // rows withheld from the upsert
	Duration time.Duration `json:"duration"`
}

// Service runs imports against registered definitions.
type Service struct {
	store   Upserter
	limiter *Limiter
	opts    ServiceOptions
	now     func() time.Time
}

// NewService builds a service. store may be nil for preview-only use.
func NewService(store Upserter, limiter *Limiter, opts ServiceOptions) *Service {
	if limiter == nil {
		limiter = NewLimiter(0, 0)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Engine == "" {
		opts.Engine = sheet.EngineExcelize
	}
	return &Service{store: store, limiter: limiter, opts: opts, now: time.Now}
}

// Limiter exposes the slot limiter for health output and shutdown.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// Preview parses a file without persisting anything.
func (s *Service) Preview(ctx context.Context, req Request) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	report, _, err := s.parse(ctx, req)
	return report, err
}

// Import parses a file and upserts its valid rows.
func (s *Service) Import(ctx context.Context, req Request) (*Report, error) {
	if s.store == nil {
		return nil, ErrNoUpserter
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	report, def, err := s.parse(ctx, req)
	if err != nil {
		return report, err
	}
	logger := logging.WithFields(ctx, "import_id", report.ImportID, "schema", req.Schema)

	res := report.Result
	if !res.Validation.Valid && s.opts.RejectInvalid {
		logger.Warn("import rejected", "errors", len(res.Validation.Errors))
		return report, fmt.Errorf("%w: %d problems in %s", ErrInvalidRows, len(res.Validation.Errors), req.Filename)
	}

	rows := validRows(res)
	report.Skipped = len(res.Rows) - len(rows)

	ctx = ContextWithImport(ctx, ImportInfo{ID: report.ImportID, Filename: req.Filename})
	start := s.now()
	upsert, err := s.store.Upsert(ctx, def.Schema, rows)
	if err != nil {
		logger.Error("upsert failed", "rows", len(rows), "error", err)
		return report, fmt.Errorf("upsert %s: %w", req.Schema, err)
	}
	report.Upsert = &upsert
	report.Duration += s.now().Sub(start)

	logger.Info("import completed",
		"total", upsert.Total,
		"inserted", upsert.Inserted,
		"updated", upsert.Updated,
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	return report, nil
}

// parse does the shared work of Preview and Import.
func (s *Service) parse(ctx context.Context, req Request) (*Report, Definition, error) {
	report := &Report{ImportID: uuid.NewString(), Filename: req.Filename}
	logger := logging.WithFields(ctx, "import_id", report.ImportID, "schema", req.Schema)

	if int64(len(req.Data)) > s.opts.MaxFileSize {
		return nil, Definition{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(req.Data), s.opts.MaxFileSize)
	}

	def, err := Lookup(req.Schema)
	if err != nil {
		return nil, Definition{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("import slot unavailable", "error", err)
		return nil, Definition{}, err
	}
	defer s.limiter.Release()

	engine := req.Engine
	if engine == "" {
		engine = s.opts.Engine
	}

	start := s.now()
	res, err := ParseFile(req.Data, engine, def)
	if err != nil {
		var mismatch *StructuralMismatchError
		if errors.As(err, &mismatch) {
			logger.Warn("structural mismatch", "missing", mismatch.Missing, "found", len(mismatch.Found))
		} else {
			logger.Error("parse failed", "engine", engine, "error", err)
		}
		return nil, Definition{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Definition{}, err
	}
	report.Result = res
	report.Duration = s.now().Sub(start)

	logWarnings(ctx, logger, res.Warnings)
	logger.Info("file parsed",
		"file", req.Filename,
		"engine", engine,
		"header_row", res.HeaderRow,
		"rows", len(res.Rows),
		"validation_errors", len(res.Validation.Errors),
		"warnings", len(res.Warnings),
	)
	return report, def, nil
}

// validRows returns the rows without validation errors.
func validRows(res *Result) []ParsedRow {
	if res.Validation.Valid {
		return res.Rows
	}
	bad := make(map[int]bool, len(res.Validation.Errors))
	for _, e := range res.Validation.Errors {
		bad[e.RowIndex] = true
	}
	rows := make([]ParsedRow, 0, len(res.Rows)-len(bad))
	for i, row := range res.Rows {
		if !bad[i] {
			rows = append(rows, row)
		}
	}
	return rows
}

// logWarnings reports degraded resolutions at warn level and the rest at
// info.
func logWarnings(ctx context.Context, logger *slog.Logger, warnings []Warning) {
	for _, w := range warnings {
		level := slog.LevelInfo
		if w.Kind == WarnDegradedKey || w.Kind == WarnDegradedCountry {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, w.Message,
			"kind", string(w.Kind),
			"sheet_row", w.SheetRow,
			"column", w.Column,
		)
	}
}
