package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/logging"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/store"
)

const (
	// multipartSlack is allowed on top of the file size limit for the
	// multipart envelope and the other form fields.
	multipartSlack = 1 << 20

	// maxFormMemory is kept in memory by ParseMultipartForm; larger parts
	// spill to temp files.
	maxFormMemory = 32 << 20

	defaultHistoryLimit = 50
	healthPingTimeout   = 2 * time.Second
)

// ============================================================================
// Health
// ============================================================================

type healthResponse struct {
	Status   string                 `json:"status"`
	Database string                 `json:"database"`
	Imports  importer.LimiterStatus `json:"imports"`
}

// handleHealth reports the import slots and, when the store can be pinged,
// the database. An unreachable database answers 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "disabled",
		Imports:  s.service.Limiter().Status(),
	}

	status := http.StatusOK
	if p, ok := s.history.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSON(w, r, status, resp)
}

// ============================================================================
// Schemas
// ============================================================================

type columnInfo struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Internal bool   `json:"internal,omitempty"`
	Example  string `json:"example,omitempty"`
}

type schemaInfo struct {
	Key     string       `json:"key"`
	Label   string       `json:"label"`
	Columns []columnInfo `json:"columns"`
}

func newSchemaInfo(schema importer.ColumnSchema) schemaInfo {
	info := schemaInfo{
		Key:     schema.Key,
		Label:   schema.Label,
		Columns: make([]columnInfo, len(schema.Columns)),
	}
	for i, col := range schema.Columns {
		info.Columns[i] = columnInfo{
			Key:      col.Key,
			Label:    col.Label,
			Type:     col.Type.String(),
			Required: col.Required,
			Internal: col.Internal,
			Example:  col.Example,
		}
	}
	return info
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	defs := importer.All()
	out := make([]schemaInfo, len(defs))
	for i, def := range defs {
		out[i] = newSchemaInfo(def.Schema)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	def, err := importer.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, newSchemaInfo(def.Schema))
}

// handleDownloadTemplate returns a blank workbook with the schema's header
// row and an example row. It is rendered into a buffer first so a failure
// can still be reported as JSON.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, err := importer.Lookup(key)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	var buf bytes.Buffer
	if err := importer.WriteTemplate(&buf, def.Schema); err != nil {
		respondError(w, r, fmt.Errorf("render template %s: %w", key, err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.xlsx"`, key))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("template write failed", "schema", key, "error", err)
	}
}

// ============================================================================
// Imports
// ============================================================================

// handleImportHistory lists recent import batches, newest first.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, badRequest(fmt.Errorf("invalid limit %q", v)), nil)
			return
		}
		limit = n
	}

	batches := []store.Batch{}
	if s.history != nil {
		got, err := s.history.RecentBatches(r.Context(), limit)
		if err != nil {
			respondError(w, r, fmt.Errorf("load import history: %w", err), nil)
			return
		}
		if got != nil {
			batches = got
		}
	}
	writeJSON(w, r, http.StatusOK, batches)
}

// handlePreview parses an uploaded workbook and returns the rows without
// storing them.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.service.Preview)
}

// handleImport parses an uploaded workbook and upserts its valid rows.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.service.Import)
}

type importFunc func(ctx context.Context, req importer.Request) (*importer.Report, error)

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, run importFunc) {
	req, err := s.readRequest(w, r)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	report, err := run(r.Context(), req)
	if err != nil {
		// A rejected file still carries its parse result.
		if errors.Is(err, importer.ErrInvalidRows) {
			respondError(w, r, err, report)
			return
		}
		respondError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// readRequest pulls the "file" part and the optional "engine" field out of
// a multipart upload.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (importer.Request, error) {
	key := chi.URLParam(r, "key")
	if _, err := importer.Lookup(key); err != nil {
		return importer.Request{}, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartSlack)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return importer.Request{}, fmt.Errorf("%w: request exceeds %d bytes", importer.ErrFileTooLarge, tooLarge.Limit)
		}
		return importer.Request{}, badRequest(fmt.Errorf("invalid multipart form: %w", err))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return importer.Request{}, importer.ErrNoFile
		}
		return importer.Request{}, badRequest(fmt.Errorf("read file field: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return importer.Request{}, fmt.Errorf("read upload: %w", err)
	}

	req := importer.Request{Schema: key, Filename: header.Filename, Data: data}
	if name := r.FormValue("engine"); name != "" {
		engine, err := sheet.ParseEngine(name)
		if err != nil {
			return importer.Request{}, badRequest(err)
		}
		req.Engine = engine
	}
	return req, nil
}
