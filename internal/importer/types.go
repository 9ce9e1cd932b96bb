package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FieldType is the expected data type of a declared column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldDate
	FieldNumber
)

// String returns the name used in schema files.
func (t FieldType) String() string {
	switch t {
	case FieldDate:
		return "date"
	case FieldNumber:
		return "number"
	default:
		return "text"
	}
}

// ParseFieldType maps a schema-file type name to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string":
		return FieldText, nil
	case "date":
		return FieldDate, nil
	case "number", "numeric":
		return FieldNumber, nil
	default:
		return FieldText, fmt.Errorf("unknown field type %q", s)
	}
}

// ColumnSpec declares one target column of an import type.
type ColumnSpec struct {
	Key      string    // Record key: "vessel_name"
	Label    string    // Header label operators see: "Vessel name"
	Example  string    // Sample value for the template's example row
	Required bool      // Header must exist and every row must have a value
	Type     FieldType // Coercion applied to raw cells
	Internal bool      // Used only to derive identity; not sent to the upserter
}

// ColumnSchema is the ordered set of columns for one import type.
type ColumnSchema struct {
	Key     string // Import type identifier: "vessels"
	Label   string // Display name: "Vessel movements"
	Columns []ColumnSpec
}

// Validate checks that keys are present and unique.
func (s ColumnSchema) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return errors.New("schema key is required")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema %s declares no columns", s.Key)
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, col := range s.Columns {
		if strings.TrimSpace(col.Key) == "" {
			return fmt.Errorf("schema %s: column %d has no key", s.Key, i)
		}
		if strings.TrimSpace(col.Label) == "" {
			return fmt.Errorf("schema %s: column %s has no label", s.Key, col.Key)
		}
		if seen[col.Key] {
			return fmt.Errorf("schema %s: duplicate column key %q", s.Key, col.Key)
		}
		seen[col.Key] = true
	}
	return nil
}

// Column returns the spec for key.
func (s ColumnSchema) Column(key string) (ColumnSpec, bool) {
	for _, col := range s.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnSpec{}, false
}

// ParsedRow is one coerced record. Values holds every schema key; an empty
// string means the cell was empty or the column absent. Enrichers may add
// derived keys.
type ParsedRow struct {
	SheetRow int // 1-based row number in the source sheet
	Values   map[string]string
	Key      string // Identity used for upsert; set by the enricher
}

// Get returns the value for key, or "".
func (r ParsedRow) Get(key string) string {
	return r.Values[key]
}

// Payload returns the values to persist, without internal-only columns.
func (r ParsedRow) Payload(schema ColumnSchema) map[string]string {
	out := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		out[k] = v
	}
	for _, col := range schema.Columns {
		if col.Internal {
			delete(out, col.Key)
		}
	}
	return out
}

// WarningKind classifies a non-fatal data-quality finding.
type WarningKind string

const (
	// WarnDegradedKey: the record key came from the random fallback tier;
	// re-importing the same row will insert a duplicate.
	WarnDegradedKey WarningKind = "degraded_key"

	// WarnDegradedCountry: the country code is a naive two-letter prefix.
	WarnDegradedCountry WarningKind = "degraded_country"

	// WarnLocationReview: a location was composed from a port without a
	// country and needs a manual fix.
	WarnLocationReview WarningKind = "location_review"
)

// Warning is a non-fatal finding returned alongside parsed rows.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	RowIndex int         `json:"rowIndex"`
	SheetRow int         `json:"sheetRow"`
	Column   string      `json:"column,omitempty"`
	Message  string      `json:"message"`
}

// EnrichFunc derives normalized and identity fields for parsed rows in
// place. It runs after validation and returns any warnings it produced.
type EnrichFunc func(rows []ParsedRow) []Warning

// Definition is everything the pipeline needs for one import type.
type Definition struct {
	Schema ColumnSchema
	Enrich EnrichFunc // Optional
}

// UpsertResult reports what the upsert collaborator did with a batch.
type UpsertResult struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Upserter persists a batch of rows, inserting new keys and updating
// existing ones.
type Upserter interface {
	Upsert(ctx context.Context, schema ColumnSchema, rows []ParsedRow) (UpsertResult, error)
}
