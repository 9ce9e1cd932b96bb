package importer

// pipeline.go runs one grid through every stage in order:
//
//	locate header -> map columns (hard gate) -> coerce -> validate -> enrich
//
// Parse is pure: the caller supplies the bytes or grid and decides what to
// do with validation errors and warnings.

import (
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// Result is the outcome of parsing one file.
type Result struct {
	Schema     string           `json:"schema"`
	HeaderRow  int              `json:"headerRow"` // 1-based; 0 when the grid has no body
	DataStart  int              `json:"dataStart"` // 1-based; 0 when the grid has no body
	Columns    ColumnBinding    `json:"columns"`
	Rows       []ParsedRow      `json:"rows"`
	Validation ValidationResult `json:"validation"`
	Warnings   []Warning        `json:"warnings"`
}

// Parse turns a grid into parsed rows for def. The only error it returns is
// *StructuralMismatchError; data-quality problems are reported in the
// result. A grid without a locatable body yields zero rows and no error.
func Parse(grid sheet.Grid, def Definition) (*Result, error) {
	schema := def.Schema
	res := &Result{
		Schema:     schema.Key,
		Columns:    ColumnBinding{},
		Rows:       []ParsedRow{},
		Validation: ValidationResult{Valid: true, Errors: []ValidationError{}},
		Warnings:   []Warning{},
	}

	loc := LocateHeader(grid)
	if !loc.Found {
		return res, nil
	}

	binding, err := MapColumns(grid[loc.HeaderRow], schema)
	if err != nil {
		return nil, err
	}
	res.HeaderRow = loc.HeaderRow + 1
	res.DataStart = loc.DataStart + 1
	res.Columns = binding

	for i := loc.DataStart; i < len(grid); i++ {
		if row, ok := coerceRow(grid[i], schema, binding); ok {
			row.SheetRow = i + 1
			res.Rows = append(res.Rows, row)
		}
	}

	res.Validation = ValidateRows(res.Rows, schema)
	if def.Enrich != nil {
		res.Warnings = append(res.Warnings, def.Enrich(res.Rows)...)
	}
	return res, nil
}

// ParseFile reads data with engine and parses the first sheet.
func ParseFile(data []byte, engine sheet.Engine, def Definition) (*Result, error) {
	grid, err := sheet.Read(data, engine)
	if err != nil {
		return nil, err
	}
	return Parse(grid, def)
}

// coerceRow builds a ParsedRow with every schema key. ok is false when
// every value is empty.
func coerceRow(cells []any, schema ColumnSchema, binding ColumnBinding) (ParsedRow, bool) {
	row := ParsedRow{Values: make(map[string]string, len(schema.Columns))}
	filled := false
	for _, col := range schema.Columns {
		val := ""
		if pos, ok := binding[col.Key]; ok && pos < len(cells) {
			val = CoerceCell(cells[pos], col.Type)
		}
		if val != "" {
			filled = true
		}
		row.Values[col.Key] = val
	}
	return row, filled
}
