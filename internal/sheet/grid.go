// Package sheet extracts raw cell grids from spreadsheet files and writes
// import templates.
//
// A Grid is the uninterpreted content of the first worksheet of a workbook.
// Cell values are one of:
//
//   - nil        empty or missing cell
//   - string     text, shared or inline
//   - float64    number without a date format
//   - bool       boolean cell
//   - time.Time  number carrying a date number format
//
// Nothing in this package knows about headers, schemas or validation; that
// is the importer's job.
package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreadable is returned when the bytes cannot be decoded as a workbook.
var ErrUnreadable = errors.New("unreadable spreadsheet")

// ErrNoSheets is returned when a workbook decodes but has no worksheets.
var ErrNoSheets = errors.New("spreadsheet has no sheets")

// Grid is a row-major matrix of raw cell values. All rows have the same
// length once returned by Read.
type Grid [][]any

// Width returns the number of columns of the widest row.
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Engine selects the codec used to decode workbooks.
type Engine string

const (
	EngineExcelize  Engine = "excelize"
	EngineUnioffice Engine = "unioffice"
)

// ParseEngine validates an engine name. An empty name selects excelize.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineExcelize:
		return EngineExcelize, nil
	case EngineUnioffice:
		return EngineUnioffice, nil
	default:
		return "", fmt.Errorf("unknown spreadsheet engine %q (want excelize or unioffice)", name)
	}
}

// Read decodes the first worksheet of an .xlsx file.
func Read(data []byte, engine Engine) (Grid, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadable)
	}

	var (
		grid Grid
		err  error
	)
	switch engine {
	case "", EngineExcelize:
		grid, err = readExcelize(data)
	case EngineUnioffice:
		grid, err = readUnioffice(data)
	default:
		return nil, fmt.Errorf("unknown spreadsheet engine %q", engine)
	}
	if err != nil {
		return nil, err
	}
	return pad(grid), nil
}

// pad extends every row to the grid width with nil cells.
func pad(g Grid) Grid {
	width := g.Width()
	for i, row := range g {
		if len(row) < width {
			padded := make([]any, width)
			copy(padded, row)
			g[i] = padded
		}
	}
	return g
}

// Builtin number format ids that render dates or times.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format code renders a
// date. Quoted literals and bracketed sections are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "yd")
}
