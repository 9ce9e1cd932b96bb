package importer

// header.go finds the real column header inside vendor sheets.
//
// Vendor files open with merged "group" headers ("VESSEL DETAILS",
// "VESSEL DEPARTURE PLACE") and stray metadata such as report numbers.
// Only the first two rows are checked for group headers; after that,
// metadata rows are skipped around the header.

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// groupHeaderKeywords mark a row as a section title row.
var groupHeaderKeywords = []string{"details", "place", "destination"}

// HeaderLocation is the position of the header and the first data row.
// When Found is false the grid has no parseable body.
type HeaderLocation struct {
	Found     bool
	HeaderRow int // index into the grid
	DataStart int // index into the grid; always > HeaderRow when Found
}

// LocateHeader classifies the opening rows of a grid and returns where the
// header and data begin.
//
// A group row only counts when it leaves some of the reference width empty.
// A title row with a label over every column is taken as the header, and the
// column mapping then reports the real header names as missing.
//
// Data starts at the first row after the header that is not metadata, so a
// short text note under the header is read as data and fails validation
// there.
func LocateHeader(grid sheet.Grid) HeaderLocation {
	if len(grid) < 2 {
		return HeaderLocation{}
	}

	width := referenceWidth(grid)
	candidate := 0
	firstIsGroup := isGroupHeaderRow(grid[0], width)
	switch {
	case firstIsGroup && (isGroupHeaderRow(grid[1], width) || isMostlyEmpty(grid[1], width)):
		candidate = 2
	case firstIsGroup:
		candidate = 1
	}

	header := -1
	for i := candidate; i < len(grid); i++ {
		if !isMetadataRow(grid[i]) {
			header = i
			break
		}
	}
	if header < 0 {
		return HeaderLocation{}
	}

	for i := header + 1; i < len(grid); i++ {
		if !isMetadataRow(grid[i]) {
			return HeaderLocation{Found: true, HeaderRow: header, DataStart: i}
		}
	}
	return HeaderLocation{}
}

// isGroupHeaderRow reports whether any text cell is an all-caps title
// longer than three characters or contains a structural keyword. Group
// titles are merged across columns, so a row filling the full reference
// width is a column header even when a label says "Destination port".
func isGroupHeaderRow(row []any, width int) bool {
	if countNonEmpty(row) >= width {
		return false
	}
	for _, v := range row {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) > 3 && hasLetter(s) && s == strings.ToUpper(s) {
			return true
		}
		lower := strings.ToLower(s)
		for _, kw := range groupHeaderKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// widthScanRows bounds how many leading rows referenceWidth inspects.
const widthScanRows = 6

// referenceWidth is the largest number of filled cells in the opening rows.
// Padded grids make len(row) useless here: a merged title stretches the
// sheet width without filling it.
func referenceWidth(grid sheet.Grid) int {
	width := 0
	for i := 0; i < len(grid) && i < widthScanRows; i++ {
		if n := countNonEmpty(grid[i]); n > width {
			width = n
		}
	}
	return width
}

// isMostlyEmpty reports whether fewer than half of width cells hold data.
func isMostlyEmpty(row []any, width int) bool {
	if width == 0 {
		return true
	}
	return countNonEmpty(row)*2 < width
}

// isMetadataRow reports whether a row is blank, or is a lone numeric token
// with at most one other filled cell.
func isMetadataRow(row []any) bool {
	filled, numeric := 0, 0
	for _, v := range row {
		if isEmptyCell(v) {
			continue
		}
		filled++
		if isNumericToken(v) {
			numeric++
		}
	}
	if filled == 0 {
		return true
	}
	return numeric >= 1 && filled <= 2
}

func countNonEmpty(row []any) int {
	n := 0
	for _, v := range row {
		if !isEmptyCell(v) {
			n++
		}
	}
	return n
}

func isEmptyCell(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(c) == ""
	case time.Time:
		return c.IsZero()
	default:
		return false
	}
}

func isNumericToken(v any) bool {
	switch c := v.(type) {
	case float64, int, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		return err == nil
	default:
		return false
	}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
