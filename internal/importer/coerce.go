package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

const isoDate = "2006-01-02"

// Serial numbers outside (minSerial, maxSerial) on a date column are
// treated as plain numbers.
const (
	minSerial = 1
	maxSerial = 1_000_000
)

// CoerceCell converts a raw grid value to the string stored in a ParsedRow.
// Empty cells become "". Numbers on date columns that look like day serials
// become ISO dates; other numbers are rendered in plain decimal notation.
func CoerceCell(v any, t FieldType) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return CleanText(c)
	case float64:
		return coerceNumber(c, t)
	case float32:
		return coerceNumber(float64(c), t)
	case int:
		return coerceNumber(float64(c), t)
	case int64:
		return coerceNumber(float64(c), t)
	case time.Time:
		if c.IsZero() {
			return ""
		}
		return c.Format(isoDate)
	case bool:
		return strconv.FormatBool(c)
	default:
		return CleanText(fmt.Sprint(c))
	}
}

func coerceNumber(n float64, t FieldType) string {
	if t == FieldDate && n > minSerial && n < maxSerial {
		return sheet.FromSerial(n).Format(isoDate)
	}
	return decimal.NewFromFloat(n).String()
}

// CleanText turns embedded line breaks into spaces, collapses runs of
// whitespace and trims.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = lineBreakRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
