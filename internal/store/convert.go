package store

// convert.go maps the string values of a parsed row onto PostgreSQL types.
//
// The importer has already cleaned cells: dates from date-formatted cells
// arrive as ISO strings and numbers in plain decimal notation. Vendor sheets
// still carry dates typed as text and quantities with separators, so both
// are accepted here too.
//
// All ToPg* functions return Valid=false for empty or unparseable input so
// the column is stored as NULL.

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted. Years that
// would land more than this many years in the future go to the previous
// century.
var TwoDigitYearPivot = 20

// Dotted dates are day-first as written in Black Sea port reports; slashed
// dates follow the US order.
var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02",
		"2.1.2006", "02.01.2006",
		"1/2/2006", "01/02/2006",
		"2 Jan 2006", "Jan 2, 2006", "02-Jan-2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"2.1.06", "02.01.06",
		"1/2/06", "01/02/06",
	}
)

// ToPgText converts a string to pgtype.Text.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a string to pgtype.Date.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

// ToPgNumeric converts a quantity such as "31 500", "31,500.5" or "31500"
// to pgtype.Numeric. Thousands separators (comma, space, non-breaking
// space) and a trailing unit like "MT" are removed.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
	s = strings.TrimRight(strings.ToUpper(s), "MTS")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// ToPgUUID converts a string to pgtype.UUID.
func ToPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// NumericString renders a pgtype.Numeric for logs and tests.
func NumericString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return ""
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).String()
}
