package importer

// columns.go binds declared columns to header positions.
//
// Vendor headers drift: line breaks inside cells, "(Mandatory)" suffixes,
// stray punctuation, abbreviated labels. Matching runs in three passes so a
// weaker match never steals a column that a stronger one wanted:
//  1. exact trimmed text
//  2. normalized text equality
//  3. substring either way, over columns nothing has claimed yet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrStructuralMismatch is matched by errors.Is for *StructuralMismatchError.
var ErrStructuralMismatch = errors.New("structural mismatch")

// StructuralMismatchError aborts an import whose header lacks required
// columns. Its message is meant to be shown to the operator verbatim.
type StructuralMismatchError struct {
	Schema  string
	Missing []string // labels of required columns with no binding
	Found   []string // non-empty header cells as they appear in the file
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("missing required columns: %s (found headers: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

// Is makes errors.Is(err, ErrStructuralMismatch) work.
func (e *StructuralMismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}

// ColumnBinding maps schema keys to header positions.
type ColumnBinding map[string]int

var (
	lineBreakRe       = regexp.MustCompile(`\r\n|\r|\n`)
	mandatoryPhraseRe = regexp.MustCompile(`\(\s*mandatory[^)]*\)?`)
	mandatoryWordRe   = regexp.MustCompile(`\bmandatory\b`)
	punctuationRe     = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// NormalizeHeader reduces a header or label to a comparable form:
// line breaks become spaces, case is folded, "(mandatory ...)" and bare
// "mandatory" are dropped, punctuation is removed and whitespace collapsed.
// NormalizeHeader(NormalizeHeader(s)) == NormalizeHeader(s).
func NormalizeHeader(s string) string {
	s = lineBreakRe.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	s = mandatoryPhraseRe.ReplaceAllString(s, " ")
	s = punctuationRe.ReplaceAllString(s, "")
	s = mandatoryWordRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// MapColumns binds each schema column to a header cell. It fails with a
// *StructuralMismatchError when any required column has no binding;
// optional columns are simply left out of the binding.
func MapColumns(header []any, schema ColumnSchema) (ColumnBinding, error) {
	raw := make([]string, len(header))
	norm := make([]string, len(header))
	for i, v := range header {
		raw[i] = CoerceCell(v, FieldText)
		norm[i] = NormalizeHeader(raw[i])
	}

	binding := make(ColumnBinding, len(schema.Columns))
	claimed := make(map[int]bool, len(header))

	pass := func(match func(i int, col ColumnSpec) bool) {
		for _, col := range schema.Columns {
			if _, done := binding[col.Key]; done {
				continue
			}
			for i := range header {
				if claimed[i] || raw[i] == "" {
					continue
				}
				if match(i, col) {
					binding[col.Key] = i
					claimed[i] = true
					break
				}
			}
		}
	}

	pass(func(i int, col ColumnSpec) bool {
		return raw[i] == strings.TrimSpace(col.Label)
	})
	pass(func(i int, col ColumnSpec) bool {
		label := NormalizeHeader(col.Label)
		return label != "" && norm[i] == label
	})
	pass(func(i int, col ColumnSpec) bool {
		label := NormalizeHeader(col.Label)
		if label == "" || norm[i] == "" {
			return false
		}
		return strings.Contains(norm[i], label) || strings.Contains(label, norm[i])
	})

	var missing []string
	for _, col := range schema.Columns {
		if _, ok := binding[col.Key]; !ok && col.Required {
			missing = append(missing, col.Label)
		}
	}
	if len(missing) > 0 {
		found := make([]string, 0, len(raw))
		for _, h := range raw {
			if h != "" {
				found = append(found, h)
			}
		}
		return nil, &StructuralMismatchError{Schema: schema.Key, Missing: missing, Found: found}
	}

	return binding, nil
}
