package importer

// validation.go checks parsed rows for missing required values.
//
// Validation never stops at the first problem: the operator fixes a file in
// one pass, so every empty required cell in the batch is reported.

import "fmt"

// ValidationError is one empty required cell.
type ValidationError struct {
	RowIndex int    `json:"rowIndex"` // 0-based index into the parsed rows
	SheetRow int    `json:"sheetRow"` // 1-based row number in the file
	Column   string `json:"column"`   // column label
	Message  string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.SheetRow, e.Column, e.Message)
}

// ValidationResult covers a whole batch.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// ValidateRows reports every required column left empty in rows.
func ValidateRows(rows []ParsedRow, schema ColumnSchema) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	for i, row := range rows {
		for _, col := range schema.Columns {
			if !col.Required || row.Get(col.Key) != "" {
				continue
			}
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				RowIndex: i,
				SheetRow: row.SheetRow,
				Column:   col.Label,
				Message:  "required field is empty",
			})
		}
	}

	return result
}
