package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultTemplateSheet is the worksheet name used by WriteTemplate.
const DefaultTemplateSheet = "Import"

// WriteTemplate writes a single-sheet workbook whose first row holds the
// header labels (bold) and whose second row holds one example record.
func WriteTemplate(w io.Writer, sheetName string, headers, example []string) error {
	if len(headers) == 0 {
		return errors.New("template needs at least one header")
	}
	if sheetName == "" {
		sheetName = DefaultTemplateSheet
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := toRow(headers, len(headers))
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	exampleRow := toRow(example, len(headers))
	if err := f.SetSheetRow(sheetName, "A2", &exampleRow); err != nil {
		return fmt.Errorf("write example row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("resolve last column: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toRow(values []string, width int) []interface{} {
	row := make([]interface{}, width)
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
