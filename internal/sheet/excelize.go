package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// readExcelize reads the first worksheet with excelize. Cell values are
// fetched raw so numbers keep full precision; date formats are detected
// from the cell style.
func readExcelize(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrUnreadable, name, err)
	}

	grid := make(Grid, len(rows))
	for r, row := range rows {
		cells := make([]any, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				cells[c] = raw
				continue
			}
			cells[c] = excelizeValue(f, name, axis, raw)
		}
		grid[r] = cells
	}
	return grid, nil
}

func excelizeValue(f *excelize.File, sheetName, axis, raw string) any {
	typ, err := f.GetCellType(sheetName, axis)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t
		}
		return raw
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if excelizeDateStyle(f, sheetName, axis) {
			return FromSerial(n)
		}
		return n
	default:
		return raw
	}
}

func excelizeDateStyle(f *excelize.File, sheetName, axis string) bool {
	id, err := f.GetCellStyle(sheetName, axis)
	if err != nil || id == 0 {
		return false
	}
	style, err := f.GetStyle(id)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}
