package sheet

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"
	"github.com/unidoc/unioffice/zippkg"
)

// readUnioffice reads the first worksheet with unioffice. Sparse rows and
// cells are placed by their references, so gaps in the sheet stay gaps in
// the grid.
func readUnioffice(data []byte) (Grid, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	strs, err := sharedStrings(wb, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var grid Grid
	for _, row := range sheets[0].Rows() {
		rowIdx := int(row.RowNumber()) - 1
		if rowIdx < 0 {
			continue
		}
		for rowIdx >= len(grid) {
			grid = append(grid, nil)
		}

		var cells []any
		for _, cell := range row.Cells() {
			colName, err := cell.Column()
			if err != nil {
				continue
			}
			colIdx := int(reference.ColumnToIndex(colName))
			for colIdx >= len(cells) {
				cells = append(cells, nil)
			}
			v, err := uniofficeValue(wb, strs, cell)
			if err != nil {
				return nil, fmt.Errorf("%w: cell %s: %v", ErrUnreadable, cell.Reference(), err)
			}
			cells[colIdx] = v
		}
		grid[rowIdx] = cells
	}
	return grid, nil
}

// sharedStrings returns the workbook's string table. unioffice joins
// relationship targets onto the workbook directory, so a table registered
// with an absolute target such as "/xl/sharedStrings.xml" (excelize writes
// it that way) is never loaded. Such tables are decoded from the archive.
func sharedStrings(wb *spreadsheet.Workbook, data []byte) (spreadsheet.SharedStrings, error) {
	if sst := wb.SharedStrings.X(); sst != nil && len(sst.Si) > 0 {
		return wb.SharedStrings, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return wb.SharedStrings, err
	}
	for _, f := range zr.File {
		if !strings.EqualFold(path.Base(f.Name), "sharedStrings.xml") {
			continue
		}
		table := spreadsheet.NewSharedStrings()
		if err := zippkg.Decode(f, table.X()); err != nil {
			return wb.SharedStrings, err
		}
		return table, nil
	}
	return wb.SharedStrings, nil
}

func uniofficeValue(wb *spreadsheet.Workbook, strs spreadsheet.SharedStrings, cell spreadsheet.Cell) (any, error) {
	if cell.IsEmpty() {
		return nil, nil
	}
	x := cell.X()

	switch {
	case x.TAttr == sml.ST_CellTypeS:
		if x.V == nil {
			return nil, nil
		}
		id, err := strconv.Atoi(strings.TrimSpace(*x.V))
		if err != nil {
			return nil, fmt.Errorf("shared string index %q: %w", *x.V, err)
		}
		s, err := strs.GetString(id)
		if err != nil {
			return nil, err
		}
		return nonEmpty(s), nil
	case cell.IsBool():
		if b, err := cell.GetValueAsBool(); err == nil {
			return b, nil
		}
	case cell.IsNumber():
		if n, err := cell.GetValueAsNumber(); err == nil {
			if uniofficeDateStyle(wb, cell) {
				return FromSerial(n), nil
			}
			return n, nil
		}
	}

	v, err := cell.GetRawValue()
	if err != nil {
		v = cell.GetFormattedValue()
	}
	return nonEmpty(v), nil
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// uniofficeDateStyle resolves the cell's number format through the style
// sheet, checking custom formats before the builtin id table.
func uniofficeDateStyle(wb *spreadsheet.Workbook, cell spreadsheet.Cell) bool {
	if cell.X().SAttr == nil {
		return false
	}
	ss := wb.StyleSheet.X()
	if ss == nil || ss.CellXfs == nil {
		return false
	}
	styleID := int(*cell.X().SAttr)
	if styleID < 0 || styleID >= len(ss.CellXfs.Xf) {
		return false
	}
	xf := ss.CellXfs.Xf[styleID]
	if xf.NumFmtIdAttr == nil {
		return false
	}
	fmtID := *xf.NumFmtIdAttr

	if ss.NumFmts != nil {
		for _, nf := range ss.NumFmts.NumFmt {
			if nf != nil && nf.NumFmtIdAttr == fmtID {
				return isDateFormatCode(nf.FormatCodeAttr)
			}
		}
	}
	return isBuiltinDateFormat(int(fmtID))
}
