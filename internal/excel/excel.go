// Package excel reads tables from xlsx workbooks and writes multi-sheet
// reports with excelize stream writers.
package excel

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Sheet is one worksheet of a report.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// ReadRows returns every row of sheetName, or of the first sheet when
// sheetName is empty. Trailing empty cells are not returned.
func ReadRows(r io.Reader, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "excel: open workbook")
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, eris.New("excel: workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, eris.Wrapf(err, "excel: read sheet %q", sheetName)
	}
	return rows, nil
}

// WriteSheets writes the sheets, in order, as a workbook to w. The first
// sheet is active.
func WriteSheets(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return eris.New("excel: no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	first := -1
	for _, s := range sheets {
		index, err := f.NewSheet(s.Name)
		if err != nil {
			return eris.Wrapf(err, "excel: create sheet %q", s.Name)
		}
		if first < 0 {
			first = index
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}

	f.SetActiveSheet(first)
	if sheets[0].Name != defaultSheet && !hasSheet(sheets, defaultSheet) {
		f.DeleteSheet(defaultSheet)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "excel: write workbook")
	}
	return nil
}

func hasSheet(sheets []Sheet, name string) bool {
	for _, s := range sheets {
		if s.Name == name {
			return true
		}
	}
	return false
}

// writeSheet streams the header and rows of one sheet.
func writeSheet(f *excelize.File, s Sheet) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return eris.Wrapf(err, "excel: stream sheet %q", s.Name)
	}

	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return eris.Wrapf(err, "excel: write header of %q", s.Name)
	}

	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "excel: cell name")
		}
		if err := sw.SetRow(cell, row); err != nil {
			return eris.Wrapf(err, "excel: write row %d of %q", i+2, s.Name)
		}
	}

	if err := sw.Flush(); err != nil {
		return eris.Wrapf(err, "excel: flush %q", s.Name)
	}
	return nil
}
