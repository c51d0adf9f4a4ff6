package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

func writeXLSX(path string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Name)
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}

func readXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, fmt.Errorf("no sheets")
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{Name: sheets[0]}, nil
	}
	return Table{Name: sheets[0], Header: records[0], Rows: textCells(records[0], records[1:])}, nil
}
