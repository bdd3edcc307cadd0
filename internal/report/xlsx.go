package report

import (
	"github.com/xuri/excelize/v2"
)

// readXLSX returns one grid per worksheet, in workbook order.
func readXLSX(path string) ([]Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var grids []Grid
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			for i := range row {
				row[i] = cleanCell(row[i])
			}
		}
		grids = append(grids, splitHeader(sheet, rows))
	}
	return grids, nil
}
