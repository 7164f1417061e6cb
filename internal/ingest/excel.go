package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSXFile reads the first sheet of an XLSX workbook as a table with
// the same header conventions as the CSV loaders.
func (l *Loader) readXLSXFile(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	return newTable(rows[0], rows[1:]), nil
}
