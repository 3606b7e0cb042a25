package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

var errNoSheets = errors.New("workbook has no sheets")

// readRaw loads the first sheet with raw cell values: numbers unformatted and
// dates as Excel serials.
func readRaw(r io.Reader) (string, asset.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errNoSheets
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return sheet, asset.RawTable(rows), nil
}
