// Package export serializes asset tables back to spreadsheet bytes.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

const (
	DefaultSheet    = "Data Filtered"
	DefaultFilename = "data_aset_filtered.xlsx"
	ContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Options controls workbook naming.
type Options struct {
	Sheet    string
	Filename string
}

// DefaultOptions returns the standard export names.
func DefaultOptions() Options {
	return Options{Sheet: DefaultSheet, Filename: DefaultFilename}
}

// Payload is an exported workbook ready for download.
type Payload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Workbook writes t to a single-sheet workbook, header row first, in column
// order. Numbers stay numeric, times become Excel dates, missing cells stay
// empty. The table is only read.
func Workbook(t *asset.Table, opt Options) (*Payload, error) {
	if opt.Sheet == "" {
		opt.Sheet = DefaultSheet
	}
	if opt.Filename == "" {
		opt.Filename = DefaultFilename
	}
	if t == nil {
		t = asset.NewTable(nil, nil)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", opt.Sheet); err != nil {
		return nil, &asset.ExportError{Err: fmt.Errorf("rename sheet: %w", err)}
	}

	if len(t.Columns) > 0 {
		header := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(opt.Sheet, "A1", &header); err != nil {
			return nil, &asset.ExportError{Err: fmt.Errorf("write header: %w", err)}
		}
	}

	var dateStyle int
	for i, rec := range t.Records {
		row := make([]any, len(t.Columns))
		for j := range t.Columns {
			if j < len(rec) {
				row[j] = rec[j].Interface()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, &asset.ExportError{Err: fmt.Errorf("cell name: %w", err)}
		}
		if err := f.SetSheetRow(opt.Sheet, cell, &row); err != nil {
			return nil, &asset.ExportError{Err: fmt.Errorf("write row %d: %w", i+1, err)}
		}
		for j, v := range rec {
			if j >= len(t.Columns) || v.Kind() != asset.KindTime {
				continue
			}
			if dateStyle == 0 {
				// numFmt 14 is the built-in short date
				if dateStyle, err = f.NewStyle(&excelize.Style{NumFmt: 14}); err != nil {
					return nil, &asset.ExportError{Err: fmt.Errorf("date style: %w", err)}
				}
			}
			ref, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellStyle(opt.Sheet, ref, ref, dateStyle); err != nil {
				return nil, &asset.ExportError{Err: fmt.Errorf("style %s: %w", ref, err)}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &asset.ExportError{Err: fmt.Errorf("write workbook: %w", err)}
	}
	return &Payload{Data: buf.Bytes(), Filename: opt.Filename, ContentType: ContentType}, nil
}
