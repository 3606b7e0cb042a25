// Package testutil builds spreadsheet fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXBytes renders rows into a single-sheet workbook. A nil row leaves the
// sheet row empty.
func XLSXBytes(t testing.TB, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

// WriteXLSX writes rows to dir/name and returns the path.
func WriteXLSX(t testing.TB, dir, name string, rows [][]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, XLSXBytes(t, rows), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// AssetRegister is a register export with two preamble rows before the
// "No. Urut" header, a blank row, and a few irregular cells.
func AssetRegister() [][]any {
	return [][]any{
		{"DAFTAR ASET PERHUTANI"},
		{"Periode", "2023"},
		{"No. Urut", "Nama Satker", "Jenis Aset", "Kondisi", "Tanggal Perolehan", "Nilai Aset"},
		{1, "KPH Bogor", "Kendaraan", "Baik", time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), 150000000},
		{2, "KPH Bogor", "Bangunan", "Rusak Berat", "2019-06-01", 900000000},
		nil,
		{3, "KPH Cianjur", "Kendaraan", "Bagus", "not-a-date", "n/a"},
		{4, "KPH Cianjur", "Peralatan", "", "", 2500000},
		{5, "KPH Garut", "", "Good", "2021-03-10", ""},
	}
}
