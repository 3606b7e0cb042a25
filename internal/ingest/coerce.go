package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "02-01-2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2/1/2006", "2/1/2006 15:04", "2/1/2006 15:04:05",
	"2 January 2006", "02 Jan 2006", "January 2006", "2006-01",
}

// Bare four-digit numbers in this range are years; other numbers are Excel
// serials.
const (
	minBareYear = 1900
	maxBareYear = 2100
)

// Excel serial day numbers accepted as dates (1900-01-01 .. 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// parseDate accepts the textual layouts above and Excel serial day numbers,
// which is how date cells arrive when the sheet is read raw.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	if len(s) == 4 {
		if y, err := strconv.Atoi(s); err == nil && y >= minBareYear && y <= maxBareYear {
			return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseNumber coerces a VALUE cell. Without separators it accepts only plain
// numerals; with separators configured it strips grouping first.
func parseNumber(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	if opt.DecimalSeparator != 0 || opt.ThousandsSeparator != 0 {
		dec := EffectiveDecimal(opt.DecimalSeparator, opt.ThousandsSeparator)
		if dec == opt.ThousandsSeparator {
			return 0, false
		}
		raw = delocalize(raw, dec, opt.ThousandsSeparator)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// EffectiveDecimal is the decimal separator used for VALUE parsing. Without
// an explicit one it is ',' when '.' groups thousands, and '.' otherwise.
func EffectiveDecimal(dec, thou rune) rune {
	switch {
	case dec != 0:
		return dec
	case thou == '.':
		return ','
	}
	return '.'
}

func delocalize(raw string, dec, thou rune) string {
	if thou != 0 {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	raw = strings.ReplaceAll(raw, " ", "")
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	return raw
}
