package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

// Result is one normalized upload.
type Result struct {
	Source string
	Sheet  string
	Table  *asset.Table
	Roles  asset.RoleMap
	// YearColumn is the derived year column, empty when DATE is unresolved.
	YearColumn  string
	HeaderRow   int
	HeaderFound bool
	// SourceColumns are the normalized names of the sheet's first row.
	SourceColumns []string
	Warnings      []asset.Warning
}

// Normalizer turns asset register spreadsheets into typed tables.
type Normalizer struct {
	opt      Options
	resolver *Resolver
}

// NewNormalizer returns a Normalizer using opt.
func NewNormalizer(opt Options) *Normalizer {
	if opt.YearColumn == "" {
		opt.YearColumn = DefaultOptions().YearColumn
	}
	return &Normalizer{opt: opt, resolver: NewResolver(opt.ExtraAliases)}
}

var supportedExts = map[string]bool{".xlsx": true, ".xlsm": true}

// Supported reports whether name has a spreadsheet extension the normalizer reads.
func Supported(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// NormalizeFile reads and normalizes the spreadsheet at path.
func (n *Normalizer) NormalizeFile(path string) (*Result, error) {
	name := filepath.Base(path)
	if !Supported(path) {
		return nil, &asset.IngestionError{Source: name, Reason: fmt.Sprintf("unsupported file type %q (expected .xlsx)", filepath.Ext(path))}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &asset.IngestionError{Source: name, Reason: "read file", Err: err}
	}
	return n.Normalize(bytes.NewReader(b), name)
}

// Normalize loads the first sheet from r, relocates the header row, resolves
// roles and coerces DATE and VALUE cells. Only load failures are returned as
// errors; everything else is reported in Result.Warnings.
func (n *Normalizer) Normalize(r io.Reader, source string) (*Result, error) {
	sheet, raw, err := readRaw(r)
	if err != nil {
		reason := "unreadable spreadsheet"
		if errors.Is(err, errNoSheets) {
			reason = "no worksheet"
		}
		return nil, &asset.IngestionError{Source: source, Reason: reason, Err: err}
	}

	names := newNamer()
	res := &Result{Source: source, Sheet: sheet}

	// Preliminary pass with the first row as header.
	prelim := buildTable(names, raw, 0)
	if prelim.Len() == 0 && !rowHasContent(firstRow(raw)) {
		return nil, &asset.IngestionError{Source: source, Reason: "sheet is empty"}
	}
	res.SourceColumns = prelim.Columns

	offset, found := LocateHeader(raw, n.opt.HeaderMarker)
	res.HeaderRow, res.HeaderFound = offset, found
	if !found {
		res.Warnings = append(res.Warnings, asset.Warning{
			Kind:    asset.WarningHeaderNotFound,
			Message: fmt.Sprintf("header marker %q not found; using the first row as header", n.opt.HeaderMarker),
		})
	}

	table := buildTable(names, raw, offset)
	roles := n.resolver.ResolveAll(table.Columns)
	for _, role := range roles.Unresolved() {
		res.Warnings = append(res.Warnings, asset.Warning{
			Kind:    asset.WarningRoleUnresolved,
			Role:    role.String(),
			Message: fmt.Sprintf("no %s column found (tried: %s)", role, strings.Join(n.resolver.Candidates(role), ", ")),
		})
	}

	if col, ok := roles.Column(asset.RoleDate); ok {
		table, res.Warnings = n.coerceDates(table, col, res.Warnings)
		res.YearColumn = n.opt.YearColumn
	}
	if col, ok := roles.Column(asset.RoleValue); ok {
		skipped := coerceColumn(table, col, func(s string) asset.Value {
			if f, ok := parseNumber(s, n.opt); ok {
				return asset.Number(f)
			}
			return asset.Missing()
		})
		if skipped > 0 {
			res.Warnings = append(res.Warnings, coercionWarning(asset.RoleValue, col, skipped, "non-numeric"))
		}
	}

	res.Table = table
	res.Roles = roles
	return res, nil
}

// coerceDates parses the DATE column in place and adds the year column.
// An existing column with the year column's name is overwritten.
func (n *Normalizer) coerceDates(table *asset.Table, col string, warnings []asset.Warning) (*asset.Table, []asset.Warning) {
	skipped := coerceColumn(table, col, func(s string) asset.Value {
		if t, ok := parseDate(s); ok {
			return asset.Time(t)
		}
		return asset.Missing()
	})
	if skipped > 0 {
		warnings = append(warnings, coercionWarning(asset.RoleDate, col, skipped, "unparseable date"))
	}

	di, _ := table.Index(col)
	yi, exists := table.Index(n.opt.YearColumn)
	if !exists {
		cols := append(append([]string(nil), table.Columns...), n.opt.YearColumn)
		recs := make([]asset.Record, len(table.Records))
		for i, rec := range table.Records {
			recs[i] = append(rec[:len(rec):len(rec)], asset.Missing())
		}
		table = asset.NewTable(cols, recs)
		yi = len(cols) - 1
	}
	valid := 0
	for _, rec := range table.Records {
		if t, ok := rec[di].TimeValue(); ok {
			rec[yi] = asset.Number(float64(t.Year()))
			valid++
		} else {
			rec[yi] = asset.Missing()
		}
	}
	if valid == 0 {
		warnings = append(warnings, asset.Warning{
			Kind:    asset.WarningNoValidYear,
			Role:    asset.RoleDate.String(),
			Column:  col,
			Message: fmt.Sprintf("column %q has no valid date; year filter unavailable", col),
		})
	}
	return table, warnings
}

// coerceColumn replaces the text cells of col with parse results and returns
// how many non-missing cells became missing.
func coerceColumn(table *asset.Table, col string, parse func(string) asset.Value) int {
	idx, ok := table.Index(col)
	if !ok {
		return 0
	}
	skipped := 0
	for _, rec := range table.Records {
		v := rec[idx]
		if v.IsMissing() {
			continue
		}
		nv := parse(v.String())
		if nv.IsMissing() {
			skipped++
		}
		rec[idx] = nv
	}
	return skipped
}

func coercionWarning(role asset.Role, col string, count int, what string) asset.Warning {
	return asset.Warning{
		Kind:    asset.WarningCellCoercionSkipped,
		Role:    role.String(),
		Column:  col,
		Count:   count,
		Message: fmt.Sprintf("%d %s cell(s) in %q treated as missing", count, what, col),
	}
}

// buildTable uses raw[header] as the header row and the rows after it as
// records, dropping rows that are entirely blank.
func buildTable(names *namer, raw asset.RawTable, header int) *asset.Table {
	if header >= len(raw) {
		return asset.NewTable(nil, nil)
	}
	width := 0
	for _, row := range raw[header:] {
		if len(row) > width {
			width = len(row)
		}
	}
	cols := names.headers(raw[header], width)
	recs := make([]asset.Record, 0, len(raw)-header)
	for _, row := range raw[header+1:] {
		rec := make(asset.Record, len(cols))
		for j := 0; j < len(cols) && j < len(row); j++ {
			rec[j] = asset.Text(strings.TrimSpace(row[j]))
		}
		if rec.Blank() {
			continue
		}
		recs = append(recs, rec)
	}
	return asset.NewTable(cols, recs)
}

func firstRow(raw asset.RawTable) []string {
	if len(raw) == 0 {
		return nil
	}
	return raw[0]
}

func rowHasContent(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
