package analysis

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

const notFound = "column not found"

// Report is a markdown-friendly view of one asset register after filtering.
type Report struct {
	Name       string
	Sheet      string
	Columns    []string
	Total      int // records before filtering
	Roles      asset.RoleMap
	YearColumn string
	Summary    Summary
	Warnings   []asset.Warning
	// MaxGroups limits grouped rows per section; 0 means 10.
	MaxGroups int
}

var printer = message.NewPrinter(language.English)

// Rupiah formats an amount as "Rp 1,234,567".
func Rupiah(x float64) string {
	return printer.Sprintf("Rp %v", number.Decimal(x, number.MaxFractionDigits(0)))
}

// Markdown renders the report in fixed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	s := r.Summary
	limit := r.MaxGroups
	if limit <= 0 {
		limit = 10
	}

	b.WriteString("[ASSET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Sheet != "" {
		b.WriteString(fmt.Sprintf("Sheet: %s\n", r.Sheet))
	}
	if r.Total > 0 && r.Total != s.Count {
		b.WriteString(fmt.Sprintf("Assets: %d (of %d before filtering)\n", s.Count, r.Total))
	} else {
		b.WriteString(fmt.Sprintf("Assets: %d\n", s.Count))
	}
	if s.ValueAvailable {
		b.WriteString(fmt.Sprintf("Total value: %s\n", Rupiah(s.ValueTotal)))
		b.WriteString(fmt.Sprintf("Mean value: %s\n", Rupiah(s.ValueMean)))
		b.WriteString(fmt.Sprintf("Median value: %s\n", Rupiah(s.ValueMedian)))
	} else {
		b.WriteString("Total value: " + notFound + "\n")
	}
	if s.IncompleteAvailable {
		b.WriteString(fmt.Sprintf("Incomplete records: %d\n", s.Incomplete))
	} else {
		b.WriteString("Incomplete records: data not sufficient\n")
	}
	b.WriteString("\n")

	b.WriteString("[ROLES]\n")
	for _, role := range asset.AllRoles() {
		col, ok := r.Roles.Column(role)
		if !ok {
			col = notFound
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", role, safeVal(col)))
	}
	if _, ok := r.Roles.Column(asset.RoleDate); ok && r.YearColumn != "" {
		b.WriteString(fmt.Sprintf("- year: %s (derived)\n", safeVal(r.YearColumn)))
	}
	if len(r.Columns) > 0 {
		names := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			names[i] = safeName(c)
		}
		b.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(names, ", ")))
	}
	b.WriteString("\n")

	b.WriteString("[CONDITION]\n")
	if s.ConditionAvailable {
		b.WriteString(fmt.Sprintf("Good: %d\nNeeds attention: %d\n", s.GoodCondition, s.ProblemCondition))
	} else {
		b.WriteString("Condition: " + notFound + "\n")
	}
	b.WriteString("\n")

	b.WriteString("[DISTRIBUTION]\n")
	writeCounts(&b, "Category", s.CategoryDistribution, r.Roles.Resolved(asset.RoleCategory), limit)
	writeCounts(&b, "Condition", s.ConditionDistribution, s.ConditionAvailable, limit)
	b.WriteString("\n")

	b.WriteString("[VALUE BY UNIT]\n")
	writeGroups(&b, s.ValueByUnit, s.ValueAvailable && r.Roles.Resolved(asset.RoleUnit), limit)
	b.WriteString("\n")

	b.WriteString("[VALUE BY CATEGORY]\n")
	writeGroups(&b, s.ValueByCategory, s.ValueAvailable && r.Roles.Resolved(asset.RoleCategory), limit)
	b.WriteString("\n")

	b.WriteString("[EXTREMES]\n")
	switch {
	case !s.ValueAvailable:
		b.WriteString("- " + notFound + "\n")
	case s.Highest == nil:
		b.WriteString("- no numeric values\n")
	default:
		b.WriteString(fmt.Sprintf("- highest: %s (row %d%s)\n", Rupiah(s.Highest.Value), s.Highest.Row+1, r.describe(s.Highest)))
		b.WriteString(fmt.Sprintf("- lowest: %s (row %d%s)\n", Rupiah(s.Lowest.Value), s.Lowest.Row+1, r.describe(s.Lowest)))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", safeVal(w.Message)))
		}
	}
	return b.String()
}

// HTML renders the markdown report as an HTML fragment.
func (r *Report) HTML() string {
	md := strings.ReplaceAll(r.Markdown(), "\n[", "\n\n[")
	return string(markdown.ToHTML([]byte(md), nil, nil))
}

func (r *Report) describe(e *Extreme) string {
	var parts []string
	for _, role := range []asset.Role{asset.RoleUnit, asset.RoleCategory} {
		col, ok := r.Roles.Column(role)
		if !ok {
			continue
		}
		if v, ok := e.Record[col]; ok && !v.IsMissing() {
			parts = append(parts, safeVal(v.String()))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}

func writeCounts(b *strings.Builder, label string, rows []CategoryCount, available bool, limit int) {
	if !available {
		b.WriteString(fmt.Sprintf("%s: %s\n", label, notFound))
		return
	}
	if len(rows) == 0 {
		b.WriteString(fmt.Sprintf("%s: none\n", label))
		return
	}
	b.WriteString(label + ": ")
	for i, c := range rows {
		if i == limit {
			b.WriteString(fmt.Sprintf(", +%d more", len(rows)-limit))
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", safeVal(c.Value), c.Count))
	}
	b.WriteString("\n")
}

func writeGroups(b *strings.Builder, rows []GroupValue, available bool, limit int) {
	if !available {
		b.WriteString("- " + notFound + "\n")
		return
	}
	if len(rows) == 0 {
		b.WriteString("- none\n")
		return
	}
	for i, g := range rows {
		if i == limit {
			b.WriteString(fmt.Sprintf("- … %d more\n", len(rows)-limit))
			break
		}
		b.WriteString(fmt.Sprintf("- %s: %s (n=%d)\n", safeVal(g.Key), Rupiah(g.Value), g.Count))
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
