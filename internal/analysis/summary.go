// Package analysis derives summary statistics from a filtered asset table.
package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

// CategoryCount is one row of a distribution.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupValue is an aggregated VALUE for one group key.
type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Extreme is the record holding the highest or lowest VALUE.
type Extreme struct {
	Row    int                    `json:"row"`
	Value  float64                `json:"value"`
	Record map[string]asset.Value `json:"record"`
}

// Bin is a histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Summary holds every statistic shown for a filtered table. Flags ending in
// Available are false when the backing role is unresolved, in which case the
// related numbers are zero.
type Summary struct {
	Count int `json:"count"`

	ValueAvailable bool    `json:"value_available"`
	ValueCount     int     `json:"value_count"`
	ValueTotal     float64 `json:"value_total"`
	ValueMean      float64 `json:"value_mean"`
	ValueMedian    float64 `json:"value_median"`

	ConditionAvailable bool `json:"condition_available"`
	GoodCondition      int  `json:"good_condition"`
	ProblemCondition   int  `json:"problem_condition"`

	IncompleteAvailable bool `json:"incomplete_available"`
	Incomplete          int  `json:"incomplete"`

	CategoryDistribution  []CategoryCount `json:"category_distribution"`
	ConditionDistribution []CategoryCount `json:"condition_distribution"`
	ValueByUnit           []GroupValue    `json:"value_by_unit"`
	ValueByCategory       []GroupValue    `json:"value_by_category"`

	Highest *Extreme `json:"highest,omitempty"`
	Lowest  *Extreme `json:"lowest,omitempty"`

	ValueSeries []float64 `json:"value_series"`
	Histogram   []Bin     `json:"histogram"`
}

// Summarize computes the statistics of t. It never fails: an empty table or
// unresolved roles yield zero values.
func Summarize(t *asset.Table, roles asset.RoleMap, opt Options) Summary {
	s := Summary{Count: t.Len()}
	if t == nil {
		return s
	}
	unitIdx, hasUnit := roleIndex(t, roles, asset.RoleUnit)
	condIdx, hasCond := roleIndex(t, roles, asset.RoleCondition)
	catIdx, hasCat := roleIndex(t, roles, asset.RoleCategory)
	valIdx, hasVal := roleIndex(t, roles, asset.RoleValue)

	if hasVal {
		s.ValueAvailable = true
		summarizeValues(&s, t, valIdx)
	}
	if hasCond {
		s.ConditionAvailable = true
		s.GoodCondition = countGood(t, condIdx, opt.GoodKeywords)
		s.ProblemCondition = s.Count - s.GoodCondition
		s.ConditionDistribution = distribution(t, condIdx)
	}
	if hasCat {
		s.CategoryDistribution = distribution(t, catIdx)
	}

	var tracked []int
	for _, r := range []struct {
		idx int
		ok  bool
	}{{unitIdx, hasUnit}, {valIdx, hasVal}, {catIdx, hasCat}, {condIdx, hasCond}} {
		if r.ok {
			tracked = append(tracked, r.idx)
		}
	}
	if len(tracked) > 0 {
		s.IncompleteAvailable = true
		s.Incomplete = countIncomplete(t, tracked, opt.threshold())
	}

	if hasVal && hasUnit {
		s.ValueByUnit = groupValues(t, unitIdx, valIdx, false)
	}
	if hasVal && hasCat {
		s.ValueByCategory = groupValues(t, catIdx, valIdx, true)
	}
	if hasVal && opt.HistogramBins > 0 {
		s.Histogram = histogram(s.ValueSeries, opt.HistogramBins)
	}
	return s
}

func roleIndex(t *asset.Table, roles asset.RoleMap, r asset.Role) (int, bool) {
	col, ok := roles.Column(r)
	if !ok {
		return 0, false
	}
	return t.Index(col)
}

func cell(rec asset.Record, i int) asset.Value {
	if i < len(rec) {
		return rec[i]
	}
	return asset.Missing()
}

func summarizeValues(s *Summary, t *asset.Table, idx int) {
	series := make([]float64, 0, t.Len())
	for row, rec := range t.Records {
		x, ok := cell(rec, idx).Float()
		if !ok {
			continue
		}
		series = append(series, x)
		s.ValueTotal += x
		// strict comparisons keep the first occurrence on ties
		if s.Highest == nil || x > s.Highest.Value {
			s.Highest = extreme(t, row, x)
		}
		if s.Lowest == nil || x < s.Lowest.Value {
			s.Lowest = extreme(t, row, x)
		}
	}
	s.ValueSeries = series
	s.ValueCount = len(series)
	if len(series) == 0 {
		return
	}
	if m, err := stats.Mean(series); err == nil {
		s.ValueMean = m
	}
	if m, err := stats.Median(series); err == nil {
		s.ValueMedian = m
	}
}

func extreme(t *asset.Table, row int, x float64) *Extreme {
	rec := make(map[string]asset.Value, len(t.Columns))
	for i, c := range t.Columns {
		rec[c] = cell(t.Records[row], i)
	}
	return &Extreme{Row: row, Value: x, Record: rec}
}

func countGood(t *asset.Table, idx int, keywords []string) int {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	n := 0
	for _, rec := range t.Records {
		v := cell(rec, idx)
		if v.IsMissing() {
			continue
		}
		lower := strings.ToLower(v.String())
		for _, k := range kw {
			if strings.Contains(lower, k) {
				n++
				break
			}
		}
	}
	return n
}

func countIncomplete(t *asset.Table, tracked []int, threshold int) int {
	n := 0
	for _, rec := range t.Records {
		missing := 0
		for _, i := range tracked {
			if cell(rec, i).IsMissing() {
				missing++
			}
		}
		if missing >= threshold {
			n++
		}
	}
	return n
}

// distribution counts non-missing values, most frequent first.
func distribution(t *asset.Table, idx int) []CategoryCount {
	counts := map[string]int{}
	for _, rec := range t.Records {
		v := cell(rec, idx)
		if v.IsMissing() {
			continue
		}
		counts[v.String()]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, CategoryCount{Value: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// groupValues aggregates VALUE per key as a sum, or a mean when mean is set.
// Records with a missing key are skipped. Sum groups with no numeric value
// report 0; mean groups with no numeric value are omitted.
func groupValues(t *asset.Table, keyIdx, valIdx int, mean bool) []GroupValue {
	type acc struct {
		sum float64
		n   int
	}
	groups := map[string]*acc{}
	for _, rec := range t.Records {
		k := cell(rec, keyIdx)
		if k.IsMissing() {
			continue
		}
		g := groups[k.String()]
		if g == nil {
			g = &acc{}
			groups[k.String()] = g
		}
		if x, ok := cell(rec, valIdx).Float(); ok {
			g.sum += x
			g.n++
		}
	}
	out := make([]GroupValue, 0, len(groups))
	for k, g := range groups {
		v := g.sum
		if mean {
			if g.n == 0 {
				continue
			}
			v = g.sum / float64(g.n)
		}
		out = append(out, GroupValue{Key: k, Value: v, Count: g.n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Key < out[j].Key
		}
		return out[i].Value > out[j].Value
	})
	return out
}

func histogram(series []float64, bins int) []Bin {
	if len(series) == 0 {
		return nil
	}
	x := append([]float64(nil), series...)
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	var dividers []float64
	if lo == hi {
		dividers = []float64{lo, math.Nextafter(hi, math.Inf(1))}
	} else {
		dividers = floats.Span(make([]float64, bins+1), lo, hi)
		// the last divider is exclusive
		dividers[bins] = math.Nextafter(hi, math.Inf(1))
	}
	counts := stat.Histogram(nil, dividers, x, nil)
	out := make([]Bin, len(counts))
	for i, c := range counts {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(c)}
	}
	return out
}
