package filter

import (
	"sort"
	"strconv"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

// Choices lists the distinct non-missing values per resolved field, the
// options offered to a user before any filtering.
type Choices map[Field][]string

// Options collects choices from t. Text values sort lexically, years numerically.
func Options(t *asset.Table, b Binding) Choices {
	out := make(Choices)
	if t == nil {
		return out
	}
	for _, f := range Fields() {
		col, ok := b.Column(f)
		if !ok {
			continue
		}
		idx, ok := t.Index(col)
		if !ok {
			continue
		}
		seen := make(map[string]struct{})
		vals := []string{}
		for _, rec := range t.Records {
			k, ok := key(f, cell(rec, idx))
			if !ok {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			vals = append(vals, k)
		}
		if f == FieldYear {
			sort.Slice(vals, func(i, j int) bool {
				a, _ := strconv.Atoi(vals[i])
				b, _ := strconv.Atoi(vals[j])
				return a < b
			})
		} else {
			sort.Strings(vals)
		}
		out[f] = vals
	}
	return out
}

// DefaultSelection selects every choice, which filters nothing. Fields with
// no choices are left out, since an empty set would exclude every record.
func (c Choices) DefaultSelection() Selection {
	sel := make(Selection, len(c))
	for f, vals := range c {
		if len(vals) == 0 {
			continue
		}
		sel[f] = NewSet(vals...)
	}
	return sel
}
