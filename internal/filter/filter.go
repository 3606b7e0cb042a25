// Package filter restricts a normalized asset table to user-selected values.
//
// Fields are AND-combined; values within a field are OR-combined. A field
// that is absent from the selection or whose column is unresolved imposes no
// constraint. An Engine also ignores a set covering every value it observed
// at setup. A present but empty set excludes every record.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

// Field is a filterable attribute. DATE is filtered through its derived year.
type Field string

const (
	FieldUnit      Field = "unit"
	FieldCondition Field = "condition"
	FieldCategory  Field = "category"
	FieldYear      Field = "year"
)

// Fields returns every filterable field in display order.
func Fields() []Field {
	return []Field{FieldUnit, FieldCondition, FieldCategory, FieldYear}
}

// ParseField maps a CLI/HTTP name to a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Fields() {
		if k == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter field: %q (use unit, condition, category or year)", s)
}

// Set is a set of accepted values in their string form.
type Set map[string]struct{}

// NewSet builds a Set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members sorted.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Selection maps fields to accepted values.
type Selection map[Field]Set

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for f, set := range s {
		cp := make(Set, len(set))
		for v := range set {
			cp[v] = struct{}{}
		}
		out[f] = cp
	}
	return out
}

// Binding tells the engine which column carries each field.
type Binding struct {
	Roles      asset.RoleMap
	YearColumn string
}

// Column returns the column for f, if resolved.
func (b Binding) Column(f Field) (string, bool) {
	switch f {
	case FieldUnit:
		return b.Roles.Column(asset.RoleUnit)
	case FieldCondition:
		return b.Roles.Column(asset.RoleCondition)
	case FieldCategory:
		return b.Roles.Column(asset.RoleCategory)
	case FieldYear:
		if _, ok := b.Roles.Column(asset.RoleDate); ok && b.YearColumn != "" {
			return b.YearColumn, true
		}
	}
	return "", false
}

// key is the comparison form of v for field f; years compare as integers.
func key(f Field, v asset.Value) (string, bool) {
	if v.IsMissing() {
		return "", false
	}
	if f == FieldYear {
		y, ok := v.Int()
		if !ok {
			return "", false
		}
		return strconv.Itoa(y), true
	}
	return v.String(), true
}

// canonicalYears normalizes year selections like " 2020" to "2020" and drops
// entries that are not integers.
func canonicalYears(s Set) Set {
	out := make(Set, len(s))
	for v := range s {
		if y, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			out[strconv.Itoa(y)] = struct{}{}
		}
	}
	return out
}

type constraint struct {
	field Field
	col   int
	set   Set
}

// Engine applies selections against the value universe observed when the
// filter was set up, so a selection's meaning does not depend on which table
// it is applied to.
type Engine struct {
	binding  Binding
	universe Choices
}

// NewEngine records the choices of source as the universe.
func NewEngine(source *asset.Table, b Binding) *Engine {
	return &Engine{binding: b, universe: Options(source, b)}
}

// Choices returns the distinct values observed at setup.
func (e *Engine) Choices() Choices {
	out := make(Choices, len(e.universe))
	for f, vals := range e.universe {
		out[f] = append([]string(nil), vals...)
	}
	return out
}

// DefaultSelection selects every observed value.
func (e *Engine) DefaultSelection() Selection { return e.universe.DefaultSelection() }

// Apply returns the records of t that satisfy sel. t is never modified; the
// returned table shares record storage with t.
func (e *Engine) Apply(t *asset.Table, sel Selection) *asset.Table {
	if t == nil {
		return asset.NewTable(nil, nil)
	}
	var cons []constraint
	for _, f := range Fields() {
		set, ok := sel[f]
		if !ok {
			continue
		}
		col, ok := e.binding.Column(f)
		if !ok {
			continue
		}
		idx, ok := t.Index(col)
		if !ok {
			continue
		}
		if f == FieldYear {
			set = canonicalYears(set)
		}
		if e.universe != nil && len(set) > 0 && covers(set, e.universe[f]) {
			continue
		}
		cons = append(cons, constraint{field: f, col: idx, set: set})
	}
	if len(cons) == 0 {
		return t.WithRecords(t.Records)
	}

	kept := make([]asset.Record, 0, len(t.Records))
	for _, rec := range t.Records {
		pass := true
		for _, c := range cons {
			k, ok := key(c.field, cell(rec, c.col))
			if !ok || !c.set.Has(k) {
				pass = false
				break
			}
		}
		if pass {
			kept = append(kept, rec)
		}
	}
	return t.WithRecords(kept)
}

// Apply filters t without a recorded universe: every field present in sel
// constrains, even a set listing all values of t, so records with a missing
// value for a selected field are dropped. Use an Engine to treat a full
// selection as no filter.
func Apply(t *asset.Table, b Binding, sel Selection) *asset.Table {
	return (&Engine{binding: b}).Apply(t, sel)
}

func covers(set Set, universe []string) bool {
	for _, v := range universe {
		if !set.Has(v) {
			return false
		}
	}
	return true
}

func cell(rec asset.Record, i int) asset.Value {
	if i < len(rec) {
		return rec[i]
	}
	return asset.Missing()
}
