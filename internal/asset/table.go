package asset

// RawTable is a sheet read without any header assumption.
type RawTable [][]string

// Record is one row, positionally aligned with Table.Columns.
type Record []Value

// Blank reports whether every value of the record is missing.
func (r Record) Blank() bool {
	for _, v := range r {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

// Table is an ordered set of uniquely named columns and their records.
// Tables handed out by the pipeline are treated as immutable; derived tables
// share records with their source and never write to them.
type Table struct {
	Columns []string
	Records []Record

	index map[string]int
}

// NewTable builds a table and its column index.
func NewTable(columns []string, records []Record) *Table {
	t := &Table{Columns: columns, Records: records}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Index returns the position of column name.
func (t *Table) Index(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	if t.index == nil {
		for i, c := range t.Columns {
			if c == name {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// Get returns the value of column name in rec, or missing.
func (t *Table) Get(rec Record, name string) Value {
	i, ok := t.Index(name)
	if !ok || i >= len(rec) {
		return Missing()
	}
	return rec[i]
}

// Column returns every value of column name in record order.
func (t *Table) Column(name string) []Value {
	i, ok := t.Index(name)
	if !ok {
		return nil
	}
	out := make([]Value, len(t.Records))
	for r, rec := range t.Records {
		if i < len(rec) {
			out[r] = rec[i]
		}
	}
	return out
}

// WithRecords returns a table with the same columns and the given records.
func (t *Table) WithRecords(records []Record) *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return NewTable(cols, records)
}

// Clone deep-copies columns and records, for snapshots handed to writers.
func (t *Table) Clone() *Table {
	recs := make([]Record, len(t.Records))
	for i, r := range t.Records {
		cp := make(Record, len(r))
		copy(cp, r)
		recs[i] = cp
	}
	return t.WithRecords(recs)
}
