// Package types defines the domain model for quote rating.
package types

import (
	"sort"
	"strconv"
)

// Record is one raw or transformed quote: a mapping from field name to a
// scalar value. Scalars are string, float64 or nil (the missing sentinel).
// Records are never mutated in place by the pipeline; stages work on clones.
type Record map[string]any

// Has reports whether the field is present with a non-nil value
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Number returns the field as a float64
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String returns the field as a string
func (r Record) String(field string) (string, bool) {
	v, ok := r[field].(string)
	return v, ok
}

// Key returns the canonical string form of a field value, used for
// category-mapping and rating-table lookups. Integral numbers render
// without a decimal point so a JSON 5 and a CSV "5" key identically.
func (r Record) Key(field string) string {
	return CanonicalKey(r[field])
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Fields returns the record's field names, sorted for determinism
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r))
	for k := range r {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// CanonicalKey renders any scalar in its canonical lookup form
func CanonicalKey(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// Table is a uniform collection of records with an ordered union of
// column names. The loader normalizes every input shape into a Table.
type Table struct {
	// Columns is the ordered union of all record field names
	Columns []string `json:"columns"`

	// Records holds the rows
	Records []Record `json:"records"`
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// Append adds a record, extending the column union and preserving first-seen
// column order. Absent fields stay absent from the record itself; readers
// treat them as the nil sentinel.
func (t *Table) Append(r Record) {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = true
	}
	for _, f := range r.Fields() {
		if !seen[f] {
			t.Columns = append(t.Columns, f)
		}
	}
	t.Records = append(t.Records, r)
}

// Extend appends every record of other
func (t *Table) Extend(other *Table) {
	for _, r := range other.Records {
		t.Append(r)
	}
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Records)
}
