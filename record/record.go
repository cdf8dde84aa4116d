// Package record defines the row model shared by every raghouse component.
//
// A Record is a loose mapping from column name to value. The only structural
// requirement enforced by the library is the presence of a unique "id" field
// at insert/update time; everything else is the caller's table schema.
package record

import (
	"errors"
	"fmt"
	"sort"
)

// IDColumn is the sole identity key of a record.
const IDColumn = "id"

// VectorColumn holds the embedding of a record, when present.
const VectorColumn = "vector"

// ErrMissingID is returned when a record lacks the "id" field.
var ErrMissingID = errors.New("record must contain an \"id\" field")

// Record represents one table row: column name to scalar or slice value.
type Record map[string]any

// Validate checks the structural invariants of the record.
func (r Record) Validate() error {
	if _, ok := r[IDColumn]; !ok {
		return ErrMissingID
	}
	return nil
}

// ID returns the record identifier, if present.
func (r Record) ID() (any, bool) {
	id, ok := r[IDColumn]
	return id, ok
}

// Text returns the named field as a string. It fails when the field is
// absent or not a string, since it is the input to vectorization.
func (r Record) Text(column string) (string, error) {
	v, ok := r[column]
	if !ok {
		return "", fmt.Errorf("record has no text column %q", column)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("text column %q is %T, not string", column, v)
	}
	return s, nil
}

// Vector returns the embedding of the record as []float64.
// It tolerates []float32 and []any payloads, which show up after decoding
// backups or scanning driver rows.
func (r Record) Vector() ([]float64, bool) {
	v, ok := r[VectorColumn]
	if !ok {
		return nil, false
	}
	return AsFloat64Slice(v)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Columns returns the sorted union of column names across records.
// Sorting keeps generated statement text stable for a given batch.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// AsFloat64Slice normalizes the supported vector encodings to []float64.
func AsFloat64Slice(v any) ([]float64, bool) {
	switch vec := v.(type) {
	case []float64:
		return vec, true
	case []float32:
		out := make([]float64, len(vec))
		for i, f := range vec {
			out[i] = float64(f)
		}
		return out, true
	case []any:
		out := make([]float64, len(vec))
		for i, e := range vec {
			f, ok := e.(float64)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
