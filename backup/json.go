package backup

import (
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/raghouse/record"
)

// JSONCodec encodes the snapshot as one JSON array of records.
//
// JSON is the only format with full round-trip fidelity for nested values:
// vector fields survive as arrays. Numbers decode as float64.
type JSONCodec struct{}

// Encode writes all records as a JSON array.
func (JSONCodec) Encode(w io.Writer, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	return gojson.NewEncoder(w).Encode(records)
}

// Decode reads a JSON array of records.
func (JSONCodec) Decode(r io.Reader) ([]record.Record, error) {
	var records []record.Record
	if err := gojson.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// Name returns "json".
func (JSONCodec) Name() string { return "json" }
