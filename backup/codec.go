// Package backup serializes the full contents of a table to a file in one of
// several formats and restores it back.
//
// Snapshots are self-contained and materialized in memory before encoding,
// which bounds this design to tables that fit in memory. There is no
// incremental or streaming mode.
package backup

import (
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/raghouse/record"
)

// Codec encodes a snapshot of records to a stream and back.
type Codec interface {
	// Encode writes all records to w.
	Encode(w io.Writer, records []record.Record) error

	// Decode reads all records from r.
	Decode(r io.Reader) ([]record.Record, error)

	// Name returns the stable format name.
	Name() string
}

// codecFor maps a format to its codec. The switch is exhaustive over the
// Format set; protobyte is declared but rejected in both directions.
func codecFor(f Format) (Codec, error) {
	switch f {
	case FormatJSON:
		return JSONCodec{}, nil
	case FormatCSV:
		return CSVCodec{}, nil
	case FormatParquet:
		return ParquetCodec{}, nil
	case FormatExcel:
		return ExcelCodec{}, nil
	case FormatProtobyte:
		return nil, ErrNotImplemented
	default:
		return nil, &UnsupportedFormatError{Ext: f.String()}
	}
}

// formatCell renders a value for the tabular codecs (CSV, Excel). Slice and
// map values are stringified as JSON; this is where those codecs lose type
// fidelity.
func formatCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	default:
		b, err := gojson.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("cannot encode %T cell: %w", v, err)
		}
		return string(b), nil
	}
}

// parseCell reverses formatCell as far as a flat string grid allows: numbers
// come back as float64, everything else stays a string. Stringified slices
// are NOT re-parsed; the fidelity loss round-trips visibly.
func parseCell(s string) any {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// tabularRows renders records into a header row plus one value row per
// record, with columns in sorted union order.
func tabularRows(records []record.Record) (header []string, rows [][]string, err error) {
	header = record.Columns(records)
	rows = make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(header))
		for j, col := range header {
			row[j], err = formatCell(rec[col])
			if err != nil {
				return nil, nil, err
			}
		}
		rows[i] = row
	}
	return header, rows, nil
}

// recordFromRow maps one value row back to a record. Cells beyond the row's
// length and empty cells decode as absent.
func recordFromRow(header []string, row []string) record.Record {
	rec := make(record.Record, len(header))
	for j, col := range header {
		if j >= len(row) {
			continue
		}
		if v := parseCell(row[j]); v != nil {
			rec[col] = v
		}
	}
	return rec
}
