package backup

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/hupe1980/raghouse/record"
)

// ParquetCodec encodes the snapshot under a schema inferred from the
// records: strings, doubles, int64s, booleans, and repeated doubles for
// vector-valued fields. Unlike CSV and Excel, vectors round-trip as arrays.
type ParquetCodec struct{}

// Encode infers a schema from the records and writes one row group. An
// empty snapshot has no columns to build a schema from and encodes to an
// empty stream.
func (ParquetCodec) Encode(w io.Writer, records []record.Record) error {
	cols := record.Columns(records)
	if len(cols) == 0 {
		return nil
	}

	group := parquet.Group{}
	kinds := make(map[string]parquetKind, len(cols))
	for _, col := range cols {
		kind := inferKind(records, col)
		kinds[col] = kind
		group[col] = kind.node()
	}
	schema := parquet.NewSchema("raghouse", group)

	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		row := make(map[string]any, len(rec))
		for col, v := range rec {
			coerced, err := kinds[col].coerce(v)
			if err != nil {
				return fmt.Errorf("column %q: %w", col, err)
			}
			if coerced != nil {
				row[col] = coerced
			}
		}
		rows[i] = row
	}

	writer := parquet.NewGenericWriter[map[string]any](w, schema)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return err
		}
	}
	return writer.Close()
}

// Decode reads all rows back into records. The schema comes from the file
// footer; map rows carry no schema of their own.
func (ParquetCodec) Decode(r io.Reader) ([]record.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	reader := parquet.NewGenericReader[map[string]any](bytes.NewReader(data), file.Schema())
	defer reader.Close()

	var records []record.Record
	for {
		rows := make([]map[string]any, 64)
		for i := range rows {
			rows[i] = make(map[string]any)
		}
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			rec := make(record.Record, len(row))
			for col, v := range row {
				if nv := normalizeParquetValue(v); nv != nil {
					rec[col] = nv
				}
			}
			records = append(records, rec)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Name returns "parquet".
func (ParquetCodec) Name() string { return "parquet" }

type parquetKind int

const (
	kindString parquetKind = iota
	kindDouble
	kindInt64
	kindBool
	kindDoubleList
)

// inferKind picks a column type from the first non-nil value. Mixed-type
// columns fall back to string via formatCell.
func inferKind(records []record.Record, col string) parquetKind {
	for _, rec := range records {
		switch rec[col].(type) {
		case nil:
			continue
		case float64, float32:
			return kindDouble
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return kindInt64
		case bool:
			return kindBool
		case []float64, []float32:
			return kindDoubleList
		default:
			return kindString
		}
	}
	return kindString
}

func (k parquetKind) node() parquet.Node {
	switch k {
	case kindDouble:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case kindInt64:
		return parquet.Optional(parquet.Int(64))
	case kindBool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	case kindDoubleList:
		return parquet.Repeated(parquet.Leaf(parquet.DoubleType))
	default:
		return parquet.Optional(parquet.String())
	}
}

func (k parquetKind) coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch k {
	case kindDouble:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		}
	case kindInt64:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case int32:
			return int64(n), nil
		case uint64:
			return int64(n), nil
		}
	case kindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case kindDoubleList:
		if vec, ok := record.AsFloat64Slice(v); ok {
			return vec, nil
		}
	default:
		return formatCell(v)
	}
	// Value disagrees with the inferred column type; stringify would change
	// the column type mid-file, so reject instead.
	return nil, fmt.Errorf("value %T does not match inferred column type", v)
}

func normalizeParquetValue(v any) any {
	switch vec := v.(type) {
	case []float64:
		if len(vec) == 0 {
			return nil
		}
		return vec
	case []any:
		if len(vec) == 0 {
			return nil
		}
		if out, ok := record.AsFloat64Slice(vec); ok {
			return out
		}
		return vec
	case string:
		if vec == "" {
			return nil
		}
		return v
	default:
		return v
	}
}
