package backup

import (
	"encoding/csv"
	"io"

	"github.com/hupe1980/raghouse/record"
)

// CSVCodec encodes the snapshot as a header row plus one line per record.
//
// Known limitation: slice-valued fields (including "vector") are stringified
// on encode and come back as strings on decode. Use JSON or Parquet when
// vectors must round-trip.
type CSVCodec struct{}

// Encode writes the column header and all value rows.
func (CSVCodec) Encode(w io.Writer, records []record.Record) error {
	header, rows, err := tabularRows(records)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads the header and yields one record per data row.
func (CSVCodec) Decode(r io.Reader) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]record.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(header, row))
	}
	return records, nil
}

// Name returns "csv".
func (CSVCodec) Name() string { return "csv" }
