package backup

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hupe1980/raghouse/record"
)

const excelSheet = "Sheet1"

// ExcelCodec encodes the snapshot as one xlsx worksheet: a header row plus
// one row per record.
//
// Same limitation as CSV: slice-valued fields are stringified and do not
// round-trip as arrays.
type ExcelCodec struct{}

// Encode writes header and value rows to the default sheet.
func (ExcelCodec) Encode(w io.Writer, records []record.Record) error {
	header, rows, err := tabularRows(records)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := setSheetRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setSheetRow(f, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// Decode reads the first sheet back into records.
func (ExcelCodec) Decode(r io.Reader) ([]record.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
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

// Name returns "excel".
func (ExcelCodec) Name() string { return "excel" }

func setSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(excelSheet, cell, &cells)
}
