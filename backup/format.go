package backup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the closed set of backup file encodings. Dispatch over a Format
// is an exhaustive switch, so adding or rejecting a format is checked at
// compile time instead of falling through a handler map.
type Format int

const (
	// FormatJSON encodes records as one JSON array, with full fidelity.
	FormatJSON Format = iota + 1
	// FormatCSV encodes records as a column grid; slice values stringify.
	FormatCSV
	// FormatParquet encodes records under an inferred Parquet schema.
	FormatParquet
	// FormatExcel encodes records as one xlsx sheet; slice values stringify.
	FormatExcel
	// FormatProtobyte is declared but not implemented; both encode and
	// decode fail.
	FormatProtobyte
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	case FormatExcel:
		return "excel"
	case FormatProtobyte:
		return "protobyte"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Compression is the optional stream compression applied over a format.
type Compression int

const (
	// CompressionNone writes the codec output as-is.
	CompressionNone Compression = iota
	// CompressionZstd wraps the stream with zstd.
	CompressionZstd
	// CompressionLZ4 wraps the stream with lz4.
	CompressionLZ4
)

// ErrNotImplemented is returned for the declared-but-unimplemented
// protobyte format.
var ErrNotImplemented = errors.New("protobyte serialization is not implemented")

// UnsupportedFormatError indicates a file extension that maps to no codec.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported backup format %q", e.Ext)
}

// SniffPath selects the format, and optional compression, from the path's
// extension. A trailing ".zst" or ".lz4" suffix selects compression of the
// underlying format, e.g. "backup.json.zst".
func SniffPath(path string) (Format, Compression, error) {
	compression := CompressionNone

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zst":
		compression = CompressionZstd
		path = strings.TrimSuffix(path, filepath.Ext(path))
		ext = strings.ToLower(filepath.Ext(path))
	case ".lz4":
		compression = CompressionLZ4
		path = strings.TrimSuffix(path, filepath.Ext(path))
		ext = strings.ToLower(filepath.Ext(path))
	}

	switch ext {
	case ".json":
		return FormatJSON, compression, nil
	case ".csv":
		return FormatCSV, compression, nil
	case ".parquet":
		return FormatParquet, compression, nil
	case ".xlsx":
		return FormatExcel, compression, nil
	case ".protobyte":
		return FormatProtobyte, compression, nil
	default:
		return 0, CompressionNone, &UnsupportedFormatError{Ext: ext}
	}
}
