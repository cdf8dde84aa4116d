package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/raghouse/backup/blobstore"
	"github.com/hupe1980/raghouse/record"
	"github.com/hupe1980/raghouse/table"
)

// Manager coordinates full-table backup and restore.
//
// Backup materializes the whole table in memory, encodes it in the format
// selected by the destination's extension, and writes it through the blob
// store. Restore is the reverse, with one sharp edge inherited from the
// append-oriented engine: the target table is truncated before the decoded
// records are inserted, and the two steps are not atomic. A failure between
// them leaves the table empty and requires a manual re-restore from the same
// backup file.
type Manager struct {
	store  *table.Store
	schema *table.Manager
	blobs  blobstore.Store
	logger *slog.Logger
}

// NewManager creates a coordinator over the given store and schema manager.
// A nil blobs defaults to the local filesystem.
func NewManager(store *table.Store, schema *table.Manager, blobs blobstore.Store, logger *slog.Logger) *Manager {
	if blobs == nil {
		blobs = blobstore.NewLocal("")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{store: store, schema: schema, blobs: blobs, logger: logger}
}

// Backup writes a snapshot of the full table to path. An unrecognized
// extension fails before any row is fetched or any byte is written.
func (m *Manager) Backup(ctx context.Context, path string) error {
	format, compression, err := SniffPath(path)
	if err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}
	codec, err := codecFor(format)
	if err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}

	records, err := m.store.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}

	var buf bytes.Buffer
	w, err := compressWriter(&buf, compression)
	if err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}
	if err := codec.Encode(w, records); err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}

	if err := m.blobs.Put(ctx, path, &buf); err != nil {
		return fmt.Errorf("backup to %q: %w", path, err)
	}

	m.logger.InfoContext(ctx, "backup created",
		"path", path,
		"format", codec.Name(),
		"records", len(records),
	)
	return nil
}

// Restore replaces the table contents with the snapshot at path. When schema
// is non-nil the table is first ensured to exist (create-if-absent, never
// drop-if-exists) with the given engine and ordering key.
func (m *Manager) Restore(ctx context.Context, path string, schema table.Schema, engine, orderBy string) error {
	format, compression, err := SniffPath(path)
	if err != nil {
		return fmt.Errorf("restore from %q: %w", path, err)
	}
	codec, err := codecFor(format)
	if err != nil {
		return fmt.Errorf("restore from %q: %w", path, err)
	}

	if schema != nil {
		if err := m.schema.EnsureTable(ctx, schema, engine, orderBy); err != nil {
			return fmt.Errorf("restore from %q: %w", path, err)
		}
	}

	rc, err := m.blobs.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("restore from %q: %w", path, err)
	}
	defer rc.Close()

	cr, err := compressReader(rc, compression)
	if err != nil {
		return fmt.Errorf("restore from %q: %w", path, err)
	}
	defer cr.Close()

	records, err := codec.Decode(cr)
	if err != nil {
		return fmt.Errorf("restore from %q: %w", path, err)
	}

	normalizeVectors(records)

	// Point of no return: the table is emptied before the insert below.
	if err := m.store.Reset(ctx); err != nil {
		return fmt.Errorf("restore from %q: %w", path, err)
	}
	if err := m.store.Insert(ctx, records); err != nil {
		return fmt.Errorf("restore from %q: table truncated but insert failed, re-restore required: %w", path, err)
	}

	m.logger.InfoContext(ctx, "restore completed",
		"path", path,
		"format", codec.Name(),
		"records", len(records),
	)
	return nil
}

// normalizeVectors rewrites decoded []any slice values as []float64 where
// every element is numeric. JSON decoding in particular yields []any for
// array columns, which the native batch append rejects for Array(Float64).
func normalizeVectors(records []record.Record) {
	for _, rec := range records {
		for col, v := range rec {
			if _, ok := v.([]any); !ok {
				continue
			}
			if vec, ok := record.AsFloat64Slice(v); ok {
				rec[col] = vec
			}
		}
	}
}
