package raghouse

import (
	"github.com/hupe1980/raghouse/backup/blobstore"
	"github.com/hupe1980/raghouse/table"
	"github.com/hupe1980/raghouse/vectorizer"
)

const (
	// DefaultEngine is the table engine used when none is configured.
	DefaultEngine = "MergeTree"

	// DefaultOrderBy is the ordering-key column used when none is
	// configured.
	DefaultOrderBy = "id"

	// DefaultTextColumn is the record field fed to vectorizers.
	DefaultTextColumn = "title"
)

type options struct {
	schema     table.Schema
	engine     string
	orderBy    string
	textColumn string
	logger     *Logger
	blobs      blobstore.Store
}

// Option configures Repository construction.
type Option func(*options)

// WithSchema supplies the table schema. When set, New ensures the table
// exists (create-if-absent) with the given engine and ordering key before
// returning.
func WithSchema(schema table.Schema, engine, orderBy string) Option {
	return func(o *options) {
		o.schema = schema
		if engine != "" {
			o.engine = engine
		}
		if orderBy != "" {
			o.orderBy = orderBy
		}
	}
}

// WithLogger configures the logger. If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithTextColumn configures which record field is fed to vectorizers.
// Default: "title".
func WithTextColumn(column string) Option {
	return func(o *options) {
		if column != "" {
			o.textColumn = column
		}
	}
}

// WithBlobStore configures where backups are written and read. Default: the
// local filesystem, with backup paths used as given.
func WithBlobStore(store blobstore.Store) Option {
	return func(o *options) {
		o.blobs = store
	}
}

type vectorizeOptions struct {
	name     string
	instance vectorizer.Vectorizer
}

// VectorizeOption selects how Add, AddBulk, Update, and Set vectorize the
// text column of the records they touch.
type VectorizeOption func(*vectorizeOptions)

// WithVectorizerName selects a registered vectorizer by name.
func WithVectorizerName(name string) VectorizeOption {
	return func(o *vectorizeOptions) {
		o.name = name
	}
}

// WithVectorizer supplies a vectorizer instance directly, bypassing the
// registry.
func WithVectorizer(v vectorizer.Vectorizer) VectorizeOption {
	return func(o *vectorizeOptions) {
		o.instance = v
	}
}

type searchOptions struct {
	limit int
}

// SearchOption configures Search.
type SearchOption func(*searchOptions)

// WithLimit caps the number of rows Search returns. Zero or negative means
// all rows.
func WithLimit(n int) SearchOption {
	return func(o *searchOptions) {
		o.limit = n
	}
}

type restoreOptions struct {
	schema  table.Schema
	engine  string
	orderBy string
}

// RestoreOption configures Restore.
type RestoreOption func(*restoreOptions)

// WithRestoreSchema re-initializes the table (create-if-absent, never
// drop-if-exists) before the snapshot is loaded.
func WithRestoreSchema(schema table.Schema, engine, orderBy string) RestoreOption {
	return func(o *restoreOptions) {
		o.schema = schema
		if engine != "" {
			o.engine = engine
		}
		if orderBy != "" {
			o.orderBy = orderBy
		}
	}
}
