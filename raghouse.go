package raghouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/raghouse/backup"
	"github.com/hupe1980/raghouse/client"
	"github.com/hupe1980/raghouse/record"
	"github.com/hupe1980/raghouse/search"
	"github.com/hupe1980/raghouse/table"
	"github.com/hupe1980/raghouse/vectorizer"
)

// Repository composes the schema manager, record store, vectorizer registry,
// similarity search engine, and backup coordinator behind one contract. It
// holds one instance of each component and forwards calls; there is no
// inheritance-style trait stacking.
type Repository struct {
	client     client.Client
	tableName  string
	textColumn string
	logger     *Logger

	schema   *table.Manager
	store    *table.Store
	registry *vectorizer.Registry
	searcher *search.Engine
	backup   *backup.Manager
}

// New creates a repository over one table. When WithSchema is given, the
// table is ensured to exist (create-if-absent) before New returns; otherwise
// the table must already exist.
func New(ctx context.Context, c client.Client, tableName string, opts ...Option) (*Repository, error) {
	o := options{
		engine:     DefaultEngine,
		orderBy:    DefaultOrderBy,
		textColumn: DefaultTextColumn,
		logger:     NewLogger(nil),
	}
	for _, opt := range opts {
		opt(&o)
	}

	slogger := o.logger.Logger

	schema, err := table.NewManager(c, tableName, slogger)
	if err != nil {
		return nil, err
	}
	store, err := table.NewStore(c, tableName, slogger)
	if err != nil {
		return nil, err
	}
	searcher, err := search.NewEngine(c, tableName, slogger)
	if err != nil {
		return nil, err
	}

	r := &Repository{
		client:     c,
		tableName:  tableName,
		textColumn: o.textColumn,
		logger:     o.logger,
		schema:     schema,
		store:      store,
		registry:   vectorizer.NewRegistry(),
		searcher:   searcher,
		backup:     backup.NewManager(store, schema, o.blobs, slogger),
	}

	if o.schema != nil {
		if err := r.schema.EnsureTable(ctx, o.schema, o.engine, o.orderBy); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Table returns the table name the repository operates on.
func (r *Repository) Table() string { return r.tableName }

// Add inserts one record. With a vectorizer selected (by name or instance),
// the text column is embedded into the record's "vector" field first. The
// record must carry an "id"; validation failures issue no statement.
func (r *Repository) Add(ctx context.Context, rec record.Record, opts ...VectorizeOption) error {
	sel, err := r.selectVectorizer(opts, false)
	if err != nil {
		return err
	}
	if sel.v != nil {
		vec, err := r.embed(ctx, rec, sel.v)
		if err != nil {
			return err
		}
		rec[record.VectorColumn] = vec
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := r.store.Insert(ctx, []record.Record{rec}); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "record added", "table", r.tableName, "id", rec[record.IDColumn])
	return nil
}

// AddBulk inserts all records in one batch. Exactly one vectorizer must be
// selected: a registered name embeds records one by one, an instance embeds
// them in a single order-preserving bulk call. Ambiguous selection (both or
// neither) fails before any insert is attempted.
func (r *Repository) AddBulk(ctx context.Context, records []record.Record, opts ...VectorizeOption) error {
	sel, err := r.selectVectorizer(opts, true)
	if err != nil {
		return err
	}

	if sel.byName {
		for _, rec := range records {
			vec, err := r.embed(ctx, rec, sel.v)
			if err != nil {
				return err
			}
			rec[record.VectorColumn] = vec
		}
	} else {
		texts := make([]string, len(records))
		for i, rec := range records {
			text, err := rec.Text(r.textColumn)
			if err != nil {
				return err
			}
			texts[i] = text
		}
		vectors, err := sel.v.BulkVectorize(ctx, texts)
		if err != nil {
			return fmt.Errorf("bulk vectorize failed: %w", err)
		}
		if len(vectors) != len(records) {
			return fmt.Errorf("bulk vectorize returned %d vectors for %d records", len(vectors), len(records))
		}
		for i, rec := range records {
			rec[record.VectorColumn] = vectors[i]
		}
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	if err := r.store.Insert(ctx, records); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "bulk records added", "table", r.tableName, "count", len(records))
	return nil
}

// Update mutates the record with the given id. Like Add, an optional
// vectorizer re-embeds the text column first. ClickHouse applies the update
// as an asynchronous mutation, so the change may not be visible immediately
// after Update returns.
func (r *Repository) Update(ctx context.Context, id any, rec record.Record, opts ...VectorizeOption) error {
	sel, err := r.selectVectorizer(opts, false)
	if err != nil {
		return err
	}
	if sel.v != nil {
		vec, err := r.embed(ctx, rec, sel.v)
		if err != nil {
			return err
		}
		rec[record.VectorColumn] = vec
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := r.store.Update(ctx, rec, map[string]any{record.IDColumn: id}); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "record updated", "table", r.tableName, "id", id)
	return nil
}

// Delete removes the record with the given id.
func (r *Repository) Delete(ctx context.Context, id any) error {
	if err := r.store.Delete(ctx, map[string]any{record.IDColumn: id}); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "record deleted", "table", r.tableName, "id", id)
	return nil
}

// Get returns the record with the given id, or an error satisfying
// errors.Is(err, ErrNotFound).
func (r *Repository) Get(ctx context.Context, id any) (record.Record, error) {
	records, err := r.store.Search(ctx, "id = @id", map[string]any{"id": id}, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: id %v in table %q", ErrNotFound, id, r.tableName)
	}
	return records[0], nil
}

// Set upserts: it updates when a record with the same id exists, and adds
// otherwise. The record must carry an "id".
func (r *Repository) Set(ctx context.Context, rec record.Record, opts ...VectorizeOption) error {
	id, ok := rec.ID()
	if !ok {
		return ErrMissingID
	}
	if _, err := r.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return r.Add(ctx, rec, opts...)
		}
		return err
	}
	return r.Update(ctx, id, rec, opts...)
}

// Search returns rows matching the optional raw predicate, in server order.
// Data values in the predicate must be passed via params. WithLimit caps the
// result size.
func (r *Repository) Search(ctx context.Context, predicate string, params map[string]any, opts ...SearchOption) ([]record.Record, error) {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return r.store.Search(ctx, predicate, params, o.limit)
}

// SimilaritySearch returns at most topK rows ordered by descending cosine
// similarity to vector, projecting the given columns plus the computed
// "cosine_similarity" column.
func (r *Repository) SimilaritySearch(ctx context.Context, vector []float64, columns []string, topK int) ([]record.Record, error) {
	return r.searcher.Search(ctx, vector, columns, topK)
}

// RegisterVectorizer adds v under name, overwriting any prior registration.
func (r *Repository) RegisterVectorizer(name string, v vectorizer.Vectorizer) {
	r.registry.Register(name, v)
}

// Vectorizer returns the vectorizer registered under name.
func (r *Repository) Vectorizer(name string) (vectorizer.Vectorizer, bool) {
	return r.registry.Get(name)
}

// UnregisterVectorizer removes the registration under name, if any.
func (r *Repository) UnregisterVectorizer(name string) {
	r.registry.Unregister(name)
}

// Vectorize embeds the record's text column with the named vectorizer.
func (r *Repository) Vectorize(ctx context.Context, rec record.Record, name string) ([]float64, error) {
	v, err := r.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.embed(ctx, rec, v)
}

// BulkVectorize embeds the text column of every record with the named
// vectorizer, in one order-preserving bulk call.
func (r *Repository) BulkVectorize(ctx context.Context, records []record.Record, name string) ([][]float64, error) {
	v, err := r.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(records))
	for i, rec := range records {
		text, err := rec.Text(r.textColumn)
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}
	return v.BulkVectorize(ctx, texts)
}

// Reset irreversibly empties the table. Not recoverable without a prior
// backup.
func (r *Repository) Reset(ctx context.Context) error {
	return r.store.Reset(ctx)
}

// Backup writes a snapshot of the full table to path; the format follows the
// path's extension.
func (r *Repository) Backup(ctx context.Context, path string) error {
	return r.backup.Backup(ctx, path)
}

// Restore replaces the table contents with the snapshot at path. The table
// is truncated before the insert; the two steps are not atomic.
func (r *Repository) Restore(ctx context.Context, path string, opts ...RestoreOption) error {
	o := restoreOptions{engine: DefaultEngine, orderBy: DefaultOrderBy}
	for _, opt := range opts {
		opt(&o)
	}
	return r.backup.Restore(ctx, path, o.schema, o.engine, o.orderBy)
}

// Close releases the underlying client session.
func (r *Repository) Close() error {
	return r.client.Close()
}

type selectedVectorizer struct {
	v      vectorizer.Vectorizer
	byName bool
}

// selectVectorizer resolves the vectorizer selection. With requireOne set
// (bulk operations), exactly one of name/instance must be given; otherwise
// at most one.
func (r *Repository) selectVectorizer(opts []VectorizeOption, requireOne bool) (selectedVectorizer, error) {
	var o vectorizeOptions
	for _, opt := range opts {
		opt(&o)
	}

	hasName := o.name != ""
	hasInstance := o.instance != nil

	if hasName && hasInstance {
		return selectedVectorizer{}, ErrAmbiguousVectorizer
	}
	if requireOne && !hasName && !hasInstance {
		return selectedVectorizer{}, ErrAmbiguousVectorizer
	}

	switch {
	case hasName:
		v, err := r.registry.Resolve(o.name)
		if err != nil {
			return selectedVectorizer{}, err
		}
		return selectedVectorizer{v: v, byName: true}, nil
	case hasInstance:
		return selectedVectorizer{v: o.instance}, nil
	default:
		return selectedVectorizer{}, nil
	}
}

func (r *Repository) embed(ctx context.Context, rec record.Record, v vectorizer.Vectorizer) ([]float64, error) {
	text, err := rec.Text(r.textColumn)
	if err != nil {
		return nil, err
	}
	vec, err := v.Vectorize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize failed: %w", err)
	}
	return vec, nil
}
