package table

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/hupe1980/raghouse/client"
	"github.com/hupe1980/raghouse/record"
)

// Store issues parameterized CRUD statements against one fixed table.
//
// No operation is retried internally, and none performs per-record
// validation beyond what the caller already did.
type Store struct {
	client client.Client
	table  string
	logger *slog.Logger
}

// NewStore creates a record store for the named table.
func NewStore(c client.Client, table string, logger *slog.Logger) (*Store, error) {
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{client: c, table: table, logger: logger}, nil
}

// Table returns the table name the store operates on.
func (s *Store) Table() string { return s.table }

// Insert appends all records in one batch statement. The column set is the
// sorted union of keys across the batch; records lacking a column insert its
// default value. Partial failure is all-or-nothing at the statement level.
func (s *Store) Insert(ctx context.Context, records []record.Record) error {
	if len(records) == 0 {
		return nil
	}

	cols := record.Columns(records)
	if err := validateIdentifiers(cols); err != nil {
		return opErr(s.table, "insert", err)
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(cols))
		for j, col := range cols {
			row[j] = rec[col]
		}
		rows[i] = row
	}

	query := fmt.Sprintf("INSERT INTO %s (%s)", s.table, strings.Join(cols, ", "))
	if err := s.client.InsertBatch(ctx, query, rows); err != nil {
		return opErr(s.table, "insert", err)
	}

	s.logger.InfoContext(ctx, "insert completed", "table", s.table, "count", len(records))
	return nil
}

// Update mutates rows matching the conjunction of all conditions. ClickHouse
// applies ALTER TABLE ... UPDATE as an asynchronous mutation: the statement
// is accepted immediately and applied eventually, so callers must not assume
// the change is visible when Update returns.
func (s *Store) Update(ctx context.Context, values, conditions map[string]any) error {
	setClause, params, err := clause(values, "set_", ", ")
	if err != nil {
		return opErr(s.table, "update", err)
	}
	condClause, condParams, err := clause(conditions, "cond_", " AND ")
	if err != nil {
		return opErr(s.table, "update", err)
	}
	for k, v := range condParams {
		params[k] = v
	}

	query := fmt.Sprintf("ALTER TABLE %s UPDATE %s WHERE %s", s.table, setClause, condClause)
	if err := s.client.Execute(ctx, query, params); err != nil {
		return opErr(s.table, "update", err)
	}

	s.logger.InfoContext(ctx, "update requested", "table", s.table)
	return nil
}

// Delete removes rows matching the conjunction of all conditions. There is
// no tombstone concept; deletion is requested at the engine level.
func (s *Store) Delete(ctx context.Context, conditions map[string]any) error {
	condClause, params, err := clause(conditions, "cond_", " AND ")
	if err != nil {
		return opErr(s.table, "delete", err)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", s.table, condClause)
	if err := s.client.Execute(ctx, query, params); err != nil {
		return opErr(s.table, "delete", err)
	}

	s.logger.InfoContext(ctx, "delete requested", "table", s.table)
	return nil
}

// Search returns rows matching the optional raw predicate, in whatever
// order the server produces. Data values in the predicate must be passed via
// params, never interpolated. A positive limit caps the result; zero means
// all rows.
func (s *Store) Search(ctx context.Context, predicate string, params map[string]any, limit int) ([]record.Record, error) {
	query := "SELECT * FROM " + s.table
	if predicate != "" {
		query += " WHERE " + predicate
	}
	if limit > 0 {
		query += " LIMIT @limit"
		withLimit := make(map[string]any, len(params)+1)
		for k, v := range params {
			withLimit[k] = v
		}
		withLimit["limit"] = limit
		params = withLimit
	}

	records, err := s.client.FetchAll(ctx, query, params)
	if err != nil {
		return nil, opErr(s.table, "search", err)
	}
	return records, nil
}

// FetchAll returns every row of the table.
func (s *Store) FetchAll(ctx context.Context) ([]record.Record, error) {
	records, err := s.Search(ctx, "", nil, 0)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Reset irreversibly empties the table.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.Execute(ctx, "TRUNCATE TABLE "+s.table, nil); err != nil {
		return opErr(s.table, "truncate", err)
	}
	s.logger.InfoContext(ctx, "table truncated", "table", s.table)
	return nil
}

// clause renders "key = @prefixkey" pairs joined by sep, with keys sorted for
// stable statement text, and returns the matching parameter map.
func clause(kv map[string]any, prefix, sep string) (string, map[string]any, error) {
	if len(kv) == 0 {
		return "", nil, fmt.Errorf("empty clause")
	}

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := validateIdentifiers(keys); err != nil {
		return "", nil, err
	}

	parts := make([]string, len(keys))
	params := make(map[string]any, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = @%s%s", k, prefix, k)
		params[prefix+k] = kv[k]
	}
	return strings.Join(parts, sep), params, nil
}
