package table

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/hupe1980/raghouse/client"
)

// Schema maps column names to ClickHouse type expressions.
//
// A schema is supplied once, at repository construction or at restore time,
// and is immutable thereafter; there is no migration path.
type Schema map[string]string

// Validate checks every column name and type expression against the
// identifier allow-list.
func (s Schema) Validate() error {
	for name, typ := range s {
		if err := ValidateIdentifier(name); err != nil {
			return err
		}
		if err := ValidateTypeExpr(typ); err != nil {
			return err
		}
	}
	return nil
}

// columnDefs renders "name type" pairs in sorted column order, so the
// generated DDL is stable for a given schema.
func (s Schema) columnDefs() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]string, len(names))
	for i, name := range names {
		defs[i] = name + " " + s[name]
	}
	return strings.Join(defs, ", ")
}

// Manager ensures a table exists before the store is used.
type Manager struct {
	client client.Client
	table  string
	logger *slog.Logger
}

// NewManager creates a schema manager for the named table.
func NewManager(c client.Client, table string, logger *slog.Logger) (*Manager, error) {
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{client: c, table: table, logger: logger}, nil
}

// EnsureTable creates the table when it does not exist and no-ops when it
// does. Drift between the requested and the existing schema is never
// detected or reconciled.
func (m *Manager) EnsureTable(ctx context.Context, schema Schema, engine, orderBy string) error {
	if err := schema.Validate(); err != nil {
		return opErr(m.table, "init", err)
	}
	if err := ValidateTypeExpr(engine); err != nil {
		return opErr(m.table, "init", err)
	}
	if err := ValidateIdentifier(orderBy); err != nil {
		return opErr(m.table, "init", err)
	}

	exists, err := m.tableExists(ctx)
	if err != nil {
		return opErr(m.table, "init", err)
	}
	if exists {
		m.logger.InfoContext(ctx, "table already exists", "table", m.table)
		return nil
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s) ENGINE = %s ORDER BY %s",
		m.table, schema.columnDefs(), engine, orderBy)
	if err := m.client.Execute(ctx, query, nil); err != nil {
		return opErr(m.table, "init", err)
	}

	m.logger.InfoContext(ctx, "table created",
		"table", m.table,
		"engine", engine,
		"order_by", orderBy,
	)
	return nil
}

func (m *Manager) tableExists(ctx context.Context) (bool, error) {
	rec, err := m.client.FetchOne(ctx, "EXISTS TABLE "+m.table, nil)
	if err != nil {
		return false, err
	}
	for _, v := range rec {
		switch n := v.(type) {
		case uint8:
			return n == 1, nil
		case int64:
			return n == 1, nil
		case uint64:
			return n == 1, nil
		case int:
			return n == 1, nil
		}
	}
	return false, nil
}
