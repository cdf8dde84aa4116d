// Package client defines the query-execution capability the repository runs
// against, plus a ClickHouse implementation over clickhouse-go.
//
// Statements are engine-native text with @name parameter placeholders. The
// client never parses or validates statement syntax itself.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/raghouse/record"
)

// ErrNotConnected is returned when a statement is issued before Connect.
var ErrNotConnected = errors.New("client is not connected")

// ConnectionError indicates the server is unreachable or the session is
// unusable. The underlying error can be accessed via errors.Unwrap.
type ConnectionError struct {
	Addr  string
	cause error
}

func (e *ConnectionError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("connection failed: %v", e.cause)
	}
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.cause)
}

func (e *ConnectionError) Unwrap() error { return e.cause }

// Client is the query-execution capability consumed by the repository.
//
// One client is owned by exactly one repository instance; implementations are
// not required to support concurrent callers.
type Client interface {
	// Connect establishes and verifies the session.
	Connect(ctx context.Context) error

	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, query string, params map[string]any) error

	// FetchOne runs a statement and returns the first row, or nil when the
	// result set is empty.
	FetchOne(ctx context.Context, query string, params map[string]any) (record.Record, error)

	// FetchAll runs a statement and returns every row in collaborator order.
	FetchAll(ctx context.Context, query string, params map[string]any) ([]record.Record, error)

	// InsertBatch appends all rows in one batch statement. The query names
	// the target table and column order; rows hold the values per column.
	InsertBatch(ctx context.Context, query string, rows [][]any) error

	// Close releases the session.
	Close() error
}
