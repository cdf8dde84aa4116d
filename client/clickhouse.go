package client

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/hupe1980/raghouse/record"
)

// ClickHouse implements Client over the native ClickHouse protocol.
type ClickHouse struct {
	opts *clickhouse.Options
	conn driver.Conn
}

// NewClickHouse creates a client for the given driver options. No connection
// is made until Connect is called.
func NewClickHouse(opts *clickhouse.Options) *ClickHouse {
	return &ClickHouse{opts: opts}
}

// Connect opens the connection and verifies it with a ping.
func (c *ClickHouse) Connect(ctx context.Context) error {
	conn, err := clickhouse.Open(c.opts)
	if err != nil {
		return &ConnectionError{Addr: c.addr(), cause: err}
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return &ConnectionError{Addr: c.addr(), cause: err}
	}
	c.conn = conn
	return nil
}

// Execute runs a statement that returns no rows.
func (c *ClickHouse) Execute(ctx context.Context, query string, params map[string]any) error {
	if c.conn == nil {
		return &ConnectionError{Addr: c.addr(), cause: ErrNotConnected}
	}
	return c.conn.Exec(ctx, query, namedArgs(params)...)
}

// FetchOne runs a statement and returns the first row, or nil when empty.
func (c *ClickHouse) FetchOne(ctx context.Context, query string, params map[string]any) (record.Record, error) {
	records, err := c.FetchAll(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FetchAll runs a statement and returns every row in server order.
func (c *ClickHouse) FetchAll(ctx context.Context, query string, params map[string]any) ([]record.Record, error) {
	if c.conn == nil {
		return nil, &ConnectionError{Addr: c.addr(), cause: ErrNotConnected}
	}

	rows, err := c.conn.Query(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := rows.Columns()
	types := rows.ColumnTypes()

	var out []record.Record
	for rows.Next() {
		dest := make([]any, len(types))
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		rec := make(record.Record, len(columns))
		for i, col := range columns {
			rec[col] = reflect.ValueOf(dest[i]).Elem().Interface()
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertBatch appends all rows in one prepared batch and sends it.
func (c *ClickHouse) InsertBatch(ctx context.Context, query string, rows [][]any) error {
	if c.conn == nil {
		return &ConnectionError{Addr: c.addr(), cause: ErrNotConnected}
	}

	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}

// Close releases the connection. Safe to call before Connect.
func (c *ClickHouse) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *ClickHouse) addr() string {
	if c.opts == nil || len(c.opts.Addr) == 0 {
		return ""
	}
	return strings.Join(c.opts.Addr, ",")
}

func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	args := make([]any, 0, len(params))
	for name, value := range params {
		args = append(args, clickhouse.Named(name, value))
	}
	return args
}

var _ Client = (*ClickHouse)(nil)

// String identifies the client target for error messages and logs.
func (c *ClickHouse) String() string {
	return fmt.Sprintf("clickhouse(%s)", c.addr())
}
