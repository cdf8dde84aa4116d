// Package table manages the lifecycle of and CRUD access to one ClickHouse
// table.
//
// Manager guarantees a table matching a caller-given schema exists before any
// other operation runs; Store translates typed operations into parameterized
// statements against the fixed table name. Neither retries a failed
// statement, and neither detects drift between a requested and an existing
// schema.
package table

import (
	"fmt"
)

// OpError wraps an execution failure with the table and the attempted
// action. The underlying error can be accessed via errors.Unwrap.
type OpError struct {
	Table string
	Op    string
	cause error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed on table %q: %v", e.Op, e.Table, e.cause)
}

func (e *OpError) Unwrap() error { return e.cause }

func opErr(table, op string, cause error) error {
	return &OpError{Table: table, Op: op, cause: cause}
}
