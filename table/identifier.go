package table

import (
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier indicates a table, column, engine, or type token that
// failed allow-list validation. Identifiers are interpolated into statement
// text, so anything outside the allow-list is rejected before a statement is
// built.
type ErrInvalidIdentifier struct {
	Name string
}

func (e *ErrInvalidIdentifier) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.Name)
}

var (
	identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// Type and engine expressions may carry arguments, e.g. Array(Float64)
	// or ReplacingMergeTree(version).
	typeExprRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\([A-Za-z0-9_, ()]*\))?$`)
)

// ValidateIdentifier accepts alphanumeric/underscore names only.
func ValidateIdentifier(name string) error {
	if !identifierRE.MatchString(name) {
		return &ErrInvalidIdentifier{Name: name}
	}
	return nil
}

// ValidateTypeExpr accepts a bare identifier optionally followed by a
// parenthesized argument list, covering ClickHouse column types and table
// engines.
func ValidateTypeExpr(expr string) error {
	if !typeExprRE.MatchString(expr) {
		return &ErrInvalidIdentifier{Name: expr}
	}
	return nil
}

func validateIdentifiers(names []string) error {
	for _, name := range names {
		if err := ValidateIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}
