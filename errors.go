package raghouse

import (
	"errors"

	"github.com/hupe1980/raghouse/record"
	"github.com/hupe1980/raghouse/vectorizer"
)

var (
	// ErrMissingID is returned when a record lacks the "id" field. The
	// failing operation issues no statement to the server.
	ErrMissingID = record.ErrMissingID

	// ErrVectorizerNotFound is returned when a named vectorizer is not
	// registered.
	ErrVectorizerNotFound = vectorizer.ErrNotFound

	// ErrAmbiguousVectorizer is returned by bulk operations when the
	// vectorizer selection is ambiguous: both a name and an instance were
	// supplied, or neither was.
	ErrAmbiguousVectorizer = errors.New("exactly one of vectorizer name or vectorizer instance must be provided")

	// ErrNotFound is returned by Get when no record has the given id.
	ErrNotFound = errors.New("record not found")
)
