// Package search ranks the rows of a table by cosine similarity to a query
// vector.
//
// There is no persistent index: ranking runs as one set-oriented ClickHouse
// query, so the full scan and the top-k ordering happen inside the storage
// engine rather than in the caller's process.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/hupe1980/raghouse/client"
	"github.com/hupe1980/raghouse/record"
	"github.com/hupe1980/raghouse/table"
)

var (
	// ErrInvalidTopK is returned when top-k is not positive.
	ErrInvalidTopK = errors.New("top_k must be positive")

	// ErrNoColumns is returned when no output columns are projected.
	ErrNoColumns = errors.New("at least one output column is required")
)

// SimilarityColumn is the name of the computed similarity column in results.
const SimilarityColumn = "cosine_similarity"

// Rows whose vector length differs from the query vector are excluded
// entirely; zero-norm vectors rank with similarity 0 instead of failing on
// division by zero.
const queryTemplate = `WITH @query_vector AS query_vector
SELECT %s, if(arraySum(x -> x * x, vector) = 0 OR arraySum(x -> x * x, query_vector) = 0, 0, arraySum((x, y) -> x * y, vector, query_vector) / sqrt(arraySum(x -> x * x, vector) * arraySum(x -> x * x, query_vector))) AS %s
FROM %s
WHERE length(vector) = length(query_vector)
ORDER BY %s DESC
LIMIT @top_k`

// Engine executes similarity queries against one table.
type Engine struct {
	client client.Client
	table  string
	logger *slog.Logger
}

// NewEngine creates a similarity search engine for the named table.
func NewEngine(c client.Client, tableName string, logger *slog.Logger) (*Engine, error) {
	if err := table.ValidateIdentifier(tableName); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{client: c, table: tableName, logger: logger}, nil
}

// Search returns at most topK rows, ordered by descending cosine similarity
// to vector. Each result row carries the projected columns plus the computed
// "cosine_similarity" column. Tie order between equal similarities is
// whatever the server produces.
func (e *Engine) Search(ctx context.Context, vector []float64, columns []string, topK int) ([]record.Record, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	for _, col := range columns {
		if err := table.ValidateIdentifier(col); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf(queryTemplate,
		strings.Join(columns, ", "), SimilarityColumn, e.table, SimilarityColumn)
	params := map[string]any{
		"query_vector": vector,
		"top_k":        topK,
	}

	records, err := e.client.FetchAll(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed on table %q: %w", e.table, err)
	}

	e.logger.DebugContext(ctx, "similarity search completed",
		"table", e.table,
		"top_k", topK,
		"results", len(records),
	)
	return records, nil
}

// Cosine computes the cosine similarity between two vectors, mirroring the
// server-side definition: 0 when either vector has zero norm or the lengths
// differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
