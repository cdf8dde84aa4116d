package search

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/raghouse/client/clienttest"
	"github.com/hupe1980/raghouse/record"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	a := []float64{0.3, -0.7, 2.1}
	b := []float64{1.2, 0.4, -0.9}
	// Symmetry.
	assert.Equal(t, Cosine(a, b), Cosine(b, a))
	assert.LessOrEqual(t, math.Abs(Cosine(a, b)), 1.0)
}

func TestCosineZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 2}))
	assert.Equal(t, 0.0, Cosine([]float64{1, 2}, []float64{0, 0}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestCosineLengthMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 0}))
}

func TestSearchBuildsRankingQuery(t *testing.T) {
	fake := clienttest.New()
	fake.QueueResult([]record.Record{
		{"id": "1", "cosine_similarity": 1.0},
	})

	e, err := NewEngine(fake, "docs", nil)
	require.NoError(t, err)

	results, err := e.Search(context.Background(), []float64{1, 0}, []string{"id"}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0]["id"])
	assert.Equal(t, 1.0, results[0]["cosine_similarity"])

	calls := fake.Calls()
	require.Len(t, calls, 1)
	query := calls[0].Query
	assert.Contains(t, query, "SELECT id,")
	assert.Contains(t, query, "FROM docs")
	assert.Contains(t, query, "WHERE length(vector) = length(query_vector)")
	assert.Contains(t, query, "ORDER BY cosine_similarity DESC")
	assert.Contains(t, query, "LIMIT @top_k")
	assert.Equal(t, []float64{1, 0}, calls[0].Params["query_vector"])
	assert.Equal(t, 1, calls[0].Params["top_k"])
}

func TestSearchInvalidTopK(t *testing.T) {
	e, err := NewEngine(clienttest.New(), "docs", nil)
	require.NoError(t, err)

	_, err = e.Search(context.Background(), []float64{1}, []string{"id"}, 0)
	assert.ErrorIs(t, err, ErrInvalidTopK)

	_, err = e.Search(context.Background(), []float64{1}, []string{"id"}, -5)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestSearchRequiresColumns(t *testing.T) {
	e, err := NewEngine(clienttest.New(), "docs", nil)
	require.NoError(t, err)

	_, err = e.Search(context.Background(), []float64{1}, nil, 1)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestSearchRejectsBadColumn(t *testing.T) {
	fake := clienttest.New()
	e, err := NewEngine(fake, "docs", nil)
	require.NoError(t, err)

	_, err = e.Search(context.Background(), []float64{1}, []string{"id; DROP TABLE docs"}, 1)
	assert.Error(t, err)
	assert.Empty(t, fake.Calls())
}
