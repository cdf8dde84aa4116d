package table

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/raghouse/client/clienttest"
	"github.com/hupe1980/raghouse/record"
)

func newTestStore(t *testing.T) (*Store, *clienttest.Fake) {
	t.Helper()
	fake := clienttest.New()
	s, err := NewStore(fake, "docs", nil)
	require.NoError(t, err)
	return s, fake
}

func TestInsertBatchesUnionOfColumns(t *testing.T) {
	s, fake := newTestStore(t)

	err := s.Insert(context.Background(), []record.Record{
		{"id": "1", "title": "a"},
		{"id": "2", "vector": []float64{1, 0}},
	})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "insert", calls[0].Op)
	assert.Equal(t, "INSERT INTO docs (id, title, vector)", calls[0].Query)
	require.Len(t, calls[0].Rows, 2)
	assert.Equal(t, []any{"1", "a", nil}, calls[0].Rows[0])
	assert.Equal(t, []any{"2", nil, []float64{1, 0}}, calls[0].Rows[1])
}

func TestInsertEmptyIsNoop(t *testing.T) {
	s, fake := newTestStore(t)
	require.NoError(t, s.Insert(context.Background(), nil))
	assert.Empty(t, fake.Calls())
}

func TestUpdateBuildsConjunctiveClauses(t *testing.T) {
	s, fake := newTestStore(t)

	err := s.Update(context.Background(),
		map[string]any{"title": "x"},
		map[string]any{"id": "1"},
	)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ALTER TABLE docs UPDATE title = @set_title WHERE id = @cond_id", calls[0].Query)
	assert.Equal(t, map[string]any{"set_title": "x", "cond_id": "1"}, calls[0].Params)
}

func TestUpdateMultipleConditionsAreANDed(t *testing.T) {
	s, fake := newTestStore(t)

	err := s.Update(context.Background(),
		map[string]any{"title": "x"},
		map[string]any{"id": "1", "lang": "en"},
	)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ALTER TABLE docs UPDATE title = @set_title WHERE id = @cond_id AND lang = @cond_lang", calls[0].Query)
}

func TestDelete(t *testing.T) {
	s, fake := newTestStore(t)

	err := s.Delete(context.Background(), map[string]any{"id": "1"})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "DELETE FROM docs WHERE id = @cond_id", calls[0].Query)
	assert.Equal(t, map[string]any{"cond_id": "1"}, calls[0].Params)
}

func TestDeleteEmptyConditionsFails(t *testing.T) {
	s, fake := newTestStore(t)
	assert.Error(t, s.Delete(context.Background(), nil))
	assert.Empty(t, fake.Calls())
}

func TestSearchWithPredicate(t *testing.T) {
	s, fake := newTestStore(t)
	fake.QueueResult([]record.Record{{"id": "1"}})

	records, err := s.Search(context.Background(), "id = @id", map[string]any{"id": "1"}, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SELECT * FROM docs WHERE id = @id", calls[0].Query)
}

func TestSearchWithLimit(t *testing.T) {
	s, fake := newTestStore(t)

	_, err := s.Search(context.Background(), "", nil, 5)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SELECT * FROM docs LIMIT @limit", calls[0].Query)
	assert.Equal(t, map[string]any{"limit": 5}, calls[0].Params)
}

func TestFetchAll(t *testing.T) {
	s, fake := newTestStore(t)
	fake.QueueResult([]record.Record{{"id": "1"}, {"id": "2"}})

	records, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SELECT * FROM docs", calls[0].Query)
}

func TestReset(t *testing.T) {
	s, fake := newTestStore(t)
	require.NoError(t, s.Reset(context.Background()))

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "TRUNCATE TABLE docs", calls[0].Query)
}

func TestOpErrorWrapsCause(t *testing.T) {
	s, fake := newTestStore(t)
	cause := errors.New("boom")
	fake.ExecuteErr = cause

	err := s.Reset(context.Background())
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "docs", opErr.Table)
	assert.Equal(t, "truncate", opErr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestInsertRejectsBadColumnNames(t *testing.T) {
	s, fake := newTestStore(t)

	err := s.Insert(context.Background(), []record.Record{{"id": "1", "bad col": "x"}})
	assert.Error(t, err)
	assert.Empty(t, fake.Calls())
}
