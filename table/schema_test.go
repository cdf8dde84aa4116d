package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/raghouse/client/clienttest"
	"github.com/hupe1980/raghouse/record"
)

var testSchema = Schema{
	"id":     "String",
	"title":  "String",
	"vector": "Array(Float64)",
}

func TestEnsureTableCreatesWhenAbsent(t *testing.T) {
	fake := clienttest.New()
	fake.QueueResult([]record.Record{{"result": uint8(0)}})

	m, err := NewManager(fake, "docs", nil)
	require.NoError(t, err)

	require.NoError(t, m.EnsureTable(context.Background(), testSchema, "MergeTree", "id"))

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "EXISTS TABLE docs", calls[0].Query)
	assert.Equal(t, "CREATE TABLE docs (id String, title String, vector Array(Float64)) ENGINE = MergeTree ORDER BY id", calls[1].Query)
}

func TestEnsureTableIsIdempotent(t *testing.T) {
	fake := clienttest.New()
	// First call: absent, created. Second call: present, no-op.
	fake.QueueResult([]record.Record{{"result": uint8(0)}})
	fake.QueueResult([]record.Record{{"result": uint8(1)}})

	m, err := NewManager(fake, "docs", nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.EnsureTable(ctx, testSchema, "MergeTree", "id"))
	require.NoError(t, m.EnsureTable(ctx, testSchema, "MergeTree", "id"))

	assert.Len(t, fake.CallsMatching("CREATE TABLE"), 1)
	assert.Len(t, fake.CallsMatching("EXISTS TABLE"), 2)
}

func TestEnsureTableRejectsBadIdentifiers(t *testing.T) {
	fake := clienttest.New()
	m, err := NewManager(fake, "docs", nil)
	require.NoError(t, err)

	ctx := context.Background()

	err = m.EnsureTable(ctx, Schema{"bad name": "String"}, "MergeTree", "id")
	assert.Error(t, err)

	err = m.EnsureTable(ctx, testSchema, "MergeTree; DROP TABLE docs", "id")
	assert.Error(t, err)

	err = m.EnsureTable(ctx, testSchema, "MergeTree", "id; SELECT 1")
	assert.Error(t, err)

	// Nothing reached the client.
	assert.Empty(t, fake.Calls())
}

func TestNewManagerValidatesTableName(t *testing.T) {
	_, err := NewManager(clienttest.New(), "bad table", nil)
	assert.Error(t, err)
}
