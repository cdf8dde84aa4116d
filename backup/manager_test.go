package backup

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/raghouse/backup/blobstore"
	"github.com/hupe1980/raghouse/client/clienttest"
	"github.com/hupe1980/raghouse/record"
	"github.com/hupe1980/raghouse/table"
)

type memBlobs struct {
	puts map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{puts: make(map[string][]byte)} }

func (m *memBlobs) Put(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.puts[name] = data
	return nil
}

func (m *memBlobs) Get(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m.puts[name]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestManager(t *testing.T, blobs blobstore.Store) (*Manager, *clienttest.Fake) {
	t.Helper()
	fake := clienttest.New()
	store, err := table.NewStore(fake, "docs", nil)
	require.NoError(t, err)
	schema, err := table.NewManager(fake, "docs", nil)
	require.NoError(t, err)
	return NewManager(store, schema, blobs, nil), fake
}

func TestBackupUnsupportedExtensionFailsEarly(t *testing.T) {
	blobs := newMemBlobs()
	m, fake := newTestManager(t, blobs)

	err := m.Backup(context.Background(), "backup.xyz")
	require.Error(t, err)
	var ufe *UnsupportedFormatError
	assert.ErrorAs(t, err, &ufe)

	// Nothing was fetched and nothing was written.
	assert.Empty(t, fake.Calls())
	assert.Empty(t, blobs.puts)
}

func TestBackupProtobyteRejected(t *testing.T) {
	blobs := newMemBlobs()
	m, fake := newTestManager(t, blobs)

	err := m.Backup(context.Background(), "backup.protobyte")
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Empty(t, fake.Calls())
	assert.Empty(t, blobs.puts)
}

func TestBackupWritesSnapshot(t *testing.T) {
	blobs := newMemBlobs()
	m, fake := newTestManager(t, blobs)
	fake.QueueResult([]record.Record{{"id": "1", "title": "a"}})

	require.NoError(t, m.Backup(context.Background(), "backup.json"))

	require.Contains(t, blobs.puts, "backup.json")
	decoded, err := JSONCodec{}.Decode(bytes.NewReader(blobs.puts["backup.json"]))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "1", decoded[0]["id"])
}

func TestRestoreTruncatesThenInserts(t *testing.T) {
	blobs := newMemBlobs()
	var buf bytes.Buffer
	require.NoError(t, JSONCodec{}.Encode(&buf, []record.Record{{"id": "1", "title": "a"}}))
	require.NoError(t, blobs.Put(context.Background(), "backup.json", &buf))

	m, fake := newTestManager(t, blobs)
	require.NoError(t, m.Restore(context.Background(), "backup.json", nil, "", ""))

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "TRUNCATE TABLE docs", calls[0].Query)
	assert.Equal(t, "insert", calls[1].Op)
	assert.Equal(t, [][]any{{"1", "a"}}, calls[1].Rows)
}

func TestRestoreNormalizesVectorValues(t *testing.T) {
	blobs := newMemBlobs()
	var buf bytes.Buffer
	require.NoError(t, JSONCodec{}.Encode(&buf, []record.Record{
		{"id": "1", "title": "a", "vector": []float64{1, 0}},
	}))
	require.NoError(t, blobs.Put(context.Background(), "backup.json", &buf))

	m, fake := newTestManager(t, blobs)
	require.NoError(t, m.Restore(context.Background(), "backup.json", nil, "", ""))

	// JSON decoding yields []any for the vector column; the insert must
	// see []float64 so the batch append matches Array(Float64).
	calls := fake.Calls()
	require.Len(t, calls, 2)
	require.Len(t, calls[1].Rows, 1)
	assert.Equal(t, []any{"1", "a", []float64{1, 0}}, calls[1].Rows[0])
}

func TestRestoreEnsuresSchemaFirst(t *testing.T) {
	blobs := newMemBlobs()
	var buf bytes.Buffer
	require.NoError(t, JSONCodec{}.Encode(&buf, []record.Record{{"id": "1"}}))
	require.NoError(t, blobs.Put(context.Background(), "backup.json", &buf))

	m, fake := newTestManager(t, blobs)
	// Existence probe: table absent, so a CREATE follows.
	fake.QueueResult([]record.Record{{"result": uint8(0)}})

	schema := table.Schema{"id": "String"}
	require.NoError(t, m.Restore(context.Background(), "backup.json", schema, "MergeTree", "id"))

	calls := fake.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "EXISTS TABLE docs", calls[0].Query)
	assert.Contains(t, calls[1].Query, "CREATE TABLE docs")
	assert.Equal(t, "TRUNCATE TABLE docs", calls[2].Query)
	assert.Equal(t, "insert", calls[3].Op)
}

func TestRestoreMissingFile(t *testing.T) {
	m, _ := newTestManager(t, newMemBlobs())

	err := m.Restore(context.Background(), "missing.json", nil, "", "")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestBackupRestoreCompressedRoundTrip(t *testing.T) {
	for _, name := range []string{"backup.json.zst", "backup.json.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			blobs := blobstore.NewLocal("")
			m, fake := newTestManager(t, blobs)
			fake.QueueResult([]record.Record{{"id": "1", "vector": []float64{1, 0}}})

			require.NoError(t, m.Backup(context.Background(), path))
			require.NoError(t, m.Restore(context.Background(), path, nil, "", ""))

			inserts := fake.CallsMatching("INSERT INTO docs")
			require.Len(t, inserts, 1)
			require.Len(t, inserts[0].Rows, 1)
			assert.Equal(t, "1", inserts[0].Rows[0][0])
		})
	}
}
