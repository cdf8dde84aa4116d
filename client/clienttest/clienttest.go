// Package clienttest provides a scripted in-memory client.Client for tests.
package clienttest

import (
	"context"
	"strings"
	"sync"

	"github.com/hupe1980/raghouse/client"
	"github.com/hupe1980/raghouse/record"
)

// Call records one statement issued to the fake.
type Call struct {
	Op     string // "execute", "fetch", "insert"
	Query  string
	Params map[string]any
	Rows   [][]any
}

// Fake is a scripted client.Client. Queued results are consumed in FIFO
// order by FetchOne/FetchAll; Execute and InsertBatch succeed unless an
// error is forced.
type Fake struct {
	mu sync.Mutex

	calls   []Call
	results [][]record.Record

	ExecuteErr error
	FetchErr   error
	InsertErr  error
}

// New creates an empty fake client.
func New() *Fake {
	return &Fake{}
}

// QueueResult appends a result set returned by the next fetch.
func (f *Fake) QueueResult(records []record.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, records)
}

// Calls returns a copy of all recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching returns recorded calls whose query contains the substring.
func (f *Fake) CallsMatching(substr string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if strings.Contains(c.Query, substr) {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Connect(ctx context.Context) error { return nil }

func (f *Fake) Execute(ctx context.Context, query string, params map[string]any) error {
	f.record(Call{Op: "execute", Query: query, Params: params})
	return f.ExecuteErr
}

func (f *Fake) FetchOne(ctx context.Context, query string, params map[string]any) (record.Record, error) {
	records, err := f.FetchAll(ctx, query, params)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (f *Fake) FetchAll(ctx context.Context, query string, params map[string]any) ([]record.Record, error) {
	f.record(Call{Op: "fetch", Query: query, Params: params})
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return nil, nil
	}
	head := f.results[0]
	f.results = f.results[1:]
	return head, nil
}

func (f *Fake) InsertBatch(ctx context.Context, query string, rows [][]any) error {
	f.record(Call{Op: "insert", Query: query, Rows: rows})
	return f.InsertErr
}

func (f *Fake) Close() error { return nil }

func (f *Fake) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

var _ client.Client = (*Fake)(nil)
