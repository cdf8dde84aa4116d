// Package blobstore abstracts where backup snapshots are written and read.
//
// The default is the local filesystem; S3 and MinIO backed stores live in
// subpackages so their SDKs stay out of the dependency graph of callers that
// only back up to disk.
package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store reads and writes whole backup blobs by name.
type Store interface {
	// Put writes the blob under name, replacing any prior content.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the blob under name for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
}

// Local implements Store on the local filesystem. Names are paths, resolved
// relative to root when one is set.
type Local struct {
	root string
}

// NewLocal creates a filesystem store. An empty root uses names as given.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (s *Local) path(name string) string {
	if s.root == "" {
		return name
	}
	return filepath.Join(s.root, name)
}

// Put writes the blob via a temp file and rename, so a crash mid-write never
// leaves a truncated backup under the final name.
func (s *Local) Put(_ context.Context, name string, r io.Reader) error {
	path := s.path(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Get opens the blob. A missing file satisfies errors.Is(err, ErrNotFound).
func (s *Local) Get(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(s.path(name))
}

var _ Store = (*Local)(nil)
