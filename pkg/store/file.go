package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/options"
)

// FileStore is a MemoryStore backed by a snapshot file. Every accepted write
// is saved to the file before it is acknowledged; a write that cannot be saved
// is rolled back.
type FileStore struct {
	*MemoryStore

	path    string
	version string

	// serializes write-through so the file always matches memory
	mu sync.Mutex
}

// OpenFile returns a FileStore for path. A missing file yields an empty store;
// the file is created on the first write. version is recorded in the file header.
func OpenFile(path, version string) (*FileStore, error) {
	m, err := FromFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		slog.Debug("snapshot file does not exist yet", "path", path)
		m = NewMemoryStore()
	}
	return newFileStore(m, path, version), nil
}

func newFileStore(m *MemoryStore, path, version string) *FileStore {
	return &FileStore{MemoryStore: m, path: path, version: version}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// PublishOffered stores opts as the newest offered snapshot and saves the file.
func (f *FileStore) PublishOffered(ctx context.Context, opts options.OptionSet) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.MemoryStore.PublishOffered(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := f.save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// RecordExternal stores opts as the newest external snapshot of vendor and saves the file.
func (f *FileStore) RecordExternal(ctx context.Context, vendor string, opts options.OptionSet) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.MemoryStore.RecordExternal(ctx, vendor, opts)
	if err != nil {
		return nil, err
	}
	if err := f.save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (f *FileStore) save(snap *Snapshot) error {
	if err := WriteFile(f.path, f.MemoryStore, f.version); err != nil {
		f.MemoryStore.remove(snap)
		return pcberrors.WrapWithContext(pcberrors.ErrCodeUnavailable, "failed to save snapshot file", err,
			map[string]any{"path": f.path})
	}
	slog.Debug("snapshot file updated", "path", f.path, "id", snap.ID, "kind", snap.Kind)
	return nil
}

// ReadOnly wraps src so that reads pass through and writes fail with a
// CONFLICT error naming source.
func ReadOnly(src Store, source string) Store {
	return readOnlyStore{Store: src, source: source}
}

type readOnlyStore struct {
	Store
	source string
}

func (r readOnlyStore) PublishOffered(context.Context, options.OptionSet) (*Snapshot, error) {
	return nil, r.errReadOnly()
}

func (r readOnlyStore) RecordExternal(context.Context, string, options.OptionSet) (*Snapshot, error) {
	return nil, r.errReadOnly()
}

func (r readOnlyStore) errReadOnly() error {
	return pcberrors.NewWithContext(pcberrors.ErrCodeConflict,
		fmt.Sprintf("option snapshot source %q is read-only", r.source),
		map[string]any{"source": r.source})
}
