package store

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/header"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed data/options.yaml
	defaultData []byte

	defaultsOnce   sync.Once
	cachedDefaults *SnapshotFile
	cachedErr      error
)

// loadDefaults parses the embedded snapshot file once per process.
func loadDefaults() (*SnapshotFile, error) {
	defaultsOnce.Do(func() {
		cachedDefaults, cachedErr = decodeFile(bytes.NewReader(defaultData))
	})

	if cachedErr != nil {
		return nil, cachedErr
	}
	if cachedDefaults == nil {
		return nil, pcberrors.New(pcberrors.ErrCodeInternal, "default option snapshots not initialized")
	}
	return cachedDefaults, nil
}

// Load returns a MemoryStore seeded with the embedded default snapshots.
// Each call returns an independent store.
func Load(_ context.Context) (*MemoryStore, error) {
	f, err := loadDefaults()
	if err != nil {
		return nil, pcberrors.Wrap(pcberrors.ErrCodeInternal, "failed to load default option snapshots", err)
	}
	return fromSnapshotFile(f)
}

// FromFile returns a MemoryStore seeded with the snapshots in a YAML or JSON file.
func FromFile(path string) (*MemoryStore, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, pcberrors.Wrap(pcberrors.ErrCodeNotFound, fmt.Sprintf("failed to open snapshot file %s", path), err)
	}
	defer fh.Close()

	f, err := decodeFile(fh)
	if err != nil {
		return nil, pcberrors.Wrap(pcberrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid snapshot file %s", path), err)
	}
	return fromSnapshotFile(f)
}

// WriteFile saves every snapshot in m to path as YAML. The file is replaced
// atomically so concurrent readers see either the old or the new content.
func WriteFile(path string, m *MemoryStore, version string) error {
	data, err := yaml.Marshal(m.File(version))
	if err != nil {
		return fmt.Errorf("failed to encode snapshots: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func decodeFile(r io.Reader) (*SnapshotFile, error) {
	var f SnapshotFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, err
	}
	if err := f.Check(header.KindOptionSnapshots); err != nil {
		return nil, err
	}
	for i, s := range f.Snapshots {
		if s == nil {
			return nil, fmt.Errorf("snapshot %d is empty", i)
		}
		if err := s.Check(); err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
	}
	return &f, nil
}

func fromSnapshotFile(f *SnapshotFile) (*MemoryStore, error) {
	m := NewMemoryStore()
	for _, s := range f.Snapshots {
		if err := m.Add(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}
