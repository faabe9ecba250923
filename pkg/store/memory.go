package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pcbshop/boardopts/pkg/header"
	"github.com/pcbshop/boardopts/pkg/options"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	offered  []*Snapshot
	external map[string][]*Snapshot
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		external: make(map[string][]*Snapshot),
		now:      time.Now,
	}
}

// Add inserts an existing snapshot, for example one read from a file.
// A missing ID or creation time is filled in.
func (m *MemoryStore) Add(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if err := snap.Check(); err != nil {
		return err
	}

	s := snap.Clone()
	if s.Options == nil {
		s.Options = options.OptionSet{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Created.IsZero() {
		s.Created = m.now().UTC()
	}
	if s.ID == "" {
		s.ID = newSnapshot(s.Kind, s.Vendor, s.Created, nil).ID
	}
	m.insert(s)
	return nil
}

func (m *MemoryStore) insert(s *Snapshot) {
	if s.Kind == KindOffered {
		m.offered = append(m.offered, s)
		return
	}
	m.external[s.Vendor] = append(m.external[s.Vendor], s)
}

// LatestOffered returns a copy of the most recent offered snapshot.
func (m *MemoryStore) LatestOffered(_ context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s := latest(m.offered); s != nil {
		return s.Clone(), nil
	}
	return nil, errNoOffered()
}

// LatestExternal returns a copy of the most recent external snapshot of vendor.
func (m *MemoryStore) LatestExternal(_ context.Context, vendor string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s := latest(m.external[vendor]); s != nil {
		return s.Clone(), nil
	}
	return nil, errNoExternal(vendor)
}

// PublishOffered stores opts as the newest offered snapshot. Callers are
// expected to have validated opts against the vendor's external options.
func (m *MemoryStore) PublishOffered(_ context.Context, opts options.OptionSet) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSnapshot(KindOffered, "", m.now(), opts)
	m.insert(s)
	slog.Debug("offered options published", "id", s.ID, "labels", len(s.Options))
	return s.Clone(), nil
}

// RecordExternal stores opts as the newest external snapshot of vendor.
func (m *MemoryStore) RecordExternal(_ context.Context, vendor string, opts options.OptionSet) (*Snapshot, error) {
	if vendor == "" {
		return nil, fmt.Errorf("vendor is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSnapshot(KindExternal, vendor, m.now(), opts)
	m.insert(s)
	slog.Debug("external options recorded", "id", s.ID, "vendor", vendor, "labels", len(s.Options))
	return s.Clone(), nil
}

// remove drops snap again. It undoes a write that could not be persisted.
func (m *MemoryStore) remove(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := func(list []*Snapshot) []*Snapshot {
		for i, s := range list {
			if s.ID == snap.ID {
				return append(list[:i:i], list[i+1:]...)
			}
		}
		return list
	}
	if snap.Kind == KindOffered {
		m.offered = drop(m.offered)
		return
	}
	m.external[snap.Vendor] = drop(m.external[snap.Vendor])
}

// Vendors lists vendors with recorded external options.
func (m *MemoryStore) Vendors(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedVendors(m.external), nil
}

// File returns every snapshot held by m, oldest first, ready to be written out.
func (m *MemoryStore) File(version string) *SnapshotFile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f := &SnapshotFile{}
	f.Init(header.KindOptionSnapshots, version)
	for _, s := range m.offered {
		f.Snapshots = append(f.Snapshots, s.Clone())
	}
	for _, vendor := range sortedVendors(m.external) {
		for _, s := range m.external[vendor] {
			f.Snapshots = append(f.Snapshots, s.Clone())
		}
	}
	sortByCreated(f.Snapshots)
	return f
}

func sortedVendors(m map[string][]*Snapshot) []string {
	vendors := make([]string, 0, len(m))
	for v, snaps := range m {
		if len(snaps) > 0 {
			vendors = append(vendors, v)
		}
	}
	sort.Strings(vendors)
	return vendors
}
