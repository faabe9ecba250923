package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/header"
	"github.com/pcbshop/boardopts/pkg/options"
	"github.com/pcbshop/boardopts/pkg/validator"
)

// SnapshotKind distinguishes offered from external option snapshots.
type SnapshotKind string

const (
	KindOffered  SnapshotKind = "offered"
	KindExternal SnapshotKind = "external"
)

// Snapshot is one immutable version of an option set.
type Snapshot struct {
	ID      string            `json:"id,omitempty" yaml:"id,omitempty"`
	Kind    SnapshotKind      `json:"kind" yaml:"kind"`
	Vendor  string            `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Created time.Time         `json:"created" yaml:"created"`
	Options options.OptionSet `json:"options" yaml:"options"`
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Options = s.Options.Clone()
	return &out
}

// Check verifies the snapshot is well formed.
func (s *Snapshot) Check() error {
	switch s.Kind {
	case KindOffered:
		if s.Vendor != "" {
			return fmt.Errorf("offered snapshot %s must not name a vendor", s.ID)
		}
	case KindExternal:
		if s.Vendor == "" {
			return fmt.Errorf("external snapshot %s requires a vendor", s.ID)
		}
	default:
		return fmt.Errorf("snapshot %s has unknown kind %q", s.ID, s.Kind)
	}
	return nil
}

// SnapshotFile is the on-disk layout for a collection of snapshots.
type SnapshotFile struct {
	header.Header `json:",inline" yaml:",inline"`

	Snapshots []*Snapshot `json:"snapshots" yaml:"snapshots"`
}

// OfferedSource yields the latest offered snapshot.
type OfferedSource interface {
	LatestOffered(ctx context.Context) (*Snapshot, error)
}

// ExternalSource yields the latest external snapshot of a vendor.
type ExternalSource interface {
	LatestExternal(ctx context.Context, vendor string) (*Snapshot, error)
}

// Publisher records new snapshots.
type Publisher interface {
	PublishOffered(ctx context.Context, opts options.OptionSet) (*Snapshot, error)
	RecordExternal(ctx context.Context, vendor string, opts options.OptionSet) (*Snapshot, error)
}

// Store is a complete snapshot backend.
type Store interface {
	OfferedSource
	ExternalSource
	Publisher

	// Vendors lists vendors with at least one external snapshot, sorted.
	Vendors(ctx context.Context) ([]string, error)
}

// Offered adapts src to the validator's source interface.
func Offered(src OfferedSource) validator.OfferedSource {
	return validator.OfferedSourceFunc(func(ctx context.Context) (options.OptionSet, error) {
		snap, err := src.LatestOffered(ctx)
		if err != nil {
			return nil, err
		}
		return snap.Options, nil
	})
}

// External adapts src to the validator's source interface.
func External(src ExternalSource) validator.ExternalSource {
	return validator.ExternalSourceFunc(func(ctx context.Context, vendor string) (options.OptionSet, error) {
		snap, err := src.LatestExternal(ctx, vendor)
		if err != nil {
			return nil, err
		}
		return snap.Options, nil
	})
}

func newSnapshot(kind SnapshotKind, vendor string, created time.Time, opts options.OptionSet) *Snapshot {
	if opts == nil {
		opts = options.OptionSet{}
	}
	return &Snapshot{
		ID:      uuid.NewString(),
		Kind:    kind,
		Vendor:  vendor,
		Created: created.UTC(),
		Options: opts.Clone(),
	}
}

func errNoOffered() error {
	return pcberrors.New(pcberrors.ErrCodeNotFound, "no offered options have been published")
}

func errNoExternal(vendor string) error {
	return pcberrors.NewWithContext(pcberrors.ErrCodeNotFound,
		fmt.Sprintf("no external options recorded for vendor %q", vendor),
		map[string]any{"vendor": vendor})
}

// latest returns the snapshot with the greatest Created time. Ties go to the
// later element.
func latest(snaps []*Snapshot) *Snapshot {
	var out *Snapshot
	for _, s := range snaps {
		if out == nil || !s.Created.Before(out.Created) {
			out = s
		}
	}
	return out
}

func sortByCreated(snaps []*Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Created.Before(snaps[j].Created)
	})
}
