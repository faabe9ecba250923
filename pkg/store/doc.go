// Package store keeps versioned snapshots of board option sets.
//
// Two kinds of snapshots exist. Offered snapshots hold the options the shop
// publishes to customers. External snapshots hold the options a fabrication
// vendor can produce and are keyed by vendor name. Every write creates a new
// snapshot; readers always see the most recently created one.
//
// Backends:
//
//   - MemoryStore: process-local, seeded from embedded defaults.
//   - FileStore: a MemoryStore that saves every write to its snapshot file.
//   - ConfigMapStore: one Kubernetes ConfigMap per snapshot.
//
// Open selects a backend from a source URI:
//
//	""            embedded defaults (read-only)
//	"embedded"    embedded defaults (read-only)
//	"cm://shop"   ConfigMaps in namespace "shop"
//	"./opts.yaml" snapshot file, which must exist
//
// Writes to a read-only source fail with a CONFLICT structured error.
//
// Snapshot contents are cloned on the way in and out, so callers may mutate
// what they pass or receive without affecting the store.
package store
