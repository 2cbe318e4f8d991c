// Package shmseg implements the in-process segment engine behind the
// sharedbox dictionary facade.
//
// A segment is a named, fixed-capacity key-value region. Segments live in a
// package-level registry that emulates a shared-memory namespace: creating a
// segment registers its name, attaching resolves an existing name, and
// unlinking removes the name and destroys the data. Multiple handles opened
// on the same name operate on the same data, which mirrors how independent
// processes attach to one POSIX shared-memory object.
//
// Implementation Details:
//
//   - Sharding: Each segment is partitioned into one shard per CPU. String
//     keys are hashed with a seeded FNV-1a hash onto a uint64 key space and
//     routed to a shard, where entries live in a concurrent map
//     (xsync.MapOf). The per-segment seed keeps shard distribution
//     independent between segments.
//
//   - Capacity Enforcement: An atomic byte counter tracks the approximate
//     cost of stored entries (key length + value length + a fixed per-entry
//     overhead). Set rejects entries that would exceed the configured byte
//     capacity or the distinct-key limit; overwrites that shrink or fit are
//     always admitted.
//
//   - Copy Semantics: Set stores a copy of the caller's value and Get
//     returns a copy of the stored bytes, so callers can never alias
//     segment-internal memory.
//
//   - Lifecycle: Close detaches a handle without touching the data and is
//     idempotent. Unlink requires a closed handle and removes the segment
//     from the registry. Snapshots (engine.Snapshotter) persist a segment to
//     a writer using a small versioned binary format.
//
// Thread Safety:
//
//	All operations are safe for concurrent use. Capacity admission is
//	approximate under concurrent writers: the byte counter is checked before
//	it is advanced, so simultaneous writers may overshoot the limit by at
//	most one entry per shard.
package shmseg
