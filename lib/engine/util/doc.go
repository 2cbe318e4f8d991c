// Package util provides hashing and statistics helpers shared by engine
// implementations and the dictionary diagnostics.
//
// The hash helpers map string keys onto a compact uint64 key space with a
// per-segment seed so that shard distribution differs between segments. The
// statistics helpers summarize sampled size distributions without requiring
// a full scan of the segment.
package util
