// Package engine defines the contract between the sharedbox dictionary
// facade and the concurrent segment engines that back it.
//
// An engine is a fixed-capacity key-value store addressed by a segment name.
// It owns all concurrency control, capacity enforcement and storage for its
// segment; the layers above it never second-guess those responsibilities.
// The facade issues exactly one engine call per logical operation and treats
// the engine as safe for concurrent use by multiple goroutines (and, for
// engines backed by real shared memory, multiple processes) attached to the
// same segment name.
//
// The package focuses on:
//   - A unified interface (Engine) for segment operations across different
//     backends
//   - Pluggable backend architecture through the Factory pattern
//   - A common configuration type (Config) with the default segment geometry
//
// Key Components:
//
//   - Engine Interface: The core abstraction defining size, membership,
//     get/set/erase, key enumeration and the close/unlink lifecycle. All
//     implementations share this interface, allowing applications to switch
//     backends without code changes.
//
//   - Factory: A function type that abstracts the creation and attachment of
//     engines, providing dependency injection for the dictionary facade and
//     for test suites.
//
//   - Snapshotter: An optional interface for engines that can persist their
//     segment to an io.Writer and restore it later. Callers detect support
//     with a type assertion rather than assuming it.
//
// The canonical in-process implementation lives in the
// "github.com/sharedbox/sharedbox/lib/engine/engines/shmseg" package.
package engine
