// Package testing provides a reusable conformance test suite for engine
// implementations.
//
// Engine authors call RunEngineTests from their own test files with a
// factory that produces a fresh, empty engine per invocation. The suite
// covers the full engine contract: CRUD semantics, copy-on-read and
// copy-on-write behavior, key enumeration, size accounting and the
// close/unlink lifecycle.
package testing
