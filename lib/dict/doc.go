// Package dict implements the sharedbox dictionary facade: an ordinary
// mapping from string keys to heterogeneous values over a segment engine.
//
// Every value is run through the dual-format codec
// (github.com/sharedbox/sharedbox/lib/codec) on its way in and out of the
// engine: numeric tensors serialize natively, everything else goes through
// the configured opaque serializer. The facade itself holds no locks and
// issues exactly one engine call per logical operation; all concurrency
// control is the engine's responsibility, so operations like GetOr are a
// plain read plus local fallback, not an atomic compound.
//
// A Dict exclusively owns one engine handle for its lifetime. Close is
// idempotent and detaches the handle; Unlink destroys the backing segment
// and is only legal after Close.
//
// Besides the mapping surface the facade offers diagnostics that stay off
// the hot path: Stats samples stored entries to estimate size distributions
// and RecommendSizing turns those estimates into capacity advice.
package dict
