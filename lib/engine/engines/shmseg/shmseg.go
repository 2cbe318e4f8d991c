package shmseg

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sharedbox/sharedbox/lib/engine"
	"github.com/sharedbox/sharedbox/lib/engine/engines/shmseg/internal"
	"github.com/sharedbox/sharedbox/lib/engine/util"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// entryOverheadBytes is the bookkeeping cost charged per entry on top of
	// the raw key and value bytes.
	entryOverheadBytes = 64
)

// --------------------------------------------------------------------------
// Segment registry
// --------------------------------------------------------------------------

// registry maps segment names to live segments. It stands in for the
// shared-memory namespace: names are visible to every handle in the process.
var registry = xsync.NewMapOf[string, *segment]()

// --------------------------------------------------------------------------
// Core segment structure
// --------------------------------------------------------------------------

// segment holds the sharded data for one named segment.
type segment struct {
	name      string
	sizeBytes int
	maxKeys   int
	numShards int
	seed      uint64
	shards    []*internal.Shard

	count     atomic.Int64 // number of distinct keys
	usedBytes atomic.Int64 // approximate payload bytes in use
}

func newSegment(cfg engine.Config) *segment {
	numShards := runtime.NumCPU()
	seed := util.GenerateSeed()
	hasher := createIdentityHasher()

	shards := make([]*internal.Shard, numShards)
	for i := 0; i < numShards; i++ {
		shards[i] = internal.NewShard(hasher)
	}

	return &segment{
		name:      cfg.Name,
		sizeBytes: cfg.SizeBytes,
		maxKeys:   cfg.MaxKeys,
		numShards: numShards,
		seed:      seed,
		shards:    shards,
	}
}

// hashKey converts a string key to a util.UintKey, applying the segment seed
// to ensure distribution differs between segments.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *segment) hashKey(key string) util.UintKey {
	return util.HashString(key, s.seed)
}

// createIdentityHasher creates a hash function that combines a key with a
// seed. The key is already an FNV hash, so no further mixing is needed.
func createIdentityHasher() func(util.UintKey, uint64) uint64 {
	return func(key util.UintKey, mapSeed uint64) uint64 {
		return uint64(key) ^ mapSeed
	}
}

// entrySize is the capacity cost of one entry.
func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value) + entryOverheadBytes)
}

// --------------------------------------------------------------------------
// Open / Attach
// --------------------------------------------------------------------------

// Open creates or attaches to a named segment and returns a handle to it.
// With cfg.Attach unset a new segment is registered (engine.ErrSegmentExists
// if the name is taken); with cfg.Attach set an existing segment is resolved
// (engine.ErrSegmentNotFound if it is not).
//
// Open satisfies engine.Factory.
func Open(cfg engine.Config) (engine.Engine, error) {
	cfg = cfg.WithDefaults()

	if cfg.Name == "" {
		return nil, fmt.Errorf("shmseg: segment name must not be empty")
	}

	if cfg.Attach {
		seg, ok := registry.Load(cfg.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", engine.ErrSegmentNotFound, cfg.Name)
		}
		return &Handle{seg: seg}, nil
	}

	seg := newSegment(cfg)
	if _, loaded := registry.LoadOrStore(cfg.Name, seg); loaded {
		return nil, fmt.Errorf("%w: %q", engine.ErrSegmentExists, cfg.Name)
	}
	return &Handle{seg: seg, created: true}, nil
}

// --------------------------------------------------------------------------
// Handle
// --------------------------------------------------------------------------

// Handle is one attachment to a segment. Handles are independent: closing
// one does not affect others attached to the same segment.
type Handle struct {
	seg     *segment
	created bool
	closed  atomic.Bool
}

// Created reports whether this handle created the segment (as opposed to
// attaching to an existing one).
func (h *Handle) Created() bool {
	return h.created
}

// --------------------------------------------------------------------------
// Interface Methods - Read Operations (docu see engine.Engine)
// --------------------------------------------------------------------------

func (h *Handle) Size() int {
	if h.closed.Load() {
		return 0
	}
	return int(h.seg.count.Load())
}

func (h *Handle) Contains(key string) bool {
	if h.closed.Load() {
		return false
	}

	s := h.seg
	intKey := s.hashKey(key)
	shard := internal.GetShard(intKey, s.shards)

	entry, ok := shard.Data.Load(intKey)
	return ok && entry.Key == key
}

func (h *Handle) Get(key string) ([]byte, bool) {
	if h.closed.Load() {
		return nil, false
	}

	s := h.seg
	intKey := s.hashKey(key)
	shard := internal.GetShard(intKey, s.shards)

	entry, ok := shard.Data.Load(intKey)
	if !ok || entry.Key != key {
		return nil, false
	}

	// copy out so callers never alias segment memory
	value := make([]byte, len(entry.Value))
	copy(value, entry.Value)
	return value, true
}

func (h *Handle) Keys() []string {
	if h.closed.Load() {
		return nil
	}

	keys := make([]string, 0, h.seg.count.Load())
	for _, shard := range h.seg.shards {
		shard.Data.Range(func(_ util.UintKey, entry internal.Entry) bool {
			keys = append(keys, entry.Key)
			return true
		})
	}
	return keys
}

// --------------------------------------------------------------------------
// Interface Methods - Write Operations (docu see engine.Engine)
// --------------------------------------------------------------------------

func (h *Handle) Set(key string, value []byte) error {
	if h.closed.Load() {
		return engine.ErrClosed
	}

	s := h.seg
	intKey := s.hashKey(key)
	shard := internal.GetShard(intKey, s.shards)

	// Copy value up front so the stored entry never aliases caller memory
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	var err error
	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && old.Key != key {
			// Two distinct keys collided on the seeded 64-bit hash. Refusing
			// the write keeps the resident entry intact.
			err = fmt.Errorf("shmseg: segment %q: key hash collision between %q and %q",
				s.name, old.Key, key)
			return old, false
		}

		// Capacity admission
		delta := entrySize(key, valueCopy)
		if loaded {
			delta = int64(len(valueCopy)) - int64(len(old.Value))
		}
		if delta > 0 && s.usedBytes.Load()+delta > int64(s.sizeBytes) {
			err = fmt.Errorf("%w: %q", engine.ErrSegmentFull, s.name)
			return old, !loaded
		}
		if !loaded && s.count.Load() >= int64(s.maxKeys) {
			err = fmt.Errorf("%w: %q holds %d keys", engine.ErrTooManyKeys, s.name, s.maxKeys)
			return old, true
		}

		s.usedBytes.Add(delta)
		if !loaded {
			s.count.Add(1)
		}
		return internal.Entry{Key: key, Value: valueCopy}, false
	})

	return err
}

func (h *Handle) Erase(key string) bool {
	if h.closed.Load() {
		return false
	}

	s := h.seg
	intKey := s.hashKey(key)
	shard := internal.GetShard(intKey, s.shards)

	var removed bool
	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true // delete=true keeps the absent key absent
		}
		if old.Key != key {
			return old, false
		}

		removed = true
		s.usedBytes.Add(-entrySize(old.Key, old.Value))
		s.count.Add(-1)
		return internal.Entry{}, true
	})

	return removed
}

// --------------------------------------------------------------------------
// Interface Methods - Lifecycle (docu see engine.Engine)
// --------------------------------------------------------------------------

func (h *Handle) Close() error {
	h.closed.Store(true)
	return nil
}

func (h *Handle) Unlink() error {
	if !h.closed.Load() {
		return engine.ErrStillOpen
	}

	// Remove the name only if it still resolves to this handle's segment; a
	// concurrent unlink+create cycle may have reused the name.
	registry.Compute(h.seg.name, func(cur *segment, loaded bool) (*segment, bool) {
		if loaded && cur == h.seg {
			return nil, true
		}
		return cur, !loaded
	})

	return nil
}

func (h *Handle) IsClosed() bool {
	return h.closed.Load()
}
