package internal

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sharedbox/sharedbox/lib/engine/util"
)

// --------------------------------------------------------------------------
// Entry Type (key-value pair)
// --------------------------------------------------------------------------

// Entry stores a key-value pair within a shard. The original string key is
// kept alongside the value so that enumeration can recover it and hash
// collisions between distinct keys can be detected.
type Entry struct {
	Key   string
	Value []byte
}

// --------------------------------------------------------------------------
// Shard Type (partition of a segment)
// --------------------------------------------------------------------------

// Shard represents a partition of a segment.
// Each shard has its own independent concurrent map; no cross-shard
// coordination is required for single-key operations.
type Shard struct {
	Data *xsync.MapOf[util.UintKey, Entry]
}

// NewShard creates a new shard with the provided hash function.
func NewShard(hasher func(util.UintKey, uint64) uint64) *Shard {
	return &Shard{
		Data: xsync.NewMapOfWithHasher[util.UintKey, Entry](hasher),
	}
}

// GetShard returns the appropriate shard for a given key.
//
// Thread-safety: This function is thread-safe and can be called concurrently.
func GetShard[T any](key util.UintKey, shards []*T) *T {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shiftedKey := uint64(key) >> 7
	shardPos := shiftedKey % uint64(len(shards))
	return shards[shardPos]
}
