// Package sizing converts aggregate segment statistics into capacity and
// lock-count recommendations.
//
// The recommendations are planning aids, not guarantees: the segment size
// estimate is a linear extrapolation from sampled averages with fixed
// headroom, and the lock count is a rule of thumb for engines that shard
// their concurrency control by key.
package sizing

import "math"

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// perEntryOverheadBytes approximates the engine's bookkeeping cost per
	// entry on top of the raw key and value bytes.
	perEntryOverheadBytes = 64

	// headroomFactor leaves room for growth and allocator fragmentation.
	headroomFactor = 1.3

	// minSegmentBytes floors recommendations at one MiB.
	minSegmentBytes = 1 << 20

	// entriesPerLock is the target number of entries guarded by one lock.
	entriesPerLock = 1024

	minLocks = 8
	maxLocks = 512
)

// --------------------------------------------------------------------------
// Segment size
// --------------------------------------------------------------------------

// Recommendation is a segment capacity suggestion for a target entry count.
type Recommendation struct {
	TargetEntries      int `json:"target_entries"`
	EstimatedDataBytes int `json:"estimated_data_bytes"`
	RecommendedBytes   int `json:"recommended_bytes"`
	RecommendedMiB     int `json:"recommended_mib"`
}

// SegmentSize recommends a capacity for a segment expected to hold
// targetEntries entries with the given average key and value sizes.
func SegmentSize(targetEntries int, avgKeyBytes, avgValueBytes float64) Recommendation {
	if targetEntries < 0 {
		targetEntries = 0
	}

	perEntry := avgKeyBytes + avgValueBytes + perEntryOverheadBytes
	estimated := float64(targetEntries) * (avgKeyBytes + avgValueBytes)

	recommended := float64(targetEntries) * perEntry * headroomFactor
	if recommended < minSegmentBytes {
		recommended = minSegmentBytes
	}

	// round up to a whole MiB
	mib := int(math.Ceil(recommended / float64(1<<20)))

	return Recommendation{
		TargetEntries:      targetEntries,
		EstimatedDataBytes: int(estimated),
		RecommendedBytes:   mib << 20,
		RecommendedMiB:     mib,
	}
}

// --------------------------------------------------------------------------
// Lock count
// --------------------------------------------------------------------------

// LockRecommendation is a concurrency-control granularity suggestion.
type LockRecommendation struct {
	TargetEntries int `json:"target_entries"`
	Locks         int `json:"locks"`
}

// LockCount recommends how many locks a segment sized for targetEntries
// should shard its concurrency control over: the next power of two above
// one lock per 1024 entries, clamped to [8, 512].
func LockCount(targetEntries int) LockRecommendation {
	if targetEntries < 0 {
		targetEntries = 0
	}

	needed := (targetEntries + entriesPerLock - 1) / entriesPerLock

	locks := minLocks
	for locks < needed && locks < maxLocks {
		locks <<= 1
	}

	return LockRecommendation{
		TargetEntries: targetEntries,
		Locks:         locks,
	}
}
