package dict

import (
	"github.com/sharedbox/sharedbox/lib/sizing"
)

// SizingReport bundles current segment statistics with capacity advice for a
// target entry count.
type SizingReport struct {
	CurrentStats  Stats                      `json:"current_stats"`
	TargetEntries int                        `json:"target_entries"`
	Sizing        *sizing.Recommendation     `json:"sizing_recommendation,omitempty"`
	Locks         *sizing.LockRecommendation `json:"lock_recommendation,omitempty"`
	Message       string                     `json:"message,omitempty"`
}

// RecommendSizing estimates the segment capacity needed to hold
// targetEntries entries, extrapolating from the current contents. A
// non-positive target defaults to ten times the current entry count, floored
// at 10000. On an empty segment no recommendation is possible and only
// Message is set.
func (d *Dict) RecommendSizing(targetEntries int) SizingReport {
	stats := d.Stats()

	if targetEntries <= 0 {
		targetEntries = stats.TotalEntries * 10
		if targetEntries < 10000 {
			targetEntries = 10000
		}
	}

	report := SizingReport{
		CurrentStats:  stats,
		TargetEntries: targetEntries,
	}

	if stats.TotalEntries == 0 {
		report.Message = "no data in segment yet - cannot provide recommendations"
		return report
	}

	rec := sizing.SegmentSize(targetEntries, stats.AvgKeyUTF8Bytes, stats.AvgValueEncodedBytes)
	locks := sizing.LockCount(targetEntries)
	report.Sizing = &rec
	report.Locks = &locks

	return report
}
