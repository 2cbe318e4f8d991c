package dict

import (
	"github.com/sharedbox/sharedbox/lib/engine/util"
)

// statsSampleLimit caps how many entries Stats inspects. Sampling keeps the
// cost bounded on large segments at the price of estimate accuracy.
const statsSampleLimit = 100

// Stats summarizes the contents of a dictionary's segment based on a sample
// of stored entries.
type Stats struct {
	SegmentName  string `json:"segment_name"`
	TotalEntries int    `json:"total_entries"`
	SampleSize   int    `json:"sample_size"`

	// AvgKeyUTF8Bytes and AvgValueEncodedBytes are sampled means; values are
	// measured in their encoded on-segment form, not their decoded size.
	AvgKeyUTF8Bytes      float64 `json:"avg_key_utf8_bytes"`
	AvgValueEncodedBytes float64 `json:"avg_value_encoded_bytes"`

	// EstimatedDataBytes extrapolates the sampled averages to the whole
	// segment.
	EstimatedDataBytes int `json:"estimated_data_bytes"`

	KeySizeDistribution   util.Stats `json:"key_size_distribution"`
	ValueSizeDistribution util.Stats `json:"value_size_distribution"`
}

// Stats samples up to 100 entries and returns aggregate size statistics. On
// an empty segment all counts are zero and all averages are 0.0.
func (d *Dict) Stats() Stats {
	keys := d.eng.Keys()

	s := Stats{
		SegmentName:  d.name,
		TotalEntries: len(keys),
	}
	if len(keys) == 0 {
		return s
	}

	sample := keys
	if len(sample) > statsSampleLimit {
		sample = sample[:statsSampleLimit]
	}

	keySizes := make([]float64, 0, len(sample))
	valueSizes := make([]float64, 0, len(sample))
	for _, key := range sample {
		raw, ok := d.eng.Get(key)
		if !ok {
			// deleted concurrently, skip
			continue
		}
		keySizes = append(keySizes, float64(len(key)))
		valueSizes = append(valueSizes, float64(len(raw)))
	}

	s.SampleSize = len(keySizes)
	s.KeySizeDistribution = util.NewStats(keySizes)
	s.ValueSizeDistribution = util.NewStats(valueSizes)
	s.AvgKeyUTF8Bytes = s.KeySizeDistribution.Mean
	s.AvgValueEncodedBytes = s.ValueSizeDistribution.Mean
	s.EstimatedDataBytes = int(float64(s.TotalEntries) * (s.AvgKeyUTF8Bytes + s.AvgValueEncodedBytes))

	return s
}
