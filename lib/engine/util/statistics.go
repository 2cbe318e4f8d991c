package util

import "math"

// --------------------------------------------------------------------------
// Sample statistics
// --------------------------------------------------------------------------

// Stats summarizes a sampled distribution of sizes.
type Stats struct {
	Mean         float64 `json:"mean"`
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// NewStats computes mean, standard deviation, minimum and maximum from a
// slice of values. An empty slice yields the zero Stats.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	// initialize min and max with the first value
	min := values[0]
	max := values[0]

	var sum float64
	for _, v := range values {
		sum += v

		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	mean := sum / float64(len(values))

	// sum of squared differences from the mean
	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	// population standard deviation
	stdDev := math.Sqrt(sumSquaredDiffs / float64(len(values)))

	return Stats{
		Mean:         mean,
		StdDeviation: stdDev,
		Min:          min,
		Max:          max,
	}
}
