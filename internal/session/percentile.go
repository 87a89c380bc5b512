package session

import (
	"math"
	"slices"
)

type RTStats struct {
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	Count int     `json:"count"`
}

// Percentile returns the nearest-rank value at index round((n-1)*p) of the sorted samples.
// Samples are not modified. An empty slice yields 0.
func Percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	idx := int(math.Round(float64(len(sorted)-1) * p))
	idx = min(max(idx, 0), len(sorted)-1)
	return sorted[idx]
}

func Percentiles(samples []float64) RTStats {
	if len(samples) == 0 {
		return RTStats{}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return RTStats{
		P50:   percentileSorted(sorted, 0.5),
		P90:   percentileSorted(sorted, 0.9),
		Count: len(sorted),
	}
}
