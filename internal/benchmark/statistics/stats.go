// Package statistics summarises the periodic throughput samples of a run.
package statistics

import (
	"math"
	"sort"
)

// Stats holds statistical measures for a series of rates
type Stats struct {
	N      int
	Median float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P5     float64 // slowest 5% boundary
	CV     float64 // coefficient of variation (%)
	Values []float64
}

// Median of values; 0 for an empty series.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}

// Mean is the arithmetic mean.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the sample standard deviation.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

// CV is stddev/mean in percent.
func CV(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / math.Abs(mean) * 100
}

// Percentile uses nearest rank on sorted values, p in [0,100].
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// Calculate computes every measure for values. The input is not modified.
func Calculate(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sorted := sortedCopy(values)
	return Stats{
		N:      len(values),
		Median: Median(values),
		Mean:   Mean(values),
		StdDev: StdDev(values),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P5:     Percentile(sorted, 5),
		CV:     CV(values),
		Values: append([]float64(nil), values...),
	}
}

// HasOverlap reports whether the value ranges of a and b intersect.
func HasOverlap(a, b Stats) bool {
	return !(a.Min > b.Max || b.Min > a.Max)
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
