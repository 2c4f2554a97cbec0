package statistics

import (
	"math"
	"sort"
)

// MannWhitneyU returns the two-tailed p-value (normal approximation) that a
// and b come from the same distribution.
func MannWhitneyU(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1.0
	}
	n1, n2 := len(a), len(b)

	type ranked struct {
		value float64
		fromA bool
	}
	all := make([]ranked, 0, n1+n2)
	for _, v := range a {
		all = append(all, ranked{v, true})
	}
	for _, v := range b {
		all = append(all, ranked{v, false})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].value < all[j].value })

	// Ties share their average rank.
	rankSumA := 0.0
	for i := 0; i < len(all); {
		j := i
		for j < len(all) && all[j].value == all[i].value {
			j++
		}
		avg := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if all[k].fromA {
				rankSumA += avg
			}
		}
		i = j
	}

	u1 := rankSumA - float64(n1*(n1+1))/2.0
	u := math.Min(u1, float64(n1*n2)-u1)

	meanU := float64(n1*n2) / 2.0
	stdU := math.Sqrt(float64(n1*n2*(n1+n2+1)) / 12.0)
	if stdU == 0 {
		return 1.0
	}
	z := (u - meanU) / stdU
	return 2.0 * normalCDF(-math.Abs(z))
}

func normalCDF(z float64) float64 {
	return 0.5 * (1.0 + math.Erf(z/math.Sqrt2))
}

// Drift compares the first and second half of a run's periodic rates. A
// significant negative MedianDiffPct means the engine slowed down as the
// database grew.
type Drift struct {
	Early         Stats
	Late          Stats
	MedianDiffPct float64
	PValue        float64
	HasOverlap    bool
	Significant   bool // p < 0.05
}

// MinDriftSamples is the smallest series Drift will split.
const MinDriftSamples = 4

// CalculateDrift splits rates in emission order. ok is false when there are
// too few samples to compare.
func CalculateDrift(rates []float64) (d Drift, ok bool) {
	if len(rates) < MinDriftSamples {
		return Drift{}, false
	}
	half := len(rates) / 2
	d.Early = Calculate(rates[:half])
	d.Late = Calculate(rates[half:])
	if d.Early.Median != 0 {
		d.MedianDiffPct = (d.Late.Median - d.Early.Median) / d.Early.Median * 100
	}
	d.PValue = MannWhitneyU(d.Early.Values, d.Late.Values)
	d.HasOverlap = HasOverlap(d.Early, d.Late)
	d.Significant = d.PValue < 0.05
	return d, true
}
