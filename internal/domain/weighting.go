package domain

import (
	"math"
)

// WeightedMean computes Σ(w·v)/Σw over the items that have a value.
// Items whose value getter reports false are absent: they contribute to
// neither the numerator nor the denominator. Non-positive and non-finite
// weights are treated as zero.
//
// ok is false when the included weights sum to zero, in which case the
// caller must treat the rollup as absent rather than as 0. total is the
// included weight sum, useful for normalizing shares.
//
// The same helper drives the criterion, category, and agent rollups.
func WeightedMean[T any](
	items []T,
	weight func(T) float64,
	value func(T) (float64, bool),
) (mean float64, total float64, ok bool) {
	var sum float64
	for _, item := range items {
		v, present := value(item)
		if !present {
			continue
		}
		w := weight(item)
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		sum += w * v
		total += w
	}
	if total == 0 {
		return 0, 0, false
	}
	return sum / total, total, true
}

// Round rounds v to the given number of decimal places. Negative precision
// leaves v unchanged.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}
