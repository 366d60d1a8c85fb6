package numeric

import (
	"math"
	"sort"

	"documents-chunker/pkg/errors"
)

// Percentile computes the p-th percentile (p in [0, 1]) of values using
// linear interpolation between order statistics. A single value is its own
// percentile at any p.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewInvalidArgument("percentile of empty slice")
	}
	if p < 0 || p > 1 {
		return 0, errors.Newf(errors.InvalidArgument, "BAD_PERCENTILE", "percentile must be within [0, 1], got %g", p)
	}
	if len(values) == 1 {
		return values[0], nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}

// FilterSplitIndices keeps only indices whose score is at or below the given
// percentile threshold and that are at least minDistance apart from the
// previously kept index, scanning greedily left to right.
func FilterSplitIndices(indices []int, scores []float64, percentile float64, minDistance int) ([]int, error) {
	if len(indices) != len(scores) {
		return nil, errors.Newf(errors.InvalidArgument, "LENGTH_MISMATCH", "got %d indices but %d scores", len(indices), len(scores))
	}
	if len(indices) == 0 {
		return nil, nil
	}

	threshold, err := Percentile(scores, percentile)
	if err != nil {
		return nil, err
	}

	var kept []int
	lastKept := math.MinInt
	for i, idx := range indices {
		if scores[i] > threshold {
			continue
		}
		if len(kept) > 0 && idx-lastKept < minDistance {
			continue
		}
		kept = append(kept, idx)
		lastKept = idx
	}
	return kept, nil
}
