package numeric

import (
	"math"

	"documents-chunker/pkg/errors"
)

// CosineSimilarity returns the cosine of the angle between a and b. ok is
// false when either vector has zero norm, which leaves the similarity
// undefined.
func CosineSimilarity(a, b []float64) (similarity float64, ok bool) {
	if len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// WindowedCosineSimilarity returns, for each adjacent pair of embeddings, the
// average adjacent-pair cosine similarity over a centered window of pairs.
// window must be odd and at least 3. Pairs with a zero-norm vector are
// ignored; a window with no defined pairs yields 0.
func WindowedCosineSimilarity(embeddings [][]float64, window int) ([]float64, error) {
	if window < 3 || window%2 == 0 {
		return nil, errors.Newf(errors.InvalidArgument, "BAD_WINDOW", "window size must be odd and at least 3, got %d", window)
	}
	if len(embeddings) < 2 {
		return nil, nil
	}

	pairs := len(embeddings) - 1
	// Precompute adjacent-pair similarities once.
	sims := make([]float64, pairs)
	defined := make([]bool, pairs)
	for i := 0; i < pairs; i++ {
		sims[i], defined[i] = CosineSimilarity(embeddings[i], embeddings[i+1])
	}

	half := window / 2
	out := make([]float64, pairs)
	for i := 0; i < pairs; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= pairs {
			hi = pairs - 1
		}
		var sum float64
		var count int
		for j := lo; j <= hi; j++ {
			if !defined[j] {
				continue
			}
			sum += sims[j]
			count++
		}
		if count > 0 {
			out[i] = sum / float64(count)
		}
	}
	return out, nil
}
