package numeric

import "math"

// FindLocalMinima flags indices where the smoothed first derivative is near
// zero and the second derivative is positive.
func FindLocalMinima(data []float64, window, polyOrder int, tolerance float64) ([]int, error) {
	first, err := SavitzkyGolay(data, window, polyOrder, 1)
	if err != nil {
		return nil, err
	}
	second, err := SavitzkyGolay(data, window, polyOrder, 2)
	if err != nil {
		return nil, err
	}

	var minima []int
	for i := range data {
		if math.Abs(first[i]) < tolerance && second[i] > 0 {
			minima = append(minima, i)
		}
	}
	return minima, nil
}
