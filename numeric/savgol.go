// Package numeric provides the math kernels the boundary strategies rely on:
// Savitzky-Golay smoothing, local-minima detection, windowed cosine
// similarity and percentile filtering.
package numeric

import (
	"math"

	"documents-chunker/pkg/errors"
)

// singularPivotThreshold is the smallest pivot magnitude the Gauss-Jordan
// inversion accepts before declaring the matrix singular.
const singularPivotThreshold = 1e-10

// SavitzkyGolay smooths data (or computes its derivative) by least-squares
// fitting a polynomial over a sliding window. window must be odd and greater
// than polyOrder. derivative 0 means plain smoothing. Boundaries are handled
// by reflection.
func SavitzkyGolay(data []float64, window, polyOrder, derivative int) ([]float64, error) {
	if window < 1 || window%2 == 0 {
		return nil, errors.Newf(errors.InvalidArgument, "BAD_WINDOW", "window size must be odd and positive, got %d", window)
	}
	if window <= polyOrder {
		return nil, errors.Newf(errors.InvalidArgument, "BAD_WINDOW", "window size %d must be greater than polynomial order %d", window, polyOrder)
	}
	if derivative < 0 || derivative > polyOrder {
		return nil, errors.Newf(errors.InvalidArgument, "BAD_DERIVATIVE", "derivative order %d must be within [0, %d]", derivative, polyOrder)
	}

	coeffs, err := savgolCoefficients(window, polyOrder, derivative)
	if err != nil {
		return nil, err
	}

	n := len(data)
	out := make([]float64, n)
	half := window / 2
	for i := 0; i < n; i++ {
		var acc float64
		for j := 0; j < window; j++ {
			acc += coeffs[j] * data[reflectIndex(i+j-half, n)]
		}
		out[i] = acc
	}
	return out, nil
}

// savgolCoefficients derives the convolution kernel from a Vandermonde
// matrix via normal equations.
func savgolCoefficients(window, polyOrder, derivative int) ([]float64, error) {
	m := polyOrder + 1
	half := window / 2

	// Vandermonde matrix over x = -half..half.
	vand := make([][]float64, window)
	for j := 0; j < window; j++ {
		x := float64(j - half)
		row := make([]float64, m)
		pow := 1.0
		for k := 0; k < m; k++ {
			row[k] = pow
			pow *= x
		}
		vand[j] = row
	}

	// Normal equations: (J^T J) in m x m.
	jtj := make([][]float64, m)
	for r := 0; r < m; r++ {
		jtj[r] = make([]float64, m)
		for c := 0; c < m; c++ {
			var sum float64
			for j := 0; j < window; j++ {
				sum += vand[j][r] * vand[j][c]
			}
			jtj[r][c] = sum
		}
	}

	inv, err := gaussJordanInvert(jtj)
	if err != nil {
		return nil, err
	}

	// Convolution coefficients for the requested derivative, scaled by d!.
	scale := factorial(derivative)
	coeffs := make([]float64, window)
	for j := 0; j < window; j++ {
		var sum float64
		for k := 0; k < m; k++ {
			sum += inv[derivative][k] * vand[j][k]
		}
		coeffs[j] = sum * scale
	}
	return coeffs, nil
}

// gaussJordanInvert inverts a square matrix in place using Gauss-Jordan
// elimination with partial pivoting.
func gaussJordanInvert(a [][]float64) ([][]float64, error) {
	n := len(a)
	work := make([][]float64, n)
	inv := make([][]float64, n)
	for i := 0; i < n; i++ {
		work[i] = make([]float64, n)
		copy(work[i], a[i])
		inv[i] = make([]float64, n)
		inv[i][i] = 1
	}

	for col := 0; col < n; col++ {
		// Partial pivoting: pick the row with the largest magnitude.
		pivotRow := col
		for r := col + 1; r < n; r++ {
			if math.Abs(work[r][col]) > math.Abs(work[pivotRow][col]) {
				pivotRow = r
			}
		}
		if math.Abs(work[pivotRow][col]) < singularPivotThreshold {
			return nil, errors.Newf(errors.SingularMatrix, "SINGULAR_MATRIX", "pivot %g below threshold at column %d", work[pivotRow][col], col)
		}
		work[col], work[pivotRow] = work[pivotRow], work[col]
		inv[col], inv[pivotRow] = inv[pivotRow], inv[col]

		pivot := work[col][col]
		for c := 0; c < n; c++ {
			work[col][c] /= pivot
			inv[col][c] /= pivot
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := work[r][col]
			if factor == 0 {
				continue
			}
			for c := 0; c < n; c++ {
				work[r][c] -= factor * work[col][c]
				inv[r][c] -= factor * inv[col][c]
			}
		}
	}
	return inv, nil
}

// reflectIndex maps an out-of-range index back into [0, n) by mirroring at
// the boundaries.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}
