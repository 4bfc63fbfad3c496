// Package numeric holds small numerical helpers shared by the evaluators.
package numeric

import "math"

// Linspace returns n evenly spaced values over [low, high], endpoints
// included. n == 1 yields just low; n < 1 yields nil.
func Linspace(low, high float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = low
		return out
	}
	step := (high - low) / float64(n-1)
	for i := 0; i < n-1; i++ {
		out[i] = low + float64(i)*step
	}
	out[n-1] = high
	return out
}

// MinMax returns the extremes of vals ignoring NaN, or (0, 0) if none remain.
func MinMax(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// Flatten concatenates the rows of a grid.
func Flatten(grid [][]float64) []float64 {
	n := 0
	for _, row := range grid {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}
