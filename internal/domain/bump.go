package domain

import "math"

// BumpTerm is one axis of a Gaussian bump.
type BumpTerm struct {
	Param   string
	Optimum float64
	Sigma   float64
}

// Bump is exp(-0.5 * sum(((v - opt) / sigma)^2)) over its terms. Terms are
// summed in declaration order so repeated evaluations are bit-identical.
type Bump []BumpTerm

func (b Bump) At(values map[string]float64) float64 {
	term := 0.0
	for _, t := range b {
		d := (values[t.Param] - t.Optimum) / t.Sigma
		term += d * d
	}
	return math.Exp(-0.5 * term)
}

// Peak returns base + gain*bump.
func Peak(base, gain float64, b Bump) MetricFunc {
	return func(values map[string]float64) float64 {
		return base + gain*b.At(values)
	}
}

// Trough returns base - reduction*bump.
func Trough(base, reduction float64, b Bump) MetricFunc {
	return func(values map[string]float64) float64 {
		return base - reduction*b.At(values)
	}
}
