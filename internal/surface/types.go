package surface

import "github.com/quimicai/surfacelab/internal/numeric"

// Selection lists the 1 or 2 parameters varied in an evaluation.
type Selection []string

// Range is the swept sub-interval for one selected parameter.
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Curve holds index-synchronized samples for a single varied parameter.
type Curve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Surface holds three N×N grids. Z[i][j] is the metric at (X[i][j], Y[i][j]).
type Surface struct {
	X [][]float64 `json:"x"`
	Y [][]float64 `json:"y"`
	Z [][]float64 `json:"z"`
}

// Result is exactly one of a curve or a surface.
type Result struct {
	Selection Selection `json:"selection"`
	Points    int       `json:"points"`
	Curve     *Curve    `json:"curve,omitempty"`
	Surface   *Surface  `json:"surface,omitempty"`
}

func (r *Result) Dims() int {
	switch {
	case r == nil:
		return 0
	case r.Surface != nil:
		return 2
	case r.Curve != nil:
		return 1
	}
	return 0
}

// Values returns every metric value in the result, row-major for surfaces.
func (r *Result) Values() []float64 {
	switch r.Dims() {
	case 1:
		return r.Curve.Y
	case 2:
		return numeric.Flatten(r.Surface.Z)
	}
	return nil
}

// Bounds returns the min and max metric value, skipping NaN. An empty result
// yields (0, 0).
func (r *Result) Bounds() (float64, float64) {
	return numeric.MinMax(r.Values())
}

// Spread is max - min of the metric values.
func (r *Result) Spread() float64 {
	lo, hi := r.Bounds()
	return hi - lo
}
