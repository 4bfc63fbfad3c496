package surface

import (
	"fmt"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/numeric"
)

// Evaluate samples fn over the selected parameters. Parameters outside the
// selection are fixed at the midpoint of their range in params, never of an
// override. A selected parameter without an override sweeps its full range.
func Evaluate(fn domain.MetricFunc, params domain.ParameterSet, sel Selection, overrides map[string]Range, n int) (*Result, error) {
	if len(sel) == 0 || len(sel) > 2 {
		return nil, &SelectionError{Count: len(sel)}
	}
	if len(sel) == 2 && sel[0] == sel[1] {
		return nil, fmt.Errorf("%w: %s selected twice", ErrInvalidSelection, sel[0])
	}
	if fn == nil {
		return nil, ErrNilMetric
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, n)
	}

	axes := make([][]float64, len(sel))
	for i, name := range sel {
		r, err := resolveRange(params, name, overrides)
		if err != nil {
			return nil, err
		}
		axes[i] = numeric.Linspace(r.Low, r.High, n)
	}

	fixed := params.Midpoints()
	res := &Result{Selection: append(Selection(nil), sel...), Points: n}

	if len(sel) == 1 {
		res.Curve = evalCurve(fn, fixed, sel[0], axes[0])
		return res, nil
	}
	res.Surface = evalSurface(fn, fixed, sel[0], sel[1], axes[0], axes[1])
	return res, nil
}

func resolveRange(params domain.ParameterSet, name string, overrides map[string]Range) (Range, error) {
	p, ok := params.Get(name)
	if !ok {
		return Range{}, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	r, ok := overrides[name]
	if !ok {
		return Range{Low: p.Low, High: p.High}, nil
	}
	if !p.Contains(r.Low, r.High) {
		return Range{}, fmt.Errorf("%w: %s [%g, %g] not within [%g, %g]",
			ErrRangeOutOfBounds, name, r.Low, r.High, p.Low, p.High)
	}
	return r, nil
}

func assignment(fixed map[string]float64) map[string]float64 {
	args := make(map[string]float64, len(fixed))
	for k, v := range fixed {
		args[k] = v
	}
	return args
}

func evalCurve(fn domain.MetricFunc, fixed map[string]float64, name string, xs []float64) *Curve {
	c := &Curve{X: xs, Y: make([]float64, len(xs))}
	for i, x := range xs {
		args := assignment(fixed)
		args[name] = x
		c.Y[i] = fn(args)
	}
	return c
}

func evalSurface(fn domain.MetricFunc, fixed map[string]float64, nameX, nameY string, xs, ys []float64) *Surface {
	n := len(xs)
	s := &Surface{
		X: make([][]float64, n),
		Y: make([][]float64, n),
		Z: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		s.X[i] = make([]float64, n)
		s.Y[i] = make([]float64, n)
		s.Z[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			s.X[i][j] = xs[j]
			s.Y[i][j] = ys[i]
			args := assignment(fixed)
			args[nameX] = xs[j]
			args[nameY] = ys[i]
			s.Z[i][j] = fn(args)
		}
	}
	return s
}
