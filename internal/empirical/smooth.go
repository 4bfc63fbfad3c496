package empirical

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/quimicai/surfacelab/internal/numeric"
)

const (
	// CurveResolution is the number of points the fitted polynomial is
	// evaluated at.
	CurveResolution = 300
	// GridResolution is the side of the interpolated surface grid.
	GridResolution = 50
)

// Curve is the original scatter plus the fitted smooth curve.
type Curve struct {
	Variable string     `json:"variable"`
	Metric   string     `json:"metric"`
	Points   []Point    `json:"points"`
	X        []float64  `json:"x"`
	Y        []float64  `json:"y"`
	Poly     Polynomial `json:"poly"`
}

// Empty reports whether there was nothing to fit.
func (c *Curve) Empty() bool {
	return c == nil || len(c.Points) == 0
}

// Surface is a GridResolution×GridResolution interpolated grid. Z[i][j]
// belongs to (X[j], Y[i]); cells outside the samples' hull hold NaN.
type Surface struct {
	VarX    string
	VarY    string
	Metric  string
	X       []float64
	Y       []float64
	Z       [][]float64
	Samples []Sample3
	// NoData is set when the samples cannot support interpolation. Z is
	// then nil.
	NoData bool
	Reason string
}

// Defined reports whether cell (i, j) carries a value.
func (s *Surface) Defined(i, j int) bool {
	if s == nil || s.NoData || i >= len(s.Z) || j >= len(s.Z[i]) {
		return false
	}
	return !math.IsNaN(s.Z[i][j])
}

// DefinedCount is the number of cells with a value.
func (s *Surface) DefinedCount() int {
	n := 0
	for i := range s.Z {
		for j := range s.Z[i] {
			if s.Defined(i, j) {
				n++
			}
		}
	}
	return n
}

// MarshalJSON encodes undefined cells as null.
func (s *Surface) MarshalJSON() ([]byte, error) {
	z := make([][]*float64, len(s.Z))
	for i, row := range s.Z {
		z[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				v := row[j]
				z[i][j] = &v
			}
		}
	}
	samples := make([][3]float64, len(s.Samples))
	for i, p := range s.Samples {
		samples[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return json.Marshal(struct {
		VarX    string       `json:"var_x"`
		VarY    string       `json:"var_y"`
		Metric  string       `json:"metric"`
		X       []float64    `json:"x"`
		Y       []float64    `json:"y"`
		Z       [][]*float64 `json:"z"`
		Samples [][3]float64 `json:"samples"`
		NoData  bool         `json:"no_data"`
		Reason  string       `json:"reason,omitempty"`
	}{s.VarX, s.VarY, s.Metric, s.X, s.Y, z, samples, s.NoData, s.Reason})
}

// Smoothed is exactly one of a curve or a surface.
type Smoothed struct {
	Curve   *Curve   `json:"curve,omitempty"`
	Surface *Surface `json:"surface,omitempty"`
}

// Smooth dispatches on the number of selected variables.
func Smooth(t SampleTable, vars []string, metric string) (*Smoothed, error) {
	switch len(vars) {
	case 1:
		c, err := SmoothCurve(t, vars[0], metric)
		if err != nil {
			return nil, err
		}
		return &Smoothed{Curve: c}, nil
	case 2:
		s, err := SmoothSurface(t, vars[0], vars[1], metric)
		if err != nil {
			return nil, err
		}
		return &Smoothed{Surface: s}, nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrInvalidSelection, len(vars))
}

// SmoothCurve fits a polynomial of degree SmoothingDegree to the sorted
// pairs and samples it at CurveResolution points over [min x, max x]. No
// samples yields an empty curve; a single sample or a single distinct x
// yields a constant.
func SmoothCurve(t SampleTable, variable, metric string) (*Curve, error) {
	pts, err := t.Pairs(variable, metric)
	if err != nil {
		return nil, err
	}
	c := &Curve{Variable: variable, Metric: metric, Points: pts}
	if len(pts) == 0 {
		return c, nil
	}

	poly, err := PolyFit(pts, SmoothingDegree(pts))
	if err != nil {
		return nil, err
	}
	c.Poly = poly
	c.X = numeric.Linspace(pts[0].X, pts[len(pts)-1].X, CurveResolution)
	c.Y = poly.EvalAll(c.X)
	return c, nil
}

// SmoothSurface interpolates the scattered samples onto a regular grid. When
// fewer than 3 non-collinear samples exist the surface is returned with
// NoData set rather than an error.
func SmoothSurface(t SampleTable, varX, varY, metric string) (*Surface, error) {
	samples, err := t.Triples(varX, varY, metric)
	if err != nil {
		return nil, err
	}
	s := &Surface{VarX: varX, VarY: varY, Metric: metric, Samples: samples}

	rbf, err := NewCubicRBF(samples)
	if err != nil {
		if errors.Is(err, ErrNoSamples) {
			s.NoData, s.Reason = true, err.Error()
			return s, nil
		}
		return nil, err
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, p := range samples {
		xs[i], ys[i] = p.X, p.Y
	}
	xlo, xhi := numeric.MinMax(xs)
	ylo, yhi := numeric.MinMax(ys)
	s.X = numeric.Linspace(xlo, xhi, GridResolution)
	s.Y = numeric.Linspace(ylo, yhi, GridResolution)
	s.Z = make([][]float64, GridResolution)
	for i, y := range s.Y {
		s.Z[i] = make([]float64, GridResolution)
		for j, x := range s.X {
			s.Z[i][j] = rbf.Eval(x, y)
		}
	}
	return s, nil
}
