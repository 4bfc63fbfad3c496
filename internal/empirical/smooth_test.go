package empirical

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func testTable() SampleTable {
	return SampleTable{
		Variables: map[string][]float64{
			"a": {3, 1, 2, 5, 4},
			"b": {0, 1, 0, 1, 0.5},
		},
		Metrics: map[string][]float64{
			"m":     {9, 1, 4, 25, 16},
			"short": {1, 2},
			"empty": {},
		},
	}
}

func TestSmoothCurve(t *testing.T) {
	c, err := SmoothCurve(testTable(), "a", "m")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.X) != CurveResolution || len(c.Y) != CurveResolution {
		t.Fatalf("expected %d fitted points, got %d/%d", CurveResolution, len(c.X), len(c.Y))
	}
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].X < c.Points[i-1].X {
			t.Fatal("points not sorted by x")
		}
	}
	if c.X[0] != 1 || c.X[len(c.X)-1] != 5 {
		t.Errorf("fit span = [%v, %v], want [1, 5]", c.X[0], c.X[len(c.X)-1])
	}
	if c.Poly.Degree() != 3 {
		t.Errorf("degree = %d, want 3", c.Poly.Degree())
	}
	// y = x^2 is inside the cubic family.
	if got := c.Poly.Eval(2.5); math.Abs(got-6.25) > 1e-9 {
		t.Errorf("Eval(2.5) = %v, want 6.25", got)
	}
}

func TestSmoothCurveDegenerate(t *testing.T) {
	c, err := SmoothCurve(testTable(), "a", "empty")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Empty() {
		t.Error("expected empty curve")
	}

	table := SampleTable{
		Variables: map[string][]float64{"a": {2}},
		Metrics:   map[string][]float64{"m": {7}},
	}
	c, err = SmoothCurve(table, "a", "m")
	if err != nil {
		t.Fatal(err)
	}
	if c.Poly.Degree() != 0 {
		t.Errorf("degree = %d, want 0", c.Poly.Degree())
	}
	for _, y := range c.Y {
		if y != 7 {
			t.Fatalf("expected constant 7, got %v", y)
		}
	}
}

func TestSmoothCurveTruncatesUnequalColumns(t *testing.T) {
	c, err := SmoothCurve(testTable(), "a", "short")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Points) != 2 {
		t.Errorf("expected 2 paired points, got %d", len(c.Points))
	}
	if c.Poly.Degree() != 1 {
		t.Errorf("degree = %d, want 1", c.Poly.Degree())
	}
}

func TestSmoothSurface(t *testing.T) {
	s, err := SmoothSurface(testTable(), "a", "b", "m")
	if err != nil {
		t.Fatal(err)
	}
	if s.NoData {
		t.Fatalf("unexpected NoData: %s", s.Reason)
	}
	if len(s.Z) != GridResolution {
		t.Fatalf("rows = %d, want %d", len(s.Z), GridResolution)
	}
	for _, row := range s.Z {
		if len(row) != GridResolution {
			t.Fatalf("cols = %d, want %d", len(row), GridResolution)
		}
	}
	if s.DefinedCount() == 0 {
		t.Fatal("expected some defined cells")
	}
	if s.DefinedCount() == GridResolution*GridResolution {
		t.Error("corner (x=1, y=0) is outside the hull and should be undefined")
	}
	if s.Defined(0, 0) {
		t.Error("expected cell at (x=1, y=0) to be undefined")
	}
}

func TestCubicRBFInterpolatesSamples(t *testing.T) {
	samples := []Sample3{{0, 0, 1}, {1, 0, 2}, {0, 1, 3}, {1, 1, 5}, {0.5, 0.5, 0}}
	rbf, err := NewCubicRBF(samples)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range samples {
		if got := rbf.Eval(s.X, s.Y); math.Abs(got-s.Z) > 1e-8 {
			t.Errorf("Eval(%v, %v) = %v, want %v", s.X, s.Y, got, s.Z)
		}
	}
	if !math.IsNaN(rbf.Eval(2, 2)) {
		t.Error("expected NaN outside the hull")
	}
	if rbf.Inside(-0.1, 0.5) {
		t.Error("expected point left of hull to be outside")
	}
}

func TestSmoothSurfaceNoData(t *testing.T) {
	tests := []struct {
		name  string
		table SampleTable
	}{
		{
			"empty metric column",
			SampleTable{
				Variables: map[string][]float64{"a": {1, 2, 3}, "b": {3, 1, 2}},
				Metrics:   map[string][]float64{"m": {}},
			},
		},
		{
			"two samples",
			SampleTable{
				Variables: map[string][]float64{"a": {1, 2}, "b": {3, 1}},
				Metrics:   map[string][]float64{"m": {1, 2}},
			},
		},
		{
			"collinear",
			SampleTable{
				Variables: map[string][]float64{"a": {1, 2, 3, 4}, "b": {2, 4, 6, 8}},
				Metrics:   map[string][]float64{"m": {1, 2, 3, 4}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SmoothSurface(tt.table, "a", "b", "m")
			if err != nil {
				t.Fatalf("expected flagged surface, got error %v", err)
			}
			if !s.NoData {
				t.Error("expected NoData")
			}
			if s.Defined(0, 0) {
				t.Error("NoData surface must not report defined cells")
			}
		})
	}
}

func TestSmoothSelection(t *testing.T) {
	if _, err := Smooth(testTable(), nil, "m"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", err)
	}
	if _, err := Smooth(testTable(), []string{"a", "b", "a"}, "m"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", err)
	}
	if _, err := Smooth(testTable(), []string{"z"}, "m"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
	out, err := Smooth(testTable(), []string{"a", "b"}, "m")
	if err != nil || out.Surface == nil {
		t.Fatalf("expected surface, got %v, %v", out, err)
	}
}

func TestSurfaceJSONUsesNull(t *testing.T) {
	s := &Surface{X: []float64{0, 1}, Y: []float64{0}, Z: [][]float64{{1, math.NaN()}}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"z":[[1,null]]`) {
		t.Errorf("unexpected encoding: %s", data)
	}
}
