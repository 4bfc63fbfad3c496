package empirical

import (
	"math"
	"testing"
)

func TestPolyFitExactCubic(t *testing.T) {
	f := func(x float64) float64 { return 2 - x + 0.5*x*x + 0.25*x*x*x }
	var pts []Point
	for _, x := range []float64{-2, -1, 0, 1, 2, 3} {
		pts = append(pts, Point{X: x, Y: f(x)})
	}

	poly, err := PolyFit(pts, 3)
	if err != nil {
		t.Fatalf("PolyFit: %v", err)
	}
	for _, x := range []float64{-1.5, 0.3, 2.7} {
		if got := poly.Eval(x); math.Abs(got-f(x)) > 1e-9 {
			t.Errorf("Eval(%v) = %v, want %v", x, got, f(x))
		}
	}
}

func TestPolyFitWideRange(t *testing.T) {
	pts := []Point{{1100, 1}, {1125, 4}, {1150, 9}, {1175, 4}, {1200, 1}}
	poly, err := PolyFit(pts, 3)
	if err != nil {
		t.Fatalf("PolyFit on 1100..1200: %v", err)
	}
	if math.IsNaN(poly.Eval(1160)) {
		t.Error("expected finite value")
	}
}

func TestPolyFitResidualsAreLeastSquares(t *testing.T) {
	pts := []Point{{0, 1.1}, {1, 1.9}, {2, 3.2}, {3, 3.8}, {4, 5.3}, {5, 5.9}}
	poly, err := PolyFit(pts, 1)
	if err != nil {
		t.Fatal(err)
	}
	res := poly.Residuals(pts)

	// Normal equations: residuals are orthogonal to every column.
	sum, sumX := 0.0, 0.0
	for i, r := range res {
		sum += r
		sumX += r * pts[i].X
	}
	if math.Abs(sum) > 1e-9 || math.Abs(sumX) > 1e-9 {
		t.Errorf("residuals not orthogonal: sum=%g sumX=%g", sum, sumX)
	}

	nonzero := false
	for _, r := range res {
		if math.Abs(r) > 1e-6 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Error("a line should not interpolate these points exactly")
	}
}

func TestSmoothingDegree(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want int
	}{
		{"empty", nil, 0},
		{"one", []Point{{1, 1}}, 0},
		{"two", []Point{{1, 1}, {2, 2}}, 1},
		{"three", []Point{{1, 1}, {2, 2}, {3, 1}}, 2},
		{"many", []Point{{1, 1}, {2, 2}, {3, 1}, {4, 0}, {5, 3}}, 3},
		{"repeated x", []Point{{1, 1}, {1, 2}, {1, 3}}, 0},
		{"two distinct x", []Point{{1, 1}, {1, 2}, {2, 3}, {2, 4}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SmoothingDegree(tt.pts); got != tt.want {
				t.Errorf("SmoothingDegree = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPolyFitErrors(t *testing.T) {
	if _, err := PolyFit(nil, 0); err == nil {
		t.Error("expected error for no points")
	}
	if _, err := PolyFit([]Point{{0, 1}, {1, 2}}, 2); err == nil {
		t.Error("expected error for degree above count-1")
	}
}
