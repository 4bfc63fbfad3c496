package empirical

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxDegree caps the polynomial degree used for smoothing.
const MaxDegree = 3

// Polynomial is a fitted polynomial in the normalized variable
// t = (x - Center) / Scale. Coeffs are in ascending order.
type Polynomial struct {
	Coeffs []float64 `json:"coeffs"`
	Center float64   `json:"center"`
	Scale  float64   `json:"scale"`
}

func (p Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// Eval evaluates the polynomial with Horner's scheme.
func (p Polynomial) Eval(x float64) float64 {
	if len(p.Coeffs) == 0 {
		return math.NaN()
	}
	t := (x - p.Center) / p.Scale
	y := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		y = y*t + p.Coeffs[i]
	}
	return y
}

// EvalAll evaluates every x in xs.
func (p Polynomial) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = p.Eval(x)
	}
	return out
}

// Residuals returns y_i - p(x_i).
func (p Polynomial) Residuals(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, pt := range pts {
		out[i] = pt.Y - p.Eval(pt.X)
	}
	return out
}

// SmoothingDegree is min(MaxDegree, count-1, distinct-1), never below 0.
// Repeated x values cannot support a higher degree, so distinct abscissae
// bound it as well.
func SmoothingDegree(pts []Point) int {
	distinct := 0
	seen := make(map[float64]struct{}, len(pts))
	for _, p := range pts {
		if _, ok := seen[p.X]; !ok {
			seen[p.X] = struct{}{}
			distinct++
		}
	}
	d := min(MaxDegree, len(pts)-1, distinct-1)
	return max(d, 0)
}

// PolyFit fits a least-squares polynomial of the given degree. The abscissa
// is centered and scaled before building the Vandermonde matrix so that
// wide ranges like 1100..1200 stay well conditioned.
func PolyFit(pts []Point, degree int) (Polynomial, error) {
	if len(pts) == 0 {
		return Polynomial{}, ErrNoSamples
	}
	if degree < 0 || degree > len(pts)-1 {
		return Polynomial{}, fmt.Errorf("empirical: degree %d invalid for %d samples", degree, len(pts))
	}

	lo, hi := pts[0].X, pts[0].X
	sum := 0.0
	for _, p := range pts {
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X)
		sum += p.X
	}
	poly := Polynomial{Center: sum / float64(len(pts)), Scale: (hi - lo) / 2}
	if poly.Scale == 0 {
		poly.Scale = 1
	}

	m, n := len(pts), degree+1
	a := mat.NewDense(m, n, nil)
	b := mat.NewVecDense(m, nil)
	for i, p := range pts {
		t := (p.X - poly.Center) / poly.Scale
		v := 1.0
		for j := 0; j < n; j++ {
			a.Set(i, j, v)
			v *= t
		}
		b.SetVec(i, p.Y)
	}

	var qr mat.QR
	qr.Factorize(a)
	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, b); err != nil {
		return Polynomial{}, fmt.Errorf("empirical: least squares: %w", err)
	}
	poly.Coeffs = make([]float64, n)
	for j := 0; j < n; j++ {
		poly.Coeffs[j] = c.AtVec(j)
	}
	return poly, nil
}
