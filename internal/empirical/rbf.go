package empirical

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CubicRBF is a polyharmonic spline phi(r) = r^3 with a linear polynomial
// tail. It interpolates the samples exactly and is C2 smooth. Evaluation is
// restricted to the convex hull of the samples.
type CubicRBF struct {
	centers []vec2
	weights []float64
	tail    [3]float64
	hull    []vec2

	x0, sx float64
	y0, sy float64
}

// NewCubicRBF fits the interpolant. It needs at least 3 distinct,
// non-collinear samples; otherwise it returns ErrNoSamples.
func NewCubicRBF(samples []Sample3) (*CubicRBF, error) {
	if len(samples) < 3 {
		return nil, fmt.Errorf("%w: %d samples, need 3 non-collinear", ErrNoSamples, len(samples))
	}
	r := &CubicRBF{}
	r.x0, r.sx = span(samples, func(s Sample3) float64 { return s.X })
	r.y0, r.sy = span(samples, func(s Sample3) float64 { return s.Y })
	if r.sx == 0 || r.sy == 0 {
		return nil, fmt.Errorf("%w: samples are collinear", ErrNoSamples)
	}

	centers, zs := r.dedupe(samples)
	r.hull = convexHull(centers)
	if len(r.hull) < 3 {
		return nil, fmt.Errorf("%w: samples are collinear", ErrNoSamples)
	}

	n := len(centers)
	size := n + 3
	a := mat.NewDense(size, size, nil)
	b := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, phi(dist(centers[i], centers[j])))
		}
		a.Set(i, n, 1)
		a.Set(i, n+1, centers[i].x)
		a.Set(i, n+2, centers[i].y)
		a.Set(n, i, 1)
		a.Set(n+1, i, centers[i].x)
		a.Set(n+2, i, centers[i].y)
		b.SetVec(i, zs[i])
	}

	var lu mat.LU
	lu.Factorize(a)
	var sol mat.VecDense
	if err := lu.SolveVecTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSamples, err)
	}

	r.centers = centers
	r.weights = make([]float64, n)
	for i := 0; i < n; i++ {
		r.weights[i] = sol.AtVec(i)
	}
	r.tail = [3]float64{sol.AtVec(n), sol.AtVec(n + 1), sol.AtVec(n + 2)}
	return r, nil
}

// Inside reports whether (x, y) lies within the samples' convex hull.
func (r *CubicRBF) Inside(x, y float64) bool {
	return insideHull(r.hull, r.normalize(x, y))
}

// Eval returns the interpolated value, or NaN outside the convex hull.
func (r *CubicRBF) Eval(x, y float64) float64 {
	p := r.normalize(x, y)
	if !insideHull(r.hull, p) {
		return math.NaN()
	}
	v := r.tail[0] + r.tail[1]*p.x + r.tail[2]*p.y
	for i, c := range r.centers {
		v += r.weights[i] * phi(dist(p, c))
	}
	return v
}

func (r *CubicRBF) normalize(x, y float64) vec2 {
	return vec2{x: (x - r.x0) / r.sx, y: (y - r.y0) / r.sy}
}

// dedupe merges samples at identical coordinates, averaging their values.
func (r *CubicRBF) dedupe(samples []Sample3) ([]vec2, []float64) {
	index := make(map[vec2]int, len(samples))
	var centers []vec2
	var sums []float64
	var counts []int
	for _, s := range samples {
		p := r.normalize(s.X, s.Y)
		if i, ok := index[p]; ok {
			sums[i] += s.Z
			counts[i]++
			continue
		}
		index[p] = len(centers)
		centers = append(centers, p)
		sums = append(sums, s.Z)
		counts = append(counts, 1)
	}
	for i := range sums {
		sums[i] /= float64(counts[i])
	}
	return centers, sums
}

func phi(r float64) float64 {
	return r * r * r
}

func dist(a, b vec2) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

func span(samples []Sample3, get func(Sample3) float64) (float64, float64) {
	lo, hi := get(samples[0]), get(samples[0])
	for _, s := range samples[1:] {
		v := get(s)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi - lo
}
