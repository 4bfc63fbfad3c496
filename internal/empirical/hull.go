package empirical

import "sort"

type vec2 struct{ x, y float64 }

func cross(o, a, b vec2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// convexHull returns the hull in counter-clockwise order using Andrew's
// monotone chain. Collinear points are dropped, so a degenerate input
// yields fewer than 3 vertices.
func convexHull(pts []vec2) []vec2 {
	if len(pts) < 3 {
		return append([]vec2(nil), pts...)
	}
	p := append([]vec2(nil), pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].x != p[j].x {
			return p[i].x < p[j].x
		}
		return p[i].y < p[j].y
	})

	hull := make([]vec2, 0, 2*len(p))
	for _, pt := range p {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(p) - 2; i >= 0; i-- {
		pt := p[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	return hull[:len(hull)-1]
}

// insideHull reports whether pt lies in the CCW polygon, boundary included.
func insideHull(hull []vec2, pt vec2) bool {
	const eps = 1e-9
	if len(hull) < 3 {
		return false
	}
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		if cross(a, b, pt) < -eps {
			return false
		}
	}
	return true
}
