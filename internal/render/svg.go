package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/numeric"
)

const svgBackground = "#0a0a0a"

// CurveSVG draws the (xs, ys) polyline with optional sample markers. NaN
// values break the line. It returns "" when fewer than two points are
// defined.
func CurveSVG(xs, ys []float64, samples []empirical.Point, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	allX, allY := make([]float64, 0, n+len(samples)), make([]float64, 0, n+len(samples))
	defined := 0
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) {
			continue
		}
		allX = append(allX, xs[i])
		allY = append(allY, ys[i])
		defined++
	}
	if defined < 2 {
		return ""
	}
	for _, p := range samples {
		allX = append(allX, p.X)
		allY = append(allY, p.Y)
	}
	bx := paddedBounds(allX)
	by := paddedBounds(allY)

	px := func(x float64) float64 { return (x - bx.lo) / bx.span() * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-by.lo)/by.span()*float64(height) }

	var sb strings.Builder
	writeSVGHeader(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor))
	pen := false
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", cmd, px(xs[i]), py(ys[i])))
	}
	sb.WriteString("\"/>\n")

	if len(samples) > 0 {
		sb.WriteString(`<g fill="#ff00ff">` + "\n")
		for _, p := range samples {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3"/>`+"\n", px(p.X), py(p.Y)))
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SurfaceSVG draws z as a grid of colored cells, largest y at the top.
// Undefined cells are not drawn.
func SurfaceSVG(z [][]float64, cell int) string {
	rows := len(z)
	if rows == 0 || len(z[0]) == 0 {
		return ""
	}
	cols := len(z[0])
	if cell <= 0 {
		cell = 8
	}
	lo, hi := numeric.MinMax(numeric.Flatten(z))

	var sb strings.Builder
	writeSVGHeader(&sb, cols*cell, rows*cell)
	for i := 0; i < rows; i++ {
		y := (rows - 1 - i) * cell
		for j := 0; j < cols && j < len(z[i]); j++ {
			v := z[i][j]
			if math.IsNaN(v) {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
				j*cell, y, cell, cell, rampColor(normalize(v, lo, hi))))
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

func writeSVGHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground))
}

type bounds struct{ lo, hi float64 }

func (b bounds) span() float64 { return b.hi - b.lo }

// paddedBounds widens the value range by 10% on each side.
func paddedBounds(values []float64) bounds {
	lo, hi := numeric.MinMax(values)
	r := hi - lo
	if r == 0 {
		r = 1
	}
	return bounds{lo: lo - r*0.1, hi: hi + r*0.1}
}
