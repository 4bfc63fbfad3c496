package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/quimicai/surfacelab/internal/numeric"
)

// CurvePlot draws ys as a line plot with an x-range footer. It returns ""
// when there is nothing to draw.
func CurvePlot(xs, ys []float64, caption string, width, height int) string {
	if len(ys) == 0 {
		return ""
	}
	series := ys
	if len(series) == 1 {
		// asciigraph needs two points to draw a segment.
		series = []float64{ys[0], ys[0]}
	}
	plot := asciigraph.Plot(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
	if len(xs) == 0 {
		return plot
	}
	lo, hi := numeric.MinMax(xs)
	return plot + "\n" + Subtle.Render(fmt.Sprintf("x: %s … %s", formatValue(lo), formatValue(hi)))
}

// SurfaceHeatmap draws z as colored blocks, highest row (largest y) first.
// z is resampled to at most width×height cells; NaN cells are left blank.
func SurfaceHeatmap(z [][]float64, width, height int) string {
	rows := len(z)
	if rows == 0 || len(z[0]) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	cols := len(z[0])
	width = min(width, cols)
	height = min(height, rows)
	lo, hi := numeric.MinMax(numeric.Flatten(z))

	var sb strings.Builder
	for r := height - 1; r >= 0; r-- {
		i := sampleIndex(r, height, rows)
		for c := 0; c < width; c++ {
			v := z[i][sampleIndex(c, width, cols)]
			if math.IsNaN(v) {
				sb.WriteString(" ")
				continue
			}
			color := lipgloss.Color(rampColor(normalize(v, lo, hi)))
			sb.WriteString(lipgloss.NewStyle().Foreground(color).Render("█"))
		}
		if r > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// HeatLegend is the color scale caption for a heat map.
func HeatLegend(lo, hi float64, width int) string {
	width = max(width, 2)
	var sb strings.Builder
	sb.WriteString(formatValue(lo) + " ")
	for c := 0; c < width; c++ {
		t := float64(c) / float64(width-1)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(rampColor(t))).Render("█"))
	}
	sb.WriteString(" " + formatValue(hi))
	return sb.String()
}

// sampleIndex maps output cell k of n onto a source axis of length size.
func sampleIndex(k, n, size int) int {
	if n <= 1 {
		return 0
	}
	return k * (size - 1) / (n - 1)
}

func formatValue(v float64) string {
	if math.Abs(v) >= 1e5 {
		return fmt.Sprintf("%.3g", v)
	}
	return fmt.Sprintf("%.2f", v)
}
