package render

import (
	"errors"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/numeric"
)

var ErrNothingToPlot = errors.New("render: nothing to plot")

// ChartSpec describes a PNG line chart.
type ChartSpec struct {
	Title   string
	XLabel  string
	YLabel  string
	X, Y    []float64
	Samples []empirical.Point
	Width   int
	Height  int
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// CurvePNG renders spec as a PNG into w.
func CurvePNG(w io.Writer, spec ChartSpec) error {
	xs, ys := definedPairs(spec.X, spec.Y)
	if len(xs) == 0 {
		return ErrNothingToPlot
	}
	if len(xs) == 1 {
		// go-chart needs a non-zero x range.
		xs = []float64{xs[0], xs[0] + 1e-9}
		ys = []float64{ys[0], ys[0]}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    spec.YLabel,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
		},
	}
	allY := append([]float64(nil), ys...)
	if len(spec.Samples) > 0 {
		sx := make([]float64, len(spec.Samples))
		sy := make([]float64, len(spec.Samples))
		for i, p := range spec.Samples {
			sx[i], sy[i] = p.X, p.Y
		}
		allY = append(allY, sy...)
		series = append(series, chart.ContinuousSeries{
			Name:    "Datos históricos",
			XValues: sx,
			YValues: sy,
			Style:   pointStyle(chart.ColorRed),
		})
	}

	lo, hi := numeric.MinMax(allY)
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      orDefault(spec.Width, 800),
		Height:     orDefault(spec.Height, 480),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.XLabel},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func definedPairs(xs, ys []float64) ([]float64, []float64) {
	n := min(len(xs), len(ys))
	outX := make([]float64, 0, n)
	outY := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
