package empirical

import (
	"fmt"
	"sort"
)

// SampleTable holds historical observations keyed by column name. Rows are
// paired positionally across columns.
type SampleTable struct {
	Variables map[string][]float64 `json:"variables" yaml:"variables"`
	Metrics   map[string][]float64 `json:"metrics" yaml:"metrics"`
}

// Point is one (x, y) observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample3 is one scattered (x, y, z) observation.
type Sample3 struct {
	X, Y, Z float64
}

func (t SampleTable) variable(name string) ([]float64, error) {
	col, ok := t.Variables[name]
	if !ok {
		return nil, fmt.Errorf("%w: variable %s", ErrUnknownColumn, name)
	}
	return col, nil
}

func (t SampleTable) metric(name string) ([]float64, error) {
	col, ok := t.Metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: metric %s", ErrUnknownColumn, name)
	}
	return col, nil
}

// Pairs returns (variable, metric) points sorted by x. Columns of unequal
// length are truncated to the shorter one.
func (t SampleTable) Pairs(variable, metric string) ([]Point, error) {
	xs, err := t.variable(variable)
	if err != nil {
		return nil, err
	}
	ys, err := t.metric(metric)
	if err != nil {
		return nil, err
	}
	n := min(len(xs), len(ys))
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return pts, nil
}

// Triples pairs two variables with a metric row by row.
func (t SampleTable) Triples(varX, varY, metric string) ([]Sample3, error) {
	xs, err := t.variable(varX)
	if err != nil {
		return nil, err
	}
	ys, err := t.variable(varY)
	if err != nil {
		return nil, err
	}
	zs, err := t.metric(metric)
	if err != nil {
		return nil, err
	}
	n := min(len(xs), len(ys), len(zs))
	out := make([]Sample3, n)
	for i := 0; i < n; i++ {
		out[i] = Sample3{X: xs[i], Y: ys[i], Z: zs[i]}
	}
	return out, nil
}

// VariableNames returns the variable columns in sorted order.
func (t SampleTable) VariableNames() []string {
	return sortedNames(t.Variables)
}

func (t SampleTable) MetricNames() []string {
	return sortedNames(t.Metrics)
}

func sortedNames(m map[string][]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
