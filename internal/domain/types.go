package domain

import (
	"fmt"

	"github.com/quimicai/surfacelab/internal/empirical"
)

// Parameter is a named input with its allowed exploration range.
type Parameter struct {
	Name string  `json:"name" yaml:"name"`
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Mid returns the value used when the parameter is held fixed.
func (p Parameter) Mid() float64 {
	return (p.Low + p.High) / 2
}

// Contains reports whether [low, high] lies inside the allowed range.
func (p Parameter) Contains(low, high float64) bool {
	return low >= p.Low && high <= p.High && low <= high
}

// ParameterSet is an ordered collection of parameters.
type ParameterSet []Parameter

func (ps ParameterSet) Get(name string) (Parameter, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

func (ps ParameterSet) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Midpoints returns a full assignment with every parameter at its midpoint.
func (ps ParameterSet) Midpoints() map[string]float64 {
	values := make(map[string]float64, len(ps))
	for _, p := range ps {
		values[p.Name] = p.Mid()
	}
	return values
}

// MetricFunc maps a complete parameter assignment to a single value.
type MetricFunc func(values map[string]float64) float64

// Metric is a named metric function. Cost metrics are minimized by optimizers.
type Metric struct {
	Name string
	Fn   MetricFunc
	Cost bool
}

type Domain struct {
	Tag          string
	Title        string
	Description  string
	Parameters   ParameterSet
	DisplayNames map[string]string
	Metrics      []Metric
	Samples      empirical.SampleTable
}

// Metric looks up a metric by name.
func (d *Domain) Metric(name string) (Metric, error) {
	for _, m := range d.Metrics {
		if m.Name == name {
			return m, nil
		}
	}
	return Metric{}, fmt.Errorf("%w: %q in domain %s", ErrUnknownMetric, name, d.Tag)
}

// CostMetric returns the first metric flagged as a cost.
func (d *Domain) CostMetric() (Metric, bool) {
	for _, m := range d.Metrics {
		if m.Cost {
			return m, true
		}
	}
	return Metric{}, false
}

func (d *Domain) MetricNames() []string {
	names := make([]string, len(d.Metrics))
	for i, m := range d.Metrics {
		names[i] = m.Name
	}
	return names
}

// DisplayName returns the human label for a parameter, or the key itself.
func (d *Domain) DisplayName(key string) string {
	if label, ok := d.DisplayNames[key]; ok {
		return label
	}
	return key
}

// KeyForDisplay resolves a display label back to its parameter key. Keys are
// accepted as-is.
func (d *Domain) KeyForDisplay(label string) (string, bool) {
	if _, ok := d.Parameters.Get(label); ok {
		return label, true
	}
	for key, l := range d.DisplayNames {
		if l == label {
			return key, true
		}
	}
	return "", false
}

// WithContent returns a copy of the domain with external description and
// sample table applied. Empty overrides keep the built-in values.
func (d *Domain) WithContent(description string, samples *empirical.SampleTable) *Domain {
	cp := *d
	if description != "" {
		cp.Description = description
	}
	if samples != nil {
		cp.Samples = *samples
	}
	return &cp
}

// Validate checks that every metric accepts the full parameter set and that
// display names cover every parameter.
func (d *Domain) Validate() error {
	if len(d.Parameters) == 0 {
		return fmt.Errorf("domain %s: %w", d.Tag, ErrEmptyParameterSet)
	}
	for _, p := range d.Parameters {
		if p.Low > p.High {
			return fmt.Errorf("domain %s: parameter %s: %w", d.Tag, p.Name, ErrInvalidRange)
		}
		if _, ok := d.DisplayNames[p.Name]; !ok {
			return fmt.Errorf("domain %s: parameter %s has no display name", d.Tag, p.Name)
		}
	}
	mid := d.Parameters.Midpoints()
	for _, m := range d.Metrics {
		if m.Fn == nil {
			return fmt.Errorf("domain %s: metric %s has no function", d.Tag, m.Name)
		}
		m.Fn(mid)
	}
	return nil
}
