// Package savings derives the placeholder "money saved" and "time saved"
// figures shown after an optimization. The numbers are display values only.
package savings

import (
	"fmt"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/numeric"
	"github.com/quimicai/surfacelab/internal/surface"
)

// ScaleFactor converts a metric spread into euros. It has no business
// meaning.
const ScaleFactor = 0.001

var timeSaved = map[string]string{
	domain.TagChemical:   "72 horas",
	domain.TagMaterial:   "48 horas",
	domain.TagBiological: "60 horas",
}

// Estimate is the pair of savings figures for one domain.
type Estimate struct {
	MoneySaved float64 `json:"money_saved"`
	TimeSaved  string  `json:"time_saved"`
}

// Money formats the money figure as shown on the dashboard.
func (e Estimate) Money() string {
	return fmt.Sprintf("%.2f €", e.MoneySaved)
}

// Delta is the comparison caption shown next to the money figure.
func (e Estimate) Delta() string {
	return fmt.Sprintf("-%s comparado con pruebas reales", e.Money())
}

// TimeSaved looks up the fixed time figure for a domain tag.
func TimeSaved(tag string) string {
	if s, ok := timeSaved[tag]; ok {
		return s
	}
	return "—"
}

// FromResult scales the spread of an evaluation. A nil result counts as
// zero spread.
func FromResult(res *surface.Result, tag string) Estimate {
	spread := 0.0
	if res != nil {
		spread = res.Spread()
	}
	return Estimate{MoneySaved: spread * ScaleFactor, TimeSaved: TimeSaved(tag)}
}

// FromCosts uses the raw spread of historical cost samples.
func FromCosts(costs []float64, tag string) Estimate {
	lo, hi := numeric.MinMax(costs)
	return Estimate{MoneySaved: hi - lo, TimeSaved: TimeSaved(tag)}
}

// FromSamples applies FromCosts to the domain's historical cost column. A
// domain without a cost metric or cost samples saves nothing.
func FromSamples(d *domain.Domain) Estimate {
	m, ok := d.CostMetric()
	if !ok {
		return Estimate{TimeSaved: TimeSaved(d.Tag)}
	}
	return FromCosts(d.Samples.Metrics[m.Name], d.Tag)
}
