package domain

import "github.com/quimicai/surfacelab/internal/empirical"

const (
	MetricBioProductivity = "Productividad (g/L)"
	MetricBioQuality      = "Calidad (% mAb funcional)"
)

var bioBump = Bump{
	{Param: "Glucosa", Optimum: 6, Sigma: 1.5},
	{Param: "pH", Optimum: 7.1, Sigma: 0.2},
	{Param: "Agitacion", Optimum: 200, Sigma: 30},
	{Param: "Estrategia", Optimum: 1, Sigma: 0.1},
}

// NewBiological builds the monoclonal antibody production domain. The
// feeding strategy is treated as continuous: 0 is batch, 1 is perfusion.
func NewBiological() *Domain {
	return &Domain{
		Tag:         TagBiological,
		Title:       "Ejemplo: Producción de Anticuerpos Monoclonales",
		Description: "En la producción a gran escala de anticuerpos monoclonales, optimizar parámetros como la concentración de glucosa, pH, velocidad de agitación y estrategia de alimentación es clave para mejorar la productividad y calidad, reduciendo costos y residuos.",
		Parameters: ParameterSet{
			{Name: "Glucosa", Low: 2, High: 10},
			{Name: "pH", Low: 6.8, High: 7.4},
			{Name: "Agitacion", Low: 100, High: 250},
			{Name: "Estrategia", Low: 0, High: 1},
		},
		DisplayNames: map[string]string{
			"Glucosa":    "Concentración de Glucosa (g/L)",
			"pH":         "pH",
			"Agitacion":  "Velocidad de Agitación (rpm)",
			"Estrategia": "Estrategia de Alimentación (0=batch, 1=perfusión)",
		},
		Metrics: []Metric{
			{Name: MetricBioProductivity, Fn: Peak(1.0, 2.0, bioBump)},
			{Name: MetricBioQuality, Fn: Peak(90, 10, bioBump)},
			{Name: MetricCost, Fn: Trough(7500, 1500, bioBump), Cost: true},
		},
		Samples: empirical.SampleTable{
			Variables: map[string][]float64{
				"Glucosa":    {3, 4.5, 5.5, 6, 7, 9},
				"pH":         {6.85, 6.95, 7.05, 7.1, 7.2, 7.35},
				"Agitacion":  {120, 160, 190, 200, 215, 240},
				"Estrategia": {0, 0.6, 0.9, 1, 1, 0.4},
			},
			Metrics: map[string][]float64{
				MetricBioProductivity: {1.00, 1.02, 2.41, 3.00, 2.35, 1.00},
				MetricBioQuality:      {90.0, 90.1, 97.1, 100.0, 96.8, 90.0},
				MetricCost:            {7500, 7488, 6440, 6000, 6485, 7500},
			},
		},
	}
}
