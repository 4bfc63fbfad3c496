package domain

import "github.com/quimicai/surfacelab/internal/empirical"

const (
	MetricChemMolecularWeight = "Peso molecular (g/mol)"
	MetricChemYield           = "Rendimiento (%)"
	MetricCost                = "Costo (€)"
)

var chemBump = Bump{
	{Param: "TiCl3", Optimum: 0.3, Sigma: 0.1},
	{Param: "Al_Ti", Optimum: 9, Sigma: 1.5},
	{Param: "Temp", Optimum: 90, Sigma: 10},
	{Param: "Presion", Optimum: 10, Sigma: 3},
}

// NewChemical builds the ethylene polymerization domain.
func NewChemical() *Domain {
	return &Domain{
		Tag:   TagChemical,
		Title: "Ejemplo: Polimerización de Etileno (PE-UHMW)",
		Description: "La polimerización de etileno mediante catalizadores Ziegler-Natta es un proceso crítico en la industria petroquímica.\n" +
			"Optimiza parámetros como la concentración de TiCl₃, relación Al/Ti, temperatura y presión para maximizar el peso molecular, el rendimiento o minimizar costos.",
		Parameters: ParameterSet{
			{Name: "TiCl3", Low: 0.05, High: 0.5},
			{Name: "Al_Ti", Low: 3, High: 13},
			{Name: "Temp", Low: 60, High: 110},
			{Name: "Presion", Low: 1, High: 20},
		},
		DisplayNames: map[string]string{
			"TiCl3":   "Concentración de TiCl3 (mol/L)",
			"Al_Ti":   "Relación Al/Ti (mol/mol)",
			"Temp":    "Temperatura (°C)",
			"Presion": "Presión (atm)",
		},
		Metrics: []Metric{
			{Name: MetricChemMolecularWeight, Fn: Peak(2800000, 3100000, chemBump)},
			{Name: MetricChemYield, Fn: Peak(60, 35, chemBump)},
			{Name: MetricCost, Fn: Trough(5000, 2000, chemBump), Cost: true},
		},
		Samples: empirical.SampleTable{
			Variables: map[string][]float64{
				"TiCl3":   {0.10, 0.20, 0.25, 0.30, 0.35, 0.45},
				"Al_Ti":   {5, 7, 8, 9, 10, 12},
				"Temp":    {70, 80, 85, 90, 95, 105},
				"Presion": {4, 7, 9, 10, 12, 16},
			},
			Metrics: map[string][]float64{
				MetricChemMolecularWeight: {2810000, 3420000, 4960000, 5860000, 4890000, 2830000},
				MetricChemYield:           {60.2, 66.9, 84.6, 94.1, 83.7, 60.4},
				MetricCost:                {4990, 4610, 3680, 3030, 3720, 4980},
			},
		},
	}
}
