package domain

import "github.com/quimicai/surfacelab/internal/empirical"

const (
	MetricMatYieldStrength = "Resistencia a Fluencia (MPa)"
	MetricMatDuctility     = "Ductilidad (%)"
)

var (
	matStrengthBump = Bump{
		{Param: "Ni", Optimum: 72, Sigma: 3},
		{Param: "Cr", Optimum: 13, Sigma: 2},
		{Param: "Temp", Optimum: 1150, Sigma: 25},
		{Param: "Tiempo", Optimum: 5, Sigma: 1.5},
	}
	matDuctilityBump = Bump{
		{Param: "Ni", Optimum: 68, Sigma: 4},
		{Param: "Cr", Optimum: 12, Sigma: 2},
		{Param: "Temp", Optimum: 1130, Sigma: 30},
		{Param: "Tiempo", Optimum: 4, Sigma: 1.5},
	}
)

// NewMaterial builds the nickel superalloy domain.
func NewMaterial() *Domain {
	return &Domain{
		Tag:   TagMaterial,
		Title: "Ejemplo: Superaleaciones de Níquel",
		Description: "En la fabricación de componentes para turbinas de gas, la composición y el tratamiento térmico de superaleaciones de níquel determinan su resistencia y ductilidad.\n" +
			"Optimiza el porcentaje de Ni, Cr, la temperatura de solubilización y el tiempo de envejecimiento para mejorar la resistencia o reducir costos.",
		Parameters: ParameterSet{
			{Name: "Ni", Low: 60, High: 78},
			{Name: "Cr", Low: 10, High: 16},
			{Name: "Temp", Low: 1100, High: 1200},
			{Name: "Tiempo", Low: 2, High: 8},
		},
		DisplayNames: map[string]string{
			"Ni":     "Porcentaje de Ni (%)",
			"Cr":     "Porcentaje de Cr (%)",
			"Temp":   "Temperatura de Solubilización (°C)",
			"Tiempo": "Tiempo de Envejecimiento (h)",
		},
		Metrics: []Metric{
			{Name: MetricMatYieldStrength, Fn: Peak(550, 250, matStrengthBump)},
			{Name: MetricMatDuctility, Fn: Peak(15, 5, matDuctilityBump)},
			{Name: MetricCost, Fn: Trough(10000, 3000, matStrengthBump), Cost: true},
		},
		Samples: empirical.SampleTable{
			Variables: map[string][]float64{
				"Ni":     {62, 66, 70, 72, 74, 77},
				"Cr":     {10.5, 11.5, 12.5, 13, 14, 15.5},
				"Temp":   {1105, 1125, 1140, 1150, 1165, 1190},
				"Tiempo": {2.5, 3.5, 4.5, 5, 6, 7.5},
			},
			Metrics: map[string][]float64{
				MetricMatYieldStrength: {550, 563, 703, 800, 689, 551},
				MetricMatDuctility:     {15.1, 18.4, 19.2, 17.1, 15.8, 15.0},
				MetricCost:             {9998, 9846, 8163, 7000, 8330, 9990},
			},
		},
	}
}
