package config

import (
	"sort"

	"github.com/quimicai/surfacelab/internal/domain"
)

func preset(tag, metric string, vars []string, ranges map[string]RangeConfig) *Config {
	cfg := DefaultConfig()
	cfg.Domain = tag
	cfg.Metric = metric
	cfg.Variables = vars
	cfg.Ranges = ranges
	return cfg
}

var Presets = map[string]map[string]*Config{
	domain.TagChemical: {
		"temperature": preset(
			domain.TagChemical, domain.MetricChemYield, []string{"Temp"}, nil),
		"catalyst": preset(
			domain.TagChemical, domain.MetricChemMolecularWeight, []string{"TiCl3", "Al_Ti"}, nil),
		"reactor": preset(
			domain.TagChemical, domain.MetricChemYield, []string{"Temp", "Presion"},
			map[string]RangeConfig{"Temp": {Low: 75, High: 105}, "Presion": {Low: 4, High: 16}}),
		"cost": preset(
			domain.TagChemical, domain.MetricCost, []string{"Temp", "Presion"}, nil),
	},
	domain.TagMaterial: {
		"composition": preset(
			domain.TagMaterial, domain.MetricMatYieldStrength, []string{"Ni", "Cr"}, nil),
		"aging": preset(
			domain.TagMaterial, domain.MetricMatDuctility, []string{"Tiempo"}, nil),
		"heat-treatment": preset(
			domain.TagMaterial, domain.MetricMatYieldStrength, []string{"Temp", "Tiempo"},
			map[string]RangeConfig{"Temp": {Low: 1120, High: 1180}}),
	},
	domain.TagBiological: {
		"feed": preset(
			domain.TagBiological, domain.MetricBioProductivity, []string{"Glucosa"}, nil),
		"culture": preset(
			domain.TagBiological, domain.MetricBioQuality, []string{"pH", "Agitacion"}, nil),
		"cost": preset(
			domain.TagBiological, domain.MetricCost, []string{"Glucosa", "Agitacion"}, nil),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(tag, name string) *Config {
	domainPresets, ok := Presets[tag]
	if !ok {
		return nil
	}
	cfg, ok := domainPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(tag string) []string {
	domainPresets, ok := Presets[tag]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(domainPresets))
	for name := range domainPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
