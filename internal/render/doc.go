// Package render draws evaluation results for terminals and files:
// asciigraph line plots, lipgloss heat maps, SVG documents and PNG charts.
package render
