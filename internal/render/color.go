package render

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// HeatRamp runs from low to high metric values.
var HeatRamp = []lipgloss.Color{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}

// rampColor interpolates HeatRamp at t in [0, 1].
func rampColor(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(HeatRamp)-1)
	i := int(pos)
	if i >= len(HeatRamp)-1 {
		return string(HeatRamp[len(HeatRamp)-1])
	}
	frac := pos - float64(i)
	sr, sg, sb := parseHex(string(HeatRamp[i]))
	er, eg, eb := parseHex(string(HeatRamp[i+1]))
	return hexColor(
		int(float64(sr)+frac*float64(er-sr)),
		int(float64(sg)+frac*float64(eg-sg)),
		int(float64(sb)+frac*float64(eb-sb)),
	)
}

func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
