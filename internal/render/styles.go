package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))

	Panel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 1)

	Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff00ff"))

	Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)

	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(28)

	KeyHint = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)

	Warning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))

	Success = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Spinner returns one frame of the busy indicator.
func Spinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return frames[frame%len(frames)]
}

// ProgressBar fills width cells by percent in [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Sparkline renders values as a one-line bar chart, sampled to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var sb strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := normalize(values[i*step], lo, hi)
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			sb.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			sb.WriteString(SparkMid.Render(c))
		default:
			sb.WriteString(SparkLow.Render(c))
		}
	}
	return sb.String()
}

// Separator draws a muted horizontal rule.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}
