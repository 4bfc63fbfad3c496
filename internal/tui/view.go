package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/quimicai/surfacelab/internal/render"
	"github.com/quimicai/surfacelab/internal/savings"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateView:
		return m.viewPlot()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("q u i m i c a i") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, d := range m.domains {
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-6s", d.Tag)) + dim.Render(d.Title) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-6s", d.Tag)) + dimmer.Render(d.Title) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.dom.Title) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 40)) + "\n")
	desc := lipgloss.NewStyle().Width(max(m.width-12, 40)).Render(m.dom.Description)
	for _, line := range strings.Split(desc, "\n") {
		b.WriteString("      " + dim.Render(line) + "\n")
	}
	b.WriteString("\n")

	for i, f := range m.fields() {
		label, val := m.fieldText(f)
		if m.editing && i == m.fieldCursor {
			val = m.editBuf + "▋"
		}
		if i == m.fieldCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-36s", label)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-36s", label)) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  space toggle  ←→ adjust  enter edit  v view  esc back") + "\n")
	return b.String()
}

func (m model) fieldText(f field) (string, string) {
	switch f.kind {
	case fieldVariable:
		mark := "[ ]"
		if m.isSelected(f.param) {
			mark = "[x]"
		}
		return m.dom.DisplayName(f.param), mark
	case fieldMetric:
		return "Métrica", "◂ " + m.metric().Name + " ▸"
	case fieldLow:
		return "  mín " + m.dom.DisplayName(f.param), fmt.Sprintf("%.4g", m.ranges[f.param].Low)
	case fieldHigh:
		return "  máx " + m.dom.DisplayName(f.param), fmt.Sprintf("%.4g", m.ranges[f.param].High)
	case fieldPoints:
		return "Número de puntos en la malla", fmt.Sprintf("%d", m.points)
	case fieldWeight:
		return "Importancia", fmt.Sprintf("%.2f", m.weight)
	}
	return "", ""
}

func (m model) viewPlot() string {
	var b strings.Builder

	mode := "función continua"
	if m.empirical {
		mode = "datos históricos"
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s  %s\n\n",
		cyan.Render(m.dom.Tag), white.Render(m.metric().Name), dim.Render(mode)))

	plotW := max(m.width-16, 30)
	plotH := max(m.height-16, 8)

	switch {
	case m.guidance != "":
		b.WriteString("   " + render.Warning.Render(m.guidance) + "\n")
	case m.evalErr != nil:
		b.WriteString("   " + render.Warning.Render(m.evalErr.Error()) + "\n")
	case m.result != nil:
		b.WriteString(indent(m.plotResult(plotW, plotH)) + "\n")
	case m.smoothed != nil:
		b.WriteString(indent(m.plotSmoothed(plotW, plotH)) + "\n")
		b.WriteString(m.viewHistoricalSavings() + "\n")
	}

	b.WriteString("\n   " + render.Separator(plotW) + "\n")
	b.WriteString(m.viewOptimization() + "\n")

	b.WriteString("\n" + dim.Render("   o optimizar  e datos/función  c config  q menu") + "\n")
	return b.String()
}

func (m model) plotResult(w, h int) string {
	res := m.result
	if res.Dims() == 1 {
		caption := fmt.Sprintf("%s vs %s", m.metric().Name, m.dom.DisplayName(res.Selection[0]))
		return render.CurvePlot(res.Curve.X, res.Curve.Y, caption, w, h)
	}
	lo, hi := res.Bounds()
	var b strings.Builder
	b.WriteString(dim.Render(fmt.Sprintf("y: %s  ↑", m.dom.DisplayName(res.Selection[1]))) + "\n")
	b.WriteString(render.SurfaceHeatmap(res.Surface.Z, w, h) + "\n")
	b.WriteString(dim.Render(fmt.Sprintf("x: %s  →", m.dom.DisplayName(res.Selection[0]))) + "\n")
	b.WriteString(render.HeatLegend(lo, hi, 20))
	return b.String()
}

func (m model) plotSmoothed(w, h int) string {
	sm := m.smoothed
	if sm.Curve != nil {
		if sm.Curve.Empty() {
			return render.Warning.Render("Sin datos históricos para esta combinación.")
		}
		caption := fmt.Sprintf("%s vs %s (%d muestras, grado %d)",
			sm.Curve.Metric, m.dom.DisplayName(sm.Curve.Variable), len(sm.Curve.Points), sm.Curve.Poly.Degree())
		return render.CurvePlot(sm.Curve.X, sm.Curve.Y, caption, w, h)
	}
	s := sm.Surface
	if s.NoData {
		return render.Warning.Render("Datos insuficientes para interpolar: " + s.Reason)
	}
	var b strings.Builder
	b.WriteString(dim.Render(fmt.Sprintf("y: %s  ↑", m.dom.DisplayName(s.VarY))) + "\n")
	b.WriteString(render.SurfaceHeatmap(s.Z, w, h) + "\n")
	b.WriteString(dim.Render(fmt.Sprintf("x: %s  →  %d/%d celdas con valor", m.dom.DisplayName(s.VarX), s.DefinedCount(), len(s.X)*len(s.Y))))
	return b.String()
}

// viewHistoricalSavings shows the spread of the recorded cost samples.
func (m model) viewHistoricalSavings() string {
	est := savings.FromSamples(m.dom)
	return "   " + render.MetricLabel.Render("Ahorro histórico") + render.MetricValue.Render(est.Money()) +
		"  " + dim.Render("en "+est.TimeSaved)
}

func (m model) viewOptimization() string {
	switch {
	case m.optimizing:
		now := time.Now()
		elapsed := now.Sub(m.optStart).Truncate(time.Second)
		line := fmt.Sprintf("   %s %s %s", cyan.Render(render.Spinner(m.frame)), white.Render("Optimizando..."), dim.Render(elapsed.String()))
		if pct, ok := m.progress(now); ok {
			line += "\n   " + render.ProgressBar(pct, 30)
		}
		return line
	case m.optErr != nil:
		return "   " + render.Warning.Render(m.optErr.Error())
	case m.report == nil:
		return ""
	case m.report.Guidance != "":
		return "   " + render.Warning.Render(m.report.Guidance)
	}

	rep := m.report
	var b strings.Builder
	b.WriteString("   " + render.Success.Render(rep.Message) + "\n")
	b.WriteString("   " + render.MetricLabel.Render("Dinero ahorrado") + render.MetricValue.Render(rep.Savings.Money()) +
		"  " + dim.Render(rep.Savings.Delta()) + "\n")
	b.WriteString("   " + render.MetricLabel.Render("Tiempo ahorrado") + render.MetricValue.Render(rep.Savings.TimeSaved))
	if rep.Best != nil {
		b.WriteString("\n   " + render.MetricLabel.Render("Mejor punto") + render.MetricValue.Render(fmt.Sprintf("%.4g", rep.Best.Value)))
		for _, name := range m.selected {
			b.WriteString(dim.Render(fmt.Sprintf("  %s=%.4g", name, rep.Best.Params[name])))
		}
	}
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "   " + l
	}
	return strings.Join(lines, "\n")
}

