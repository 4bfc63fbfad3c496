package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quimicai/surfacelab/internal/config"
	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/surface"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(model)
	}
	return m, cmd
}

func newTestModel() model {
	return newModel(domain.NewRegistry(), optim.NewPlaceholder(0), config.DefaultConfig())
}

func TestMenuOpensDomainDefaults(t *testing.T) {
	m, _ := press(t, newTestModel(), "down", "enter")
	if m.state != stateConfig {
		t.Fatalf("expected config state, got %v", m.state)
	}
	if m.dom.Tag != domain.TagMaterial {
		t.Errorf("expected mat, got %s", m.dom.Tag)
	}
	if len(m.selected) != 1 || m.selected[0] != "Ni" {
		t.Errorf("expected first variable selected, got %v", m.selected)
	}
	if m.metric().Name != domain.MetricMatYieldStrength {
		t.Errorf("expected first metric, got %s", m.metric().Name)
	}
}

func TestConfigToggleAndView(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter")
	// Cursor on TiCl3: toggle it off, then toggle Temp and Presion on.
	m, _ = press(t, m, " ", "down", "down", " ", "down", " ")
	if got := strings.Join(m.selected, ","); got != "Temp,Presion" {
		t.Fatalf("selected = %s", got)
	}

	m, _ = press(t, m, "v")
	if m.state != stateView {
		t.Fatalf("expected view state, got %v", m.state)
	}
	if m.result == nil || m.result.Dims() != 2 {
		t.Fatal("expected a surface result")
	}
	view := m.View()
	if !strings.Contains(view, domain.MetricChemMolecularWeight) {
		t.Error("view does not name the metric")
	}
	if !strings.Contains(view, "◆") {
		t.Error("separator missing between plot and optimization panel")
	}
}

func TestEmptySelectionShowsGuidance(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter", " ", "v")
	if m.guidance != surface.EmptySelectionGuidance {
		t.Errorf("guidance = %q", m.guidance)
	}
	if !strings.Contains(m.View(), surface.EmptySelectionGuidance) {
		t.Error("guidance not rendered")
	}
}

func TestRangeAdjustStaysInBounds(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter")
	// Rows: 4 variables, metric, TiCl3 low, TiCl3 high.
	m, _ = press(t, m, "down", "down", "down", "down", "down", "down")
	f := m.fields()[m.fieldCursor]
	if f.kind != fieldHigh || f.param != "TiCl3" {
		t.Fatalf("cursor on %+v", f)
	}
	m, _ = press(t, m, "right")
	if r := m.ranges["TiCl3"]; r.High != 0.5 {
		t.Errorf("high exceeded bound: %v", r.High)
	}

	m, _ = press(t, m, "enter", "backspace", "backspace", "backspace", "0", ".", "0", "1", "enter")
	if r := m.ranges["TiCl3"]; r.High != r.Low {
		t.Errorf("high below low not clamped: %+v", r)
	}
}

func TestMetricCycles(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter", "down", "down", "down", "down")
	if m.fields()[m.fieldCursor].kind != fieldMetric {
		t.Fatal("cursor not on metric")
	}
	m, _ = press(t, m, "right", "right")
	if m.metric().Name != domain.MetricCost {
		t.Errorf("metric = %s", m.metric().Name)
	}
	m, _ = press(t, m, "right")
	if m.metricIdx != 0 {
		t.Errorf("metric did not wrap, idx %d", m.metricIdx)
	}
}

func TestOptimizeFlow(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter", "v")
	m, cmd := press(t, m, "o")
	if !m.optimizing || cmd == nil {
		t.Fatal("expected optimization to start")
	}
	if !strings.Contains(m.View(), "Optimizando") {
		t.Error("spinner not shown")
	}

	msg := optimizeCmd(context.Background(), m.optimizer, m.job(), m.runSeq)()
	next, _ := m.Update(msg)
	m = next.(model)
	if m.optimizing {
		t.Error("still optimizing after report")
	}
	if m.report == nil || m.report.Message != optim.CompletedMessage {
		t.Fatalf("unexpected report %+v", m.report)
	}
	view := m.View()
	if !strings.Contains(view, "72 horas") || !strings.Contains(view, "comparado con pruebas reales") {
		t.Errorf("savings not rendered:\n%s", view)
	}
}

func TestLateReportIgnoredAfterCancel(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter", "v", "o", "esc")
	if m.state != stateMenu || m.optimizing {
		t.Fatalf("expected menu without running job, got state %v optimizing %v", m.state, m.optimizing)
	}
	next, _ := m.Update(optimizeDoneMsg{err: context.Canceled})
	if next.(model).optErr != nil {
		t.Error("late cancellation surfaced as error")
	}
}

func TestStaleReportIgnoredAfterRestart(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter", "v", "o")
	first := m.runSeq
	m, _ = press(t, m, "esc", "enter", "v", "o")
	if !m.optimizing || m.runSeq == first {
		t.Fatalf("expected a second run, optimizing %v seq %d", m.optimizing, m.runSeq)
	}

	next, _ := m.Update(optimizeDoneMsg{seq: first, err: context.Canceled})
	m = next.(model)
	if !m.optimizing || m.optErr != nil || m.report != nil {
		t.Fatalf("stale report accepted: optimizing %v err %v report %+v", m.optimizing, m.optErr, m.report)
	}

	next, _ = m.Update(optimizeCmd(context.Background(), m.optimizer, m.job(), m.runSeq)())
	m = next.(model)
	if m.optimizing || m.report == nil {
		t.Errorf("current report not accepted: optimizing %v report %+v", m.optimizing, m.report)
	}
}

func TestPlaceholderProgressBar(t *testing.T) {
	m := newModel(domain.NewRegistry(), optim.NewPlaceholder(10*time.Second), config.DefaultConfig())
	m, _ = press(t, m, "enter", "v", "o")
	defer m.cancel()

	now := time.Now()
	m.optStart = now.Add(-5 * time.Second)
	pct, ok := m.progress(now)
	if !ok || pct < 0.49 || pct > 0.51 {
		t.Errorf("progress = %v, %v; want about 0.5", pct, ok)
	}
	m.optStart = now.Add(-time.Minute)
	if pct, _ := m.progress(now); pct != 1 {
		t.Errorf("progress past latency = %v, want 1", pct)
	}
	view := m.View()
	if !strings.Contains(view, "█") {
		t.Errorf("progress bar not rendered:\n%s", view)
	}

	grid := newModel(domain.NewRegistry(), optim.GridOptimizer{}, config.DefaultConfig())
	if _, ok := grid.progress(now); ok {
		t.Error("grid optimizer has no known duration")
	}
}

func TestEmpiricalToggle(t *testing.T) {
	m, _ := press(t, newTestModel(), "enter", "v", "e")
	if !m.empirical || m.smoothed == nil || m.smoothed.Curve == nil {
		t.Fatal("expected smoothed curve")
	}
	view := m.View()
	if !strings.Contains(view, "muestras") {
		t.Error("sample caption missing")
	}
	if !strings.Contains(view, "Ahorro histórico") || !strings.Contains(view, "1960.00 €") {
		t.Errorf("historical savings missing:\n%s", view)
	}
}
