package tui

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quimicai/surfacelab/internal/config"
)

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateView:
		return m.viewKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.domains)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.openDomain(m.domains[m.cursor])
		m.state = stateConfig
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	fs := m.fields()
	if m.fieldCursor >= len(fs) {
		m.fieldCursor = len(fs) - 1
	}
	f := fs[m.fieldCursor]

	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.setValue(f, v)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fs)-1 {
			m.fieldCursor++
		}
	case " ":
		if f.kind == fieldVariable {
			m.toggle(f.param)
		}
	case "enter":
		switch f.kind {
		case fieldVariable:
			m.toggle(f.param)
		case fieldMetric:
			m.metricIdx = (m.metricIdx + 1) % len(m.dom.Metrics)
		default:
			m.editing = true
			m.editBuf = strconv.FormatFloat(m.value(f), 'g', -1, 64)
		}
	case "left", "h":
		m.adjust(f, -1)
	case "right", "l":
		m.adjust(f, 1)
	case "v", "s":
		m.state = stateView
		m.refresh()
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m model) viewKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		if m.optimizing {
			m.cancel()
			m.optimizing = false
			m.cancel = nil
		}
		m.state = stateMenu
		return m, tea.ClearScreen
	case "c":
		if m.optimizing {
			return m, nil
		}
		m.state = stateConfig
		return m, tea.ClearScreen
	case "e":
		m.empirical = !m.empirical
		m.refresh()
	case "o":
		if m.optimizing {
			return m, nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.optimizing = true
		m.runSeq++
		m.optStart = time.Now()
		m.report, m.optErr = nil, nil
		return m, tea.Batch(spin(), optimizeCmd(ctx, m.optimizer, m.job(), m.runSeq))
	}
	return m, nil
}

func (m model) value(f field) float64 {
	switch f.kind {
	case fieldLow:
		return m.ranges[f.param].Low
	case fieldHigh:
		return m.ranges[f.param].High
	case fieldPoints:
		return float64(m.points)
	case fieldWeight:
		return m.weight
	}
	return 0
}

// setValue stores v clamped to the field's allowed interval. A range bound
// never crosses its partner.
func (m *model) setValue(f field, v float64) {
	switch f.kind {
	case fieldLow, fieldHigh:
		p, ok := m.dom.Parameters.Get(f.param)
		if !ok {
			return
		}
		r := m.ranges[f.param]
		if f.kind == fieldLow {
			r.Low = clamp(v, p.Low, r.High)
		} else {
			r.High = clamp(v, r.Low, p.High)
		}
		m.ranges[f.param] = r
	case fieldPoints:
		m.points = int(clamp(v, 1, config.MaxPoints))
	case fieldWeight:
		m.weight = clamp(v, 0, 1)
	}
}

// adjust nudges a field by one step: 1/100 of a parameter range, one point
// or 0.05 of weight.
func (m *model) adjust(f field, dir float64) {
	switch f.kind {
	case fieldMetric:
		n := len(m.dom.Metrics)
		m.metricIdx = (m.metricIdx + int(dir) + n) % n
	case fieldLow, fieldHigh:
		p, _ := m.dom.Parameters.Get(f.param)
		m.setValue(f, m.value(f)+dir*(p.High-p.Low)/100)
	case fieldPoints:
		m.setValue(f, m.value(f)+dir)
	case fieldWeight:
		m.setValue(f, m.value(f)+dir*0.05)
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
