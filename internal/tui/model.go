package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quimicai/surfacelab/internal/config"
	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/surface"
)

type state int

const (
	stateMenu state = iota
	stateConfig
	stateView
)

type fieldKind int

const (
	fieldVariable fieldKind = iota
	fieldMetric
	fieldLow
	fieldHigh
	fieldPoints
	fieldWeight
)

// field is one editable row of the configure screen.
type field struct {
	kind  fieldKind
	param string
}

type model struct {
	state    state
	registry *domain.Registry
	domains  []*domain.Domain
	cursor   int
	dom      *domain.Domain

	selected  []string
	ranges    map[string]surface.Range
	metricIdx int
	points    int
	weight    float64

	fieldCursor int
	editing     bool
	editBuf     string

	empirical bool
	result    *surface.Result
	smoothed  *empirical.Smoothed
	evalErr   error
	guidance  string

	optimizer  optim.Optimizer
	optimizing bool
	runSeq     int
	optStart   time.Time
	cancel     context.CancelFunc
	frame      int
	report     *optim.Report
	optErr     error

	width  int
	height int
}

type spinnerMsg time.Time

// optimizeDoneMsg carries the run sequence it was started with so a report
// from a canceled run cannot land on a newer one.
type optimizeDoneMsg struct {
	seq    int
	report *optim.Report
	err    error
}

func spin() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return spinnerMsg(t) })
}

func optimizeCmd(ctx context.Context, opt optim.Optimizer, job optim.Job, seq int) tea.Cmd {
	return func() tea.Msg {
		rep, err := opt.Optimize(ctx, job)
		return optimizeDoneMsg{seq: seq, report: rep, err: err}
	}
}

func newModel(reg *domain.Registry, opt optim.Optimizer, cfg *config.Config) model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := model{
		state:     stateMenu,
		registry:  reg,
		domains:   reg.List(),
		optimizer: opt,
		points:    cfg.Points,
		weight:    cfg.Weight,
		width:     80,
		height:    24,
	}
	for i, d := range m.domains {
		if d.Tag == cfg.Domain {
			m.cursor = i
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinnerMsg:
		if !m.optimizing {
			return m, nil
		}
		m.frame++
		return m, spin()
	case optimizeDoneMsg:
		if !m.optimizing || msg.seq != m.runSeq {
			// Canceled or superseded run finishing late.
			return m, nil
		}
		m.optimizing = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.report, m.optErr = msg.report, msg.err
		return m, nil
	}
	return m, nil
}

// progress reports how far a placeholder run is through its fixed latency.
// Other optimizers have no known duration.
func (m model) progress(now time.Time) (float64, bool) {
	p, ok := m.optimizer.(*optim.Placeholder)
	if !ok || p.Latency <= 0 {
		return 0, false
	}
	return min(float64(now.Sub(m.optStart))/float64(p.Latency), 1), true
}

// openDomain resets the configuration to the domain's defaults: first
// variable, first metric and full ranges.
func (m *model) openDomain(d *domain.Domain) {
	m.dom = d
	m.selected = []string{d.Parameters[0].Name}
	m.ranges = make(map[string]surface.Range, len(d.Parameters))
	for _, p := range d.Parameters {
		m.ranges[p.Name] = surface.Range{Low: p.Low, High: p.High}
	}
	m.metricIdx = 0
	m.fieldCursor = 0
	m.report, m.optErr = nil, nil
}

func (m model) fields() []field {
	var fs []field
	for _, p := range m.dom.Parameters {
		fs = append(fs, field{kind: fieldVariable, param: p.Name})
	}
	fs = append(fs, field{kind: fieldMetric})
	for _, name := range m.selected {
		fs = append(fs, field{kind: fieldLow, param: name}, field{kind: fieldHigh, param: name})
	}
	return append(fs, field{kind: fieldPoints}, field{kind: fieldWeight})
}

func (m model) metric() domain.Metric {
	return m.dom.Metrics[m.metricIdx]
}

func (m model) isSelected(name string) bool {
	for _, s := range m.selected {
		if s == name {
			return true
		}
	}
	return false
}

func (m *model) toggle(name string) {
	for i, s := range m.selected {
		if s == name {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
			return
		}
	}
	m.selected = append(m.selected, name)
}

// job snapshots the current configuration. Only selected ranges are sent.
func (m model) job() optim.Job {
	ranges := make(map[string]surface.Range, len(m.selected))
	for _, name := range m.selected {
		ranges[name] = m.ranges[name]
	}
	return optim.Job{
		Domain:    m.dom,
		Metric:    m.metric().Name,
		Selection: append(surface.Selection(nil), m.selected...),
		Ranges:    ranges,
		Points:    m.points,
		Weight:    m.weight,
	}
}

// refresh recomputes the plotted data for the view screen.
func (m *model) refresh() {
	m.result, m.smoothed, m.evalErr, m.guidance = nil, nil, nil, ""
	job := m.job()
	if m.empirical {
		sm, err := empirical.Smooth(m.dom.Samples, job.Selection, job.Metric)
		switch {
		case err == nil:
			m.smoothed = sm
		case len(job.Selection) == 0:
			m.guidance = surface.EmptySelectionGuidance
		case len(job.Selection) > 2:
			m.guidance = surface.SelectionGuidance
		default:
			m.evalErr = err
		}
		return
	}
	res, err := surface.Evaluate(m.metric().Fn, m.dom.Parameters, job.Selection, job.Ranges, job.Points)
	if err != nil {
		if surface.IsGuidance(err) {
			m.guidance = surface.Guidance(err)
			return
		}
		m.evalErr = err
		return
	}
	m.result = res
}

// Run starts the dashboard on the alternate screen.
func Run(reg *domain.Registry, opt optim.Optimizer, cfg *config.Config) error {
	p := tea.NewProgram(newModel(reg, opt, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
