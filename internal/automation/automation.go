// Package automation runs scripted batches of evaluations and optimizations
// described in YAML scenario files.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/quimicai/surfacelab/internal/config"
	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/logger"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/storage"
	"github.com/quimicai/surfacelab/internal/surface"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of lab runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one evaluation, optionally followed by an optimization.
// Variables and range keys accept display names.
type ScenarioStep struct {
	Name      string                        `yaml:"name"`
	Domain    string                        `yaml:"domain"`
	Preset    string                        `yaml:"preset"`
	Metric    string                        `yaml:"metric"`
	Variables []string                      `yaml:"variables"`
	Ranges    map[string]config.RangeConfig `yaml:"ranges"`
	Points    int                           `yaml:"points"`
	Optimize  bool                          `yaml:"optimize"`
	Save      bool                          `yaml:"save"`
}

// StepResult is the outcome of one step. Guidance is set instead of Result
// when the step's selection cannot be plotted.
type StepResult struct {
	Step     string
	Domain   string
	Metric   string
	Result   *surface.Result
	Report   *optim.Report
	Guidance string
	RunID    string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Runner executes scenarios against a registry. Optimizer is only used by
// steps with Optimize set; Archive only by steps with Save set.
type Runner struct {
	Registry  *domain.Registry
	Optimizer optim.Optimizer
	Archive   *storage.Store
}

// Run executes every step concurrently and returns results in step order.
// The first failing step's error is returned, wrapped with its position.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, len(scenario.Steps))
	errs := make([]error, len(scenario.Steps))

	var wg sync.WaitGroup
	for i, step := range scenario.Steps {
		wg.Add(1)
		go func(idx int, step ScenarioStep) {
			defer wg.Done()
			results[idx], errs[idx] = r.runStep(ctx, scenario.Name, step)
			logger.Info("scenario step finished", "scenario", scenario.Name, "step", idx+1, "of", len(scenario.Steps), "err", errs[idx])
		}(i, step)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, scenario.Steps[i].Name, err)
		}
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, scenarioName string, step ScenarioStep) (StepResult, error) {
	job, err := r.job(step)
	if err != nil {
		return StepResult{}, err
	}
	out := StepResult{Step: step.Name, Domain: job.Domain.Tag, Metric: job.Metric}

	metric, err := job.Domain.Metric(job.Metric)
	if err != nil {
		return out, err
	}
	res, err := surface.Evaluate(metric.Fn, job.Domain.Parameters, job.Selection, job.Ranges, job.Points)
	if err != nil {
		if surface.IsGuidance(err) {
			out.Guidance = surface.Guidance(err)
			return out, nil
		}
		return out, err
	}
	out.Result = res

	if step.Optimize {
		if r.Optimizer == nil {
			return out, errors.New("automation: step requests optimization but no optimizer is configured")
		}
		rep, err := r.Optimizer.Optimize(ctx, job)
		if err != nil {
			return out, err
		}
		out.Report = rep
	}

	if step.Save {
		if r.Archive == nil {
			return out, errors.New("automation: step requests saving but no archive is configured")
		}
		meta := storage.RunMetadata{
			Scenario:  scenarioName,
			Step:      step.Name,
			Domain:    job.Domain.Tag,
			Metric:    job.Metric,
			Variables: job.Selection,
			Ranges:    job.Ranges,
			Points:    job.Points,
		}
		if out.Report != nil {
			meta.MoneySaved = out.Report.Savings.MoneySaved
			meta.TimeSaved = out.Report.Savings.TimeSaved
		}
		header := make([]string, 0, len(job.Selection)+1)
		header = append(header, job.Selection...)
		header = append(header, job.Metric)
		out.RunID, err = r.Archive.Save(meta, res, header)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// job resolves a step into an optimizer job the same way the CLI resolves
// its flags: preset first, then explicit fields.
func (r *Runner) job(step ScenarioStep) (optim.Job, error) {
	cfg := config.DefaultConfig()
	cfg.Domain = step.Domain

	d, err := r.Registry.Get(step.Domain)
	if err != nil {
		return optim.Job{}, err
	}
	if step.Preset != "" {
		p := config.GetPreset(d.Tag, step.Preset)
		if p == nil {
			return optim.Job{}, fmt.Errorf("automation: unknown preset %q for %s", step.Preset, d.Tag)
		}
		cfg.Metric, cfg.Variables, cfg.Ranges = p.Metric, p.Variables, p.Ranges
	}
	if step.Metric != "" {
		cfg.Metric = step.Metric
	}
	if len(step.Variables) > 0 {
		cfg.Variables = cfg.Variables[:0]
		for _, v := range step.Variables {
			cfg.Variables = append(cfg.Variables, parameterKey(d, v))
		}
	}
	for name, rng := range step.Ranges {
		if cfg.Ranges == nil {
			cfg.Ranges = make(map[string]config.RangeConfig)
		}
		cfg.Ranges[parameterKey(d, name)] = rng
	}
	if step.Points > 0 {
		cfg.Points = step.Points
	}
	if err := cfg.Validate(); err != nil {
		return optim.Job{}, err
	}
	if _, err := cfg.Resolve(r.Registry); err != nil {
		return optim.Job{}, err
	}

	return optim.Job{
		Domain:    d,
		Metric:    cfg.Metric,
		Selection: surface.Selection(cfg.Variables),
		Ranges:    cfg.SurfaceRanges(),
		Points:    cfg.Points,
		Weight:    cfg.Weight,
	}, nil
}

func parameterKey(d *domain.Domain, name string) string {
	if key, ok := d.KeyForDisplay(name); ok {
		return key
	}
	return name
}
