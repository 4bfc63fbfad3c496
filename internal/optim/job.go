package optim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/savings"
	"github.com/quimicai/surfacelab/internal/surface"
)

// CompletedMessage is reported after every successful run.
const CompletedMessage = "Optimización completada. (Código confidencial, no disponible)"

// Job describes one optimization request. Weight is the importance slider;
// it is accepted and currently ignored.
type Job struct {
	Domain    *domain.Domain
	Metric    string
	Selection surface.Selection
	Ranges    map[string]surface.Range
	Points    int
	Weight    float64
}

// Optimum is the best grid cell found by a searching optimizer.
type Optimum struct {
	Params map[string]float64 `json:"params"`
	Value  float64            `json:"value"`
}

type Report struct {
	Result   *surface.Result  `json:"result,omitempty"`
	Savings  savings.Estimate `json:"savings"`
	Best     *Optimum         `json:"best,omitempty"`
	Message  string           `json:"message"`
	Guidance string           `json:"guidance,omitempty"`
	Elapsed  time.Duration    `json:"elapsed"`
}

// Optimizer runs a Job. Implementations block until done or ctx ends.
type Optimizer interface {
	Optimize(ctx context.Context, job Job) (*Report, error)
}

var (
	ErrUnknownOptimizer = errors.New("optim: unknown optimizer")
	ErrInvalidWeight    = errors.New("optim: weight must be in [0, 1]")
)

// New builds an optimizer by kind. An empty kind selects the placeholder.
func New(kind string, latency time.Duration) (Optimizer, error) {
	switch kind {
	case "", "placeholder":
		return NewPlaceholder(latency), nil
	case "grid":
		return GridOptimizer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOptimizer, kind)
}

// evaluate runs the parametric evaluator for a job. An invalid selection is
// folded into the report as guidance with zero savings.
func evaluate(job Job) (*Report, domain.Metric, error) {
	if job.Domain == nil {
		return nil, domain.Metric{}, fmt.Errorf("optim: job has no domain")
	}
	metric, err := job.Domain.Metric(job.Metric)
	if err != nil {
		return nil, domain.Metric{}, err
	}

	rep := &Report{Message: CompletedMessage}
	res, err := surface.Evaluate(metric.Fn, job.Domain.Parameters, job.Selection, job.Ranges, job.Points)
	if err != nil {
		if !surface.IsGuidance(err) {
			return nil, metric, err
		}
		rep.Guidance = surface.Guidance(err)
	}
	rep.Result = res
	rep.Savings = savings.FromResult(res, job.Domain.Tag)
	return rep, metric, nil
}
