package optim

import (
	"context"
	"time"

	"github.com/quimicai/surfacelab/internal/logger"
)

// DefaultLatency is the simulated optimization time.
const DefaultLatency = 10 * time.Second

// Placeholder pauses for a fixed latency, then evaluates the job. The pause
// is unconditional; only context cancellation ends it early.
type Placeholder struct {
	Latency time.Duration
}

func NewPlaceholder(latency time.Duration) *Placeholder {
	if latency < 0 {
		latency = 0
	}
	return &Placeholder{Latency: latency}
}

func (p *Placeholder) Optimize(ctx context.Context, job Job) (*Report, error) {
	start := time.Now()
	logger.Debug("placeholder optimization started", "domain", tagOf(job), "metric", job.Metric, "latency", p.Latency)

	timer := time.NewTimer(p.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	rep, _, err := evaluate(job)
	if err != nil {
		return nil, err
	}
	rep.Elapsed = time.Since(start)
	logger.Info("optimization completed", "domain", tagOf(job), "money_saved", rep.Savings.MoneySaved, "elapsed", rep.Elapsed)
	return rep, nil
}

func tagOf(job Job) string {
	if job.Domain == nil {
		return ""
	}
	return job.Domain.Tag
}
