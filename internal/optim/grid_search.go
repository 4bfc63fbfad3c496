package optim

import (
	"context"
	"math"
	"time"

	"github.com/quimicai/surfacelab/internal/numeric"
	"github.com/quimicai/surfacelab/internal/surface"
)

// Goal selects the search direction.
type Goal int

const (
	Maximize Goal = iota
	Minimize
)

func (g Goal) better(candidate, best float64) bool {
	if g == Minimize {
		return candidate < best
	}
	return candidate > best
}

func (g Goal) worst() float64 {
	if g == Minimize {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// GridSearch visits every combination of candidate values, one axis per
// parameter, and keeps the best objective value.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates objective at every grid point. base supplies values for
// parameters not being searched. It stops early with ctx.Err() when the
// context ends.
func (g *GridSearch) Search(
	ctx context.Context,
	base map[string]float64,
	objective func(params map[string]float64) float64,
	goal Goal,
) (map[string]float64, float64, error) {

	best := goal.worst()
	var bestParams map[string]float64

	current := make(map[string]float64, len(base))
	for k, v := range base {
		current[k] = v
	}
	if err := g.searchRecursive(ctx, 0, current, objective, goal, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective func(map[string]float64) float64,
	goal Goal,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val := objective(current)
		if *bestParams == nil || goal.better(val, *best) {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current))
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, objective, goal, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// GridOptimizer evaluates the job and reports the best grid cell. Cost
// metrics are minimized, everything else maximized.
type GridOptimizer struct{}

func (GridOptimizer) Optimize(ctx context.Context, job Job) (*Report, error) {
	start := time.Now()
	rep, metric, err := evaluate(job)
	if err != nil || rep.Guidance != "" {
		return rep, err
	}

	axes := make([][]float64, len(job.Selection))
	for i, name := range job.Selection {
		p, _ := job.Domain.Parameters.Get(name)
		r, ok := job.Ranges[name]
		if !ok {
			r = surface.Range{Low: p.Low, High: p.High}
		}
		axes[i] = numeric.Linspace(r.Low, r.High, job.Points)
	}

	goal := Maximize
	if metric.Cost {
		goal = Minimize
	}
	params, value, err := NewGridSearch(job.Selection, axes).
		Search(ctx, job.Domain.Parameters.Midpoints(), metric.Fn, goal)
	if err != nil {
		return nil, err
	}
	rep.Best = &Optimum{Params: params, Value: value}
	rep.Elapsed = time.Since(start)
	return rep, nil
}
