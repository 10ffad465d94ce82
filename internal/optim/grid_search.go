// Package optim fits rate constants by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/biomodel"
	"github.com/san-kum/biosim/internal/engine"
)

var ErrNoCandidate = errors.New("optim: no grid point simulated successfully")

// Axis is one reaction and the rate constants to try for it.
type Axis struct {
	Reaction string
	Values   []float64
}

// Objective scores a trajectory; lower is better.
type Objective func(res *engine.Results) float64

// FinalTargets scores the squared distance between final concentrations and
// targets, keyed by species name. A missing species scores +Inf.
func FinalTargets(targets map[string]float64) Objective {
	return func(res *engine.Results) float64 {
		sum := 0.0
		for name, want := range targets {
			traj, ok := res.TrajectoryOf(name)
			if !ok || len(traj) == 0 {
				return math.Inf(1)
			}
			d := traj[len(traj)-1] - want
			sum += d * d
		}
		return sum
	}
}

type Result struct {
	RateConstants map[string]float64 `json:"rate_constants"`
	Score         float64            `json:"score"`
	Evaluated     int                `json:"evaluated"`
	Failed        int                `json:"failed"`
}

type GridSearch struct {
	axes []Axis
	cfg  biomodel.SimulationConfig
	log  *zap.Logger
}

func NewGridSearch(axes []Axis, cfg biomodel.SimulationConfig, log *zap.Logger) *GridSearch {
	if log == nil {
		log = zap.NewNop()
	}
	return &GridSearch{axes: axes, cfg: cfg, log: log}
}

// Search tries every combination of axis values on b and returns the best.
// Grid points whose simulation fails are counted and skipped. The rate
// constants of b are restored before returning.
func (g *GridSearch) Search(ctx context.Context, b *biomodel.BioModel, obj Objective) (best *Result, err error) {
	snap := b.Model()
	original := make(map[string]float64, len(g.axes))
	for _, a := range g.axes {
		k, err := snap.RateConstant(a.Reaction)
		if err != nil {
			return nil, err
		}
		original[a.Reaction] = k
	}
	defer func() {
		for id, k := range original {
			if rerr := b.SetRateConstant(id, k); rerr != nil {
				err = errors.Join(err, fmt.Errorf("restore %s=%g: %w", id, k, rerr))
			}
		}
	}()

	best = &Result{Score: math.Inf(1)}
	current := make(map[string]float64, len(g.axes))
	if err := g.search(ctx, b, obj, 0, current, best); err != nil {
		return nil, err
	}
	if best.RateConstants == nil {
		return nil, ErrNoCandidate
	}
	g.log.Info("grid search complete",
		zap.Int("evaluated", best.Evaluated),
		zap.Int("failed", best.Failed),
		zap.Float64("score", best.Score),
	)
	return best, nil
}

func (g *GridSearch) search(ctx context.Context, b *biomodel.BioModel, obj Objective, depth int, current map[string]float64, best *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		for id, k := range current {
			if err := b.SetRateConstant(id, k); err != nil {
				return err
			}
		}
		res, err := b.Simulate(ctx, g.cfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.log.Debug("grid point failed", zap.Any("rate_constants", current), zap.Error(err))
			best.Failed++
			return nil
		}

		best.Evaluated++
		if score := obj(res); score < best.Score {
			best.Score = score
			best.RateConstants = make(map[string]float64, len(current))
			for k, v := range current {
				best.RateConstants[k] = v
			}
		}
		return nil
	}

	axis := g.axes[depth]
	for _, v := range axis.Values {
		current[axis.Reaction] = v
		if err := g.search(ctx, b, obj, depth+1, current, best); err != nil {
			return err
		}
	}
	delete(current, axis.Reaction)
	return nil
}
