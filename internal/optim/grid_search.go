package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/experiment"
)

// Objective scores one finished run; lower is better.
type Objective func(out *experiment.Outcome) (float64, error)

var ErrNoFeasiblePoint = errors.New("optim: every grid point failed")

// GridSearch evaluates the full Cartesian product of the parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	parallel   int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// WithParallel bounds the number of concurrent runs. Zero means unbounded.
func (g *GridSearch) WithParallel(n int) *GridSearch {
	g.parallel = n
	return g
}

// Result is the best grid point. Ties go to the point that comes first in
// grid order.
type Result struct {
	Params    map[string]float64
	Score     float64
	Evaluated int
	Failed    int
}

// points enumerates the grid with the last parameter varying fastest.
func (g *GridSearch) points() []map[string]float64 {
	out := []map[string]float64{{}}
	for d, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(out)*len(g.ranges[d]))
		for _, p := range out {
			for _, v := range g.ranges[d] {
				q := make(map[string]float64, len(p)+1)
				for k, x := range p {
					q[k] = x
				}
				q[name] = v
				next = append(next, q)
			}
		}
		out = next
	}
	return out
}

func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (*Result, error) {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("need one value list per parameter, got %d names and %d lists", len(g.paramNames), len(g.ranges))
	}
	for i, name := range g.paramNames {
		if _, err := base.Get(name); err != nil {
			return nil, err
		}
		if len(g.ranges[i]) == 0 {
			return nil, fmt.Errorf("no values for %s", name)
		}
	}

	points := g.points()
	scores := make([]float64, len(points))

	eg, egctx := errgroup.WithContext(ctx)
	if g.parallel > 0 {
		eg.SetLimit(g.parallel)
	}
	for i, pt := range points {
		i, pt := i, pt
		eg.Go(func() error {
			scores[i] = math.NaN()
			cfg := base.Clone()
			for k, v := range pt {
				if err := cfg.Set(k, v); err != nil {
					return err
				}
			}
			out, err := experiment.New(cfg, nil).Run(egctx)
			if err != nil {
				return egctx.Err()
			}
			s, err := objective(out)
			if err != nil || math.IsNaN(s) {
				return nil
			}
			scores[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Score: math.Inf(1), Evaluated: len(points)}
	for i, s := range scores {
		if math.IsNaN(s) {
			res.Failed++
			continue
		}
		if s < res.Score {
			res.Score = s
			res.Params = points[i]
		}
	}
	if res.Params == nil {
		return res, ErrNoFeasiblePoint
	}
	return res, nil
}
