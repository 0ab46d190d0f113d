package automation

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/experiment"
)

// ParameterSweep runs simulations across a range of one parameter
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
	// Log spaces the values geometrically, for rate constants.
	Log bool
}

// SweepResult holds one point of a sweep. A point whose run failed, for
// example because the grid became unstable, carries Err and no metrics.
type SweepResult struct {
	Value   float64
	Metrics map[string]float64
	Err     error
}

// Values returns the sampled parameter values in ascending order.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", s.Steps)
	}
	if s.Steps == 1 {
		return []float64{s.Min}, nil
	}
	if s.Max < s.Min {
		return nil, fmt.Errorf("sweep range is reversed: %g > %g", s.Min, s.Max)
	}
	out := make([]float64, s.Steps)
	if s.Log {
		if s.Min <= 0 {
			return nil, fmt.Errorf("log sweep needs a positive minimum, got %g", s.Min)
		}
		floats.LogSpan(out, s.Min, s.Max)
		return out, nil
	}
	floats.Span(out, s.Min, s.Max)
	return out, nil
}

// RunSweep evaluates every sweep point concurrently. Results keep the
// order of Values.
func RunSweep(ctx context.Context, sweep *ParameterSweep, opts Options) ([]SweepResult, error) {
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	if _, err := base.Get(sweep.Param); err != nil {
		return nil, err
	}

	log := opts.logger().WithField("param", sweep.Param)
	results := make([]SweepResult, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.limit())
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			cfg := base.Clone()
			if err := cfg.Set(sweep.Param, v); err != nil {
				return err
			}
			results[i].Value = v
			out, err := experiment.New(cfg, log).Run(gctx)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithError(err).Warnf("%s=%g failed", sweep.Param, v)
				results[i].Err = err
				return nil
			}
			results[i].Metrics = out.Metrics
			log.Debugf("sweep %d/%d: %s=%g", i+1, len(values), sweep.Param, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Column extracts one metric across the sweep, NaN where the run failed.
func Column(results []SweepResult, metric string) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		v, ok := r.Metrics[metric]
		if r.Err != nil || !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
