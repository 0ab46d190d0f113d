package automation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/experiment"
)

// MonteCarloConfig propagates parameter uncertainty: each trial perturbs
// the named parameters by a uniform relative amount.
type MonteCarloConfig struct {
	Base      *config.Config
	Perturb   map[string]float64 // relative half-width, e.g. 0.1 for +-10 %
	NumTrials int
	Seed      int64
}

// MetricStats summarizes one metric over the successful trials.
type MetricStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

type MonteCarloResult struct {
	Trials int
	Failed int
	Stats  map[string]MetricStats
}

// RunMonteCarlo draws every perturbation up front from one seeded source so
// the outcome does not depend on scheduling.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, opts Options) (*MonteCarloResult, error) {
	if mc.NumTrials < 2 {
		return nil, fmt.Errorf("monte carlo needs at least two trials, got %d", mc.NumTrials)
	}
	base := mc.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	names := make([]string, 0, len(mc.Perturb))
	for name := range mc.Perturb {
		if _, err := base.Get(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewSource(mc.Seed))
	cfgs := make([]*config.Config, mc.NumTrials)
	for t := range cfgs {
		cfg := base.Clone()
		for _, name := range names {
			v, _ := cfg.Get(name)
			_ = cfg.Set(name, v*(1+(rng.Float64()-0.5)*2*mc.Perturb[name]))
		}
		cfgs[t] = cfg
	}

	log := opts.logger().WithField("trials", mc.NumTrials)
	metrics := make([]map[string]float64, mc.NumTrials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.limit())
	for t, cfg := range cfgs {
		t, cfg := t, cfg
		g.Go(func() error {
			out, err := experiment.New(cfg, log).Run(gctx)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithError(err).Debugf("trial %d failed", t+1)
				return nil
			}
			metrics[t] = out.Metrics
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &MonteCarloResult{Trials: mc.NumTrials, Stats: make(map[string]MetricStats)}
	samples := make(map[string][]float64)
	for _, m := range metrics {
		if m == nil {
			res.Failed++
			continue
		}
		for k, v := range m {
			samples[k] = append(samples[k], v)
		}
	}
	for k, xs := range samples {
		mean, std := stat.MeanStdDev(xs, nil)
		lo, hi := xs[0], xs[0]
		for _, x := range xs {
			lo = min(lo, x)
			hi = max(hi, x)
		}
		res.Stats[k] = MetricStats{Mean: mean, StdDev: std, Min: lo, Max: hi}
	}
	log.WithField("failed", res.Failed).Info("monte carlo complete")
	return res, nil
}
