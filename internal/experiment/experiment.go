package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/logging"
	"github.com/san-kum/echemsim/internal/metrics"
)

// Outcome is one finished run with its evaluated metrics.
type Outcome struct {
	ID      string
	Config  *config.Config
	Result  *echem.Result
	Metrics map[string]float64
	Elapsed time.Duration
}

type Experiment struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	metrics []metrics.Metric
}

// New takes a private copy of cfg. A nil logger discards output.
func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logging.Discard()
	}
	return &Experiment{cfg: cfg.Clone(), log: log}
}

// WithMetrics replaces the default metric set for the technique.
func (e *Experiment) WithMetrics(ms ...metrics.Metric) *Experiment {
	e.metrics = ms
	return e
}

func (e *Experiment) Config() *config.Config {
	return e.cfg.Clone()
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := e.cfg.Params()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", echem.ErrConfiguration, err)
	}

	id := uuid.NewString()
	log := e.log.WithFields(logrus.Fields{
		"run_id":    id[:8],
		"mechanism": p.Mechanism,
		"technique": p.Technique,
	})

	start := time.Now()
	res, err := echem.Simulate(p)
	if err != nil {
		log.WithError(err).Debug("simulation failed")
		return nil, err
	}
	elapsed := time.Since(start)

	for _, w := range res.Warnings {
		log.Warn(w)
	}

	ms := e.metrics
	if ms == nil {
		ms = metrics.Defaults(p)
	}
	out := &Outcome{
		ID:      id,
		Config:  e.cfg.Clone(),
		Result:  res,
		Metrics: metrics.Evaluate(res, ms),
		Elapsed: elapsed,
	}

	log.WithFields(logrus.Fields{
		"lambda":  fmt.Sprintf("%.4f", res.Grid.Lambda[echem.Oxidized]),
		"samples": res.Len(),
		"elapsed": elapsed,
	}).Debug("simulation complete")
	return out, nil
}
