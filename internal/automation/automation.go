package automation

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/experiment"
	"github.com/san-kum/echemsim/internal/logging"
)

// Saver persists a finished run. *storage.Store satisfies it.
type Saver interface {
	Save(cfg *config.Config, res *echem.Result, metrics map[string]float64) (string, error)
}

// Options control batch execution. Zero values run on every CPU without
// logging or saving.
type Options struct {
	Parallel int
	Log      logrus.FieldLogger
	Store    Saver
}

func (o Options) limit() int {
	if o.Parallel > 0 {
		return o.Parallel
	}
	return runtime.NumCPU()
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logging.Discard()
	}
	return o.Log
}

// Scenario defines a scripted batch of simulations
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Base        string         `yaml:"base"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Unset fields inherit from the
// scenario base preset.
type ScenarioStep struct {
	Name      string             `yaml:"name"`
	Preset    string             `yaml:"preset"`
	Technique string             `yaml:"technique"`
	Mechanism string             `yaml:"mechanism"`
	Set       map[string]float64 `yaml:"set"`
	Save      bool               `yaml:"save"`
}

// StepResult pairs a scenario step with its outcome.
type StepResult struct {
	Step    string
	Outcome *experiment.Outcome
	RunID   string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves the configuration of step i.
func (s *Scenario) Config(i int) (*config.Config, error) {
	step := s.Steps[i]
	preset := step.Preset
	if preset == "" {
		preset = s.Base
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if step.Technique != "" {
		cfg.Technique = step.Technique
	}
	if step.Mechanism != "" {
		cfg.Mechanism = step.Mechanism
	}
	for name, v := range step.Set {
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes every step concurrently. The first failing step
// cancels the rest; results keep the step order.
func RunScenario(ctx context.Context, scenario *Scenario, opts Options) ([]StepResult, error) {
	log := opts.logger().WithField("scenario", scenario.Name)

	cfgs := make([]*config.Config, len(scenario.Steps))
	for i := range scenario.Steps {
		cfg, err := scenario.Config(i)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfgs[i] = cfg
	}

	results := make([]StepResult, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.limit())

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		step := scenario.Steps[i]
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}

		g.Go(func() error {
			out, err := experiment.New(cfg, log).Run(gctx)
			if err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, name, err)
			}
			res := StepResult{Step: name, Outcome: out}
			if step.Save && opts.Store != nil {
				id, err := opts.Store.Save(cfg, out.Result, out.Metrics)
				if err != nil {
					return fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
				}
				res.RunID = id
			}
			results[i] = res
			log.WithField("step", name).Infof("step %d/%d complete", i+1, len(cfgs))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
