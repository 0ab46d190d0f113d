package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/echemsim/internal/echem"
)

const (
	DefaultStartPotential  = 0.5
	DefaultSwitchPotential = -0.7
	DefaultScanRate        = 0.1
	DefaultStepPotential   = 0.8
	DefaultPulsePotential  = -0.5
	DefaultStepTime        = 3.0
	DefaultEndTime         = 30.0
	DefaultRateConstant    = 0.01
	DefaultAlpha           = 0.5
	DefaultDiffusion       = 1e-5
	DefaultConcentration   = 5e-8
	DefaultArea            = 0.1
	DefaultTemperature     = 298.0
)

type Config struct {
	Technique string          `yaml:"technique" json:"technique"`
	Mechanism string          `yaml:"mechanism" json:"mechanism"`
	Sweep     SweepConfig     `yaml:"sweep" json:"sweep"`
	Step      StepConfig      `yaml:"step" json:"step"`
	Kinetics  KineticsConfig  `yaml:"kinetics" json:"kinetics"`
	Transport TransportConfig `yaml:"transport" json:"transport"`
	Chemistry ChemistryConfig `yaml:"chemistry" json:"chemistry"`
	Cell      CellConfig      `yaml:"cell" json:"cell"`
	Grid      GridConfig      `yaml:"grid" json:"grid"`
}

type SweepConfig struct {
	Start    float64 `yaml:"start" json:"start"`
	Switch   float64 `yaml:"switch" json:"switch"`
	ScanRate float64 `yaml:"scan_rate" json:"scan_rate"`
}

type StepConfig struct {
	Initial  float64 `yaml:"initial" json:"initial"`
	Pulse    float64 `yaml:"pulse" json:"pulse"`
	StepTime float64 `yaml:"step_time" json:"step_time"`
	EndTime  float64 `yaml:"end_time" json:"end_time"`
}

type KineticsConfig struct {
	FormalPotential float64 `yaml:"formal_potential" json:"formal_potential"`
	Electrons       float64 `yaml:"electrons" json:"electrons"`
	RateConstant    float64 `yaml:"rate_constant" json:"rate_constant"`
	Alpha           float64 `yaml:"alpha" json:"alpha"`
}

type TransportConfig struct {
	Diffusion        float64 `yaml:"diffusion" json:"diffusion"`
	DiffusionReduced float64 `yaml:"diffusion_reduced,omitempty" json:"diffusion_reduced,omitempty"`
	Concentration    float64 `yaml:"concentration" json:"concentration"`
}

type ChemistryConfig struct {
	Forward float64 `yaml:"forward" json:"forward"`
	Reverse float64 `yaml:"reverse" json:"reverse"`
}

type CellConfig struct {
	Area        float64 `yaml:"area" json:"area"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	Capacitance float64 `yaml:"capacitance,omitempty" json:"capacitance,omitempty"`
	Resistance  float64 `yaml:"resistance,omitempty" json:"resistance,omitempty"`
	Shift       float64 `yaml:"shift,omitempty" json:"shift,omitempty"`
}

type GridConfig struct {
	TimeSteps  int `yaml:"time_steps" json:"time_steps"`
	SpaceSteps int `yaml:"space_steps" json:"space_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Technique: "sweep",
		Mechanism: "E",
		Sweep: SweepConfig{
			Start:    DefaultStartPotential,
			Switch:   DefaultSwitchPotential,
			ScanRate: DefaultScanRate,
		},
		Step: StepConfig{
			Initial:  DefaultStepPotential,
			Pulse:    DefaultPulsePotential,
			StepTime: DefaultStepTime,
			EndTime:  DefaultEndTime,
		},
		Kinetics: KineticsConfig{
			Electrons:    1,
			RateConstant: DefaultRateConstant,
			Alpha:        DefaultAlpha,
		},
		Transport: TransportConfig{
			Diffusion:     DefaultDiffusion,
			Concentration: DefaultConcentration,
		},
		Cell: CellConfig{
			Area:        DefaultArea,
			Temperature: DefaultTemperature,
		},
		Grid: GridConfig{
			TimeSteps:  echem.DefaultTimeSteps,
			SpaceSteps: echem.DefaultSpaceSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Params converts the file representation into engine parameters.
func (c *Config) Params() (echem.Params, error) {
	tech, err := echem.ParseTechnique(c.Technique)
	if err != nil {
		return echem.Params{}, err
	}
	mech, err := echem.ParseMechanism(c.Mechanism)
	if err != nil {
		return echem.Params{}, err
	}
	return echem.Params{
		Technique:               tech,
		Mechanism:               mech,
		StartPotential:          c.Sweep.Start,
		SwitchPotential:         c.Sweep.Switch,
		ScanRate:                c.Sweep.ScanRate,
		StepPotential:           c.Step.Initial,
		PulsePotential:          c.Step.Pulse,
		StepTime:                c.Step.StepTime,
		EndTime:                 c.Step.EndTime,
		FormalPotential:         c.Kinetics.FormalPotential,
		Electrons:               c.Kinetics.Electrons,
		RateConstant:            c.Kinetics.RateConstant,
		TransferCoefficient:     c.Kinetics.Alpha,
		Diffusion:               c.Transport.Diffusion,
		DiffusionReduced:        c.Transport.DiffusionReduced,
		Concentration:           c.Transport.Concentration,
		Area:                    c.Cell.Area,
		Temperature:             c.Cell.Temperature,
		ChemForward:             c.Chemistry.Forward,
		ChemReverse:             c.Chemistry.Reverse,
		TimeSteps:               c.Grid.TimeSteps,
		SpaceSteps:              c.Grid.SpaceSteps,
		DoubleLayerCapacitance:  c.Cell.Capacitance,
		UncompensatedResistance: c.Cell.Resistance,
		PotentialShift:          c.Cell.Shift,
	}, nil
}

func (c *Config) Validate() error {
	p, err := c.Params()
	if err != nil {
		return err
	}
	return p.Validate()
}

// fields maps the dotted parameter names accepted by Set and Get.
func (c *Config) fields() map[string]*float64 {
	return map[string]*float64{
		"sweep.start":                 &c.Sweep.Start,
		"sweep.switch":                &c.Sweep.Switch,
		"sweep.scan_rate":             &c.Sweep.ScanRate,
		"step.initial":                &c.Step.Initial,
		"step.pulse":                  &c.Step.Pulse,
		"step.step_time":              &c.Step.StepTime,
		"step.end_time":               &c.Step.EndTime,
		"kinetics.formal_potential":   &c.Kinetics.FormalPotential,
		"kinetics.electrons":          &c.Kinetics.Electrons,
		"kinetics.rate_constant":      &c.Kinetics.RateConstant,
		"kinetics.alpha":              &c.Kinetics.Alpha,
		"transport.diffusion":         &c.Transport.Diffusion,
		"transport.diffusion_reduced": &c.Transport.DiffusionReduced,
		"transport.concentration":     &c.Transport.Concentration,
		"chemistry.forward":           &c.Chemistry.Forward,
		"chemistry.reverse":           &c.Chemistry.Reverse,
		"cell.area":                   &c.Cell.Area,
		"cell.temperature":            &c.Cell.Temperature,
		"cell.capacitance":            &c.Cell.Capacitance,
		"cell.resistance":             &c.Cell.Resistance,
		"cell.shift":                  &c.Cell.Shift,
	}
}

// Set assigns a numeric parameter by its dotted name, e.g. "kinetics.rate_constant".
// Grid sizes are rounded to the nearest integer.
func (c *Config) Set(name string, value float64) error {
	switch name {
	case "grid.time_steps":
		c.Grid.TimeSteps = int(value + 0.5)
		return nil
	case "grid.space_steps":
		c.Grid.SpaceSteps = int(value + 0.5)
		return nil
	}
	f, ok := c.fields()[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	*f = value
	return nil
}

func (c *Config) Get(name string) (float64, error) {
	switch name {
	case "grid.time_steps":
		return float64(c.Grid.TimeSteps), nil
	case "grid.space_steps":
		return float64(c.Grid.SpaceSteps), nil
	}
	f, ok := c.fields()[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s", name)
	}
	return *f, nil
}

// ParamNames lists every name accepted by Set, sorted.
func ParamNames() []string {
	var c Config
	names := []string{"grid.time_steps", "grid.space_steps"}
	for name := range c.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
