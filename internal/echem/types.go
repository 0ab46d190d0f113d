package echem

import (
	"fmt"
	"math"
	"strings"
)

// Physical constants.
const (
	Faraday     = 96485.0 // C/mol
	GasConstant = 8.31451 // J/(mol K)
)

// Reference grid resolution.
const (
	DefaultTimeSteps  = 1000
	DefaultSpaceSteps = 100

	// StabilityLimit is the largest diffusion number the explicit scheme tolerates.
	StabilityLimit = 0.5
)

type Technique int

const (
	// Sweep is cyclic voltammetry: a triangular ramp from the start to the
	// switching potential and back.
	Sweep Technique = iota
	// Step is single-step chronoamperometry.
	Step
)

func (t Technique) String() string {
	switch t {
	case Sweep:
		return "sweep"
	case Step:
		return "step"
	}
	return fmt.Sprintf("technique(%d)", int(t))
}

// ParseTechnique accepts the short names as well as the instrument names
// "voltammetry" and "chronoamperometry".
func ParseTechnique(s string) (Technique, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sweep", "cv", "voltammetry":
		return Sweep, nil
	case "step", "ca", "chronoamperometry":
		return Step, nil
	}
	return 0, fmt.Errorf("unknown technique: %s", s)
}

func (t Technique) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Technique) UnmarshalText(b []byte) error {
	v, err := ParseTechnique(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Species indexes the three concentration grids.
type Species int

const (
	Oxidized Species = iota
	Reduced
	Chemical
)

func (s Species) String() string {
	switch s {
	case Oxidized:
		return "oxidized"
	case Reduced:
		return "reduced"
	case Chemical:
		return "chemical"
	}
	return fmt.Sprintf("species(%d)", int(s))
}

// Params is the complete input of one simulation run. Potentials are in V,
// lengths in cm, concentrations in mol/cm3.
type Params struct {
	Technique Technique
	Mechanism Mechanism

	StartPotential  float64
	SwitchPotential float64
	ScanRate        float64 // V/s

	StepPotential  float64 // held until StepTime
	PulsePotential float64
	StepTime       float64 // s
	EndTime        float64 // s

	FormalPotential     float64
	Electrons           float64
	RateConstant        float64 // k0, cm/s
	TransferCoefficient float64

	Diffusion        float64 // oxidized and chemical species, cm2/s
	DiffusionReduced float64 // 0 means same as Diffusion
	Concentration    float64
	Area             float64 // cm2
	Temperature      float64 // K

	ChemForward float64 // 1/s
	ChemReverse float64 // 1/s

	TimeSteps  int
	SpaceSteps int

	// Accepted but not applied: the scheme has no capacitive current and
	// no ohmic drop. Non-zero values are reported in Result.Warnings.
	DoubleLayerCapacitance  float64 // F
	UncompensatedResistance float64 // ohm
	PotentialShift          float64 // V
}

// DefaultParams returns a reversible-ish one-electron reduction scanned
// at 100 mV/s.
func DefaultParams() Params {
	return Params{
		Technique:           Sweep,
		Mechanism:           E,
		StartPotential:      0.5,
		SwitchPotential:     -0.7,
		ScanRate:            0.1,
		StepPotential:       0.8,
		PulsePotential:      -0.5,
		StepTime:            3,
		EndTime:             30,
		FormalPotential:     0,
		Electrons:           1,
		RateConstant:        0.01,
		TransferCoefficient: 0.5,
		Diffusion:           1e-5,
		Concentration:       5e-8,
		Area:                0.1,
		Temperature:         298,
		TimeSteps:           DefaultTimeSteps,
		SpaceSteps:          DefaultSpaceSteps,
	}
}

// DiffusionOf returns the diffusion coefficient used for species s.
func (p Params) DiffusionOf(s Species) float64 {
	if s == Reduced && p.DiffusionReduced != 0 {
		return p.DiffusionReduced
	}
	return p.Diffusion
}

// Validate checks every field once, before any grid is allocated.
func (p Params) Validate() error {
	if p.Technique != Sweep && p.Technique != Step {
		return &ConfigError{Field: "technique", Value: float64(p.Technique), Reason: "unknown technique"}
	}
	if p.Mechanism < E || p.Mechanism > ECat {
		return &ConfigError{Field: "mechanism", Value: float64(p.Mechanism), Reason: "unknown mechanism"}
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"start potential", p.StartPotential},
		{"switch potential", p.SwitchPotential},
		{"scan rate", p.ScanRate},
		{"step potential", p.StepPotential},
		{"pulse potential", p.PulsePotential},
		{"step time", p.StepTime},
		{"end time", p.EndTime},
		{"formal potential", p.FormalPotential},
		{"electrons", p.Electrons},
		{"rate constant", p.RateConstant},
		{"transfer coefficient", p.TransferCoefficient},
		{"diffusion coefficient", p.Diffusion},
		{"reduced diffusion coefficient", p.DiffusionReduced},
		{"concentration", p.Concentration},
		{"area", p.Area},
		{"temperature", p.Temperature},
		{"forward chemical rate", p.ChemForward},
		{"reverse chemical rate", p.ChemReverse},
		{"double-layer capacitance", p.DoubleLayerCapacitance},
		{"uncompensated resistance", p.UncompensatedResistance},
		{"potential shift", p.PotentialShift},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ConfigError{Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"electrons", p.Electrons},
		{"rate constant", p.RateConstant},
		{"diffusion coefficient", p.Diffusion},
		{"area", p.Area},
		{"temperature", p.Temperature},
	}
	for _, f := range positive {
		if f.v <= 0 {
			return &ConfigError{Field: f.name, Value: f.v, Reason: "must be positive"}
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"reduced diffusion coefficient", p.DiffusionReduced},
		{"concentration", p.Concentration},
		{"forward chemical rate", p.ChemForward},
		{"reverse chemical rate", p.ChemReverse},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return &ConfigError{Field: f.name, Value: f.v, Reason: "must not be negative"}
		}
	}

	if p.TransferCoefficient < 0 || p.TransferCoefficient > 1 {
		return &ConfigError{Field: "transfer coefficient", Value: p.TransferCoefficient, Reason: "must lie in [0, 1]"}
	}
	if p.TimeSteps < 1 {
		return &ConfigError{Field: "time steps", Value: float64(p.TimeSteps), Reason: "must be at least 1"}
	}
	if p.SpaceSteps < 2 {
		return &ConfigError{Field: "space steps", Value: float64(p.SpaceSteps), Reason: "must be at least 2"}
	}

	switch p.Technique {
	case Sweep:
		if p.ScanRate <= 0 {
			return &ConfigError{Field: "scan rate", Value: p.ScanRate, Reason: "must be positive"}
		}
	case Step:
		if p.EndTime <= 0 {
			return &ConfigError{Field: "end time", Value: p.EndTime, Reason: "must be positive"}
		}
		if p.StepTime < 0 || p.StepTime > p.EndTime {
			return &ConfigError{Field: "step time", Value: p.StepTime, Reason: "must lie within [0, end time]"}
		}
	}
	return nil
}
