package echem

import "math"

// Grid is the fixed time/space discretization of one run. The spatial extent
// is six diffusion lengths of the oxidized species over the whole experiment.
type Grid struct {
	TimeSteps  int
	SpaceSteps int

	TotalTime float64 // s
	TimeStep  float64 // s
	Length    float64 // cm
	SpaceStep float64 // cm

	// Lambda holds D*dt/dx^2 for each species.
	Lambda [3]float64
}

// Discretize derives the grid from the technique timing and the diffusion
// coefficient.
func Discretize(p Params) (Grid, error) {
	var total float64
	switch p.Technique {
	case Sweep:
		if p.ScanRate == 0 {
			return Grid{}, &ConfigError{Field: "scan rate", Value: p.ScanRate, Reason: "must not be zero"}
		}
		total = 2 * (p.StartPotential - p.SwitchPotential) / p.ScanRate
	case Step:
		total = p.EndTime
	default:
		return Grid{}, &ConfigError{Field: "technique", Value: float64(p.Technique), Reason: "unknown technique"}
	}
	if !(total > 0) {
		return Grid{}, &ConfigError{Field: "total time", Value: total, Reason: "must be positive (sweep needs start potential above switch potential)"}
	}
	if p.TimeSteps < 1 || p.SpaceSteps < 1 {
		return Grid{}, ErrDegenerateGrid
	}

	g := Grid{
		TimeSteps:  p.TimeSteps,
		SpaceSteps: p.SpaceSteps,
		TotalTime:  total,
		TimeStep:   total / float64(p.TimeSteps),
		Length:     6 * math.Sqrt(p.Diffusion*total),
	}
	g.SpaceStep = g.Length / float64(p.SpaceSteps)
	if !usable(g.TimeStep) || !usable(g.SpaceStep) {
		return Grid{}, ErrDegenerateGrid
	}

	dx2 := g.SpaceStep * g.SpaceStep
	for _, s := range []Species{Oxidized, Reduced, Chemical} {
		g.Lambda[s] = p.DiffusionOf(s) * g.TimeStep / dx2
	}
	return g, nil
}

// CheckStability returns a *StabilityError for the first species whose
// diffusion number exceeds StabilityLimit.
func (g Grid) CheckStability() error {
	for _, s := range []Species{Oxidized, Reduced, Chemical} {
		if l := g.Lambda[s]; !(l <= StabilityLimit) {
			return &StabilityError{Species: s, Lambda: l, Limit: StabilityLimit}
		}
	}
	return nil
}

// StepIndex is the sample at which the step technique switches to the
// pulse potential.
func (g Grid) StepIndex(stepTime float64) int {
	return int(math.RoundToEven(float64(g.TimeSteps) * stepTime / g.TotalTime))
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
