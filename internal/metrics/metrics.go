package metrics

import (
	"github.com/san-kum/echemsim/internal/echem"
)

// Metric accumulates one figure of merit over a trace, sample by sample.
type Metric interface {
	Name() string
	Observe(potential, current, t float64)
	Value() float64
	Reset()
}

// Defaults returns the metric set that makes sense for the technique.
func Defaults(p echem.Params) []Metric {
	common := []Metric{
		NewCharge(),
		NewFinalCurrent(),
	}
	if p.Technique == echem.Step {
		return append(common, NewCottrell(p.StepTime))
	}
	return append([]Metric{
		NewPeak(Cathodic, PeakCurrent),
		NewPeak(Cathodic, PeakPotential),
		NewPeak(Anodic, PeakCurrent),
		NewPeak(Anodic, PeakPotential),
		NewPeakSeparation(),
	}, common...)
}

// Evaluate resets every metric, replays the trace and collects the values by name.
func Evaluate(res *echem.Result, ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i := 0; i < res.Len(); i++ {
			m.Observe(res.Potential[i], res.Current[i], res.Time[i])
		}
		out[m.Name()] = m.Value()
	}
	return out
}
