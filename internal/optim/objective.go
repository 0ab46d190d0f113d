package optim

import (
	"github.com/san-kum/echemsim/internal/analysis"
	"github.com/san-kum/echemsim/internal/experiment"
	"github.com/san-kum/echemsim/internal/refdata"
)

// MatchReference scores a run by its RMSE against a measured trace.
func MatchReference(ref *refdata.Trace, axis analysis.Axis) Objective {
	return func(out *experiment.Outcome) (float64, error) {
		fit, err := analysis.Compare(out.Result, ref, axis)
		if err != nil {
			return 0, err
		}
		return fit.RMSE, nil
	}
}

// MinimizeMetric scores a run by one of its evaluated metrics.
func MinimizeMetric(name string) Objective {
	return func(out *experiment.Outcome) (float64, error) {
		return out.Metrics[name], nil
	}
}
