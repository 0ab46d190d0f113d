package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/refdata"
)

// Axis selects the abscissa of the measured trace.
type Axis int

const (
	PotentialAxis Axis = iota
	TimeAxis
)

func ParseAxis(s string) (Axis, error) {
	switch s {
	case "potential", "E":
		return PotentialAxis, nil
	case "time", "t":
		return TimeAxis, nil
	}
	return 0, fmt.Errorf("unknown axis: %s", s)
}

var ErrNoOverlap = errors.New("analysis: reference does not overlap the simulation")

// Fit summarizes the residual between simulation and reference, in A.
type Fit struct {
	RMSE    float64 `json:"rmse"`
	MaxAbs  float64 `json:"max_abs"`
	Points  int     `json:"points"`
	Skipped int     `json:"skipped"`
}

// Branch is one monotonic half of a sweep.
type Branch struct {
	Potential []float64
	Current   []float64
}

// Branches splits a sweep at its most negative potential. The switching
// sample belongs to both halves.
func Branches(potential, current []float64) (forward, reverse Branch) {
	if len(potential) == 0 {
		return Branch{}, Branch{}
	}
	k := floats.MinIdx(potential)
	forward = Branch{Potential: potential[:k+1], Current: current[:k+1]}
	reverse = Branch{Potential: potential[k:], Current: current[k:]}
	return forward, reverse
}

// Compare interpolates the simulated current at every reference abscissa.
// Reference points outside the simulated range are skipped.
func Compare(res *echem.Result, ref *refdata.Trace, axis Axis) (*Fit, error) {
	if ref.Len() == 0 {
		return nil, ErrNoOverlap
	}
	amps := ref.Amps()

	var sim, meas []float64
	skipped := 0
	match := func(x, y []float64, rx, ry []float64) error {
		s, n, err := resample(x, y, rx)
		if err != nil {
			return err
		}
		skipped += n
		for i, v := range s {
			if !math.IsNaN(v) {
				sim = append(sim, v)
				meas = append(meas, ry[i])
			}
		}
		return nil
	}

	switch axis {
	case TimeAxis:
		if err := match(res.Time, res.Current, ref.X, amps); err != nil {
			return nil, err
		}
	case PotentialAxis:
		if res.Technique != echem.Sweep {
			return nil, fmt.Errorf("potential axis needs a sweep, got %s", res.Technique)
		}
		simF, simR := Branches(res.Potential, res.Current)
		refF, refR := Branches(ref.X, amps)
		if err := match(simF.Potential, simF.Current, refF.Potential, refF.Current); err != nil {
			return nil, err
		}
		// The switching sample was already matched with the forward branch.
		if len(refR.Potential) > 1 {
			if err := match(simR.Potential, simR.Current, refR.Potential[1:], refR.Current[1:]); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown axis %d", axis)
	}

	if len(sim) == 0 {
		return nil, ErrNoOverlap
	}
	n := float64(len(sim))
	return &Fit{
		RMSE:    floats.Distance(sim, meas, 2) / math.Sqrt(n),
		MaxAbs:  floats.Distance(sim, meas, math.Inf(1)),
		Points:  len(sim),
		Skipped: skipped,
	}, nil
}

// resample evaluates the piecewise-linear interpolant of (x, y) at each of
// at. Points outside the range of x come back as NaN and are counted.
func resample(x, y, at []float64) ([]float64, int, error) {
	xs, ys := strictlyIncreasing(x, y)
	if len(xs) < 2 {
		return nil, 0, fmt.Errorf("need at least two distinct abscissae, got %d", len(xs))
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, 0, err
	}

	lo, hi := xs[0], xs[len(xs)-1]
	out := make([]float64, len(at))
	skipped := 0
	for i, a := range at {
		if a < lo || a > hi {
			out[i] = math.NaN()
			skipped++
			continue
		}
		out[i] = pl.Predict(a)
	}
	return out, skipped, nil
}

// strictlyIncreasing sorts the pairs by x and drops repeated abscissae,
// keeping the first occurrence.
func strictlyIncreasing(x, y []float64) ([]float64, []float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for _, i := range idx {
		if n := len(xs); n > 0 && x[i] <= xs[n-1] {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
