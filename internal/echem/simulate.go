package echem

import "fmt"

// Simulate runs one experiment end to end. It either returns a complete
// result or an error; nothing is logged and no state outlives the call.
func Simulate(p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g, err := Discretize(p)
	if err != nil {
		return nil, err
	}
	if err := g.CheckStability(); err != nil {
		return nil, err
	}

	potential := Waveform(p, g)
	kf, kb, err := RateConstants(p, potential)
	if err != nil {
		return nil, err
	}

	s := newSolver(p, g, kf, kb)
	s.run()

	for i, j := range s.flux {
		if !finite(j) {
			return nil, fmt.Errorf("%w: current diverged at sample %d", ErrUnstable, i)
		}
	}
	return newResult(p, g, potential, s), nil
}
