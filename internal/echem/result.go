package echem

import "fmt"

// Result is the complete output of one run. Series are indexed by time
// sample; grids are indexed [time][distance]. A Result is not modified
// after Simulate returns it.
type Result struct {
	Technique Technique
	Mechanism Mechanism
	Params    Params
	Grid      Grid

	Potential []float64 // V
	Current   []float64 // A, cathodic negative
	Time      []float64 // s
	Distance  []float64 // cm, one point per grid column
	Flux      []float64 // mol/(cm2 s)

	Oxidized [][]float64
	Reduced  [][]float64
	Chemical [][]float64

	Warnings []string
}

// Len is the number of time samples.
func (r *Result) Len() int {
	return len(r.Current)
}

// Concentration returns the grid of species s.
func (r *Result) Concentration(s Species) [][]float64 {
	switch s {
	case Oxidized:
		return r.Oxidized
	case Reduced:
		return r.Reduced
	case Chemical:
		return r.Chemical
	}
	return nil
}

// Profile returns the concentration of every species against distance at
// time sample i.
func (r *Result) Profile(i int) (Cell, [3][]float64, error) {
	if i < 0 || i >= r.Len() {
		return Cell{}, [3][]float64{}, fmt.Errorf("time index %d out of range [0, %d)", i, r.Len())
	}
	rows := [3][]float64{r.Oxidized[i], r.Reduced[i], r.Chemical[i]}
	return Cell{rows[0][0], rows[1][0], rows[2][0]}, rows, nil
}

func newResult(p Params, g Grid, potential []float64, s *solver) *Result {
	time := make([]float64, g.TimeSteps+1)
	for i := range time {
		time[i] = float64(i) * g.TimeStep
	}
	dist := make([]float64, g.SpaceSteps+1)
	for j := range dist {
		dist[j] = float64(j) * g.SpaceStep
	}

	r := &Result{
		Technique: p.Technique,
		Mechanism: p.Mechanism,
		Params:    p,
		Grid:      g,
		Potential: potential,
		Current:   current(p, s.flux),
		Time:      time,
		Distance:  dist,
		Flux:      s.flux,
		Oxidized:  s.conc[Oxidized],
		Reduced:   s.conc[Reduced],
		Chemical:  s.conc[Chemical],
		Warnings:  warnings(p),
	}
	if p.Technique == Step {
		r.dropFirst()
	}
	return r
}

// dropFirst removes the pre-step sample from every series and grid.
func (r *Result) dropFirst() {
	r.Potential = r.Potential[1:]
	r.Current = r.Current[1:]
	r.Time = r.Time[1:]
	r.Flux = r.Flux[1:]
	r.Oxidized = r.Oxidized[1:]
	r.Reduced = r.Reduced[1:]
	r.Chemical = r.Chemical[1:]
}

func warnings(p Params) []string {
	var w []string
	if !p.Mechanism.Implemented() {
		w = append(w, fmt.Sprintf("mechanism %s has no coupled chemistry defined; simulated as E", p.Mechanism))
	}
	if p.DoubleLayerCapacitance != 0 {
		w = append(w, "double-layer capacitance is not modelled and was ignored")
	}
	if p.UncompensatedResistance != 0 {
		w = append(w, "uncompensated resistance is not modelled and was ignored")
	}
	if p.PotentialShift != 0 {
		w = append(w, "potential shift is not applied and was ignored")
	}
	return w
}
