package echem

// Waveform returns the applied potential at each of the T+1 time samples.
//
// The sweep descends for the first floor(T/2) steps and ascends from step
// floor((T+1)/2). For odd T the sample in between is never ramped: it stays
// at the start potential and the ascending branch climbs from there.
func Waveform(p Params, g Grid) []float64 {
	n := g.TimeSteps
	e := make([]float64, n+1)

	switch p.Technique {
	case Step:
		k := g.StepIndex(p.StepTime)
		if k > n+1 {
			k = n + 1
		}
		for i := range e {
			if i < k {
				e[i] = p.StepPotential
			} else {
				e[i] = p.PulsePotential
			}
		}
	default:
		dE := p.ScanRate * g.TimeStep
		for i := range e {
			e[i] = p.StartPotential
		}
		for i := 0; i < n/2; i++ {
			e[i+1] = e[i] - dE
		}
		for i := (n + 1) / 2; i < n; i++ {
			e[i+1] = e[i] + dE
		}
	}
	return e
}
