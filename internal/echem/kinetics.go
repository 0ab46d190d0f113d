package echem

import "math"

// RateConstants evaluates the Butler-Volmer forward (reduction) and backward
// (oxidation) rate constants at every potential.
func RateConstants(p Params, potential []float64) (kf, kb []float64, err error) {
	f := p.Electrons * Faraday / (GasConstant * p.Temperature)
	kf = make([]float64, len(potential))
	kb = make([]float64, len(potential))
	for i, e := range potential {
		eta := e - p.FormalPotential
		kf[i] = p.RateConstant * math.Exp(-p.TransferCoefficient*f*eta)
		kb[i] = p.RateConstant * math.Exp((1-p.TransferCoefficient)*f*eta)
		if !finite(kf[i]) || !finite(kb[i]) {
			return nil, nil, &ConfigError{
				Field:  "potential",
				Value:  e,
				Reason: "rate constant overflows; potential window too wide for electrons and transfer coefficient",
			}
		}
	}
	return kf, kb, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
