// Package echem simulates current-potential-time responses of electrochemical
// experiments.
//
// The package implements one explicit finite-difference reaction-diffusion
// scheme on a fixed 1-D grid normal to a planar electrode:
//
//   - [Discretize]: time and space steps from technique and transport parameters
//   - [Waveform]: applied potential for cyclic voltammetry or a potential step
//   - [RateConstants]: Butler-Volmer forward/backward electron-transfer rates
//   - [Mechanism]: homogeneous chemistry coupled to the electron transfer
//   - [Simulate]: steps the concentration grids and returns a [Result]
//
// # Example
//
//	p := echem.DefaultParams()
//	p.Mechanism = echem.EC
//	p.ChemForward = 0.5
//	res, err := echem.Simulate(p)
//
// # Thread Safety
//
// Simulate keeps no state between calls. Independent runs may execute
// concurrently; a returned [Result] must be treated as read-only.
package echem
