// Package analysis compares simulated traces with measured ones.
//
//   - [Branches]: split a cyclic voltammogram at the switching potential
//   - [Compare]: interpolate the simulation onto the measured abscissa and
//     report the residual
//
// # Example
//
//	ref, _ := refdata.Load("cv.csv")
//	fit, err := analysis.Compare(res, ref, analysis.PotentialAxis)
//	fmt.Printf("rmse %.3g A over %d points\n", fit.RMSE, fit.Points)
//
// Sweep traces are matched branch by branch so that the forward and reverse
// currents at the same potential are never mixed up.
package analysis
