// Package analysis inspects simulated trajectories.
//
// Trajectory summaries:
//
//   - [Summarize]: initial, final, min, max and peak time per species
//   - [Evaluate]: scalar [Metric] values such as mass drift and settling time
//
// Dynamics tools:
//
//   - [PhasePortrait]: one species against another
//   - [GeneratePoincareSection]: crossings of a threshold by one species
//   - [DominantPeriod]: oscillation period from the power spectrum
//   - [Bifurcation]: long-run values of a species across a scan
//   - [Sensitivity]: growth rate of a perturbation in each species
//
// A Lotka-Volterra network, for example, traces a closed orbit:
//
//	p := analysis.PhasePortrait(res, 0, 1)
//	fmt.Print(analysis.PhasePortraitToASCII(p, 60, 20))
package analysis
