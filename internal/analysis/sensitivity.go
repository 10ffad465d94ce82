package analysis

import (
	"math"

	"github.com/san-kum/biosim/internal/ode"
)

// Sensitivity estimates, for each species, the average exponential growth
// rate of a small perturbation of its initial concentration, using the
// renormalised two-trajectory method. Negative rates mean the network
// forgets the perturbation; a positive largest rate means nearby
// trajectories diverge.
func Sensitivity(sys ode.System, integ ode.Integrator, x0 ode.State, dt, duration, eps float64) []float64 {
	rates := make([]float64, len(x0))
	for i := range x0 {
		xp := x0.Clone()
		xp[i] += eps
		rates[i] = growthRate(sys, integ, x0, xp, dt, duration, eps)
	}
	return rates
}

func growthRate(sys ode.System, integ ode.Integrator, x0, x0p ode.State, dt, duration, d0 float64) float64 {
	if d0 <= 0 || dt <= 0 {
		return 0
	}
	x := x0.Clone()
	xp := x0p.Clone()

	steps := int(math.Floor(duration / dt))
	diff := make(ode.State, len(x))
	sumLog := 0.0
	count := 0
	for n := 0; n < steps; n++ {
		t := float64(n) * dt
		x = integ.Step(sys, x, t, dt)
		x.ClampNonNegative()
		xp = integ.Step(sys, xp, t, dt)
		xp.ClampNonNegative()

		for i := range x {
			diff[i] = xp[i] - x[i]
		}
		sep := diff.Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
