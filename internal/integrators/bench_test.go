package integrators

import (
	"testing"

	"github.com/san-kum/biosim/internal/ode"
)

// benchChain is a linear conversion chain S0 -> S1 -> ... -> S19.
type benchChain struct{ dx ode.State }

func (b *benchChain) StateDim() int { return 20 }
func (b *benchChain) Derive(x ode.State, t float64) ode.State {
	if b.dx == nil {
		b.dx = make(ode.State, 20)
	}
	for i := range b.dx {
		b.dx[i] = 0
	}
	for i := 0; i < 19; i++ {
		rate := 0.1 * x[i]
		b.dx[i] -= rate
		b.dx[i+1] += rate
	}
	return b.dx
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	sys := &oscillator{}
	x := ode.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	sys := &oscillator{}
	x := ode.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4_Chain20(b *testing.B) {
	integrator := NewRK4()
	sys := &benchChain{}
	x := make(ode.State, 20)
	x[0] = 1.0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.001)
	}
}
