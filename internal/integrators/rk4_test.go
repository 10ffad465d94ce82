package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/biosim/internal/ode"
)

// decay is dx/dt = -x.
type decay struct{}

func (d *decay) Derive(x ode.State, t float64) ode.State {
	dx := make(ode.State, len(x))
	for i := range x {
		dx[i] = -x[i]
	}
	return dx
}

func (d *decay) StateDim() int { return 1 }

// oscillator returns the same buffer on every call, like the engine does.
type oscillator struct{ buf ode.State }

func (o *oscillator) Derive(x ode.State, t float64) ode.State {
	if o.buf == nil {
		o.buf = make(ode.State, 2)
	}
	o.buf[0], o.buf[1] = x[1], -x[0]
	return o.buf
}

func (o *oscillator) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()

	x := ode.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestRK4SingleStepMatchesFormula(t *testing.T) {
	x := ode.State{1.0}
	dt := 0.1

	got := NewRK4().Step(&decay{}, x, 0, dt)[0]

	k1 := -1.0
	k2 := -(1 + k1*dt/2)
	k3 := -(1 + k2*dt/2)
	k4 := -(1 + k3*dt)
	want := 1 + (k1+2*k2+2*k3+k4)*dt/6

	if math.Abs(got-want) > 1e-15 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEulerStep(t *testing.T) {
	x := ode.State{1.0, 2.0}
	got := NewEuler().Step(&decay{}, x, 0, 0.5)

	if got[0] != 0.5 || got[1] != 1.0 {
		t.Errorf("got %v, want [0.5 1]", got)
	}
	if x[0] != 1.0 {
		t.Error("Step mutated its input")
	}
}

func TestEulerConvergesSlowerThanRK4(t *testing.T) {
	dt := 0.1
	exact := math.Exp(-1)

	xe, xr := ode.State{1}, ode.State{1}
	euler, rk4 := NewEuler(), NewRK4()
	for i := 0; i < 10; i++ {
		xe = euler.Step(&decay{}, xe, float64(i)*dt, dt)
		xr = rk4.Step(&decay{}, xr, float64(i)*dt, dt)
	}

	errEuler := math.Abs(xe[0] - exact)
	errRK4 := math.Abs(xr[0] - exact)
	if errRK4 >= errEuler {
		t.Errorf("rk4 error %e should be below euler error %e", errRK4, errEuler)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"euler", MethodEuler},
		{"rk4", MethodRK4},
		{"", MethodRK4},
		{"bogus", MethodRK4},
		{"RK4", MethodRK4},
		{"Euler", MethodRK4},
	}

	for _, tt := range tests {
		if got := Resolve(tt.method); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.method, got, tt.want)
		}
	}

	if _, ok := Lookup("euler").(*Euler); !ok {
		t.Error("Lookup(euler) did not return *Euler")
	}
	if _, ok := Lookup("bogus").(*RK4); !ok {
		t.Error("Lookup(bogus) did not fall back to *RK4")
	}
	if Lookup("rk4") == Lookup("rk4") {
		t.Error("Lookup should return a fresh integrator each call")
	}
}
