package integrators

import "github.com/san-kum/biosim/internal/ode"

const (
	MethodEuler = "euler"
	MethodRK4   = "rk4"

	// DefaultMethod is used for empty or unrecognised method names.
	DefaultMethod = MethodRK4
)

var factories = map[string]func() ode.Integrator{
	MethodEuler: func() ode.Integrator { return NewEuler() },
	MethodRK4:   func() ode.Integrator { return NewRK4() },
}

// Resolve maps a requested method name to the method that will run.
func Resolve(method string) string {
	if _, ok := factories[method]; ok {
		return method
	}
	return DefaultMethod
}

// Lookup returns a fresh integrator for method, falling back to RK4 for any
// name it does not know.
func Lookup(method string) ode.Integrator {
	return factories[Resolve(method)]()
}

func Methods() []string {
	return []string{MethodEuler, MethodRK4}
}
