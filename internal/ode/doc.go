// Package ode provides the primitives shared by the integrators and the
// simulation engine:
//
//   - [State]: dense vector of species concentrations
//   - [System]: autonomous ODE right-hand side, dX/dt = f(X)
//   - [Integrator]: fixed-step numerical integrator
//
// Systems may reuse the slice returned by Derive between calls; integrators
// copy what they need before calling Derive again.
package ode
