// Package engine integrates mass-action reaction networks.
//
// An [Engine] owns a private snapshot of a [network.Model] together with the
// stoichiometric matrix, the rate-constant vector and the live concentration
// state built from it:
//
//	eng := engine.New(model)
//	res, err := eng.Simulate(ctx, engine.Config{TimeEnd: 10, TimeStep: 0.1, Method: "rk4"})
//
// Every Simulate call starts from the snapshot's initial concentrations, so
// results do not depend on earlier calls. Edits to the host's model reach the
// engine only through [Engine.Update].
//
// # Rate law
//
// Reaction j fires at k_j times the product of max(c_i, 0) over its reactant
// occurrences; a species listed twice is multiplied in twice. The state
// derivative is S·rate where S is the species-by-reaction matrix.
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Callers serialise access; the
// biomodel facade does this with a mutex.
package engine
