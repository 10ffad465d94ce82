// Package network holds the in-memory reaction network: compartments,
// species, reactions and parameters in source order.
//
//   - [Model]: ordered aggregate of the four collections
//   - [Species]: a chemical species with its initial concentration
//   - [Reaction]: reactant/product species ids; repetition encodes the
//     stoichiometric coefficient
//   - [Parameter]: a named value, reported to hosts but not used by rates
//
// Lookups by id are backed by an index built once per snapshot. When ids
// repeat, the first occurrence wins.
//
// # Ownership
//
// A Model is owned by its host. The simulation engine works on a deep copy
// taken with [Model.Clone], so every in-place edit must be followed by an
// explicit re-sync of the engine.
package network
