// Package sbml loads reaction networks from SBML-style markup.
//
// Parsing is a single forward pass over the token stream. Each leaf element
// is classified by its nearest enclosing list wrapper (listOfSpecies,
// listOfReactions, ...), so sections may appear in any order and unknown
// wrappers simply hide their children. Elements and attributes the loader
// does not recognise are skipped, as are entities without an id.
//
// Kinetic laws are captured as raw text and never evaluated; every reaction
// gets [network.DefaultRateConstant].
package sbml
