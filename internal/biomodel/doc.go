// Package biomodel is the surface a host drives: load a document, read the
// model's ids and values, edit them, simulate and sweep. One BioModel keeps
// its model and engine in step and serialises every call.
package biomodel
