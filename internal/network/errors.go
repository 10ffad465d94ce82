package network

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an unknown species, parameter or reaction id.
	ErrNotFound = errors.New("network: id not found")

	// ErrDuplicateID indicates two entities of the same kind share an id.
	ErrDuplicateID = errors.New("network: duplicate id")
)

// LookupError reports which kind of entity could not be resolved.
type LookupError struct {
	Kind string
	ID   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

func (e *LookupError) Unwrap() error {
	return ErrNotFound
}

// StructureError describes a structural violation found by Validate.
type StructureError struct {
	Kind string
	ID   string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("duplicate %s id '%s'", e.Kind, e.ID)
}

func (e *StructureError) Unwrap() error {
	return ErrDuplicateID
}
