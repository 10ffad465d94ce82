package sbml

import (
	"errors"
	"fmt"
)

var (
	// ErrXML indicates a malformed byte or token stream.
	ErrXML = errors.New("sbml: xml error")

	// ErrInvalidStructure indicates a well-formed document that violates the
	// network's structural rules, such as duplicate ids.
	ErrInvalidStructure = errors.New("sbml: invalid structure")
)

// ParseError wraps the underlying failure with its category.
type ParseError struct {
	Kind error
	Err  error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrInvalidStructure:
		return fmt.Sprintf("invalid SBML structure: %v", e.Err)
	default:
		return fmt.Sprintf("XML parsing error: %v", e.Err)
	}
}

// Is matches both the category sentinel and the wrapped error.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func xmlError(err error) error {
	return &ParseError{Kind: ErrXML, Err: err}
}

func structureError(err error) error {
	return &ParseError{Kind: ErrInvalidStructure, Err: err}
}
