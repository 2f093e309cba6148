package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusUnavailable signals that the item source could not be read.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrMalformedItem signals a stored item that is not a JSON-LD object.
	ErrMalformedItem = errors.New("malformed item")
	// ErrHierarchyCycle signals a cycle in the type hierarchy.
	ErrHierarchyCycle = errors.New("type hierarchy contains a cycle")
	// ErrInvalidSchemaDefinition signals an unusable schema-definition document.
	ErrInvalidSchemaDefinition = errors.New("invalid schema definition")
)

// CycleError wraps ErrHierarchyCycle with the type at which the cycle was found.
type CycleError struct {
	Type string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: at %s", ErrHierarchyCycle.Error(), e.Type)
}

func (e *CycleError) Unwrap() error { return ErrHierarchyCycle }

// NewCycleError creates a hierarchy cycle error.
func NewCycleError(typeID string) error {
	return &CycleError{Type: typeID}
}
