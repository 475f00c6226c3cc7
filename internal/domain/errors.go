package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpecification signals a defect in a match specification.
	ErrInvalidSpecification = errors.New("invalid match specification")
	// ErrLengthMismatch signals nested paths and search_paths of different lengths.
	ErrLengthMismatch = errors.New("paths and search_paths must have the same length")
	// ErrNoCommonPath signals nested search_paths without one shared directory.
	ErrNoCommonPath = errors.New("could not determine a common path for search_paths")
	// ErrUnknownMatchType signals an unsupported specification type.
	ErrUnknownMatchType = errors.New("unknown match type")

	// ErrAlgorithmNotFound signals a missing match algorithm.
	ErrAlgorithmNotFound = errors.New("algorithm not found")
)

// SpecificationError wraps a specification defect with details.
// errors.Is matches both the defect kind and ErrInvalidSpecification.
type SpecificationError struct {
	Kind   error
	Detail string
}

func (e *SpecificationError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Detail)
}

func (e *SpecificationError) Unwrap() []error { return []error{e.Kind, ErrInvalidSpecification} }

// NewSpecificationError creates a specification error of the given kind.
func NewSpecificationError(kind error, format string, args ...any) error {
	return &SpecificationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
