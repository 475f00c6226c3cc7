package matcher

import "github.com/david-caro/inspire-matcher/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidSpecification = domain.ErrInvalidSpecification
	ErrLengthMismatch       = domain.ErrLengthMismatch
	ErrNoCommonPath         = domain.ErrNoCommonPath
	ErrUnknownMatchType     = domain.ErrUnknownMatchType
	ErrAlgorithmNotFound    = domain.ErrAlgorithmNotFound
)
