package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/david-caro/inspire-matcher/internal/domain"
)

// ErrorCode is a machine-readable error code returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeLengthMismatch        ErrorCode = "length_mismatch"
	ErrorCodeNoCommonPath          ErrorCode = "no_common_path"
	ErrorCodeUnknownMatchType      ErrorCode = "unknown_match_type"
	ErrorCodeInvalidSpecification  ErrorCode = "invalid_specification"
	ErrorCodeAlgorithmNotFound     ErrorCode = "algorithm_not_found"
	ErrorCodeRequestEntityTooLarge ErrorCode = "request_entity_too_large"
	ErrorCodeInternal              ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers are tried in order; the specific specification defects
// come before the umbrella ErrInvalidSpecification.
var defaultErrorHandlers = []errorHandler{
	specificationHandler(domain.ErrLengthMismatch, ErrorCodeLengthMismatch),
	specificationHandler(domain.ErrNoCommonPath, ErrorCodeNoCommonPath),
	specificationHandler(domain.ErrUnknownMatchType, ErrorCodeUnknownMatchType),
	specificationHandler(domain.ErrInvalidSpecification, ErrorCodeInvalidSpecification),
	sentinelHandler(domain.ErrAlgorithmNotFound, http.StatusNotFound, ErrorCodeAlgorithmNotFound),
}

// specificationHandler reports a specification defect with its full detail,
// which only describes the client's own specification.
func specificationHandler(kind error, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, kind) {
			return false
		}
		msg := kind.Error()
		var specErr *domain.SpecificationError
		if errors.As(err, &specErr) {
			msg = specErr.Error()
		}
		writeError(w, http.StatusUnprocessableEntity, code, msg)
		return true
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("Request rejected", zap.Error(err))
			return
		}
	}
	log.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
