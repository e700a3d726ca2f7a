package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for the core services. Callers match with errors.Is; the
// handlers map them to HTTP statuses without leaking dependency names.
var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrValidation            = errors.New("validation failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// HTTPStatus translates a service error into a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the caller-facing message for an error. Validation
// and authorization problems are surfaced verbatim; dependency and unknown
// failures get a generic retry message.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotFound):
		return err.Error()
	case errors.Is(err, ErrDependencyUnavailable):
		return "service temporarily unavailable, please try again"
	}
	return "internal error"
}
