package apperrors

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusForbidden},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"dependency", ErrDependencyUnavailable, http.StatusServiceUnavailable},
		{"wrapped validation", pkgerrors.Wrap(ErrValidation, "comment content must not be empty"), http.StatusBadRequest},
		{"wrapped dependency", pkgerrors.Wrap(ErrDependencyUnavailable, "social graph"), http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	wrapped := pkgerrors.Wrap(ErrValidation, "rating must be between 1 and 5")
	assert.Equal(t, "rating must be between 1 and 5: validation failed", PublicMessage(wrapped))

	// Dependency details stay out of responses.
	dep := pkgerrors.Wrap(ErrDependencyUnavailable, "postgres: connection refused")
	assert.Equal(t, "service temporarily unavailable, please try again", PublicMessage(dep))

	assert.Equal(t, "internal error", PublicMessage(errors.New("disk on fire")))
}
