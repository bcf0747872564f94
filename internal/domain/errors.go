package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors - wrap with fmt.Errorf("...: %w", ErrX) and match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrUpstream marks failures of an external API (Google Drive) that are
	// not attributable to the request itself.
	ErrUpstream = errors.New("upstream service error")
)

// StatusCode maps a (possibly wrapped) domain error to an HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
