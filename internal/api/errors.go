package api

import (
	"errors"
	"net/http"

	"github.com/rcssa/match-api/internal/api/shared"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Store connectivity errors
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid profile data"

	case errors.Is(err, store.ErrProfileNotFound):
		return "Profile not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "A profile with this email already exists"

	case errors.Is(err, store.ErrInstitutionalIDExists):
		return "A profile with this institutional ID already exists"

	case errors.Is(err, store.ErrDuplicate):
		return "Profile already exists"

	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable, please try again"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. The status and message
// come from MapErrorToStatusCode and GetSafeErrorMessage; defaultMsg replaces
// the generic message for unmapped errors. Validation errors carry their
// per-field messages in the response details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.HasErrors() {
		opts = append(opts, shared.WithDetails(ve.Fields))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
