package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kdos/folio/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// MapDomainError maps domain errors to HTTP status codes and client messages.
// fallback is the message used for server-side failures, whose details stay in the log.
func MapDomainError(err error, fallback string) (status int, message string) {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrCredentialsRequired):
		return http.StatusBadRequest, "Username and password are required"
	case errors.Is(err, domain.ErrContactFieldsMissing):
		return http.StatusBadRequest, "All fields are required"
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, "Invalid email format"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()

	// Auth errors
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"

	// Concurrency errors
	case errors.Is(err, domain.ErrRevisionConflict):
		return http.StatusPreconditionFailed, "Content was modified since it was loaded; reload and try again"

	// Storage and delivery errors
	case errors.Is(err, domain.ErrStorage), errors.Is(err, domain.ErrDelivery):
		slog.Error("request failed", "error", err)
		return http.StatusInternalServerError, fallback

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, fallback
	}
}
