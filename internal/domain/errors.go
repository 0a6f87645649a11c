package domain

import "errors"

// Domain-specific errors, mapped to HTTP status codes at the handler boundary.
var (
	// Validation errors
	ErrValidation           = errors.New("validation failed")
	ErrCredentialsRequired  = errors.New("username and password are required")
	ErrContactFieldsMissing = errors.New("all contact fields are required")
	ErrInvalidEmail         = errors.New("invalid email format")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionNotFound    = errors.New("session not found")

	// Storage errors
	ErrStorage          = errors.New("storage failure")
	ErrDocumentNotFound = errors.New("document not found")
	ErrRevisionConflict = errors.New("document was modified by another writer")

	// Delivery errors
	ErrDelivery = errors.New("message delivery failed")
)
