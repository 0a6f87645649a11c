package dto

// SuccessResponse acknowledges a completed write or session change.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthStatusResponse represents the response for GET /auth/check.
type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// ContactResponse represents the response for POST /contact.
type ContactResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// StatusResponse reports that an endpoint is up.
type StatusResponse struct {
	Status string `json:"status"`
}

// NewSuccessResponse creates a SuccessResponse with message.
func NewSuccessResponse(message string) SuccessResponse {
	return SuccessResponse{Success: true, Message: message}
}
