package dto

import "github.com/kdos/folio/internal/domain"

// LoginRequest represents the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ContactRequest represents the request body for POST /contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ToContactMessage converts the request into a domain.ContactMessage.
func (r ContactRequest) ToContactMessage() domain.ContactMessage {
	return domain.ContactMessage{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
	}
}
