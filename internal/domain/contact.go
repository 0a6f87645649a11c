package domain

import "strings"

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,contactemail"`
	Subject string `validate:"required"`
	Message string `validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (m ContactMessage) Trimmed() ContactMessage {
	return ContactMessage{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Subject: strings.TrimSpace(m.Subject),
		Message: strings.TrimSpace(m.Message),
	}
}
