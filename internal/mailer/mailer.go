// Package mailer delivers contact form messages.
package mailer

import (
	"context"

	"github.com/kdos/folio/internal/domain"
)

// Delivery channel names, used in logs and metrics.
const (
	DeliveryResend = "resend"
	DeliveryLog    = "log"
)

// Receipt describes an accepted message.
type Receipt struct {
	// ID is the provider message ID, or a demo ID when nothing was sent.
	ID string
	// Demo is true when the message was only logged.
	Demo bool
}

// Mailer hands a validated contact message to a delivery channel.
type Mailer interface {
	Send(ctx context.Context, msg domain.ContactMessage) (*Receipt, error)
	Name() string
}
