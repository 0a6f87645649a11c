package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kdos/folio/internal/domain"
)

// LogMailer records messages in the log instead of sending them.
// It is used when no email provider is configured.
type LogMailer struct {
	now func() time.Time
}

// NewLogMailer creates a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{now: time.Now}
}

// Name implements Mailer.
func (m *LogMailer) Name() string { return DeliveryLog }

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, msg domain.ContactMessage) (*Receipt, error) {
	id := fmt.Sprintf("demo_%d", m.now().UnixMilli())

	slog.Info("contact message received without email provider",
		"id", id,
		"name", msg.Name,
		"email", msg.Email,
		"subject", msg.Subject,
		"message", msg.Message,
	)

	return &Receipt{ID: id, Demo: true}, nil
}
