package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/mailer"
	"github.com/kdos/folio/internal/metrics"
)

// ContactService validates contact form submissions and hands them to a mailer.
type ContactService struct {
	mailer    mailer.Mailer
	validator *Validator
	metrics   *metrics.Metrics
}

// NewContactService creates a new ContactService.
func NewContactService(m mailer.Mailer, validator *Validator, mt *metrics.Metrics) *ContactService {
	return &ContactService{
		mailer:    m,
		validator: validator,
		metrics:   mt,
	}
}

// Submit trims and validates msg, then delivers it.
// Invalid messages never reach the mailer.
func (s *ContactService) Submit(ctx context.Context, msg domain.ContactMessage) (*mailer.Receipt, error) {
	msg = msg.Trimmed()
	if err := s.validator.ValidateContact(msg); err != nil {
		return nil, err
	}

	receipt, err := s.mailer.Send(ctx, msg)
	s.metrics.ObserveContact(s.mailer.Name(), err)
	if err != nil {
		slog.Error("contact message delivery failed", "delivery", s.mailer.Name(), "error", err)
		if !errors.Is(err, domain.ErrDelivery) {
			err = fmt.Errorf("%w: %w", domain.ErrDelivery, err)
		}
		return nil, err
	}

	slog.Info("contact message accepted", "delivery", s.mailer.Name(), "id", receipt.ID)
	return receipt, nil
}
