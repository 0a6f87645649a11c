package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/mailer"
	"github.com/kdos/folio/internal/metrics"
	"github.com/kdos/folio/internal/service"
)

type recordingMailer struct {
	sent []domain.ContactMessage
	err  error
}

func (m *recordingMailer) Name() string { return "recording" }

func (m *recordingMailer) Send(_ context.Context, msg domain.ContactMessage) (*mailer.Receipt, error) {
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return nil, m.err
	}
	return &mailer.Receipt{ID: "msg_1"}, nil
}

func validMessage() domain.ContactMessage {
	return domain.ContactMessage{
		Name:    "  Ada Lovelace ",
		Email:   "ada@example.com",
		Subject: "Collaboration",
		Message: "Hello there\n",
	}
}

func TestContactService_Submit(t *testing.T) {
	m := &recordingMailer{}
	svc := service.NewContactService(m, service.NewValidator(), metrics.New())

	receipt, err := svc.Submit(context.Background(), validMessage())
	require.NoError(t, err)
	assert.Equal(t, "msg_1", receipt.ID)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "Ada Lovelace", m.sent[0].Name)
	assert.Equal(t, "Hello there", m.sent[0].Message)
}

func TestContactService_RejectsBeforeSending(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(msg *domain.ContactMessage)
		wantErr error
	}{
		{name: "missing email", mutate: func(msg *domain.ContactMessage) { msg.Email = "" }, wantErr: domain.ErrContactFieldsMissing},
		{name: "blank message", mutate: func(msg *domain.ContactMessage) { msg.Message = "   " }, wantErr: domain.ErrContactFieldsMissing},
		{name: "malformed email", mutate: func(msg *domain.ContactMessage) { msg.Email = "ada@example" }, wantErr: domain.ErrInvalidEmail},
		{name: "email with spaces", mutate: func(msg *domain.ContactMessage) { msg.Email = "ada lovelace@example.com" }, wantErr: domain.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMailer{}
			svc := service.NewContactService(m, service.NewValidator(), metrics.New())

			msg := validMessage()
			tt.mutate(&msg)

			_, err := svc.Submit(context.Background(), msg)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, m.sent, "mailer must not be called")
		})
	}
}

func TestContactService_DeliveryFailure(t *testing.T) {
	m := &recordingMailer{err: errors.New("provider down")}
	svc := service.NewContactService(m, service.NewValidator(), metrics.New())

	_, err := svc.Submit(context.Background(), validMessage())
	assert.ErrorIs(t, err, domain.ErrDelivery)
}
