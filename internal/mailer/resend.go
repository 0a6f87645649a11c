package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/kdos/folio/internal/domain"
)

// EmailSender is the part of the Resend emails API used here.
// resend.Client.Emails satisfies it.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var messageTemplate = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>New Contact Form Submission</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <hr/>
  <p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
</div>
`))

// ResendMailer sends contact messages through the Resend API.
type ResendMailer struct {
	emails EmailSender
	from   string
	to     []string
}

// NewResendMailer creates a ResendMailer delivering from `from` to the `to` addresses.
func NewResendMailer(emails EmailSender, from string, to []string) *ResendMailer {
	return &ResendMailer{emails: emails, from: from, to: to}
}

// NewResendMailerFromKey creates a ResendMailer with a default Resend client.
func NewResendMailerFromKey(apiKey, from string, to []string) *ResendMailer {
	return NewResendMailer(resend.NewClient(apiKey).Emails, from, to)
}

// Name implements Mailer.
func (m *ResendMailer) Name() string { return DeliveryResend }

// Send implements Mailer.
func (m *ResendMailer) Send(ctx context.Context, msg domain.ContactMessage) (*Receipt, error) {
	html, err := RenderHTML(msg)
	if err != nil {
		return nil, err
	}

	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      m.to,
		ReplyTo: msg.Email,
		Subject: "Portfolio Contact: " + msg.Subject,
		Html:    html,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: resend: %v", domain.ErrDelivery, err)
	}

	return &Receipt{ID: resp.Id}, nil
}

// RenderHTML renders the notification body, escaping every field.
func RenderHTML(msg domain.ContactMessage) (string, error) {
	var buf bytes.Buffer
	err := messageTemplate.Execute(&buf, struct {
		domain.ContactMessage
		Lines []string
	}{
		ContactMessage: msg,
		Lines:          strings.Split(msg.Message, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}
