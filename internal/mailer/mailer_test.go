package mailer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/mailer"
)

type fakeSender struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg_123"}, nil
}

var sample = domain.ContactMessage{
	Name:    "Ada <script>",
	Email:   "ada@example.com",
	Subject: "Hello",
	Message: "line one\nline <two>",
}

func TestResendMailer_Send(t *testing.T) {
	sender := &fakeSender{}
	m := mailer.NewResendMailer(sender, "Portfolio <from@example.com>", []string{"owner@example.com"})

	receipt, err := m.Send(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, "msg_123", receipt.ID)
	assert.False(t, receipt.Demo)

	require.NotNil(t, sender.got)
	assert.Equal(t, "Portfolio <from@example.com>", sender.got.From)
	assert.Equal(t, []string{"owner@example.com"}, sender.got.To)
	assert.Equal(t, "ada@example.com", sender.got.ReplyTo)
	assert.Equal(t, "Portfolio Contact: Hello", sender.got.Subject)
}

func TestResendMailer_SendError(t *testing.T) {
	m := mailer.NewResendMailer(&fakeSender{err: errors.New("rate limited")}, "from@example.com", []string{"to@example.com"})

	_, err := m.Send(context.Background(), sample)
	assert.ErrorIs(t, err, domain.ErrDelivery)
}

func TestRenderHTML_EscapesAndBreaksLines(t *testing.T) {
	html, err := mailer.RenderHTML(sample)
	require.NoError(t, err)

	assert.Contains(t, html, "Ada &lt;script&gt;")
	assert.Contains(t, html, "line one<br>line &lt;two&gt;")
	assert.False(t, strings.Contains(html, "<script>"))
}

func TestLogMailer_Send(t *testing.T) {
	m := mailer.NewLogMailer()

	receipt, err := m.Send(context.Background(), sample)
	require.NoError(t, err)
	assert.True(t, receipt.Demo)
	assert.True(t, strings.HasPrefix(receipt.ID, "demo_"))
	assert.Equal(t, mailer.DeliveryLog, m.Name())
}
