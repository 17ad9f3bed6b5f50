package email

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycore/internal/platform/config"
)

func TestBuildMessageIsHTML(t *testing.T) {
	msg := string(buildMessage("Payroll <no-reply@example.com>", "ana@example.com", "Payslip - Ana (2026-03-15)", "<p>hi</p>"))
	assert.Contains(t, msg, "To: ana@example.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestFromAddress(t *testing.T) {
	assert.Equal(t, "no-reply@example.com", FromAddress(config.Config{EmailFrom: "no-reply@example.com"}))
	assert.Equal(t, `"Payroll" <no-reply@example.com>`, FromAddress(config.Config{EmailFrom: "no-reply@example.com", EmailFromName: "Payroll"}))
}

func TestNewWithoutProviderIsNoop(t *testing.T) {
	mailer, err := New(context.Background(), config.Config{EmailProvider: config.EmailProviderNone})
	require.NoError(t, err)
	_, ok := mailer.(noopMailer)
	assert.True(t, ok)
}

type fakeSES struct {
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{}, nil
}

func TestSESMailerSendsHTMLBody(t *testing.T) {
	client := &fakeSES{}
	mailer := &sesMailer{client: client}
	require.NoError(t, mailer.Send(context.Background(), "no-reply@example.com", "ana@example.com", "Payslip", "<p>net</p>"))
	assert.Equal(t, []string{"ana@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>net</p>", *client.input.Message.Body.Html.Data)
}
