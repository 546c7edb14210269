package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/mailer"
)

func TestBuild(t *testing.T) {
	msg, err := mailer.Build("billing@acme.test", "Acme Billing", mailer.Message{
		To:      []string{"accounts@client.test"},
		Subject: "Invoice #INV1001 from Acme",
		Body:    "Please find attached invoice #INV1001.",
		Attachments: []mailer.Attachment{{
			Name:        "Invoice_INV1001.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.3"),
		}},
	})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts@client.test"}, rcpts)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Invoice #INV1001 from Acme")
	assert.Contains(t, raw, "Invoice_INV1001.pdf")
	assert.Contains(t, raw, "application/pdf")
}

func TestBuildRequiresRecipient(t *testing.T) {
	_, err := mailer.Build("billing@acme.test", "", mailer.Message{Subject: "x"})
	assert.ErrorIs(t, err, folio.ErrNoRecipient)

	_, err = mailer.Build("billing@acme.test", "", mailer.Message{To: []string{"not an address"}})
	assert.Error(t, err)
}

func TestNewSMTPRequiresHost(t *testing.T) {
	_, err := mailer.NewSMTP(mailer.Config{})
	assert.ErrorIs(t, err, folio.ErrMailerNotConfigured)

	s, err := mailer.NewSMTP(mailer.Config{Host: "smtp.example.com", Port: 587, FromAddress: "billing@acme.test"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestMemory(t *testing.T) {
	m := mailer.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Send(ctx, mailer.Message{To: []string{"a@b.test"}, Subject: "one"}))
	assert.ErrorIs(t, m.Send(ctx, mailer.Message{}), folio.ErrNoRecipient)

	m.Err = errors.New("relay down")
	assert.EqualError(t, m.Send(ctx, mailer.Message{To: []string{"a@b.test"}}), "relay down")

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "one", sent[0].Subject)
}
