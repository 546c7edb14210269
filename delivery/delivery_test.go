package delivery_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/mailer"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/types"
)

var march10 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	f      *folio.Folio
	mail   *mailer.Memory
	client *client.Client
	inv    *invoice.Invoice
}

func setup(t *testing.T, email string) *env {
	t.Helper()
	ctx := context.Background()

	f := folio.New(memory.New(), folio.WithClock(func() time.Time { return march10 }))
	c := &client.Client{CompanyName: "Acme Trading", Email: email}
	require.NoError(t, f.CreateClient(ctx, c))

	inv := &invoice.Invoice{
		ClientID: c.ID,
		LineItems: []invoice.LineItem{{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   types.ZAR(10000),
			TaxRate:     decimal.NewFromInt(15),
		}},
	}
	require.NoError(t, f.CreateInvoice(ctx, inv))

	return &env{f: f, mail: mailer.NewMemory(), client: c, inv: inv}
}

func TestSendInvoiceMarksSent(t *testing.T) {
	e := setup(t, "accounts@acme.test")
	ctx := context.Background()
	w := delivery.New(e.f, e.mail)

	entry, err := w.SendInvoice(ctx, e.inv.ID, nil, "", "")
	require.NoError(t, err)
	assert.True(t, entry.Success)
	assert.Equal(t, "accounts@acme.test", entry.Recipient)

	sent := e.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Invoice #INV1001 from Your Company Name", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Dear Acme Trading")
	require.Len(t, sent[0].Attachments, 1)
	assert.Equal(t, "Invoice_INV1001.pdf", sent[0].Attachments[0].Name)
	assert.True(t, strings.HasPrefix(string(sent[0].Attachments[0].Data), "%PDF-"))

	inv, err := e.f.GetInvoice(ctx, e.inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, inv.Status)
	require.NotNil(t, inv.SentAt)

	logs, err := e.f.ListEmailLogs(ctx, emaillog.ListOpts{InvoiceID: e.inv.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
}

func TestSendInvoiceKeepsPaidStatus(t *testing.T) {
	e := setup(t, "accounts@acme.test")
	ctx := context.Background()

	_, err := e.f.RecordPayment(ctx, folio.RecordPaymentInput{InvoiceID: e.inv.ID, Amount: types.ZAR(23000)})
	require.NoError(t, err)

	_, err = delivery.New(e.f, e.mail).SendInvoice(ctx, e.inv.ID, nil, "Receipt", "Paid in full.")
	require.NoError(t, err)

	inv, err := e.f.GetInvoice(ctx, e.inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
	assert.Equal(t, "Receipt", e.mail.Sent()[0].Subject)
}

func TestSendInvoiceWithoutRecipient(t *testing.T) {
	e := setup(t, "")
	ctx := context.Background()

	entry, err := delivery.New(e.f, e.mail).SendInvoice(ctx, e.inv.ID, nil, "", "")
	require.ErrorIs(t, err, folio.ErrNoRecipient)
	require.NotNil(t, entry)
	assert.False(t, entry.Success)

	inv, err := e.f.GetInvoice(ctx, e.inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusDraft, inv.Status)

	logs, err := e.f.ListEmailLogs(ctx, emaillog.ListOpts{FailedOnly: true})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestSendFailureIsLogged(t *testing.T) {
	e := setup(t, "accounts@acme.test")
	e.mail.Err = errors.New("relay refused")
	ctx := context.Background()

	entry, err := delivery.New(e.f, e.mail).SendInvoice(ctx, e.inv.ID, []string{"other@acme.test"}, "", "")
	require.Error(t, err)
	assert.Equal(t, "other@acme.test", entry.Recipient)
	assert.Equal(t, "relay refused", entry.Error)

	inv, err := e.f.GetInvoice(ctx, e.inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusDraft, inv.Status)
}

func TestSendStatement(t *testing.T) {
	e := setup(t, "accounts@acme.test")
	ctx := context.Background()

	st, err := e.f.GenerateStatement(ctx, e.client.ID, march10.AddDate(0, -1, 0), march10, types.ZAR(0))
	require.NoError(t, err)

	entry, err := delivery.New(e.f, e.mail).SendStatement(ctx, st.ID, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, st.ID, entry.StatementID)

	sent := e.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Statement from Your Company Name", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Feb 10, 2025 - Mar 10, 2025")
}

func TestWorkerQueue(t *testing.T) {
	e := setup(t, "accounts@acme.test")
	w := delivery.New(e.f, e.mail, delivery.WithWorkers(1), delivery.WithQueueSize(1))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	wg.Add(1)
	job := delivery.Job{
		Kind:      delivery.KindInvoice,
		InvoiceID: e.inv.ID,
		Done: func(_ *emaillog.Entry, err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			wg.Done()
		},
	}

	require.NoError(t, w.Enqueue(job))
	assert.ErrorIs(t, w.Enqueue(job), folio.ErrQueueFull)
	assert.Equal(t, 1, w.Pending())

	w.Start(context.Background())
	wg.Wait()
	w.Stop()

	require.Len(t, errs, 1)
	assert.NoError(t, errs[0])
	assert.Len(t, e.mail.Sent(), 1)
	assert.ErrorIs(t, w.Enqueue(job), delivery.ErrStopped)
}
