package audithook_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	audithook "github.com/xraph/folio/audit_hook"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/store/memory"
)

type collector struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (c *collector) Record(_ context.Context, evt *audithook.AuditEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *collector) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

func newEngine(t *testing.T, ext *audithook.Extension) (*folio.Folio, *client.Client) {
	t.Helper()
	f := folio.New(memory.New(), folio.WithPlugin(ext))
	ctx := context.Background()
	require.NoError(t, f.Start(ctx))
	t.Cleanup(func() { _ = f.Stop() })

	c := &client.Client{CompanyName: "Acme Trading"}
	require.NoError(t, f.CreateClient(ctx, c))
	return f, c
}

func createInvoice(t *testing.T, f *folio.Folio, c *client.Client) *invoice.Invoice {
	t.Helper()
	inv := &invoice.Invoice{
		ClientID: c.ID,
		LineItems: []invoice.LineItem{{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   folio.ZAR(10000),
			TaxRate:     decimal.Zero,
		}},
	}
	require.NoError(t, f.CreateInvoice(context.Background(), inv))
	return inv
}

func TestExtensionRecordsPaymentFlow(t *testing.T) {
	rec := &collector{}
	f, c := newEngine(t, audithook.New(rec))
	inv := createInvoice(t, f, c)

	_, err := f.RecordPayment(context.Background(), folio.RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    folio.ZAR(10000),
		Method:    invoice.MethodCash,
		Reference: "RCPT-1",
	})
	require.NoError(t, err)

	actions := rec.actions()
	assert.Contains(t, actions, audithook.ActionClientCreated)
	assert.Contains(t, actions, audithook.ActionInvoiceCreated)
	assert.Contains(t, actions, audithook.ActionPaymentRecorded)
	assert.Contains(t, actions, audithook.ActionInvoicePaid)

	for _, evt := range rec.events {
		if evt.Action != audithook.ActionPaymentRecorded {
			continue
		}
		assert.Equal(t, audithook.ResourcePayment, evt.Resource)
		assert.Equal(t, "100.00", evt.Metadata["amount"])
		assert.Equal(t, "RCPT-1", evt.Metadata["reference"])
		assert.Equal(t, inv.ID.String(), evt.Metadata["invoice_id"])
	}
}

func TestExtensionEnabledActions(t *testing.T) {
	rec := &collector{}
	f, c := newEngine(t, audithook.New(rec, audithook.WithEnabledActions(audithook.ActionInvoiceDeleted)))
	inv := createInvoice(t, f, c)

	require.NoError(t, f.DeleteInvoice(context.Background(), inv.ID))
	assert.Equal(t, []string{audithook.ActionInvoiceDeleted}, rec.actions())
	assert.Equal(t, audithook.SeverityWarning, rec.events[0].Severity)
}

func TestExtensionDisabledActions(t *testing.T) {
	rec := &collector{}
	f, c := newEngine(t, audithook.New(rec, audithook.WithDisabledActions(audithook.ActionClientCreated)))
	createInvoice(t, f, c)

	assert.Equal(t, []string{audithook.ActionInvoiceCreated}, rec.actions())
}

func TestRecorderFailureDoesNotFailOperation(t *testing.T) {
	var buf bytes.Buffer
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("audit store down")
	})
	ext := audithook.New(failing, audithook.WithLogger(zerolog.New(&buf)))
	f, c := newEngine(t, ext)

	createInvoice(t, f, c)
	assert.Contains(t, buf.String(), "audit store down")
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := audithook.LogRecorder(zerolog.New(&buf))

	err := rec.Record(context.Background(), &audithook.AuditEvent{
		Action:     audithook.ActionEmailFailed,
		Resource:   audithook.ResourceEmail,
		ResourceID: "eml_1",
		Severity:   audithook.SeverityError,
		Outcome:    audithook.OutcomeFailure,
		Reason:     "smtp timeout",
		Metadata:   map[string]any{"recipient": "a@b.test"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"action":"email.failed"`)
	assert.Contains(t, out, `"recipient":"a@b.test"`)
	assert.Contains(t, out, `"reason":"smtp timeout"`)
}
