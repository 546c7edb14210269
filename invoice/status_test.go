package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/invoice"
)

func TestSetStatusSentIsIdempotent(t *testing.T) {
	inv := sentInvoice(1000)
	inv.Status = invoice.StatusDraft

	require.NoError(t, invoice.SetStatus(inv, invoice.StatusSent, day1))
	require.NotNil(t, inv.SentAt)
	assert.True(t, inv.SentAt.Equal(day1))

	require.NoError(t, invoice.SetStatus(inv, invoice.StatusSent, day5))
	assert.True(t, inv.SentAt.Equal(day1))
}

func TestSetStatusPaidStampsPaidAt(t *testing.T) {
	inv := sentInvoice(1000)

	require.NoError(t, invoice.SetStatus(inv, invoice.StatusPaid, day5))
	require.NotNil(t, inv.PaidAt)
	assert.True(t, inv.PaidAt.Equal(day5))
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	inv := sentInvoice(1000)
	err := invoice.SetStatus(inv, invoice.Status("void"), day1)
	require.ErrorIs(t, err, invoice.ErrInvalidStatus)
	assert.Equal(t, invoice.StatusSent, inv.Status)
}

func TestOverdueClassification(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    invoice.Status
		due       time.Time
		overdue   bool
		effective invoice.Status
	}{
		{"sent past due", invoice.StatusSent, day5, true, invoice.StatusOverdue},
		{"sent due today", invoice.StatusSent, invoice.Today(now), false, invoice.StatusSent},
		{"draft past due", invoice.StatusDraft, day5, false, invoice.StatusDraft},
		{"partially paid past due", invoice.StatusPartiallyPaid, day5, false, invoice.StatusPartiallyPaid},
		{"stored overdue not yet due", invoice.StatusOverdue, now.AddDate(0, 0, 5), false, invoice.StatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &invoice.Invoice{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.overdue, inv.IsOverdue(now))
			assert.Equal(t, tt.effective, inv.EffectiveStatus(now))
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]invoice.Status{
		"draft":          invoice.StatusDraft,
		"Sent":           invoice.StatusSent,
		"PartiallyPaid":  invoice.StatusPartiallyPaid,
		"partially paid": invoice.StatusPartiallyPaid,
		"partially_paid": invoice.StatusPartiallyPaid,
		"OVERDUE":        invoice.StatusOverdue,
	}
	for in, want := range tests {
		got, err := invoice.ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := invoice.ParseStatus("cancelled")
	assert.ErrorIs(t, err, invoice.ErrInvalidStatus)
}

func TestCloneIsDeep(t *testing.T) {
	inv := sentInvoice(1000)
	inv.LineItems = []invoice.LineItem{line("1", "10.00", "0")}
	inv.Payments = []invoice.Payment{payment(100, day1)}
	sent := day1
	inv.SentAt = &sent

	cp := inv.Clone()
	cp.LineItems[0].Description = "changed"
	cp.Payments = append(cp.Payments, payment(100, day5))
	*cp.SentAt = day5

	assert.Equal(t, "item", inv.LineItems[0].Description)
	assert.Len(t, inv.Payments, 1)
	assert.True(t, inv.SentAt.Equal(day1))
}
