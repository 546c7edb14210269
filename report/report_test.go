package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/report"
	"github.com/xraph/folio/types"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func mk(client id.ClientID, status invoice.Status, total, paid int64, due time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:          id.NewInvoiceID(),
		ClientID:    client,
		Currency:    "zar",
		Status:      status,
		InvoiceDate: due.AddDate(0, 0, -30),
		DueDate:     due,
		Total:       types.ZAR(total),
	}
	if paid > 0 {
		inv.Payments = []invoice.Payment{{Amount: types.ZAR(paid), PaymentDate: due}}
	}
	return inv
}

func daysAgo(n int) time.Time { return invoice.Today(now).AddDate(0, 0, -n) }

func TestSummarize(t *testing.T) {
	c := id.NewClientID()
	invoices := []*invoice.Invoice{
		mk(c, invoice.StatusPaid, 10000, 10000, daysAgo(-10)),
		mk(c, invoice.StatusSent, 5000, 0, daysAgo(5)),   // derived overdue
		mk(c, invoice.StatusSent, 3000, 0, daysAgo(-5)),  // pending
		mk(c, invoice.StatusDraft, 2000, 0, daysAgo(-5)), // pending
		mk(c, invoice.StatusPartiallyPaid, 4000, 1000, daysAgo(1)),
	}

	s := report.Summarize(invoices, "zar", now)

	assert.Equal(t, 5, s.InvoiceCount)
	assert.Equal(t, types.ZAR(24000), s.TotalRevenue)
	assert.Equal(t, types.ZAR(11000), s.TotalPaid)
	assert.Equal(t, types.ZAR(13000), s.TotalOutstanding)
	assert.Equal(t, types.ZAR(10000), s.PaidRevenue)
	assert.Equal(t, 1, s.PaidCount)
	assert.Equal(t, 1, s.OverdueCount)
	assert.Equal(t, 2, s.PendingCount)
	assert.Equal(t, types.ZAR(4800), s.AverageInvoice)
}

func TestSummarizeEmpty(t *testing.T) {
	s := report.Summarize(nil, "zar", now)
	assert.Zero(t, s.InvoiceCount)
	assert.True(t, s.AverageInvoice.IsZero())
}

func TestAging(t *testing.T) {
	c := id.NewClientID()
	invoices := []*invoice.Invoice{
		mk(c, invoice.StatusSent, 1000, 0, daysAgo(0)),    // due today: current
		mk(c, invoice.StatusSent, 2000, 500, daysAgo(30)), // 1-30
		mk(c, invoice.StatusOverdue, 3000, 0, daysAgo(31)),
		mk(c, invoice.StatusSent, 4000, 0, daysAgo(90)),
		mk(c, invoice.StatusSent, 5000, 0, daysAgo(91)),
		mk(c, invoice.StatusDraft, 9999, 0, daysAgo(200)),  // drafts excluded
		mk(c, invoice.StatusPaid, 7000, 7000, daysAgo(50)), // settled excluded
	}

	buckets := report.Aging(invoices, "zar", now)
	require.Len(t, buckets, 5)

	want := []struct {
		label  string
		count  int
		amount int64
	}{
		{report.AgingCurrent, 1, 1000},
		{report.Aging1To30, 1, 1500},
		{report.Aging31To60, 1, 3000},
		{report.Aging61To90, 1, 4000},
		{report.Aging90Plus, 1, 5000},
	}
	for i, w := range want {
		assert.Equal(t, w.label, buckets[i].Label)
		assert.Equal(t, w.count, buckets[i].Count, w.label)
		assert.Equal(t, types.ZAR(w.amount), buckets[i].Amount, w.label)
	}
}

func TestTopClients(t *testing.T) {
	a, b, c := id.NewClientID(), id.NewClientID(), id.NewClientID()
	invoices := []*invoice.Invoice{
		mk(a, invoice.StatusPaid, 1000, 1000, now),
		mk(b, invoice.StatusSent, 5000, 0, now),
		mk(a, invoice.StatusSent, 1500, 500, now),
		mk(c, invoice.StatusSent, 100, 0, now),
	}

	top := report.TopClients(invoices, "zar", 2)
	require.Len(t, top, 2)
	assert.Equal(t, b, top[0].ClientID)
	assert.Equal(t, a, top[1].ClientID)
	assert.Equal(t, types.ZAR(2500), top[1].Revenue)
	assert.Equal(t, types.ZAR(1500), top[1].Paid)
	assert.Equal(t, 2, top[1].InvoiceCount)

	assert.Len(t, report.TopClients(invoices, "zar", 0), 3)
}

func TestMonthly(t *testing.T) {
	c := id.NewClientID()
	at := func(y int, m time.Month, total int64) *invoice.Invoice {
		return &invoice.Invoice{ClientID: c, Currency: "zar", Total: types.ZAR(total),
			InvoiceDate: time.Date(y, m, 10, 0, 0, 0, 0, time.UTC)}
	}
	invoices := []*invoice.Invoice{
		at(2025, time.June, 100),
		at(2025, time.June, 200),
		at(2025, time.April, 50),
		at(2024, time.December, 999), // outside the window
	}

	months := report.Monthly(invoices, "zar", now, 3)
	require.Len(t, months, 3)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), months[0].Month)
	assert.Equal(t, types.ZAR(50), months[0].Revenue)
	assert.Equal(t, types.ZAR(0), months[1].Revenue)
	assert.Equal(t, types.ZAR(300), months[2].Revenue)
	assert.Equal(t, 2, months[2].Count)
}

func usd(inv *invoice.Invoice) *invoice.Invoice {
	inv.Currency = "usd"
	inv.Total = inv.Total.WithCurrency("usd")
	for i := range inv.Payments {
		inv.Payments[i].Amount = inv.Payments[i].Amount.WithCurrency("usd")
	}
	return inv
}

func TestMixedCurrenciesAreLeftOut(t *testing.T) {
	local, foreign := id.NewClientID(), id.NewClientID()
	invoices := []*invoice.Invoice{
		mk(local, invoice.StatusSent, 5000, 1000, daysAgo(10)),
		usd(mk(foreign, invoice.StatusSent, 9000, 2000, daysAgo(10))),
		usd(mk(foreign, invoice.StatusPaid, 3000, 3000, daysAgo(-3))),
	}

	var s report.Summary
	require.NotPanics(t, func() { s = report.Summarize(invoices, "ZAR", now) })
	assert.Equal(t, 1, s.InvoiceCount)
	assert.Equal(t, 2, s.OtherCurrencyCount)
	assert.Equal(t, types.ZAR(5000), s.TotalRevenue)
	assert.Equal(t, types.ZAR(4000), s.TotalOutstanding)

	var buckets []report.Bucket
	require.NotPanics(t, func() { buckets = report.Aging(invoices, "zar", now) })
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, types.ZAR(4000), buckets[1].Amount)

	var top []report.ClientRevenue
	require.NotPanics(t, func() { top = report.TopClients(invoices, "zar", 0) })
	require.Len(t, top, 1)
	assert.Equal(t, local, top[0].ClientID)

	var months []report.MonthRevenue
	require.NotPanics(t, func() { months = report.Monthly(invoices, "zar", now, 3) })
	var count int
	for _, m := range months {
		count += m.Count
		assert.Equal(t, "zar", m.Revenue.Currency)
	}
	assert.Equal(t, 1, count)
}

func TestPaymentInOtherCurrencyLeavesInvoiceOut(t *testing.T) {
	inv := mk(id.NewClientID(), invoice.StatusPartiallyPaid, 5000, 1000, daysAgo(2))
	inv.Payments[0].Amount = types.USD(1000)

	var s report.Summary
	require.NotPanics(t, func() { s = report.Summarize([]*invoice.Invoice{inv}, "zar", now) })
	assert.Zero(t, s.InvoiceCount)
	assert.Equal(t, 1, s.OtherCurrencyCount)
	assert.True(t, s.TotalRevenue.IsZero())
}
