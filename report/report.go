// Package report computes receivables summaries over hydrated invoices.
// Every function is pure; callers load the invoices and supply "now".
//
// Totals are kept in a single currency. Invoices in any other currency,
// or carrying a payment in another currency, are left out of every
// figure and counted in Summary.OtherCurrencyCount.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

// Summary is the revenue overview of a set of invoices.
type Summary struct {
	Currency         string      `json:"currency"`
	TotalRevenue     types.Money `json:"total_revenue"`
	TotalPaid        types.Money `json:"total_paid"`
	TotalOutstanding types.Money `json:"total_outstanding"`
	PaidRevenue      types.Money `json:"paid_revenue"`
	ThisMonthPaid    types.Money `json:"this_month_paid"`
	AverageInvoice   types.Money `json:"average_invoice"`
	InvoiceCount     int         `json:"invoice_count"`
	PaidCount        int         `json:"paid_count"`
	OverdueCount     int         `json:"overdue_count"`
	PendingCount     int         `json:"pending_count"`

	// OtherCurrencyCount is the number of invoices left out because they
	// are not in Currency.
	OtherCurrencyCount int `json:"other_currency_count,omitempty"`
}

// inCurrency reports whether inv and all its payments are in currency.
func inCurrency(inv *invoice.Invoice, currency string) bool {
	if inv == nil || !strings.EqualFold(inv.Currency, currency) {
		return false
	}
	for _, p := range inv.Payments {
		if !strings.EqualFold(p.Amount.Currency, currency) {
			return false
		}
	}
	return true
}

// Summarize totals invoices. Overdue uses the effective status at now;
// pending counts Draft and Sent.
func Summarize(invoices []*invoice.Invoice, currency string, now time.Time) Summary {
	s := Summary{
		Currency:         currency,
		TotalRevenue:     types.Zero(currency),
		TotalPaid:        types.Zero(currency),
		TotalOutstanding: types.Zero(currency),
		PaidRevenue:      types.Zero(currency),
		ThisMonthPaid:    types.Zero(currency),
		AverageInvoice:   types.Zero(currency),
	}
	ny, nm, _ := now.UTC().Date()

	for _, inv := range invoices {
		if !inCurrency(inv, currency) {
			s.OtherCurrencyCount++
			continue
		}
		s.InvoiceCount++
		s.TotalRevenue = s.TotalRevenue.Add(inv.Total)
		s.TotalPaid = s.TotalPaid.Add(inv.AmountPaid())
		s.TotalOutstanding = s.TotalOutstanding.Add(inv.AmountRemaining())

		switch inv.EffectiveStatus(now) {
		case invoice.StatusPaid:
			s.PaidCount++
			s.PaidRevenue = s.PaidRevenue.Add(inv.Total)
			if y, m, _ := inv.InvoiceDate.UTC().Date(); y == ny && m == nm {
				s.ThisMonthPaid = s.ThisMonthPaid.Add(inv.Total)
			}
		case invoice.StatusOverdue:
			s.OverdueCount++
		case invoice.StatusDraft, invoice.StatusSent:
			s.PendingCount++
		}
	}

	if s.InvoiceCount > 0 {
		avg := s.TotalRevenue.Decimal().Div(decimal.NewFromInt(int64(s.InvoiceCount)))
		s.AverageInvoice = types.FromDecimal(avg, currency)
	}
	return s
}

// Bucket is one aging band.
type Bucket struct {
	Label  string      `json:"label"`
	Count  int         `json:"count"`
	Amount types.Money `json:"amount"`
}

// Aging labels, in bucket order.
const (
	AgingCurrent = "Current (Not Due)"
	Aging1To30   = "1-30 Days Overdue"
	Aging31To60  = "31-60 Days Overdue"
	Aging61To90  = "61-90 Days Overdue"
	Aging90Plus  = "90+ Days Overdue"
)

// Aging buckets the remaining balance of unpaid, non-draft invoices by how
// many days past due they are at now.
func Aging(invoices []*invoice.Invoice, currency string, now time.Time) []Bucket {
	buckets := []Bucket{
		{Label: AgingCurrent},
		{Label: Aging1To30},
		{Label: Aging31To60},
		{Label: Aging61To90},
		{Label: Aging90Plus},
	}
	for i := range buckets {
		buckets[i].Amount = types.Zero(currency)
	}

	today := invoice.Today(now)
	for _, inv := range invoices {
		if !inCurrency(inv, currency) || !inv.IsUnpaid() {
			continue
		}
		b := &buckets[agingIndex(today, invoice.Today(inv.DueDate))]
		b.Count++
		b.Amount = b.Amount.Add(inv.AmountRemaining())
	}
	return buckets
}

func agingIndex(today, due time.Time) int {
	if !due.Before(today) {
		return 0
	}
	days := int(today.Sub(due).Hours() / 24)
	switch {
	case days <= 30:
		return 1
	case days <= 60:
		return 2
	case days <= 90:
		return 3
	}
	return 4
}

// ClientRevenue is one row of TopClients.
type ClientRevenue struct {
	ClientID     id.ClientID `json:"client_id"`
	ClientName   string      `json:"client_name,omitempty"`
	Revenue      types.Money `json:"revenue"`
	Paid         types.Money `json:"paid"`
	InvoiceCount int         `json:"invoice_count"`
}

// TopClients groups invoices by client and returns the n highest by
// revenue. Ties are ordered by client ID. n <= 0 returns every client.
func TopClients(invoices []*invoice.Invoice, currency string, n int) []ClientRevenue {
	byClient := make(map[string]*ClientRevenue)
	for _, inv := range invoices {
		if !inCurrency(inv, currency) {
			continue
		}
		key := inv.ClientID.String()
		row, ok := byClient[key]
		if !ok {
			row = &ClientRevenue{
				ClientID: inv.ClientID,
				Revenue:  types.Zero(currency),
				Paid:     types.Zero(currency),
			}
			byClient[key] = row
		}
		row.Revenue = row.Revenue.Add(inv.Total)
		row.Paid = row.Paid.Add(inv.AmountPaid())
		row.InvoiceCount++
	}

	out := make([]ClientRevenue, 0, len(byClient))
	for _, row := range byClient {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue.Amount != out[j].Revenue.Amount {
			return out[i].Revenue.Amount > out[j].Revenue.Amount
		}
		return out[i].ClientID.String() < out[j].ClientID.String()
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthRevenue is invoiced revenue for one calendar month.
type MonthRevenue struct {
	Month   time.Time   `json:"month"` // first day of the month, UTC
	Revenue types.Money `json:"revenue"`
	Count   int         `json:"count"`
}

// Monthly returns invoiced revenue for the last months calendar months
// ending with the month containing now, oldest first.
func Monthly(invoices []*invoice.Invoice, currency string, now time.Time, months int) []MonthRevenue {
	if months <= 0 {
		return nil
	}
	y, m, _ := now.UTC().Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	out := make([]MonthRevenue, months)
	index := make(map[time.Time]int, months)
	for i := 0; i < months; i++ {
		start := current.AddDate(0, i-months+1, 0)
		out[i] = MonthRevenue{Month: start, Revenue: types.Zero(currency)}
		index[start] = i
	}

	for _, inv := range invoices {
		if !inCurrency(inv, currency) {
			continue
		}
		iy, im, _ := inv.InvoiceDate.UTC().Date()
		if i, ok := index[time.Date(iy, im, 1, 0, 0, 0, 0, time.UTC)]; ok {
			out[i].Revenue = out[i].Revenue.Add(inv.Total)
			out[i].Count++
		}
	}
	return out
}
