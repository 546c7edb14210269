package statement

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

// Input is everything Generate needs. Invoices must be fully hydrated with
// their payments; invoices outside the range are ignored.
type Input struct {
	ClientID id.ClientID
	Currency string
	Start    time.Time
	End      time.Time
	Opening  types.Money
	Invoices []*invoice.Invoice
	Notes    string
	Now      time.Time
}

type event struct {
	date      time.Time
	kind      Kind
	invoiceID id.InvoiceID
	desc      string
	amount    types.Money
}

// Generate builds a statement from in. It does not touch storage.
//
// Invoices dated in [Start, End] post a debit; their payments dated in
// [Start, End] post a credit. Invoices and payments in a currency other
// than the statement currency are left out. Events are ordered by calendar
// day, ignoring the time of day. Same-day events keep feed order: all
// invoice debits first, ordered by number, followed by each invoice's
// payments in payment order.
func Generate(in Input) (*Statement, error) {
	if invoice.Today(in.Start).After(invoice.Today(in.End)) {
		return nil, ErrInvalidDateRange
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	currency := in.Currency
	if currency == "" {
		currency = in.Opening.Currency
	}
	currency = strings.ToLower(currency)

	st := &Statement{
		ID:             id.NewStatementID(),
		ClientID:       in.ClientID,
		Currency:       currency,
		StatementDate:  now,
		StartDate:      invoice.Today(in.Start),
		EndDate:        invoice.Today(in.End),
		OpeningBalance: in.Opening.WithCurrency(currency),
		Notes:          in.Notes,
		CreatedAt:      now,
	}

	invoices := make([]*invoice.Invoice, 0, len(in.Invoices))
	for _, inv := range in.Invoices {
		if inv != nil && strings.EqualFold(inv.Currency, currency) && inRange(inv.InvoiceDate, in.Start, in.End) {
			invoices = append(invoices, inv)
		}
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if da, db := invoice.Today(a.InvoiceDate), invoice.Today(b.InvoiceDate); !da.Equal(db) {
			return da.Before(db)
		}
		return a.Number < b.Number
	})

	events := make([]event, 0, len(invoices)*2)
	for _, inv := range invoices {
		events = append(events, event{
			date:      inv.InvoiceDate,
			kind:      KindInvoice,
			invoiceID: inv.ID,
			desc:      "Invoice " + inv.Number,
			amount:    inv.Total,
		})
	}
	for _, inv := range invoices {
		for _, p := range orderedPayments(inv.Payments) {
			if !strings.EqualFold(p.Amount.Currency, currency) || !inRange(p.PaymentDate, in.Start, in.End) {
				continue
			}
			events = append(events, event{
				date:      p.PaymentDate,
				kind:      KindPayment,
				invoiceID: inv.ID,
				desc:      fmt.Sprintf("Payment - Invoice %s (%s)", inv.Number, p.Method),
				amount:    p.Amount,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return invoice.Today(events[i].date).Before(invoice.Today(events[j].date))
	})

	st.Lines = make([]Line, 0, len(events))
	for i, ev := range events {
		line := Line{
			ID:          id.NewStatementLineID(),
			StatementID: st.ID,
			InvoiceID:   ev.invoiceID,
			Kind:        ev.kind,
			Date:        ev.date.UTC(),
			Description: ev.desc,
			Debit:       types.Zero(currency),
			Credit:      types.Zero(currency),
			SortOrder:   i,
		}
		if ev.kind == KindInvoice {
			line.Debit = ev.amount.WithCurrency(currency)
		} else {
			line.Credit = ev.amount.WithCurrency(currency)
		}
		st.Lines = append(st.Lines, line)
	}
	Rebalance(st)

	return st, nil
}

// Rebalance orders the lines by SortOrder and re-walks the running balance
// from OpeningBalance, setting ClosingBalance to the last balance.
func Rebalance(st *Statement) {
	sort.SliceStable(st.Lines, func(i, j int) bool {
		return st.Lines[i].SortOrder < st.Lines[j].SortOrder
	})

	balance := st.OpeningBalance
	for i := range st.Lines {
		balance = balance.Add(st.Lines[i].Debit).Subtract(st.Lines[i].Credit)
		st.Lines[i].Balance = balance
	}
	st.ClosingBalance = balance
}

func orderedPayments(in []invoice.Payment) []invoice.Payment {
	out := append([]invoice.Payment(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// inRange compares calendar days in UTC, so both bounds are inclusive
// whatever their time of day.
func inRange(t, start, end time.Time) bool {
	d := invoice.Today(t)
	return !d.Before(invoice.Today(start)) && !d.After(invoice.Today(end))
}
