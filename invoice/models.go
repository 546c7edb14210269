package invoice

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/types"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusSent          Status = "sent"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusSent, StatusPartiallyPaid, StatusPaid, StatusOverdue}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartiallyPaid, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Label is the display form of s, e.g. "Partially Paid".
func (s Status) Label() string {
	switch s {
	case StatusPartiallyPaid:
		return "Partially Paid"
	case "":
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseStatus accepts the stored form ("partially_paid") as well as the
// display forms ("PartiallyPaid", "Partially Paid", "partially-paid").
func ParseStatus(s string) (Status, error) {
	norm := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))

	for _, st := range Statuses() {
		if strings.ReplaceAll(string(st), "_", "") == norm {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Method is how a payment was made. The named values are the common ones;
// any non-empty string is accepted.
type Method string

const (
	MethodCash         Method = "Cash"
	MethodBankTransfer Method = "Bank Transfer"
	MethodCreditCard   Method = "Credit Card"
	MethodCheck        Method = "Check"
	MethodOther        Method = "Other"
)

// Methods lists the named payment methods.
func Methods() []Method {
	return []Method{MethodCash, MethodBankTransfer, MethodCreditCard, MethodCheck, MethodOther}
}

// Invoice is a bill issued to a client. Line items and payments are owned by
// the invoice and are deleted with it.
type Invoice struct {
	types.Entity
	ID           id.InvoiceID `json:"id"`
	Number       string       `json:"number"`
	ClientID     id.ClientID  `json:"client_id"`
	Currency     string       `json:"currency"`
	InvoiceDate  time.Time    `json:"invoice_date"`
	DueDate      time.Time    `json:"due_date"`
	Status       Status       `json:"status"`
	Subtotal     types.Money  `json:"subtotal"`
	TaxAmount    types.Money  `json:"tax_amount"`
	Total        types.Money  `json:"total"`
	LineItems    []LineItem   `json:"line_items"`
	Payments     []Payment    `json:"payments"`
	Notes        string       `json:"notes,omitempty"`
	PaymentTerms string       `json:"payment_terms,omitempty"`
	SentAt       *time.Time   `json:"sent_at,omitempty"`
	PaidAt       *time.Time   `json:"paid_at,omitempty"`
}

// LineItem is one priced entry on an invoice.
type LineItem struct {
	ID          id.LineItemID   `json:"id"`
	InvoiceID   id.InvoiceID    `json:"invoice_id"`
	ProductID   id.ProductID    `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   types.Money     `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // percent, 15 = 15%
	LineTotal   types.Money     `json:"line_total"`
	SortOrder   int             `json:"sort_order"`
}

// Payment is money received against an invoice. Payments are append-only.
type Payment struct {
	ID          id.PaymentID `json:"id"`
	InvoiceID   id.InvoiceID `json:"invoice_id"`
	Amount      types.Money  `json:"amount"`
	PaymentDate time.Time    `json:"payment_date"`
	Method      Method       `json:"method"`
	Reference   string       `json:"reference,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	RecordedBy  string       `json:"recorded_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// AmountPaid is the sum of all payments. It is recomputed on every call.
func (inv *Invoice) AmountPaid() types.Money {
	total := types.Zero(inv.Currency)
	for _, p := range inv.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// AmountRemaining is Total minus AmountPaid; negative when overpaid.
func (inv *Invoice) AmountRemaining() types.Money {
	return inv.Total.Subtract(inv.AmountPaid())
}

// IsOverdue reports the derived overdue classification: the invoice was sent
// and its due date is before today.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == StatusSent && inv.DueDate.Before(Today(now))
}

// EffectiveStatus is the status shown in listings. A stored status always
// wins; the only derived change is Sent becoming Overdue past its due date.
func (inv *Invoice) EffectiveStatus(now time.Time) Status {
	if inv.IsOverdue(now) {
		return StatusOverdue
	}
	return inv.Status
}

// SortLineItems orders line items by SortOrder, keeping input order for ties.
func (inv *Invoice) SortLineItems() {
	sort.SliceStable(inv.LineItems, func(i, j int) bool {
		return inv.LineItems[i].SortOrder < inv.LineItems[j].SortOrder
	})
}

// Clone returns a deep copy of inv.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.Entity.UpdatedAt = cloneTime(inv.UpdatedAt)
	out.SentAt = cloneTime(inv.SentAt)
	out.PaidAt = cloneTime(inv.PaidAt)
	if inv.LineItems != nil {
		out.LineItems = append([]LineItem(nil), inv.LineItems...)
	}
	if inv.Payments != nil {
		out.Payments = append([]Payment(nil), inv.Payments...)
	}
	return &out
}

// Today truncates now to midnight UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
