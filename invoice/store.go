package invoice

import (
	"context"
	"time"

	"github.com/xraph/folio/id"
)

// Store persists invoices together with their line items and payments.
// Every read returns fully hydrated aggregates.
type Store interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, invID id.InvoiceID) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, opts ListOpts) ([]*Invoice, error)
	// UpdateInvoice replaces the header and the full line-item set.
	// Payments are untouched.
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	// DeleteInvoice removes the invoice with its line items and payments.
	DeleteInvoice(ctx context.Context, invID id.InvoiceID) error
	AddPayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, invID id.InvoiceID) ([]Payment, error)
	CountInvoices(ctx context.Context, clientID id.ClientID) (int, error)
}

// ListOpts filters ListInvoices. Zero values mean "no filter".
// Date bounds are inclusive.
type ListOpts struct {
	ClientID  id.ClientID
	Status    Status
	From      time.Time // invoice date lower bound
	To        time.Time // invoice date upper bound
	DueBefore time.Time // due date strictly before
	Number    string    // substring match on the invoice number
	Ascending bool      // order by invoice date ascending; default is newest first
	Limit     int
	Offset    int
}
