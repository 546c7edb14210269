// Package plugin provides an extensible plugin system for Folio.
// Plugins can hook into invoice, payment, statement and delivery events to
// extend functionality. A plugin implements Plugin plus any subset of the
// hook interfaces below; the Registry discovers them by type assertion.
package plugin

import (
	"context"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *folio.Folio.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated is called after an invoice is stored.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoiceUpdated is called after an invoice is edited.
type OnInvoiceUpdated interface {
	Plugin
	OnInvoiceUpdated(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoiceDeleted is called after an invoice and its children are removed.
type OnInvoiceDeleted interface {
	Plugin
	OnInvoiceDeleted(ctx context.Context, invID id.InvoiceID) error
}

// OnInvoiceDuplicated is called after a copy of source is stored.
type OnInvoiceDuplicated interface {
	Plugin
	OnInvoiceDuplicated(ctx context.Context, source, copied *invoice.Invoice) error
}

// OnInvoiceStatusChanged is called when the stored status changes.
type OnInvoiceStatusChanged interface {
	Plugin
	OnInvoiceStatusChanged(ctx context.Context, inv *invoice.Invoice, from, to invoice.Status) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded is called after a payment is stored.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, inv *invoice.Invoice, p *invoice.Payment) error
}

// OnInvoicePaid is called when a payment moves an invoice into Paid.
type OnInvoicePaid interface {
	Plugin
	OnInvoicePaid(ctx context.Context, inv *invoice.Invoice) error
}

// OnOverpayment is called when a confirmed payment exceeded the balance.
type OnOverpayment interface {
	Plugin
	OnOverpayment(ctx context.Context, inv *invoice.Invoice, excess types.Money) error
}

// ──────────────────────────────────────────────────
// Statement and client hooks
// ──────────────────────────────────────────────────

// OnStatementGenerated is called after a statement snapshot is stored.
type OnStatementGenerated interface {
	Plugin
	OnStatementGenerated(ctx context.Context, st *statement.Statement) error
}

// OnClientCreated is called after a client is stored.
type OnClientCreated interface {
	Plugin
	OnClientCreated(ctx context.Context, c *client.Client) error
}

// ──────────────────────────────────────────────────
// Delivery hooks
// ──────────────────────────────────────────────────

// OnEmailSent is called after a successful delivery.
type OnEmailSent interface {
	Plugin
	OnEmailSent(ctx context.Context, entry *emaillog.Entry) error
}

// OnEmailFailed is called after a failed delivery.
type OnEmailFailed interface {
	Plugin
	OnEmailFailed(ctx context.Context, entry *emaillog.Entry, err error) error
}
