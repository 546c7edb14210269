// Package observability provides a metrics extension for Folio that records
// lifecycle event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated       = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceUpdated       = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDeleted       = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDuplicated    = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceStatusChanged = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded      = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePaid          = (*MetricsExtension)(nil)
	_ plugin.OnOverpayment          = (*MetricsExtension)(nil)
	_ plugin.OnStatementGenerated   = (*MetricsExtension)(nil)
	_ plugin.OnClientCreated        = (*MetricsExtension)(nil)
	_ plugin.OnEmailSent            = (*MetricsExtension)(nil)
	_ plugin.OnEmailFailed          = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Folio plugin to track invoicing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Invoice metrics
	InvoiceCreated    Counter
	InvoiceUpdated    Counter
	InvoiceDeleted    Counter
	InvoiceDuplicated Counter
	InvoiceSent       Counter
	InvoiceOverdue    Counter
	InvoicePaid       Counter
	InvoiceTotal      Histogram

	// Payment metrics
	PaymentRecorded Counter
	PaymentAmount   Histogram
	Overpayments    Counter

	// Statement and client metrics
	StatementGenerated Counter
	StatementLines     Histogram
	ClientCreated      Counter

	// Delivery metrics
	EmailSent   Counter
	EmailFailed Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		InvoiceCreated:    factory.Counter("folio.invoice.created"),
		InvoiceUpdated:    factory.Counter("folio.invoice.updated"),
		InvoiceDeleted:    factory.Counter("folio.invoice.deleted"),
		InvoiceDuplicated: factory.Counter("folio.invoice.duplicated"),
		InvoiceSent:       factory.Counter("folio.invoice.sent"),
		InvoiceOverdue:    factory.Counter("folio.invoice.overdue"),
		InvoicePaid:       factory.Counter("folio.invoice.paid"),
		InvoiceTotal:      factory.Histogram("folio.invoice.total_amount"),

		PaymentRecorded: factory.Counter("folio.payment.recorded"),
		PaymentAmount:   factory.Histogram("folio.payment.amount"),
		Overpayments:    factory.Counter("folio.payment.overpaid"),

		StatementGenerated: factory.Counter("folio.statement.generated"),
		StatementLines:     factory.Histogram("folio.statement.lines"),
		ClientCreated:      factory.Counter("folio.client.created"),

		EmailSent:   factory.Counter("folio.email.sent"),
		EmailFailed: factory.Counter("folio.email.failed"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(context.Context, any) error { return nil }

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, inv *invoice.Invoice) error {
	m.InvoiceCreated.Inc()
	m.InvoiceTotal.Observe(inv.Total.Decimal().InexactFloat64())
	return nil
}

// OnInvoiceUpdated implements plugin.OnInvoiceUpdated.
func (m *MetricsExtension) OnInvoiceUpdated(context.Context, *invoice.Invoice) error {
	m.InvoiceUpdated.Inc()
	return nil
}

// OnInvoiceDeleted implements plugin.OnInvoiceDeleted.
func (m *MetricsExtension) OnInvoiceDeleted(context.Context, id.InvoiceID) error {
	m.InvoiceDeleted.Inc()
	return nil
}

// OnInvoiceDuplicated implements plugin.OnInvoiceDuplicated.
func (m *MetricsExtension) OnInvoiceDuplicated(context.Context, *invoice.Invoice, *invoice.Invoice) error {
	m.InvoiceDuplicated.Inc()
	return nil
}

// OnInvoiceStatusChanged implements plugin.OnInvoiceStatusChanged.
func (m *MetricsExtension) OnInvoiceStatusChanged(_ context.Context, _ *invoice.Invoice, _, to invoice.Status) error {
	switch to {
	case invoice.StatusSent:
		m.InvoiceSent.Inc()
	case invoice.StatusOverdue:
		m.InvoiceOverdue.Inc()
	}
	return nil
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (m *MetricsExtension) OnInvoicePaid(context.Context, *invoice.Invoice) error {
	m.InvoicePaid.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, _ *invoice.Invoice, p *invoice.Payment) error {
	m.PaymentRecorded.Inc()
	m.PaymentAmount.Observe(p.Amount.Decimal().InexactFloat64())
	return nil
}

// OnOverpayment implements plugin.OnOverpayment.
func (m *MetricsExtension) OnOverpayment(context.Context, *invoice.Invoice, types.Money) error {
	m.Overpayments.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Statement, client and delivery hooks
// ──────────────────────────────────────────────────

// OnStatementGenerated implements plugin.OnStatementGenerated.
func (m *MetricsExtension) OnStatementGenerated(_ context.Context, st *statement.Statement) error {
	m.StatementGenerated.Inc()
	m.StatementLines.Observe(float64(len(st.Lines)))
	return nil
}

// OnClientCreated implements plugin.OnClientCreated.
func (m *MetricsExtension) OnClientCreated(context.Context, *client.Client) error {
	m.ClientCreated.Inc()
	return nil
}

// OnEmailSent implements plugin.OnEmailSent.
func (m *MetricsExtension) OnEmailSent(context.Context, *emaillog.Entry) error {
	m.EmailSent.Inc()
	return nil
}

// OnEmailFailed implements plugin.OnEmailFailed.
func (m *MetricsExtension) OnEmailFailed(context.Context, *emaillog.Entry, error) error {
	m.EmailFailed.Inc()
	return nil
}
