// Package audithook bridges Folio lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. LogRecorder writes events to a zerolog logger;
// other backends are injected through RecorderFunc at wiring time.
package audithook

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnInvoiceCreated       = (*Extension)(nil)
	_ plugin.OnInvoiceUpdated       = (*Extension)(nil)
	_ plugin.OnInvoiceDeleted       = (*Extension)(nil)
	_ plugin.OnInvoiceDuplicated    = (*Extension)(nil)
	_ plugin.OnInvoiceStatusChanged = (*Extension)(nil)
	_ plugin.OnPaymentRecorded      = (*Extension)(nil)
	_ plugin.OnInvoicePaid          = (*Extension)(nil)
	_ plugin.OnOverpayment          = (*Extension)(nil)
	_ plugin.OnStatementGenerated   = (*Extension)(nil)
	_ plugin.OnClientCreated        = (*Extension)(nil)
	_ plugin.OnEmailSent            = (*Extension)(nil)
	_ plugin.OnEmailFailed          = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audited action.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// LogRecorder returns a Recorder that writes each event as a structured log line.
func LogRecorder(logger zerolog.Logger) Recorder {
	return RecorderFunc(func(_ context.Context, evt *AuditEvent) error {
		l := logger.Info()
		switch evt.Severity {
		case SeverityWarning:
			l = logger.Warn()
		case SeverityError, SeverityCritical:
			l = logger.Error()
		}
		l.Str("action", evt.Action).
			Str("resource", evt.Resource).
			Str("category", evt.Category).
			Str("resource_id", evt.ResourceID).
			Str("outcome", evt.Outcome).
			Fields(evt.Metadata)
		if evt.Reason != "" {
			l = l.Str("reason", evt.Reason)
		}
		l.Msg("audit")
		return nil
	})
}

// Extension bridges Folio lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   zerolog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (e *Extension) OnInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryBilling, nil,
		"number", inv.Number,
		"client_id", inv.ClientID.String(),
		"total", inv.Total.FormatMajor(),
		"currency", inv.Currency,
	)
}

// OnInvoiceUpdated implements plugin.OnInvoiceUpdated.
func (e *Extension) OnInvoiceUpdated(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceUpdated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryBilling, nil,
		"number", inv.Number,
		"total", inv.Total.FormatMajor(),
	)
}

// OnInvoiceDeleted implements plugin.OnInvoiceDeleted.
func (e *Extension) OnInvoiceDeleted(ctx context.Context, invID id.InvoiceID) error {
	return e.record(ctx, ActionInvoiceDeleted, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, invID.String(), CategoryBilling, nil,
	)
}

// OnInvoiceDuplicated implements plugin.OnInvoiceDuplicated.
func (e *Extension) OnInvoiceDuplicated(ctx context.Context, source, copied *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceDuplicated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, copied.ID.String(), CategoryBilling, nil,
		"source_id", source.ID.String(),
		"source_number", source.Number,
		"number", copied.Number,
	)
}

// OnInvoiceStatusChanged implements plugin.OnInvoiceStatusChanged.
func (e *Extension) OnInvoiceStatusChanged(ctx context.Context, inv *invoice.Invoice, from, to invoice.Status) error {
	return e.record(ctx, ActionInvoiceStatusChanged, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryBilling, nil,
		"number", inv.Number,
		"from", string(from),
		"to", string(to),
	)
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (e *Extension) OnInvoicePaid(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoicePaid, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryPayment, nil,
		"number", inv.Number,
		"total", inv.Total.FormatMajor(),
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (e *Extension) OnPaymentRecorded(ctx context.Context, inv *invoice.Invoice, p *invoice.Payment) error {
	return e.record(ctx, ActionPaymentRecorded, SeverityInfo, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		"invoice_id", inv.ID.String(),
		"number", inv.Number,
		"amount", p.Amount.FormatMajor(),
		"method", string(p.Method),
		"reference", p.Reference,
	)
}

// OnOverpayment implements plugin.OnOverpayment.
func (e *Extension) OnOverpayment(ctx context.Context, inv *invoice.Invoice, excess types.Money) error {
	return e.record(ctx, ActionOverpayment, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryPayment, nil,
		"number", inv.Number,
		"excess", excess.FormatMajor(),
	)
}

// ──────────────────────────────────────────────────
// Statement, client and delivery hooks
// ──────────────────────────────────────────────────

// OnStatementGenerated implements plugin.OnStatementGenerated.
func (e *Extension) OnStatementGenerated(ctx context.Context, st *statement.Statement) error {
	return e.record(ctx, ActionStatementGenerated, SeverityInfo, OutcomeSuccess,
		ResourceStatement, st.ID.String(), CategoryAccount, nil,
		"client_id", st.ClientID.String(),
		"lines", len(st.Lines),
		"closing_balance", st.ClosingBalance.FormatMajor(),
	)
}

// OnClientCreated implements plugin.OnClientCreated.
func (e *Extension) OnClientCreated(ctx context.Context, c *client.Client) error {
	return e.record(ctx, ActionClientCreated, SeverityInfo, OutcomeSuccess,
		ResourceClient, c.ID.String(), CategoryAccount, nil,
		"company_name", c.CompanyName,
	)
}

// OnEmailSent implements plugin.OnEmailSent.
func (e *Extension) OnEmailSent(ctx context.Context, entry *emaillog.Entry) error {
	return e.record(ctx, ActionEmailSent, SeverityInfo, OutcomeSuccess,
		ResourceEmail, entry.ID.String(), CategoryDelivery, nil,
		emailPairs(entry)...,
	)
}

// OnEmailFailed implements plugin.OnEmailFailed.
func (e *Extension) OnEmailFailed(ctx context.Context, entry *emaillog.Entry, err error) error {
	return e.record(ctx, ActionEmailFailed, SeverityError, OutcomeFailure,
		ResourceEmail, entry.ID.String(), CategoryDelivery, err,
		emailPairs(entry)...,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func emailPairs(entry *emaillog.Entry) []any {
	pairs := []any{"recipient", entry.Recipient, "subject", entry.Subject}
	if !entry.InvoiceID.IsNil() {
		pairs = append(pairs, "invoice_id", entry.InvoiceID.String())
	}
	if !entry.StatementID.IsNil() {
		pairs = append(pairs, "statement_id", entry.StatementID.String())
	}
	return pairs
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn().
			Str("action", action).
			Str("resource_id", resourceID).
			Err(recErr).
			Msg("audit_hook: failed to record audit event")
	}
	return nil
}
