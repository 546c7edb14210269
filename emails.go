package folio

import (
	"context"

	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
)

// RecordEmail stores a delivery attempt and notifies plugins. cause is the
// delivery failure, nil on success.
func (f *Folio) RecordEmail(ctx context.Context, e *emaillog.Entry, cause error) error {
	if e.ID.IsNil() {
		e.ID = id.NewEmailLogID()
	}
	if e.SentAt.IsZero() {
		e.SentAt = f.Now()
	}
	e.Success = cause == nil
	if cause != nil {
		e.Error = cause.Error()
	}

	if err := f.store.CreateEmailLog(ctx, e); err != nil {
		return err
	}

	if cause != nil {
		f.logger.Warn().Err(cause).Str("recipient", e.Recipient).Msg("email delivery failed")
		f.plugins.EmitEmailFailed(ctx, e, cause)
		return nil
	}
	f.logger.Info().Str("recipient", e.Recipient).Str("subject", e.Subject).Msg("email sent")
	f.plugins.EmitEmailSent(ctx, e)
	return nil
}

// ListEmailLogs returns delivery attempts, newest first.
func (f *Folio) ListEmailLogs(ctx context.Context, opts emaillog.ListOpts) ([]*emaillog.Entry, error) {
	return f.store.ListEmailLogs(ctx, opts)
}

// MarkSent moves a Draft invoice to Sent after it has been delivered.
// Invoices past Sent keep their status; SentAt is only stamped once.
func (f *Folio) MarkSent(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	return f.setStatus(ctx, invID, invoice.StatusSent, func(inv *invoice.Invoice) bool {
		return inv.Status == invoice.StatusDraft || inv.Status == invoice.StatusSent
	})
}
