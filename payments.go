package folio

import (
	"context"
	"strings"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/types"
)

// RecordPaymentInput describes a payment to apply to an invoice.
type RecordPaymentInput struct {
	InvoiceID   id.InvoiceID
	Amount      types.Money
	PaymentDate time.Time // zero means today
	Method      invoice.Method
	Reference   string
	Notes       string
	// RecordedBy identifies the acting user. It is passed explicitly and
	// never read from ambient state.
	RecordedBy string
	// ConfirmOverpayment acknowledges that Amount may exceed the remaining
	// balance. Without it an overpayment is refused with an OverpaymentWarning.
	ConfirmOverpayment bool
}

// PaymentReceipt is the outcome of RecordPayment.
type PaymentReceipt struct {
	Invoice        *invoice.Invoice `json:"invoice"`
	Payment        invoice.Payment  `json:"payment"`
	PreviousStatus invoice.Status   `json:"previous_status"`
	Status         invoice.Status   `json:"status"`
	Overpaid       types.Money      `json:"overpaid"`
}

// BecamePaid reports whether this payment settled the invoice.
func (r *PaymentReceipt) BecamePaid() bool {
	return r.Status == invoice.StatusPaid && r.PreviousStatus != invoice.StatusPaid
}

// RecordPayment appends a payment to an invoice and re-derives its status.
// A payment larger than the remaining balance is only recorded when
// in.ConfirmOverpayment is set; otherwise an *OverpaymentWarning is returned
// and nothing changes.
func (f *Folio) RecordPayment(ctx context.Context, in RecordPaymentInput) (*PaymentReceipt, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	var receipt *PaymentReceipt
	err := f.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		inv, err := tx.GetInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if in.Amount.Currency != "" && !strings.EqualFold(in.Amount.Currency, inv.Currency) {
			return ValidationError{Field: "amount", Message: "currency " + in.Amount.Currency + " does not match invoice currency " + inv.Currency}
		}

		check, err := invoice.CheckPayment(inv, in.Amount)
		if err != nil {
			return err
		}
		if check.IsOverpayment() && !in.ConfirmOverpayment {
			return &OverpaymentWarning{
				InvoiceNumber: inv.Number,
				Amount:        in.Amount.WithCurrency(inv.Currency),
				Remaining:     check.Remaining,
			}
		}

		now := f.Now()
		p := invoice.Payment{
			ID:          id.NewPaymentID(),
			Amount:      in.Amount,
			PaymentDate: in.PaymentDate,
			Method:      in.Method,
			Reference:   strings.TrimSpace(in.Reference),
			Notes:       in.Notes,
			RecordedBy:  in.RecordedBy,
			CreatedAt:   now,
		}
		if p.PaymentDate.IsZero() {
			p.PaymentDate = invoice.Today(now)
		}
		p.PaymentDate = p.PaymentDate.UTC()
		if strings.TrimSpace(string(p.Method)) == "" {
			p.Method = invoice.MethodOther
		}

		res, err := invoice.ApplyPayment(inv, p, f.paidTolerance)
		if err != nil {
			return err
		}
		if err := tx.AddPayment(ctx, &res.Payment); err != nil {
			return err
		}
		inv.TouchAt(now)
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return err
		}

		receipt = &PaymentReceipt{
			Invoice:        inv,
			Payment:        res.Payment,
			PreviousStatus: res.PreviousStatus,
			Status:         res.Status,
			Overpaid:       res.Overpaid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv := receipt.Invoice
	f.logger.Info().
		Str("invoice", inv.Number).
		Str("amount", receipt.Payment.Amount.String()).
		Str("method", string(receipt.Payment.Method)).
		Str("status", string(receipt.Status)).
		Msg("payment recorded")

	f.plugins.EmitPaymentRecorded(ctx, inv, receipt.Payment)
	if receipt.Status != receipt.PreviousStatus {
		f.plugins.EmitInvoiceStatusChanged(ctx, inv, receipt.PreviousStatus, receipt.Status)
	}
	if receipt.BecamePaid() {
		f.plugins.EmitInvoicePaid(ctx, inv)
	}
	if receipt.Overpaid.IsPositive() {
		f.logger.Warn().
			Str("invoice", inv.Number).
			Str("overpaid", receipt.Overpaid.String()).
			Msg("confirmed overpayment recorded")
		f.plugins.EmitOverpayment(ctx, inv, receipt.Overpaid)
	}
	return receipt, nil
}

// CheckPayment reports whether amount would overpay the invoice without
// recording anything.
func (f *Folio) CheckPayment(ctx context.Context, invID id.InvoiceID, amount types.Money) (invoice.PaymentCheck, error) {
	inv, err := f.store.GetInvoice(ctx, invID)
	if err != nil {
		return invoice.PaymentCheck{}, err
	}
	return invoice.CheckPayment(inv, amount)
}

// ListPayments returns an invoice's payments ordered by payment date.
func (f *Folio) ListPayments(ctx context.Context, invID id.InvoiceID) ([]invoice.Payment, error) {
	return f.store.ListPayments(ctx, invID)
}
