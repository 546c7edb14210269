package invoice

import (
	"errors"
	"time"

	"github.com/xraph/folio/types"
)

var (
	// ErrInvalidPaymentAmount is returned for payments of zero or less.
	ErrInvalidPaymentAmount = errors.New("invoice: payment amount must be greater than zero")

	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invoice: invalid status")
)

// DefaultPaidTolerance is the remaining balance, in minor units, at or below
// which an invoice counts as fully paid.
const DefaultPaidTolerance int64 = 1

// PaymentCheck classifies a prospective payment without recording it.
type PaymentCheck struct {
	Remaining types.Money // balance before the payment
	Overpaid  types.Money // portion of the payment beyond Remaining, zero if none
}

// IsOverpayment reports whether the payment exceeds the remaining balance.
func (c PaymentCheck) IsOverpayment() bool { return c.Overpaid.IsPositive() }

// CheckPayment validates amount and reports whether it would overpay inv.
func CheckPayment(inv *Invoice, amount types.Money) (PaymentCheck, error) {
	if !amount.IsPositive() {
		return PaymentCheck{}, ErrInvalidPaymentAmount
	}

	remaining := inv.AmountRemaining()
	check := PaymentCheck{Remaining: remaining, Overpaid: types.Zero(inv.Currency)}

	switch {
	case !remaining.IsPositive():
		check.Overpaid = amount.WithCurrency(inv.Currency)
	case amount.Amount > remaining.Amount:
		check.Overpaid = types.Money{Amount: amount.Amount - remaining.Amount, Currency: inv.Currency}
	}
	return check, nil
}

// PaymentResult describes the effect of ApplyPayment.
type PaymentResult struct {
	Payment        Payment
	PreviousStatus Status
	Status         Status
	Overpaid       types.Money
}

// BecamePaid reports whether this payment moved the invoice into Paid.
func (r PaymentResult) BecamePaid() bool {
	return r.Status == StatusPaid && r.PreviousStatus != StatusPaid
}

// ApplyPayment appends p to inv and re-derives the invoice status.
// Overpayments are applied; the overshoot is reported in the result and it is
// up to the caller to have obtained confirmation.
func ApplyPayment(inv *Invoice, p Payment, tolerance int64) (PaymentResult, error) {
	check, err := CheckPayment(inv, p.Amount)
	if err != nil {
		return PaymentResult{}, err
	}

	p.InvoiceID = inv.ID
	p.Amount = p.Amount.WithCurrency(inv.Currency)

	prev := inv.Status
	inv.Payments = append(inv.Payments, p)
	Reconcile(inv, p.PaymentDate, tolerance)

	return PaymentResult{
		Payment:        p,
		PreviousStatus: prev,
		Status:         inv.Status,
		Overpaid:       check.Overpaid,
	}, nil
}

// Reconcile derives the payment-driven status of inv from its payments.
// A balance within tolerance marks the invoice Paid and stamps PaidAt with
// paidAt if unset; any other positive payment total marks it PartiallyPaid,
// except that a Paid invoice never moves back.
func Reconcile(inv *Invoice, paidAt time.Time, tolerance int64) {
	if len(inv.Payments) == 0 {
		return
	}

	switch {
	case inv.AmountRemaining().Amount <= tolerance:
		inv.Status = StatusPaid
		if inv.PaidAt == nil {
			t := paidAt.UTC()
			inv.PaidAt = &t
		}
	case inv.AmountPaid().IsPositive() && inv.Status != StatusPaid:
		inv.Status = StatusPartiallyPaid
	}
}
