package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

var (
	day1 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day5 = time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
)

func sentInvoice(totalCents int64) *invoice.Invoice {
	return &invoice.Invoice{
		ID:       id.NewInvoiceID(),
		Number:   "INV1001",
		Currency: "zar",
		Status:   invoice.StatusSent,
		Total:    types.ZAR(totalCents),
	}
}

func payment(cents int64, at time.Time) invoice.Payment {
	return invoice.Payment{
		ID:          id.NewPaymentID(),
		Amount:      types.ZAR(cents),
		PaymentDate: at,
		Method:      invoice.MethodBankTransfer,
	}
}

func TestApplyPaymentFull(t *testing.T) {
	inv := sentInvoice(50000)

	res, err := invoice.ApplyPayment(inv, payment(50000, day5), invoice.DefaultPaidTolerance)
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, inv.Status)
	assert.Equal(t, types.ZAR(0), inv.AmountRemaining())
	require.NotNil(t, inv.PaidAt)
	assert.True(t, inv.PaidAt.Equal(day5))
	assert.True(t, res.BecamePaid())
	assert.False(t, res.Overpaid.IsPositive())
	assert.Equal(t, inv.ID, res.Payment.InvoiceID)
}

func TestApplyPaymentPartial(t *testing.T) {
	inv := sentInvoice(50000)

	res, err := invoice.ApplyPayment(inv, payment(20000, day5), invoice.DefaultPaidTolerance)
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
	assert.Equal(t, types.ZAR(30000), inv.AmountRemaining())
	assert.Equal(t, types.ZAR(20000), inv.AmountPaid())
	assert.Nil(t, inv.PaidAt)
	assert.False(t, res.BecamePaid())
}

func TestApplyPaymentWithinTolerance(t *testing.T) {
	inv := sentInvoice(50000)

	_, err := invoice.ApplyPayment(inv, payment(49999, day5), invoice.DefaultPaidTolerance)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	for _, cents := range []int64{0, -100} {
		inv := sentInvoice(50000)
		_, err := invoice.ApplyPayment(inv, payment(cents, day5), invoice.DefaultPaidTolerance)
		require.ErrorIs(t, err, invoice.ErrInvalidPaymentAmount)
		assert.Empty(t, inv.Payments)
		assert.Equal(t, invoice.StatusSent, inv.Status)
	}
}

func TestOverpaymentKeepsPaidAndReportsExcess(t *testing.T) {
	inv := sentInvoice(50000)

	_, err := invoice.ApplyPayment(inv, payment(50000, day1), invoice.DefaultPaidTolerance)
	require.NoError(t, err)
	firstPaidAt := *inv.PaidAt

	res, err := invoice.ApplyPayment(inv, payment(1000, day5), invoice.DefaultPaidTolerance)
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, inv.Status, "paid never reverts")
	assert.Equal(t, types.ZAR(1000), res.Overpaid)
	assert.Equal(t, types.ZAR(-1000), inv.AmountRemaining())
	assert.True(t, inv.PaidAt.Equal(firstPaidAt), "paid date is kept")
	assert.False(t, res.BecamePaid())
}

func TestCheckPayment(t *testing.T) {
	inv := sentInvoice(50000)

	check, err := invoice.CheckPayment(inv, types.ZAR(60000))
	require.NoError(t, err)
	assert.True(t, check.IsOverpayment())
	assert.Equal(t, types.ZAR(10000), check.Overpaid)
	assert.Equal(t, types.ZAR(50000), check.Remaining)

	check, err = invoice.CheckPayment(inv, types.ZAR(50000))
	require.NoError(t, err)
	assert.False(t, check.IsOverpayment())

	assert.Empty(t, inv.Payments, "check does not mutate")
}

func TestAmountsAreDerivedFromPayments(t *testing.T) {
	inv := sentInvoice(50000)
	inv.Payments = []invoice.Payment{payment(10000, day1), payment(15000, day5)}
	assert.Equal(t, types.ZAR(25000), inv.AmountPaid())

	inv.Payments = inv.Payments[:1]
	assert.Equal(t, types.ZAR(40000), inv.AmountRemaining())
}

func TestDraftInvoiceBecomesPartiallyPaid(t *testing.T) {
	inv := sentInvoice(50000)
	inv.Status = invoice.StatusDraft

	_, err := invoice.ApplyPayment(inv, payment(100, day1), invoice.DefaultPaidTolerance)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
}
