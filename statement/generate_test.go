package statement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

func date(day int) time.Time {
	return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
}

func inv(number string, day int, totalCents int64, payments ...invoice.Payment) *invoice.Invoice {
	return &invoice.Invoice{
		ID:          id.NewInvoiceID(),
		Number:      number,
		Currency:    "zar",
		InvoiceDate: date(day),
		Status:      invoice.StatusSent,
		Total:       types.ZAR(totalCents),
		Payments:    payments,
	}
}

func pay(day int, cents int64, method invoice.Method) invoice.Payment {
	return invoice.Payment{
		ID:          id.NewPaymentID(),
		Amount:      types.ZAR(cents),
		PaymentDate: date(day),
		Method:      method,
	}
}

func balances(st *statement.Statement) []int64 {
	out := make([]int64, len(st.Lines))
	for i, l := range st.Lines {
		out[i] = l.Balance.Amount
	}
	return out
}

func TestGenerateRunningBalance(t *testing.T) {
	st, err := statement.Generate(statement.Input{
		ClientID: id.NewClientID(),
		Currency: "zar",
		Start:    date(1),
		End:      date(31),
		Opening:  types.ZAR(10000),
		Invoices: []*invoice.Invoice{
			inv("INV1001", 1, 50000, pay(5, 20000, invoice.MethodCash)),
		},
	})
	require.NoError(t, err)

	require.Len(t, st.Lines, 2)
	assert.Equal(t, []int64{60000, 40000}, balances(st))
	assert.Equal(t, types.ZAR(40000), st.ClosingBalance)

	assert.Equal(t, "Invoice INV1001", st.Lines[0].Description)
	assert.Equal(t, statement.KindInvoice, st.Lines[0].Kind)
	assert.Equal(t, types.ZAR(50000), st.Lines[0].Debit)
	assert.True(t, st.Lines[0].Credit.IsZero())

	assert.Equal(t, "Payment - Invoice INV1001 (Cash)", st.Lines[1].Description)
	assert.Equal(t, statement.KindPayment, st.Lines[1].Kind)
	assert.Equal(t, types.ZAR(20000), st.Lines[1].Credit)
	assert.True(t, st.Lines[1].Debit.IsZero())
}

func TestGenerateExcludesOutOfRangePayments(t *testing.T) {
	st, err := statement.Generate(statement.Input{
		Currency: "zar",
		Start:    date(1),
		End:      date(10),
		Opening:  types.ZAR(0),
		Invoices: []*invoice.Invoice{
			inv("INV1001", 2, 30000, pay(20, 30000, invoice.MethodBankTransfer)),
			inv("INV1000", 0, 5000), // Feb 28, before the range
		},
	})
	require.NoError(t, err)

	require.Len(t, st.Lines, 1)
	assert.Equal(t, "Invoice INV1001", st.Lines[0].Description)
	assert.Equal(t, types.ZAR(30000), st.ClosingBalance, "debit stays unmatched")
}

func TestGenerateOrdersByDateThenInvoicesFirst(t *testing.T) {
	st, err := statement.Generate(statement.Input{
		Currency: "zar",
		Start:    date(1),
		End:      date(31),
		Opening:  types.ZAR(0),
		Invoices: []*invoice.Invoice{
			inv("INV1002", 5, 1000),
			inv("INV1001", 1, 2000, pay(5, 500, invoice.MethodCash), pay(3, 700, invoice.MethodCheck)),
		},
	})
	require.NoError(t, err)

	var got []string
	for _, l := range st.Lines {
		got = append(got, l.Description)
	}
	assert.Equal(t, []string{
		"Invoice INV1001",
		"Payment - Invoice INV1001 (Check)",
		"Invoice INV1002",
		"Payment - Invoice INV1001 (Cash)",
	}, got)
	assert.Equal(t, []int64{2000, 1300, 2300, 1800}, balances(st))

	for i, l := range st.Lines {
		assert.Equal(t, i, l.SortOrder)
		assert.Equal(t, st.ID, l.StatementID)
	}
}

func TestGenerateSameDayIgnoresTimeOfDay(t *testing.T) {
	afternoon := inv("INV1001", 2, 10000, pay(2, 4000, invoice.MethodBankTransfer))
	afternoon.InvoiceDate = time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)

	st, err := statement.Generate(statement.Input{
		Currency: "zar",
		Start:    date(1),
		End:      date(31),
		Opening:  types.ZAR(0),
		Invoices: []*invoice.Invoice{afternoon},
	})
	require.NoError(t, err)

	require.Len(t, st.Lines, 2)
	assert.Equal(t, statement.KindInvoice, st.Lines[0].Kind)
	assert.Equal(t, statement.KindPayment, st.Lines[1].Kind)
	assert.Equal(t, []int64{10000, 6000}, balances(st), "balance never dips below zero")
}

func TestGenerateSkipsOtherCurrencies(t *testing.T) {
	foreign := inv("INV1002", 3, 7000, pay(4, 7000, invoice.MethodCash))
	foreign.Currency = "usd"
	foreign.Total = types.USD(7000)
	foreign.Payments[0].Amount = types.USD(7000)

	local := inv("INV1001", 2, 5000, pay(6, 1000, invoice.MethodCash))
	local.Payments = append(local.Payments, invoice.Payment{
		ID:          id.NewPaymentID(),
		Amount:      types.USD(500),
		PaymentDate: date(7),
		Method:      invoice.MethodCash,
	})

	st, err := statement.Generate(statement.Input{
		Currency: "ZAR",
		Start:    date(1),
		End:      date(31),
		Opening:  types.ZAR(0),
		Invoices: []*invoice.Invoice{foreign, local},
	})
	require.NoError(t, err)

	require.Len(t, st.Lines, 2)
	assert.Equal(t, "Invoice INV1001", st.Lines[0].Description)
	assert.Equal(t, types.ZAR(1000), st.Lines[1].Credit)
	assert.Equal(t, "zar", st.Currency)
	assert.Equal(t, types.ZAR(4000), st.ClosingBalance)
}

func TestGenerateEmptyKeepsOpeningBalance(t *testing.T) {
	st, err := statement.Generate(statement.Input{
		Currency: "zar",
		Start:    date(1),
		End:      date(31),
		Opening:  types.ZAR(12345),
	})
	require.NoError(t, err)

	assert.Empty(t, st.Lines)
	assert.Equal(t, types.ZAR(12345), st.ClosingBalance)
}

func TestGenerateRejectsInvertedRange(t *testing.T) {
	_, err := statement.Generate(statement.Input{Start: date(10), End: date(1)})
	assert.ErrorIs(t, err, statement.ErrInvalidDateRange)
}

func TestGenerateRangeIsInclusive(t *testing.T) {
	st, err := statement.Generate(statement.Input{
		Currency: "zar",
		Start:    date(1),
		End:      date(5),
		Invoices: []*invoice.Invoice{
			inv("INV1001", 1, 1000, pay(5, 1000, invoice.MethodCash)),
		},
	})
	require.NoError(t, err)
	assert.Len(t, st.Lines, 2)
	assert.True(t, st.ClosingBalance.IsZero())
}

func TestRebalanceAndTotals(t *testing.T) {
	st, err := statement.Generate(statement.Input{
		Currency: "zar",
		Start:    date(1),
		End:      date(31),
		Opening:  types.ZAR(100),
		Invoices: []*invoice.Invoice{
			inv("INV1001", 1, 1000, pay(2, 400, invoice.MethodCash)),
		},
	})
	require.NoError(t, err)

	cp := st.Clone()
	for i := range cp.Lines {
		cp.Lines[i].Balance = types.ZAR(0)
	}
	cp.Lines[0], cp.Lines[1] = cp.Lines[1], cp.Lines[0]
	statement.Rebalance(cp)

	assert.Equal(t, balances(st), balances(cp))
	assert.Equal(t, st.ClosingBalance, cp.ClosingBalance)
	assert.Equal(t, types.ZAR(1000), st.TotalDebits())
	assert.Equal(t, types.ZAR(400), st.TotalCredits())
	assert.Equal(t, types.ZAR(1100), st.Lines[0].Balance, "clone did not alias lines")
}
