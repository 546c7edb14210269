// Package storetest is the behavioural contract every store.Store backend
// must satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/numbering"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/types"
)

// Factory returns a fresh, migrated store.
type Factory func(t *testing.T) store.Store

// Run executes the full contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"SettingsDefaults", testSettingsDefaults},
		{"InvoiceNumberCounter", testInvoiceNumberCounter},
		{"UpdateSettingsKeepsCounter", testUpdateSettingsKeepsCounter},
		{"InvoiceRoundTrip", testInvoiceRoundTrip},
		{"InvoiceNumberUnique", testInvoiceNumberUnique},
		{"UpdateInvoiceReplacesLines", testUpdateInvoiceReplacesLines},
		{"PaymentsAppend", testPaymentsAppend},
		{"DeleteInvoiceCascades", testDeleteInvoiceCascades},
		{"ListInvoicesFilters", testListInvoicesFilters},
		{"Clients", testClients},
		{"Products", testProducts},
		{"Statements", testStatements},
		{"EmailLog", testEmailLog},
		{"TxRollback", testTxRollback},
		{"TxCommit", testTxCommit},
		{"TxPanicRollsBack", testTxPanicRollsBack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func newClient(t *testing.T, s store.Store, name string) *client.Client {
	t.Helper()
	c := &client.Client{
		Entity:      types.NewEntityAt(day(1)),
		ID:          id.NewClientID(),
		CompanyName: name,
		Email:       "billing@" + name + ".test",
		IsActive:    true,
	}
	require.NoError(t, s.CreateClient(context.Background(), c))
	return c
}

func newInvoice(clientID id.ClientID, number string, date time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		Entity:       types.NewEntityAt(date),
		ID:           id.NewInvoiceID(),
		Number:       number,
		ClientID:     clientID,
		Currency:     "zar",
		InvoiceDate:  date,
		DueDate:      date.AddDate(0, 0, 30),
		Status:       invoice.StatusDraft,
		PaymentTerms: "Payment due within 30 days",
		LineItems: []invoice.LineItem{
			{
				ID:          id.NewLineItemID(),
				Description: "Consulting",
				Quantity:    decimal.RequireFromString("2"),
				UnitPrice:   types.ZAR(10000),
				TaxRate:     decimal.RequireFromString("15"),
				SortOrder:   0,
			},
			{
				ID:          id.NewLineItemID(),
				Description: "Travel",
				Quantity:    decimal.RequireFromString("1.5"),
				UnitPrice:   types.ZAR(2000),
				TaxRate:     decimal.Zero,
				SortOrder:   1,
			},
		},
	}
	for i := range inv.LineItems {
		inv.LineItems[i].InvoiceID = inv.ID
	}
	invoice.ComputeTotals(inv)
	return inv
}

func testSettingsDefaults(t *testing.T, s store.Store) {
	ctx := context.Background()
	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV", got.InvoicePrefix)
	assert.Equal(t, int64(1001), got.InvoiceNextNumber)
	assert.Equal(t, "ZAR", got.CurrencyCode)
	assert.True(t, got.DefaultTaxRate.IsZero())
}

func testInvoiceNumberCounter(t *testing.T, s store.Store) {
	ctx := context.Background()
	for want := int64(1001); want < 1006; want++ {
		prefix, n, err := s.NextInvoiceNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INV", prefix)
		assert.Equal(t, want, n)
	}
	_, n, err := s.PeekInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1006), n)
}

func testUpdateSettingsKeepsCounter(t *testing.T, s store.Store) {
	ctx := context.Background()
	stale, err := s.GetSettings(ctx)
	require.NoError(t, err)

	_, _, err = s.NextInvoiceNumber(ctx)
	require.NoError(t, err)

	stale.CompanyName = "Acme Trading"
	stale.DefaultTaxRate = decimal.RequireFromString("15")
	require.NoError(t, s.UpdateSettings(ctx, stale))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme Trading", got.CompanyName)
	assert.Equal(t, "15", got.DefaultTaxRate.String())
	assert.Equal(t, int64(1002), got.InvoiceNextNumber)

	got.InvoicePrefix = "AC-"
	got.InvoiceNextNumber = 5000
	require.NoError(t, s.UpdateSettings(ctx, got))
	prefix, n, err := s.PeekInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AC-", prefix)
	assert.Equal(t, int64(5000), n)
}

func testInvoiceRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	inv := newInvoice(c.ID, "INV1001", day(2))
	inv.Notes = "first"
	require.NoError(t, s.CreateInvoice(ctx, inv))

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, got.Number)
	assert.Equal(t, c.ID, got.ClientID)
	assert.Equal(t, invoice.StatusDraft, got.Status)
	assert.True(t, got.InvoiceDate.Equal(day(2)))
	assert.True(t, got.DueDate.Equal(day(2).AddDate(0, 0, 30)))
	assert.Equal(t, inv.Subtotal, got.Subtotal)
	assert.Equal(t, inv.TaxAmount, got.TaxAmount)
	assert.Equal(t, inv.Total, got.Total)
	assert.Equal(t, "first", got.Notes)
	assert.Nil(t, got.SentAt)
	assert.Nil(t, got.PaidAt)

	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "Consulting", got.LineItems[0].Description)
	assert.True(t, got.LineItems[1].Quantity.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, got.LineItems[0].TaxRate.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, inv.LineItems[0].LineTotal, got.LineItems[0].LineTotal)

	byNumber, err := s.GetInvoiceByNumber(ctx, "INV1001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)

	_, err = s.GetInvoice(ctx, id.NewInvoiceID())
	assert.ErrorIs(t, err, folio.ErrInvoiceNotFound)
	_, err = s.GetInvoiceByNumber(ctx, "INV9999")
	assert.ErrorIs(t, err, folio.ErrInvoiceNotFound)
}

func testInvoiceNumberUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	require.NoError(t, s.CreateInvoice(ctx, newInvoice(c.ID, "INV1001", day(2))))

	err := s.CreateInvoice(ctx, newInvoice(c.ID, "INV1001", day(3)))
	assert.ErrorIs(t, err, folio.ErrDuplicateInvoiceNumber)
}

func testUpdateInvoiceReplacesLines(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	inv := newInvoice(c.ID, "INV1001", day(2))
	require.NoError(t, s.CreateInvoice(ctx, inv))
	require.NoError(t, s.AddPayment(ctx, &invoice.Payment{
		ID: id.NewPaymentID(), InvoiceID: inv.ID, Amount: types.ZAR(1000),
		PaymentDate: day(3), Method: invoice.MethodCash, CreatedAt: day(3),
	}))

	inv.LineItems = inv.LineItems[1:]
	inv.LineItems[0].SortOrder = 0
	inv.Notes = "revised"
	sent := day(4)
	inv.SentAt = &sent
	inv.Status = invoice.StatusSent
	inv.TouchAt(day(4))
	invoice.ComputeTotals(inv)
	require.NoError(t, s.UpdateInvoice(ctx, inv))

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, "Travel", got.LineItems[0].Description)
	assert.Equal(t, "revised", got.Notes)
	assert.Equal(t, invoice.StatusSent, got.Status)
	require.NotNil(t, got.SentAt)
	assert.True(t, got.SentAt.Equal(sent))
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, types.ZAR(3000), got.Total)
	assert.Len(t, got.Payments, 1, "payments survive an update")

	missing := newInvoice(c.ID, "INV2000", day(2))
	assert.ErrorIs(t, s.UpdateInvoice(ctx, missing), folio.ErrInvoiceNotFound)
}

func testPaymentsAppend(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	inv := newInvoice(c.ID, "INV1001", day(2))
	require.NoError(t, s.CreateInvoice(ctx, inv))

	for i, d := range []int{9, 5} {
		require.NoError(t, s.AddPayment(ctx, &invoice.Payment{
			ID:          id.NewPaymentID(),
			InvoiceID:   inv.ID,
			Amount:      types.ZAR(int64(1000 * (i + 1))),
			PaymentDate: day(d),
			Method:      invoice.MethodBankTransfer,
			Reference:   "EFT",
			RecordedBy:  "alice",
			CreatedAt:   day(d),
		}))
	}

	ps, err := s.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.True(t, ps[0].PaymentDate.Equal(day(5)), "ordered by payment date")
	assert.Equal(t, types.ZAR(2000), ps[0].Amount)
	assert.Equal(t, invoice.MethodBankTransfer, ps[0].Method)
	assert.Equal(t, "alice", ps[0].RecordedBy)

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ZAR(3000), got.AmountPaid())

	err = s.AddPayment(ctx, &invoice.Payment{
		ID: id.NewPaymentID(), InvoiceID: id.NewInvoiceID(), Amount: types.ZAR(1),
		PaymentDate: day(5), Method: invoice.MethodCash, CreatedAt: day(5),
	})
	assert.ErrorIs(t, err, folio.ErrInvoiceNotFound)
}

func testDeleteInvoiceCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	keep := newInvoice(c.ID, "INV1001", day(2))
	drop := newInvoice(c.ID, "INV1002", day(3))
	require.NoError(t, s.CreateInvoice(ctx, keep))
	require.NoError(t, s.CreateInvoice(ctx, drop))
	require.NoError(t, s.AddPayment(ctx, &invoice.Payment{
		ID: id.NewPaymentID(), InvoiceID: drop.ID, Amount: types.ZAR(500),
		PaymentDate: day(4), Method: invoice.MethodCash, CreatedAt: day(4),
	}))

	require.NoError(t, s.DeleteInvoice(ctx, drop.ID))
	require.NoError(t, s.DeleteInvoice(ctx, drop.ID), "delete is idempotent")

	_, err := s.GetInvoice(ctx, drop.ID)
	assert.ErrorIs(t, err, folio.ErrInvoiceNotFound)
	_, err = s.ListPayments(ctx, drop.ID)
	assert.ErrorIs(t, err, folio.ErrInvoiceNotFound)

	got, err := s.GetInvoice(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, got.LineItems, 2)

	n, err := s.CountInvoices(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The number of a deleted invoice can be reused.
	require.NoError(t, s.CreateInvoice(ctx, newInvoice(c.ID, "INV1002", day(5))))
}

func testListInvoicesFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := newClient(t, s, "alpha")
	b := newClient(t, s, "beta")

	i1 := newInvoice(a.ID, "INV1001", day(1))
	i2 := newInvoice(a.ID, "INV1002", day(10))
	i2.Status = invoice.StatusSent
	i3 := newInvoice(b.ID, "INV1003", day(20))
	i3.Status = invoice.StatusSent
	i3.DueDate = day(25)
	for _, inv := range []*invoice.Invoice{i1, i2, i3} {
		require.NoError(t, s.CreateInvoice(ctx, inv))
	}

	numbers := func(list []*invoice.Invoice) []string {
		out := make([]string, len(list))
		for i, inv := range list {
			out[i] = inv.Number
		}
		return out
	}

	all, err := s.ListInvoices(ctx, invoice.ListOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1003", "INV1002", "INV1001"}, numbers(all))

	asc, err := s.ListInvoices(ctx, invoice.ListOpts{Ascending: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1001", "INV1002"}, numbers(asc))

	byClient, err := s.ListInvoices(ctx, invoice.ListOpts{ClientID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1002", "INV1001"}, numbers(byClient))

	sent, err := s.ListInvoices(ctx, invoice.ListOpts{Status: invoice.StatusSent})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1003", "INV1002"}, numbers(sent))

	ranged, err := s.ListInvoices(ctx, invoice.ListOpts{From: day(10), To: day(20)})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1003", "INV1002"}, numbers(ranged))

	due, err := s.ListInvoices(ctx, invoice.ListOpts{DueBefore: day(26)})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1003"}, numbers(due))

	search, err := s.ListInvoices(ctx, invoice.ListOpts{Number: "1002"})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1002"}, numbers(search))

	paged, err := s.ListInvoices(ctx, invoice.ListOpts{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1002"}, numbers(paged))

	for _, inv := range all {
		assert.Len(t, inv.LineItems, 2, "listed invoices are hydrated")
	}

	total, err := s.CountInvoices(ctx, id.Nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func testClients(t *testing.T, s store.Store) {
	ctx := context.Background()
	zulu := newClient(t, s, "zulu")
	alpha := newClient(t, s, "alpha")
	alpha.ContactPerson = "Jane Doe"
	alpha.VatNumber = "4123456789"
	alpha.TouchAt(day(2))
	require.NoError(t, s.UpdateClient(ctx, alpha))

	got, err := s.GetClient(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.ContactPerson)
	assert.Equal(t, "4123456789", got.VatNumber)
	assert.True(t, got.IsActive)

	zulu.IsActive = false
	require.NoError(t, s.UpdateClient(ctx, zulu))

	all, err := s.ListClients(ctx, client.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].CompanyName)

	active, err := s.ListClients(ctx, client.ListOpts{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, alpha.ID, active[0].ID)

	found, err := s.ListClients(ctx, client.ListOpts{Search: "jane"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = s.GetClient(ctx, id.NewClientID())
	assert.ErrorIs(t, err, folio.ErrClientNotFound)
	assert.ErrorIs(t, s.UpdateClient(ctx, &client.Client{ID: id.NewClientID()}), folio.ErrClientNotFound)
}

func testProducts(t *testing.T, s store.Store) {
	ctx := context.Background()
	rate := decimal.RequireFromString("15")
	widget := &product.Product{
		Entity:    types.NewEntityAt(day(1)),
		ID:        id.NewProductID(),
		Name:      "Widget",
		UnitPrice: types.ZAR(2500),
		TaxRate:   &rate,
		SKU:       "W-1",
		IsActive:  true,
	}
	gadget := &product.Product{
		Entity:    types.NewEntityAt(day(1)),
		ID:        id.NewProductID(),
		Name:      "Gadget",
		UnitPrice: types.ZAR(999),
		IsActive:  true,
	}
	require.NoError(t, s.CreateProduct(ctx, widget))
	require.NoError(t, s.CreateProduct(ctx, gadget))

	dup := &product.Product{ID: id.NewProductID(), Name: "Clone", UnitPrice: types.ZAR(1), SKU: "W-1", IsActive: true,
		Entity: types.NewEntityAt(day(1))}
	assert.ErrorIs(t, s.CreateProduct(ctx, dup), folio.ErrDuplicateSKU)

	got, err := s.GetProductBySKU(ctx, "W-1")
	require.NoError(t, err)
	assert.Equal(t, widget.ID, got.ID)
	require.NotNil(t, got.TaxRate)
	assert.True(t, got.TaxRate.Equal(rate))

	g, err := s.GetProduct(ctx, gadget.ID)
	require.NoError(t, err)
	assert.Nil(t, g.TaxRate)
	assert.Equal(t, types.ZAR(999), g.UnitPrice)

	gadget.SKU = "W-1"
	assert.ErrorIs(t, s.UpdateProduct(ctx, gadget), folio.ErrDuplicateSKU)
	gadget.SKU = "G-1"
	gadget.IsActive = false
	require.NoError(t, s.UpdateProduct(ctx, gadget))

	list, err := s.ListProducts(ctx, product.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Gadget", list[0].Name)

	active, err := s.ListProducts(ctx, product.ListOpts{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = s.GetProductBySKU(ctx, "nope")
	assert.ErrorIs(t, err, folio.ErrProductNotFound)
}

func testStatements(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	inv := newInvoice(c.ID, "INV1001", day(2))
	inv.Payments = []invoice.Payment{{
		ID: id.NewPaymentID(), Amount: types.ZAR(1000), PaymentDate: day(5), Method: invoice.MethodCash,
	}}

	st, err := statement.Generate(statement.Input{
		ClientID: c.ID,
		Currency: "zar",
		Start:    day(1),
		End:      day(31),
		Opening:  types.ZAR(10000),
		Invoices: []*invoice.Invoice{inv},
		Now:      day(31),
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateStatement(ctx, st))

	got, err := s.GetStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.OpeningBalance, got.OpeningBalance)
	assert.Equal(t, st.ClosingBalance, got.ClosingBalance)
	assert.True(t, got.StartDate.Equal(day(1)))
	require.Len(t, got.Lines, 2)
	for i := range st.Lines {
		assert.Equal(t, st.Lines[i].Description, got.Lines[i].Description)
		assert.Equal(t, st.Lines[i].Kind, got.Lines[i].Kind)
		assert.Equal(t, st.Lines[i].Debit, got.Lines[i].Debit)
		assert.Equal(t, st.Lines[i].Credit, got.Lines[i].Credit)
		assert.Equal(t, st.Lines[i].Balance, got.Lines[i].Balance)
		assert.Equal(t, inv.ID, got.Lines[i].InvoiceID)
	}

	list, err := s.ListStatements(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, st.ID, list[0].ID)

	require.NoError(t, s.DeleteStatement(ctx, st.ID))
	_, err = s.GetStatement(ctx, st.ID)
	assert.ErrorIs(t, err, folio.ErrStatementNotFound)
	assert.ErrorIs(t, s.DeleteStatement(ctx, st.ID), folio.ErrStatementNotFound)
}

func testEmailLog(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	inv := newInvoice(c.ID, "INV1001", day(2))
	require.NoError(t, s.CreateInvoice(ctx, inv))

	require.NoError(t, s.CreateEmailLog(ctx, &emaillog.Entry{
		ID: id.NewEmailLogID(), InvoiceID: inv.ID, Recipient: c.Email,
		Subject: "Invoice #INV1001", SentAt: day(3), Success: false, Error: "dial tcp: refused",
	}))
	require.NoError(t, s.CreateEmailLog(ctx, &emaillog.Entry{
		ID: id.NewEmailLogID(), InvoiceID: inv.ID, Recipient: c.Email,
		Subject: "Invoice #INV1001", SentAt: day(4), Success: true,
	}))

	all, err := s.ListEmailLogs(ctx, emaillog.ListOpts{InvoiceID: inv.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Success, "newest first")

	failed, err := s.ListEmailLogs(ctx, emaillog.ListOpts{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "dial tcp: refused", failed[0].Error)
}

var errBoom = errors.New("boom")

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")

	err := s.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		prefix, n, err := tx.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		inv := newInvoice(c.ID, numbering.Format(prefix, n), day(2))
		if err := tx.CreateInvoice(ctx, inv); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, n, err := s.PeekInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), n, "counter rolled back")

	count, err := s.CountInvoices(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testTxPanicRollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")
	inv := newInvoice(c.ID, "INV1001", day(2))

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.Tx(ctx, func(ctx context.Context, tx store.Store) error {
			if _, _, err := tx.NextInvoiceNumber(ctx); err != nil {
				return err
			}
			if err := tx.CreateInvoice(ctx, inv); err != nil {
				return err
			}
			panic("boom")
		})
	})

	// A leaked transaction would hold the only connection and block here.
	readCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := s.GetInvoice(readCtx, inv.ID)
	require.ErrorIs(t, err, folio.ErrInvoiceNotFound)

	_, n, err := s.PeekInvoiceNumber(readCtx)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), n, "counter rolled back")

	require.NoError(t, s.Tx(readCtx, func(ctx context.Context, tx store.Store) error {
		return tx.CreateInvoice(ctx, inv)
	}), "store usable after the panic")
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := newClient(t, s, "acme")

	var invID id.InvoiceID
	err := s.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		_, _, err := tx.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		inv := newInvoice(c.ID, "INV1001", day(2))
		invID = inv.ID
		return tx.Tx(ctx, func(ctx context.Context, inner store.Store) error {
			return inner.CreateInvoice(ctx, inv)
		})
	})
	require.NoError(t, err)

	_, n, err := s.PeekInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), n)

	_, err = s.GetInvoice(ctx, invID)
	require.NoError(t, err)
}
