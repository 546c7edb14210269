package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/report"
	"github.com/xraph/folio/render"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

var (
	march1 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	march5 = time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
)

func fixture() (*client.Client, *invoice.Invoice, *settings.Settings) {
	c := &client.Client{
		ID:             id.NewClientID(),
		CompanyName:    "Café Müller",
		ContactPerson:  "Anna",
		BillingAddress: "1 Long Street\nCape Town",
		IsActive:       true,
	}
	inv := &invoice.Invoice{
		ID:           id.NewInvoiceID(),
		Number:       "INV1001",
		ClientID:     c.ID,
		Currency:     "zar",
		InvoiceDate:  march1,
		DueDate:      march1.AddDate(0, 0, 30),
		Status:       invoice.StatusSent,
		Notes:        "Thanks for the quick turnaround.",
		PaymentTerms: "Payment due within 30 days",
		LineItems: []invoice.LineItem{{
			ID:          id.NewLineItemID(),
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   types.ZAR(10000),
			TaxRate:     decimal.NewFromInt(15),
		}},
		Payments: []invoice.Payment{{
			ID:          id.NewPaymentID(),
			Amount:      types.ZAR(5000),
			PaymentDate: march5,
			Method:      invoice.MethodCash,
		}},
	}
	invoice.ComputeTotals(inv)
	return c, inv, settings.Defaults()
}

func TestInvoicePDF(t *testing.T) {
	c, inv, cfg := fixture()

	out, err := render.InvoicePDF(render.InvoiceDoc{Invoice: inv, Client: c, Settings: cfg, Now: march5})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "Invoice_INV1001.pdf", render.FileName(inv))
}

func TestInvoicePDFIncomplete(t *testing.T) {
	_, inv, cfg := fixture()
	_, err := render.InvoicePDF(render.InvoiceDoc{Invoice: inv, Settings: cfg})
	assert.ErrorIs(t, err, render.ErrIncomplete)
}

func statementDoc(t *testing.T) render.StatementDoc {
	t.Helper()
	c, inv, cfg := fixture()
	st, err := statement.Generate(statement.Input{
		ClientID: c.ID,
		Currency: "zar",
		Start:    march1,
		End:      march1.AddDate(0, 0, 30),
		Opening:  types.ZAR(10000),
		Invoices: []*invoice.Invoice{inv},
		Now:      march5,
	})
	require.NoError(t, err)
	return render.StatementDoc{Statement: st, Client: c, Settings: cfg}
}

func TestStatementPDF(t *testing.T) {
	doc := statementDoc(t)

	out, err := render.StatementPDF(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "Mar 01, 2025 - Mar 31, 2025", doc.Period())
	assert.Equal(t, "Statement_Caf__M_ller_20250331.pdf", render.StatementFileName(doc.Client, doc.Statement, "pdf"))
}

func TestStatementXLSX(t *testing.T) {
	doc := statementDoc(t)

	out, err := render.StatementXLSX(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(render.SheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Café Müller", name)

	rows, err := f.GetRows(render.SheetLines)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Description", "Debit", "Credit", "Balance"}, rows[0])
	assert.Equal(t, "Invoice INV1001", rows[1][1])
	assert.Equal(t, "Payment - Invoice INV1001 (Cash)", rows[2][1])

	balance, err := f.GetCellValue(render.SheetLines, "E3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "280", balance) // 100 + 230 - 50
}

func TestReportXLSX(t *testing.T) {
	_, inv, cfg := fixture()
	now := march5
	invoices := []*invoice.Invoice{inv}
	rep := &folio.Report{
		GeneratedAt: now,
		Summary:     report.Summarize(invoices, "zar", now),
		Aging:       report.Aging(invoices, "zar", now),
		TopClients:  report.TopClients(invoices, "zar", 5),
		Monthly:     report.Monthly(invoices, "zar", now, 3),
	}

	out, err := render.ReportXLSX(rep, cfg)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{render.SheetSummary, render.SheetAging, render.SheetTopClients, render.SheetMonthly}, f.GetSheetList())

	aging, err := f.GetRows(render.SheetAging)
	require.NoError(t, err)
	assert.Len(t, aging, 6)
	assert.Equal(t, "Current (Not Due)", aging[1][0])

	monthly, err := f.GetRows(render.SheetMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 4)
	assert.Equal(t, "2025-03", monthly[3][0])

	_, err = render.ReportXLSX(nil, cfg)
	assert.ErrorIs(t, err, render.ErrIncomplete)
}
