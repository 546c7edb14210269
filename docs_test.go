package folio_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/types"
)

// TestDocumentationExamples verifies that the package documentation examples work.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use SQLite or PostgreSQL in production)
		store := memory.New()

		f := folio.New(store,
			folio.WithLogger(zerolog.Nop()),
			folio.WithPaidTolerance(1),
			folio.WithDueDays(30),
		)

		ctx := context.Background()
		if err := f.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer f.Stop()

		c := &client.Client{CompanyName: "Acme Trading", Email: "accounts@acme.test"}
		if err := f.CreateClient(ctx, c); err != nil {
			t.Fatal(err)
		}

		inv := &invoice.Invoice{
			ClientID: c.ID,
			LineItems: []invoice.LineItem{{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   folio.ZAR(10000),
				TaxRate:     decimal.NewFromInt(15),
			}},
		}
		if err := f.CreateInvoice(ctx, inv); err != nil {
			t.Fatal(err)
		}
		if inv.Number != "INV1001" || inv.Total != folio.ZAR(23000) {
			t.Fatalf("got %s %s, want INV1001 R 230.00", inv.Number, inv.Total.Display("R"))
		}

		receipt, err := f.RecordPayment(ctx, folio.RecordPaymentInput{
			InvoiceID: inv.ID,
			Amount:    folio.ZAR(23000),
			Method:    invoice.MethodBankTransfer,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !receipt.BecamePaid() {
			t.Fatalf("status = %s, want paid", receipt.Status)
		}

		now := f.Now()
		st, err := f.GenerateStatement(ctx, c.ID, now.AddDate(0, -1, 0), now, folio.Zero("zar"))
		if err != nil {
			t.Fatal(err)
		}
		if !st.ClosingBalance.IsZero() {
			t.Fatalf("closing balance = %s, want 0", st.ClosingBalance)
		}
	})

	t.Run("MoneyExamples", func(t *testing.T) {
		price := types.MustParse("230.00", "zar")
		if price != folio.ZAR(23000) {
			t.Fatalf("parse = %v", price)
		}

		total := folio.Sum("zar", folio.ZAR(10000), folio.ZAR(13000))
		if !total.Equal(price) {
			t.Fatalf("sum = %v", total)
		}
		if got := price.FormatMajor(); got != "230.00" {
			t.Fatalf("FormatMajor = %q", got)
		}
	})

	t.Run("DueDateDefaults", func(t *testing.T) {
		f := folio.New(memory.New(), folio.WithClock(func() time.Time {
			return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		}))
		ctx := context.Background()
		c := &client.Client{CompanyName: "Acme Trading"}
		if err := f.CreateClient(ctx, c); err != nil {
			t.Fatal(err)
		}
		inv := &invoice.Invoice{ClientID: c.ID}
		if err := f.CreateInvoice(ctx, inv); err != nil {
			t.Fatal(err)
		}
		want := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
		if !inv.DueDate.Equal(want) {
			t.Fatalf("due = %s, want %s", inv.DueDate, want)
		}
	})
}
