// Package folio provides an embeddable invoicing and receivables engine for
// Go applications.
//
// Folio is designed as a library, not a service. Import it directly and give
// it a store. It provides:
//
//   - Invoice totals computed with exact decimal arithmetic
//   - Gap-free sequential invoice numbering
//   - A payment ledger that derives invoice status from recorded payments
//   - Running-balance client statements
//   - Receivables reports, PDF and XLSX rendering, email delivery
//   - Plugin hooks for metrics, auditing and custom side effects
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/folio"
//	    "github.com/xraph/folio/store/sqlite"
//	)
//
//	s, err := sqlite.Open("folio.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f := folio.New(s, folio.WithLogger(logger))
//	if err := f.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Stop()
//
// # Core Concepts
//
// Invoices are created as drafts and numbered from the settings counter:
//
//	inv := &invoice.Invoice{
//	    ClientID: c.ID,
//	    LineItems: []invoice.LineItem{{
//	        Description: "Consulting",
//	        Quantity:    decimal.NewFromInt(2),
//	        UnitPrice:   folio.ZAR(10000),
//	        TaxRate:     decimal.NewFromInt(15),
//	    }},
//	}
//	err := f.CreateInvoice(ctx, inv) // INV1001, total R 230.00
//
// Payments move an invoice through PartiallyPaid to Paid:
//
//	receipt, err := f.RecordPayment(ctx, folio.RecordPaymentInput{
//	    InvoiceID: inv.ID,
//	    Amount:    folio.ZAR(23000),
//	    Method:    invoice.MethodBankTransfer,
//	})
//
// A payment larger than the remaining balance is refused with an
// *OverpaymentWarning unless ConfirmOverpayment is set.
//
// Statements list a client's invoices as debits and their payments as
// credits with a running balance:
//
//	st, err := f.GenerateStatement(ctx, c.ID, start, end, folio.Zero("zar"))
//
// All monetary values are integer minor units (cents). Currencies are never
// converted; mixing currencies in one operation panics.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	inv_01h455vb4pex5vsknk084sn02q   // Invoice ID
//	pay_01h455vb4pex5vsknk084sn02q   // Payment ID
//	cli_01h2xcejqtf2nbrexx3vqjhp41   // Client ID
//	stmt_01h2xcejqtf2nbrexx3vqjhp41  // Statement ID
package folio
