package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/render"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"inv"},
	Short:   "Create, inspect and settle invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft invoice",
	Long: `Create a draft invoice for a client.

Lines are given as "description;quantity;unit price[;tax rate]". Catalogue
products are added with --product ID[:quantity]. The invoice number is taken
from the settings counter unless --number is set.`,
	Example: `  folio invoice create --client cli_01h... \
    --line "Consulting;10;850.00;15" --product prod_01h...:2 --due 2025-04-30`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <id|number>",
	Short: "Show an invoice with its lines and payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status <id|number> <status>",
	Short: "Set an invoice's status (draft, sent, partially_paid, paid, overdue)",
	Args:  cobra.ExactArgs(2),
	RunE:  runInvoiceStatus,
}

var invoiceDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id|number>",
	Short: "Copy an invoice into a new draft with a fresh number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDuplicate,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <id|number>",
	Short: "Delete an invoice with its lines and payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoicePayCmd = &cobra.Command{
	Use:   "pay <id|number> <amount>",
	Short: "Record a payment against an invoice",
	Example: `  folio invoice pay INV1001 1500.00 --method bank_transfer --reference EFT-2291
  folio invoice pay INV1001 2000.00 --confirm-overpayment`,
	Args: cobra.ExactArgs(2),
	RunE: runInvoicePay,
}

var invoicePDFCmd = &cobra.Command{
	Use:   "pdf <id|number>",
	Short: "Render an invoice as PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicePDF,
}

var invoiceOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List sent invoices past their due date",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceOverdue,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceShowCmd, invoiceStatusCmd,
		invoiceDuplicateCmd, invoiceDeleteCmd, invoicePayCmd, invoicePDFCmd, invoiceOverdueCmd)

	f := invoiceCreateCmd.Flags()
	f.String("client", "", "Client ID (required)")
	f.String("number", "", "Invoice number; defaults to the next counter value")
	f.String("date", "", "Invoice date (YYYY-MM-DD, default: today)")
	f.String("due", "", "Due date (YYYY-MM-DD, default: invoice date plus payment term days)")
	f.String("currency", "", "Currency code (default: settings currency)")
	f.String("notes", "", "Notes printed on the invoice")
	f.String("terms", "", "Payment terms (default: settings payment terms)")
	f.StringArray("line", nil, `Line item "description;quantity;unit price[;tax rate]"`)
	f.StringArray("product", nil, "Catalogue product ID[:quantity]")
	_ = invoiceCreateCmd.MarkFlagRequired("client")

	f = invoiceListCmd.Flags()
	f.String("client", "", "Only invoices of this client")
	f.String("status", "", "Only invoices in this status")
	f.String("from", "", "Invoice date on or after (YYYY-MM-DD)")
	f.String("to", "", "Invoice date on or before (YYYY-MM-DD)")
	f.String("number", "", "Invoice number contains")
	f.Int("limit", 50, "Maximum rows")
	f.Int("offset", 0, "Rows to skip")

	f = invoicePayCmd.Flags()
	f.String("date", "", "Payment date (YYYY-MM-DD, default: today)")
	f.String("method", string(invoice.MethodBankTransfer), "Payment method")
	f.String("reference", "", "Bank or receipt reference")
	f.String("notes", "", "Payment notes")
	f.String("recorded-by", os.Getenv("USER"), "Who recorded the payment")
	f.Bool("confirm-overpayment", false, "Accept a payment larger than the amount due")

	invoicePDFCmd.Flags().StringP("output", "o", "", "Output file (default: <number>.pdf)")
}

// findInvoice resolves an invoice by ID when ref carries the invoice prefix,
// otherwise by number.
func findInvoice(ctx context.Context, engine *folio.Folio, ref string) (*invoice.Invoice, error) {
	if strings.HasPrefix(ref, string(id.PrefixInvoice)+"_") {
		invID, err := id.ParseInvoiceID(ref)
		if err != nil {
			return nil, err
		}
		return engine.GetInvoice(ctx, invID)
	}
	return engine.GetInvoiceByNumber(ctx, ref)
}

// parseLine reads "description;quantity;unit price[;tax rate]".
func parseLine(raw, currency string, defaultRate decimal.Decimal) (invoice.LineItem, error) {
	parts := strings.Split(raw, ";")
	if len(parts) < 3 || len(parts) > 4 {
		return invoice.LineItem{}, fmt.Errorf("line %q: want description;quantity;unit price[;tax rate]", raw)
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return invoice.LineItem{}, fmt.Errorf("line %q: quantity: %w", raw, err)
	}
	price, err := moneyArg(parts[2], currency)
	if err != nil {
		return invoice.LineItem{}, fmt.Errorf("line %q: %w", raw, err)
	}
	rate := defaultRate
	if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
		if rate, err = decimal.NewFromString(strings.TrimSpace(parts[3])); err != nil {
			return invoice.LineItem{}, fmt.Errorf("line %q: tax rate: %w", raw, err)
		}
	}
	return invoice.LineItem{
		Description: strings.TrimSpace(parts[0]),
		Quantity:    qty,
		UnitPrice:   price,
		TaxRate:     rate,
	}, nil
}

// parseProductRef reads "ID[:quantity]"; quantity defaults to 1.
func parseProductRef(ref string) (id.ProductID, decimal.Decimal, error) {
	raw, qtyStr, hasQty := strings.Cut(ref, ":")
	productID, err := id.ParseProductID(strings.TrimSpace(raw))
	if err != nil {
		return id.Nil, decimal.Zero, fmt.Errorf("product %q: %w", ref, err)
	}
	qty := decimal.NewFromInt(1)
	if hasQty {
		if qty, err = decimal.NewFromString(strings.TrimSpace(qtyStr)); err != nil {
			return id.Nil, decimal.Zero, fmt.Errorf("product %q: quantity: %w", ref, err)
		}
	}
	return productID, qty, nil
}

func runInvoiceCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}

	clientID, err := idFlag(cmd, "client", id.PrefixClient)
	if err != nil {
		return err
	}
	invDate, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	due, err := dateFlag(cmd, "due")
	if err != nil {
		return err
	}

	number, _ := cmd.Flags().GetString("number")
	currency, _ := cmd.Flags().GetString("currency")
	notes, _ := cmd.Flags().GetString("notes")
	terms, _ := cmd.Flags().GetString("terms")
	if currency == "" {
		currency = cfg.Currency()
	}

	inv := &invoice.Invoice{
		ClientID:     clientID,
		Number:       number,
		Currency:     currency,
		InvoiceDate:  invDate,
		DueDate:      due,
		Notes:        notes,
		PaymentTerms: terms,
	}

	lines, _ := cmd.Flags().GetStringArray("line")
	for _, raw := range lines {
		li, err := parseLine(raw, currency, cfg.DefaultTaxRate)
		if err != nil {
			return err
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	products, _ := cmd.Flags().GetStringArray("product")
	for _, ref := range products {
		productID, qty, err := parseProductRef(ref)
		if err != nil {
			return err
		}
		li, err := engine.ProductLine(ctx, productID, qty)
		if err != nil {
			return err
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	for i := range inv.LineItems {
		inv.LineItems[i].SortOrder = i
	}

	if err := engine.CreateInvoice(ctx, inv); err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, inv)
	}
	fmt.Fprintf(cli.out, "Created %s for %s, due %s (%s)\n",
		inv.Number, inv.Total.Display(cfg.CurrencySymbol), formatDate(inv.DueDate), inv.ID)
	return nil
}

func runInvoiceList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}

	opts := invoice.ListOpts{}
	if opts.ClientID, err = idFlag(cmd, "client", id.PrefixClient); err != nil {
		return err
	}
	if s, _ := cmd.Flags().GetString("status"); s != "" {
		if opts.Status, err = invoice.ParseStatus(s); err != nil {
			return err
		}
	}
	if opts.From, err = dateFlag(cmd, "from"); err != nil {
		return err
	}
	if opts.To, err = dateFlag(cmd, "to"); err != nil {
		return err
	}
	opts.Number, _ = cmd.Flags().GetString("number")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	opts.Offset, _ = cmd.Flags().GetInt("offset")

	invoices, err := engine.ListInvoices(ctx, opts)
	if err != nil {
		return err
	}
	return printInvoices(cmd, engine, invoices)
}

func runInvoiceOverdue(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	invoices, err := engine.ListOverdueInvoices(ctx)
	if err != nil {
		return err
	}
	return printInvoices(cmd, engine, invoices)
}

func printInvoices(cmd *cobra.Command, engine *folio.Folio, invoices []*invoice.Invoice) error {
	if jsonOutput(cmd) {
		return printJSON(cli.out, invoices)
	}
	cfg, err := engine.GetSettings(cmd.Context())
	if err != nil {
		return err
	}
	now := engine.Now()
	t := newTable(cli.out, "NUMBER", "DATE", "DUE", "STATUS", "TOTAL", "BALANCE", "ID")
	for _, inv := range invoices {
		t.row(inv.Number, formatDate(inv.InvoiceDate), formatDate(inv.DueDate), inv.EffectiveStatus(now),
			inv.Total.Display(cfg.CurrencySymbol), inv.AmountRemaining().Display(cfg.CurrencySymbol), inv.ID)
	}
	return t.flush()
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	inv, err := findInvoice(ctx, engine, args[0])
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, inv)
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	sym := cfg.CurrencySymbol

	fmt.Fprintf(cli.out, "Invoice %s (%s)\n", inv.Number, inv.ID)
	fmt.Fprintf(cli.out, "Client:  %s\n", inv.ClientID)
	fmt.Fprintf(cli.out, "Status:  %s\n", inv.EffectiveStatus(engine.Now()))
	fmt.Fprintf(cli.out, "Date:    %s  Due: %s  Sent: %s  Paid: %s\n\n",
		formatDate(inv.InvoiceDate), formatDate(inv.DueDate), formatDatePtr(inv.SentAt), formatDatePtr(inv.PaidAt))

	t := newTable(cli.out, "DESCRIPTION", "QTY", "UNIT PRICE", "TAX %", "TOTAL")
	for _, li := range inv.LineItems {
		t.row(li.Description, li.Quantity.String(), li.UnitPrice.Display(sym), li.TaxRate.String(), li.LineTotal.Display(sym))
	}
	t.row("", "", "", "Subtotal", inv.Subtotal.Display(sym))
	t.row("", "", "", "Tax", inv.TaxAmount.Display(sym))
	t.row("", "", "", "Total", inv.Total.Display(sym))
	t.row("", "", "", "Paid", inv.AmountPaid().Display(sym))
	t.row("", "", "", "Balance", inv.AmountRemaining().Display(sym))
	if err := t.flush(); err != nil {
		return err
	}

	if len(inv.Payments) > 0 {
		fmt.Fprintln(cli.out)
		t = newTable(cli.out, "PAID ON", "AMOUNT", "METHOD", "REFERENCE")
		for _, p := range inv.Payments {
			t.row(formatDate(p.PaymentDate), p.Amount.Display(sym), p.Method, p.Reference)
		}
		return t.flush()
	}
	return nil
}

func runInvoiceStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	status, err := invoice.ParseStatus(args[1])
	if err != nil {
		return err
	}
	inv, err := findInvoice(ctx, engine, args[0])
	if err != nil {
		return err
	}
	inv, err = engine.UpdateInvoiceStatus(ctx, inv.ID, status)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, inv)
	}
	fmt.Fprintf(cli.out, "%s is now %s\n", inv.Number, inv.Status)
	return nil
}

func runInvoiceDuplicate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	src, err := findInvoice(ctx, engine, args[0])
	if err != nil {
		return err
	}
	dup, err := engine.DuplicateInvoice(ctx, src.ID)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, dup)
	}
	fmt.Fprintf(cli.out, "Duplicated %s as %s (%s)\n", src.Number, dup.Number, dup.ID)
	return nil
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	inv, err := findInvoice(ctx, engine, args[0])
	if err != nil {
		return err
	}
	if err := engine.DeleteInvoice(ctx, inv.ID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deleted %s\n", inv.Number)
	return nil
}

func runInvoicePay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	inv, err := findInvoice(ctx, engine, args[0])
	if err != nil {
		return err
	}
	amount, err := moneyArg(args[1], inv.Currency)
	if err != nil {
		return err
	}
	paidOn, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	method, _ := cmd.Flags().GetString("method")
	reference, _ := cmd.Flags().GetString("reference")
	notes, _ := cmd.Flags().GetString("notes")
	recordedBy, _ := cmd.Flags().GetString("recorded-by")
	confirm, _ := cmd.Flags().GetBool("confirm-overpayment")

	receipt, err := engine.RecordPayment(ctx, folio.RecordPaymentInput{
		InvoiceID:          inv.ID,
		Amount:             amount,
		PaymentDate:        paidOn,
		Method:             invoice.Method(method),
		Reference:          reference,
		Notes:              notes,
		RecordedBy:         recordedBy,
		ConfirmOverpayment: confirm,
	})
	var warn *folio.OverpaymentWarning
	if errors.As(err, &warn) {
		return fmt.Errorf("%w; rerun with --confirm-overpayment to record it", err)
	}
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(cli.out, receipt)
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Recorded %s on %s; %s -> %s, balance %s\n",
		receipt.Payment.Amount.Display(cfg.CurrencySymbol), receipt.Invoice.Number,
		receipt.PreviousStatus, receipt.Status,
		receipt.Invoice.AmountRemaining().Display(cfg.CurrencySymbol))
	return nil
}

func runInvoicePDF(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	inv, err := findInvoice(ctx, engine, args[0])
	if err != nil {
		return err
	}
	c, err := engine.GetClient(ctx, inv.ClientID)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	data, err := render.InvoicePDF(render.InvoiceDoc{Invoice: inv, Client: c, Settings: cfg, Now: engine.Now()})
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = render.FileName(inv)
	}
	return writeFile(out, data)
}

func moneyArg(s, currency string) (folio.Money, error) {
	m, err := folio.ParseMoney(strings.TrimSpace(s), currency)
	if err != nil {
		return folio.Money{}, fmt.Errorf("amount %q: %w", s, err)
	}
	return m, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
