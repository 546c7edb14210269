package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/render"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Receivables reports",
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Revenue, paid and outstanding totals",
	Args:  cobra.NoArgs,
	RunE:  runReportSummary,
}

var reportAgingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Outstanding balances by days past due",
	Args:  cobra.NoArgs,
	RunE:  runReportAging,
}

var reportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Export every report view as an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runReportXLSX,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Headline numbers for the whole book",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(reportCmd, dashboardCmd)
	reportCmd.AddCommand(reportSummaryCmd, reportAgingCmd, reportXLSXCmd)

	f := reportCmd.PersistentFlags()
	f.String("from", "", "Invoice date on or after (YYYY-MM-DD)")
	f.String("to", "", "Invoice date on or before (YYYY-MM-DD)")
	f.String("client", "", "Only this client")
	f.Int("top", 5, "Top clients to include")
	f.Int("months", 12, "Months of monthly revenue")

	reportXLSXCmd.Flags().StringP("output", "o", "Report.xlsx", "Output file")
}

func buildReport(cmd *cobra.Command) (*folio.Folio, *folio.Report, error) {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := folio.ReportOpts{}
	if opts.From, err = dateFlag(cmd, "from"); err != nil {
		return nil, nil, err
	}
	if opts.To, err = dateFlag(cmd, "to"); err != nil {
		return nil, nil, err
	}
	if opts.ClientID, err = idFlag(cmd, "client", id.PrefixClient); err != nil {
		return nil, nil, err
	}
	opts.TopN, _ = cmd.Flags().GetInt("top")
	opts.Months, _ = cmd.Flags().GetInt("months")

	rep, err := engine.Report(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return engine, rep, nil
}

func runReportSummary(cmd *cobra.Command, _ []string) error {
	engine, rep, err := buildReport(cmd)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, rep.Summary)
	}
	cfg, err := engine.GetSettings(cmd.Context())
	if err != nil {
		return err
	}
	sym, s := cfg.CurrencySymbol, rep.Summary

	t := newTable(cli.out, "METRIC", "VALUE")
	t.row("Invoices", s.InvoiceCount)
	t.row("Total revenue", s.TotalRevenue.Display(sym))
	t.row("Total paid", s.TotalPaid.Display(sym))
	t.row("Outstanding", s.TotalOutstanding.Display(sym))
	t.row("Paid revenue", s.PaidRevenue.Display(sym))
	t.row("Paid this month", s.ThisMonthPaid.Display(sym))
	t.row("Average invoice", s.AverageInvoice.Display(sym))
	t.row("Paid", s.PaidCount)
	t.row("Overdue", s.OverdueCount)
	t.row("Pending", s.PendingCount)
	if s.OtherCurrencyCount > 0 {
		t.row("Other currencies (excluded)", s.OtherCurrencyCount)
	}
	if err := t.flush(); err != nil {
		return err
	}

	if len(rep.TopClients) > 0 {
		fmt.Fprintln(cli.out)
		t = newTable(cli.out, "CLIENT", "INVOICES", "REVENUE", "PAID")
		for _, c := range rep.TopClients {
			name := c.ClientName
			if name == "" {
				name = c.ClientID.String()
			}
			t.row(name, c.InvoiceCount, c.Revenue.Display(sym), c.Paid.Display(sym))
		}
		return t.flush()
	}
	return nil
}

func runReportAging(cmd *cobra.Command, _ []string) error {
	engine, rep, err := buildReport(cmd)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, rep.Aging)
	}
	cfg, err := engine.GetSettings(cmd.Context())
	if err != nil {
		return err
	}
	t := newTable(cli.out, "BUCKET", "INVOICES", "AMOUNT")
	for _, b := range rep.Aging {
		t.row(b.Label, b.Count, b.Amount.Display(cfg.CurrencySymbol))
	}
	return t.flush()
}

func runReportXLSX(cmd *cobra.Command, _ []string) error {
	engine, rep, err := buildReport(cmd)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(cmd.Context())
	if err != nil {
		return err
	}
	data, err := render.ReportXLSX(rep, cfg)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("output")
	return writeFile(out, data)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	d, err := engine.Dashboard(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, d)
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	t := newTable(cli.out, "METRIC", "VALUE")
	t.row("Active clients", d.ClientCount)
	t.row("Invoices", d.InvoiceCount)
	t.row("Paid revenue", d.PaidRevenue.Display(cfg.CurrencySymbol))
	t.row("Outstanding", d.Outstanding.Display(cfg.CurrencySymbol))
	t.row("Overdue", d.OverdueCount)
	t.row("Pending", d.PendingCount)
	if d.OtherCurrencyCount > 0 {
		t.row("Other currencies (excluded)", d.OtherCurrencyCount)
	}
	return t.flush()
}
