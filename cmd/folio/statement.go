package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/render"
)

var statementCmd = &cobra.Command{
	Use:     "statement",
	Aliases: []string{"stmt"},
	Short:   "Generate and export client statements",
}

var statementGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a running-balance statement for a client",
	Example: `  folio statement generate --client cli_01h... --from 2025-03-01 --to 2025-03-31
  folio statement generate --client cli_01h... --from 2025-04-01 --to 2025-04-30 --opening 1250.00`,
	Args: cobra.NoArgs,
	RunE: runStatementGenerate,
}

var statementListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a client's statements, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStatementList,
}

var statementShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a statement with its ledger lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatementShow,
}

var statementDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatementDelete,
}

var statementPDFCmd = &cobra.Command{
	Use:   "pdf <id>",
	Short: "Render a statement as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportStatement(cmd, args[0], "pdf", render.StatementPDF)
	},
}

var statementXLSXCmd = &cobra.Command{
	Use:   "xlsx <id>",
	Short: "Export a statement as an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportStatement(cmd, args[0], "xlsx", render.StatementXLSX)
	},
}

func init() {
	rootCmd.AddCommand(statementCmd)
	statementCmd.AddCommand(statementGenerateCmd, statementListCmd, statementShowCmd,
		statementDeleteCmd, statementPDFCmd, statementXLSXCmd)

	f := statementGenerateCmd.Flags()
	f.String("client", "", "Client ID (required)")
	f.String("from", "", "First day of the period (YYYY-MM-DD, required)")
	f.String("to", "", "Last day of the period (YYYY-MM-DD, required)")
	f.String("opening", "", "Opening balance in major units (default: 0)")
	f.String("notes", "", "Notes stored on the statement")
	_ = statementGenerateCmd.MarkFlagRequired("client")
	_ = statementGenerateCmd.MarkFlagRequired("from")
	_ = statementGenerateCmd.MarkFlagRequired("to")

	statementListCmd.Flags().String("client", "", "Client ID (required)")
	_ = statementListCmd.MarkFlagRequired("client")

	statementPDFCmd.Flags().StringP("output", "o", "", "Output file")
	statementXLSXCmd.Flags().StringP("output", "o", "", "Output file")
}

func runStatementGenerate(cmd *cobra.Command, _ []string) error {
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
	from, err := dateFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := dateFlag(cmd, "to")
	if err != nil {
		return err
	}
	opening, err := moneyFlag(cmd, "opening", cfg.Currency())
	if err != nil {
		return err
	}
	notes, _ := cmd.Flags().GetString("notes")

	st, err := engine.GenerateStatementWithNotes(ctx, clientID, from, to, opening, notes)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, st)
	}
	fmt.Fprintf(cli.out, "Statement %s: %d lines, opening %s, closing %s\n",
		st.ID, len(st.Lines), st.OpeningBalance.Display(cfg.CurrencySymbol), st.ClosingBalance.Display(cfg.CurrencySymbol))
	return nil
}

func runStatementList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	clientID, err := idFlag(cmd, "client", id.PrefixClient)
	if err != nil {
		return err
	}
	statements, err := engine.ListStatements(ctx, clientID)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, statements)
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	t := newTable(cli.out, "DATE", "FROM", "TO", "OPENING", "CLOSING", "ID")
	for _, st := range statements {
		t.row(formatDate(st.StatementDate), formatDate(st.StartDate), formatDate(st.EndDate),
			st.OpeningBalance.Display(cfg.CurrencySymbol), st.ClosingBalance.Display(cfg.CurrencySymbol), st.ID)
	}
	return t.flush()
}

func runStatementShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	stmtID, err := id.ParseStatementID(args[0])
	if err != nil {
		return err
	}
	st, err := engine.GetStatement(ctx, stmtID)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, st)
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	sym := cfg.CurrencySymbol

	fmt.Fprintf(cli.out, "Statement %s for %s, %s to %s\n\n", st.ID, st.ClientID, formatDate(st.StartDate), formatDate(st.EndDate))
	t := newTable(cli.out, "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
	t.row("", "Opening balance", "", "", st.OpeningBalance.Display(sym))
	for _, l := range st.Lines {
		debit, credit := "", ""
		if !l.Debit.IsZero() {
			debit = l.Debit.Display(sym)
		}
		if !l.Credit.IsZero() {
			credit = l.Credit.Display(sym)
		}
		t.row(formatDate(l.Date), l.Description, debit, credit, l.Balance.Display(sym))
	}
	t.row("", "Closing balance", st.TotalDebits().Display(sym), st.TotalCredits().Display(sym), st.ClosingBalance.Display(sym))
	return t.flush()
}

func runStatementDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	stmtID, err := id.ParseStatementID(args[0])
	if err != nil {
		return err
	}
	if err := engine.DeleteStatement(ctx, stmtID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deleted statement %s\n", stmtID)
	return nil
}

func statementDoc(ctx context.Context, engine *folio.Folio, ref string) (render.StatementDoc, error) {
	stmtID, err := id.ParseStatementID(ref)
	if err != nil {
		return render.StatementDoc{}, err
	}
	st, err := engine.GetStatement(ctx, stmtID)
	if err != nil {
		return render.StatementDoc{}, err
	}
	c, err := engine.GetClient(ctx, st.ClientID)
	if err != nil {
		return render.StatementDoc{}, err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return render.StatementDoc{}, err
	}
	return render.StatementDoc{Statement: st, Client: c, Settings: cfg}, nil
}

func exportStatement(cmd *cobra.Command, ref, ext string, fn func(render.StatementDoc) ([]byte, error)) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	doc, err := statementDoc(ctx, engine, ref)
	if err != nil {
		return err
	}
	data, err := fn(doc)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = render.StatementFileName(doc.Client, doc.Statement, ext)
	}
	return writeFile(out, data)
}
