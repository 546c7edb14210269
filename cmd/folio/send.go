package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/folio"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/config"
	"github.com/xraph/folio/internal/logger"
	"github.com/xraph/folio/mailer"
)

var invoiceSendCmd = &cobra.Command{
	Use:   "send <id|number>",
	Short: "Email an invoice PDF to the client and mark it sent",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceSend,
}

var statementSendCmd = &cobra.Command{
	Use:   "send <id>",
	Short: "Email a statement PDF to the client",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatementSend,
}

var emailLogCmd = &cobra.Command{
	Use:   "emails",
	Short: "List the email delivery log",
	Args:  cobra.NoArgs,
	RunE:  runEmailLog,
}

func init() {
	invoiceCmd.AddCommand(invoiceSendCmd)
	statementCmd.AddCommand(statementSendCmd)
	rootCmd.AddCommand(emailLogCmd)

	for _, c := range []*cobra.Command{invoiceSendCmd, statementSendCmd} {
		c.Flags().StringSlice("to", nil, "Recipients (default: the client's email)")
		c.Flags().String("subject", "", "Subject (default: settings template)")
		c.Flags().String("body", "", "Body (default: settings template)")
	}

	f := emailLogCmd.Flags()
	f.String("invoice", "", "Only emails for this invoice ID")
	f.String("statement", "", "Only emails for this statement ID")
	f.Bool("failed", false, "Only failed deliveries")
	f.Int("limit", 50, "Maximum rows")
}

// newMailer builds the SMTP mailer from configuration.
func newMailer(cfg config.SMTPConfig) (mailer.Mailer, error) {
	if !cfg.Enabled() {
		return nil, folio.ErrMailerNotConfigured
	}
	return mailer.NewSMTP(mailer.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.Username,
		Password:    cfg.Password,
		TLS:         cfg.TLS,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
	})
}

// sender returns a delivery worker used synchronously; no queue is started.
func sender(cmd *cobra.Command) (*delivery.Worker, error) {
	engine, err := cli.open(cmd.Context())
	if err != nil {
		return nil, err
	}
	m, err := newMailer(cli.cfg.SMTP)
	if err != nil {
		return nil, err
	}
	return delivery.New(engine, m, delivery.WithLogger(logger.WithComponent(cli.log, "delivery"))), nil
}

func sendFlags(cmd *cobra.Command) (to []string, subject, body string) {
	to, _ = cmd.Flags().GetStringSlice("to")
	subject, _ = cmd.Flags().GetString("subject")
	body, _ = cmd.Flags().GetString("body")
	return to, subject, body
}

func runInvoiceSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	w, err := sender(cmd)
	if err != nil {
		return err
	}
	inv, err := findInvoice(ctx, cli.engine, args[0])
	if err != nil {
		return err
	}
	to, subject, body := sendFlags(cmd)
	entry, err := w.SendInvoice(ctx, inv.ID, to, subject, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Sent %s to %s\n", inv.Number, entry.Recipient)
	return nil
}

func runStatementSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	w, err := sender(cmd)
	if err != nil {
		return err
	}
	stmtID, err := id.ParseStatementID(args[0])
	if err != nil {
		return err
	}
	to, subject, body := sendFlags(cmd)
	entry, err := w.SendStatement(ctx, stmtID, to, subject, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Sent statement %s to %s\n", stmtID, entry.Recipient)
	return nil
}

func runEmailLog(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	opts := emaillog.ListOpts{}
	if opts.InvoiceID, err = idFlag(cmd, "invoice", id.PrefixInvoice); err != nil {
		return err
	}
	if opts.StatementID, err = idFlag(cmd, "statement", id.PrefixStatement); err != nil {
		return err
	}
	opts.FailedOnly, _ = cmd.Flags().GetBool("failed")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	entries, err := engine.ListEmailLogs(ctx, opts)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, entries)
	}
	t := newTable(cli.out, "SENT AT", "STATUS", "RECIPIENT", "SUBJECT", "ERROR")
	for _, e := range entries {
		status := "sent"
		if !e.Success {
			status = "failed"
		}
		t.row(e.SentAt.UTC().Format("2006-01-02 15:04"), status, e.Recipient, e.Subject, strings.ReplaceAll(e.Error, "\n", " "))
	}
	return t.flush()
}
