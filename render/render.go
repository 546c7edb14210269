// Package render produces the printable forms of invoices, statements and
// reports: PDF through gofpdf and XLSX workbooks through excelize.
package render

import (
	"errors"
	"strings"
	"time"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// ErrIncomplete is returned when a document is missing a required part.
var ErrIncomplete = errors.New("render: document incomplete")

const dateLayout = "Jan 02, 2006"

// InvoiceDoc is everything printed on an invoice.
type InvoiceDoc struct {
	Invoice  *invoice.Invoice
	Client   *client.Client
	Settings *settings.Settings
	Now      time.Time // stamps the status line; zero prints the stored status
}

func (d InvoiceDoc) validate() error {
	if d.Invoice == nil || d.Client == nil || d.Settings == nil {
		return ErrIncomplete
	}
	return nil
}

// StatementDoc is everything printed on a statement.
type StatementDoc struct {
	Statement *statement.Statement
	Client    *client.Client
	Settings  *settings.Settings
}

func (d StatementDoc) validate() error {
	if d.Statement == nil || d.Client == nil || d.Settings == nil {
		return ErrIncomplete
	}
	return nil
}

// Period renders the statement range, e.g. "Mar 01, 2025 - Mar 31, 2025".
func (d StatementDoc) Period() string {
	return d.Statement.StartDate.Format(dateLayout) + " - " + d.Statement.EndDate.Format(dateLayout)
}

// money formats m with the configured symbol.
func money(s *settings.Settings, m types.Money) string {
	return m.Display(s.CurrencySymbol)
}

// oneLine folds a multi-line address into a single line.
func oneLine(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

// FileName is the suggested attachment name for an invoice.
func FileName(inv *invoice.Invoice) string {
	return "Invoice_" + inv.Number + ".pdf"
}

// StatementFileName is the suggested attachment name for a statement.
func StatementFileName(c *client.Client, st *statement.Statement, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, c.CompanyName)
	return "Statement_" + name + "_" + st.EndDate.Format("20060102") + "." + ext
}
