package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
)

const (
	pageWidth   = 210.0
	leftMargin  = 15.0
	rightMargin = 15.0
	bodyWidth   = pageWidth - leftMargin - rightMargin
	lineHeight  = 5.0
)

// pdfWriter wraps gofpdf with a cp1252 translator so that symbols such as
// € and accented client names print with the core fonts.
type pdfWriter struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func newPDF(cfg *settings.Settings, title string) *pdfWriter {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(leftMargin, 15, rightMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(cfg.CompanyName, true)
	w := &pdfWriter{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	footer := cfg.InvoiceFooter
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 8)
		if footer != "" {
			pdf.CellFormat(0, 4, w.tr(footer), "", 1, "C", false, 0, "")
		}
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()
	return w
}

func (w *pdfWriter) text(size float64, style, s string) {
	w.SetFont("Arial", style, size)
	w.CellFormat(0, lineHeight+1, w.tr(s), "", 1, "L", false, 0, "")
}

func (w *pdfWriter) right(size float64, style, s string) {
	w.SetFont("Arial", style, size)
	w.CellFormat(0, lineHeight+1, w.tr(s), "", 1, "R", false, 0, "")
}

// company prints the sender block on the left and returns to the top.
func (w *pdfWriter) company(cfg *settings.Settings, heading string) {
	top := w.GetY()
	w.text(16, "B", cfg.CompanyName)
	w.text(9, "", oneLine(cfg.CompanyAddress))
	if cfg.CompanyPhone != "" {
		w.text(9, "", "Phone: "+cfg.CompanyPhone)
	}
	if cfg.CompanyEmail != "" {
		w.text(9, "", "Email: "+cfg.CompanyEmail)
	}
	if cfg.CompanyVatNumber != "" {
		w.text(9, "", "Tax: "+cfg.CompanyVatNumber)
	}

	w.SetY(top)
	w.right(24, "B", heading)
	w.SetY(top + 12)
}

// totalsRow prints a right-aligned label and amount pair.
func (w *pdfWriter) totalsRow(label, amount string, bold bool) {
	style := ""
	size := 10.0
	if bold {
		style, size = "B", 12
	}
	w.SetFont("Arial", style, size)
	w.SetX(pageWidth - rightMargin - 90)
	w.CellFormat(50, lineHeight+2, w.tr(label), "", 0, "L", false, 0, "")
	w.CellFormat(40, lineHeight+2, w.tr(amount), "", 1, "R", false, 0, "")
}

func (w *pdfWriter) header(cols []string, widths []float64, aligns []string) {
	w.SetFont("Arial", "B", 9)
	w.SetFillColor(235, 235, 235)
	for i, c := range cols {
		w.CellFormat(widths[i], 7, w.tr(c), "1", 0, aligns[i], true, 0, "")
	}
	w.Ln(-1)
	w.SetFont("Arial", "", 9)
}

func (w *pdfWriter) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoicePDF renders an invoice as an A4 PDF.
func InvoicePDF(doc InvoiceDoc) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	inv, c, cfg := doc.Invoice, doc.Client, doc.Settings

	w := newPDF(cfg, "Invoice "+inv.Number)
	top := w.GetY()
	w.company(cfg, "INVOICE")

	status := inv.Status
	if !doc.Now.IsZero() {
		status = inv.EffectiveStatus(doc.Now)
	}
	w.right(10, "B", "Invoice #: "+inv.Number)
	w.right(10, "", "Date: "+inv.InvoiceDate.Format(dateLayout))
	w.right(10, "", "Due Date: "+inv.DueDate.Format(dateLayout))
	w.right(10, "B", "Status: "+status.Label())

	w.SetY(max(w.GetY(), top+40) + 6)
	w.text(10, "B", "Bill To:")
	w.text(11, "B", c.CompanyName)
	if c.ContactPerson != "" {
		w.text(9, "", "Attn: "+c.ContactPerson)
	}
	if c.BillingAddress != "" {
		w.SetFont("Arial", "", 9)
		w.MultiCell(bodyWidth/2, lineHeight, w.tr(c.BillingAddress), "", "L", false)
	}
	if c.Email != "" {
		w.text(9, "", "Email: "+c.Email)
	}
	if c.VatNumber != "" {
		w.text(9, "", "Tax: "+c.VatNumber)
	}
	w.Ln(6)

	widths := []float64{80, 20, 30, 20, 30}
	aligns := []string{"L", "R", "R", "R", "R"}
	w.header([]string{"Description", "Qty", "Unit Price", "Tax %", "Total"}, widths, aligns)
	for _, li := range inv.LineItems {
		w.CellFormat(widths[0], 6, w.tr(li.Description), "1", 0, "L", false, 0, "")
		w.CellFormat(widths[1], 6, li.Quantity.StringFixed(2), "1", 0, "R", false, 0, "")
		w.CellFormat(widths[2], 6, w.tr(money(cfg, li.UnitPrice)), "1", 0, "R", false, 0, "")
		w.CellFormat(widths[3], 6, li.TaxRate.StringFixed(2)+"%", "1", 0, "R", false, 0, "")
		w.CellFormat(widths[4], 6, w.tr(money(cfg, li.LineTotal)), "1", 0, "R", false, 0, "")
		w.Ln(-1)
	}
	w.Ln(4)

	w.totalsRow("Subtotal:", money(cfg, inv.Subtotal), false)
	w.totalsRow("Tax:", money(cfg, inv.TaxAmount), false)
	w.totalsRow("Total:", money(cfg, inv.Total), true)
	if paid := inv.AmountPaid(); paid.IsPositive() {
		w.totalsRow("Paid:", money(cfg, paid), false)
	}
	w.totalsRow("Amount Due:", money(cfg, inv.AmountRemaining()), true)

	if inv.Notes != "" {
		w.Ln(6)
		w.text(10, "B", "Notes:")
		w.SetFont("Arial", "", 9)
		w.MultiCell(bodyWidth, lineHeight, w.tr(inv.Notes), "", "L", false)
	}
	if inv.PaymentTerms != "" {
		w.Ln(4)
		w.text(10, "B", "Payment Terms:")
		w.SetFont("Arial", "", 9)
		w.MultiCell(bodyWidth, lineHeight, w.tr(inv.PaymentTerms), "", "L", false)
	}

	return w.bytes()
}

// StatementPDF renders a statement as an A4 PDF.
func StatementPDF(doc StatementDoc) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	st, c, cfg := doc.Statement, doc.Client, doc.Settings

	w := newPDF(cfg, "Statement "+c.CompanyName)
	top := w.GetY()
	w.company(cfg, "STATEMENT")
	w.right(10, "", "Period: "+doc.Period())
	w.right(10, "", "Generated: "+st.StatementDate.Format(dateLayout))

	w.SetY(max(w.GetY(), top+40) + 6)
	w.text(10, "B", "For:")
	w.text(11, "B", c.CompanyName)
	if c.BillingAddress != "" {
		w.SetFont("Arial", "", 9)
		w.MultiCell(bodyWidth/2, lineHeight, w.tr(c.BillingAddress), "", "L", false)
	}
	w.Ln(6)

	w.totalsRow("Opening Balance:", money(cfg, st.OpeningBalance), true)
	w.Ln(2)

	widths := []float64{28, 72, 27, 27, 26}
	aligns := []string{"L", "L", "R", "R", "R"}
	w.header([]string{"Date", "Description", "Debit", "Credit", "Balance"}, widths, aligns)
	for _, l := range st.Lines {
		w.CellFormat(widths[0], 6, l.Date.Format(dateLayout), "1", 0, "L", false, 0, "")
		w.CellFormat(widths[1], 6, w.tr(l.Description), "1", 0, "L", false, 0, "")
		w.CellFormat(widths[2], 6, w.tr(amountOrDash(cfg, l, true)), "1", 0, "R", false, 0, "")
		w.CellFormat(widths[3], 6, w.tr(amountOrDash(cfg, l, false)), "1", 0, "R", false, 0, "")
		w.CellFormat(widths[4], 6, w.tr(money(cfg, l.Balance)), "1", 0, "R", false, 0, "")
		w.Ln(-1)
	}
	w.Ln(4)

	w.totalsRow("Closing Balance:", money(cfg, st.ClosingBalance), true)
	if st.ClosingBalance.IsPositive() {
		w.totalsRow("Amount Outstanding:", money(cfg, st.ClosingBalance), true)
	}
	if st.Notes != "" {
		w.Ln(6)
		w.text(10, "B", "Notes:")
		w.SetFont("Arial", "", 9)
		w.MultiCell(bodyWidth, lineHeight, w.tr(st.Notes), "", "L", false)
	}

	return w.bytes()
}

func amountOrDash(cfg *settings.Settings, l statement.Line, debit bool) string {
	m := l.Credit
	if debit {
		m = l.Debit
	}
	if !m.IsPositive() {
		return "-"
	}
	return money(cfg, m)
}
