package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/folio"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/types"
)

// Sheet names used in generated workbooks.
const (
	SheetSummary    = "Summary"
	SheetLines      = "Lines"
	SheetAging      = "Aging"
	SheetTopClients = "Top Clients"
	SheetMonthly    = "Monthly"
)

// numFmtAmount is the built-in "#,##0.00" number format.
const numFmtAmount = 4

type workbook struct {
	f      *excelize.File
	bold   int
	amount int
	err    error
}

func newWorkbook(first string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return nil, err
	}
	return &workbook{f: f, bold: bold, amount: amount}, nil
}

func (w *workbook) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

// set writes v at (col,row), both 1-based. The first error sticks.
func (w *workbook) set(sheet string, col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if m, ok := v.(types.Money); ok {
		if w.err = w.f.SetCellValue(sheet, cell, m.Decimal().InexactFloat64()); w.err == nil {
			w.err = w.f.SetCellStyle(sheet, cell, cell, w.amount)
		}
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, v)
}

// row writes values starting at column 1.
func (w *workbook) row(sheet string, row int, values ...any) {
	for i, v := range values {
		w.set(sheet, i+1, row, v)
	}
}

// heading writes a bold header row.
func (w *workbook) heading(sheet string, row int, titles ...string) {
	for i, t := range titles {
		w.set(sheet, i+1, row, t)
	}
	if w.err != nil || len(titles) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(titles), row)
	w.err = w.f.SetCellStyle(sheet, first, last, w.bold)
}

func (w *workbook) widths(sheet string, widths ...float64) {
	for i, width := range widths {
		if w.err != nil {
			return
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.err = w.f.SetColWidth(sheet, col, col, width)
	}
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	if w.err != nil {
		return nil, fmt.Errorf("render: xlsx: %w", w.err)
	}
	var buf bytes.Buffer
	if err := w.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render: xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// StatementXLSX renders a statement as a workbook with a summary sheet and
// a sheet of ledger lines.
func StatementXLSX(doc StatementDoc) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	st, c, cfg := doc.Statement, doc.Client, doc.Settings

	w, err := newWorkbook(SheetSummary)
	if err != nil {
		return nil, fmt.Errorf("render: xlsx: %w", err)
	}

	w.set(SheetSummary, 1, 1, "Statement")
	w.row(SheetSummary, 3, "Company", cfg.CompanyName)
	w.row(SheetSummary, 4, "Client", c.CompanyName)
	w.row(SheetSummary, 5, "Period", doc.Period())
	w.row(SheetSummary, 6, "Generated", st.StatementDate.Format(dateLayout))
	w.row(SheetSummary, 7, "Currency", cfg.CurrencyCode)
	w.row(SheetSummary, 8, "Opening Balance", st.OpeningBalance)
	w.row(SheetSummary, 9, "Total Debits", st.TotalDebits())
	w.row(SheetSummary, 10, "Total Credits", st.TotalCredits())
	w.row(SheetSummary, 11, "Closing Balance", st.ClosingBalance)
	w.widths(SheetSummary, 20, 40)

	w.sheet(SheetLines)
	w.heading(SheetLines, 1, "Date", "Description", "Debit", "Credit", "Balance")
	for i, l := range st.Lines {
		w.row(SheetLines, i+2, l.Date.Format("2006-01-02"), l.Description, l.Debit, l.Credit, l.Balance)
	}
	w.widths(SheetLines, 12, 45, 14, 14, 14)

	return w.bytes()
}

// ReportXLSX renders a receivables report as a workbook with one sheet per
// view.
func ReportXLSX(rep *folio.Report, cfg *settings.Settings) ([]byte, error) {
	if rep == nil || cfg == nil {
		return nil, ErrIncomplete
	}

	w, err := newWorkbook(SheetSummary)
	if err != nil {
		return nil, fmt.Errorf("render: xlsx: %w", err)
	}

	s := rep.Summary
	w.set(SheetSummary, 1, 1, cfg.CompanyName+" receivables")
	w.row(SheetSummary, 2, "Generated", rep.GeneratedAt.Format(dateLayout))
	w.row(SheetSummary, 4, "Total Revenue", s.TotalRevenue)
	w.row(SheetSummary, 5, "Total Paid", s.TotalPaid)
	w.row(SheetSummary, 6, "Outstanding", s.TotalOutstanding)
	w.row(SheetSummary, 7, "Paid Revenue", s.PaidRevenue)
	w.row(SheetSummary, 8, "Paid This Month", s.ThisMonthPaid)
	w.row(SheetSummary, 9, "Average Invoice", s.AverageInvoice)
	w.row(SheetSummary, 10, "Invoices", s.InvoiceCount)
	w.row(SheetSummary, 11, "Paid", s.PaidCount)
	w.row(SheetSummary, 12, "Overdue", s.OverdueCount)
	w.row(SheetSummary, 13, "Pending", s.PendingCount)
	w.widths(SheetSummary, 20, 18)

	w.sheet(SheetAging)
	w.heading(SheetAging, 1, "Bucket", "Invoices", "Amount")
	for i, b := range rep.Aging {
		w.row(SheetAging, i+2, b.Label, b.Count, b.Amount)
	}
	w.widths(SheetAging, 22, 10, 16)

	w.sheet(SheetTopClients)
	w.heading(SheetTopClients, 1, "Client", "Invoices", "Revenue", "Paid")
	for i, r := range rep.TopClients {
		name := r.ClientName
		if name == "" {
			name = r.ClientID.String()
		}
		w.row(SheetTopClients, i+2, name, r.InvoiceCount, r.Revenue, r.Paid)
	}
	w.widths(SheetTopClients, 32, 10, 16, 16)

	w.sheet(SheetMonthly)
	w.heading(SheetMonthly, 1, "Month", "Invoices", "Revenue")
	for i, m := range rep.Monthly {
		w.row(SheetMonthly, i+2, m.Month.Format("2006-01"), m.Count, m.Revenue)
	}
	w.widths(SheetMonthly, 12, 10, 16)

	return w.bytes()
}
