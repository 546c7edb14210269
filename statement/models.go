// Package statement builds client statements: a running-balance ledger of
// invoice debits and payment credits over a date range.
package statement

import (
	"errors"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/types"
)

// ErrInvalidDateRange is returned when the start date is after the end date.
var ErrInvalidDateRange = errors.New("statement: start date is after end date")

// Kind identifies the source of a statement line.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindPayment Kind = "payment"
)

// Statement is an immutable snapshot of a client's account over
// [StartDate, EndDate]. Regenerating creates a new Statement.
type Statement struct {
	ID             id.StatementID `json:"id"`
	ClientID       id.ClientID    `json:"client_id"`
	Currency       string         `json:"currency"`
	StatementDate  time.Time      `json:"statement_date"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	OpeningBalance types.Money    `json:"opening_balance"`
	ClosingBalance types.Money    `json:"closing_balance"`
	Lines          []Line         `json:"lines"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Line is one ledger event. Exactly one of Debit and Credit is non-zero.
type Line struct {
	ID          id.StatementLineID `json:"id"`
	StatementID id.StatementID     `json:"statement_id"`
	InvoiceID   id.InvoiceID       `json:"invoice_id,omitempty"`
	Kind        Kind               `json:"kind"`
	Date        time.Time          `json:"date"`
	Description string             `json:"description"`
	Debit       types.Money        `json:"debit"`
	Credit      types.Money        `json:"credit"`
	Balance     types.Money        `json:"balance"`
	SortOrder   int                `json:"sort_order"`
}

// TotalDebits sums the debit column.
func (s *Statement) TotalDebits() types.Money {
	total := types.Zero(s.Currency)
	for _, l := range s.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredits sums the credit column.
func (s *Statement) TotalCredits() types.Money {
	total := types.Zero(s.Currency)
	for _, l := range s.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// Clone returns a deep copy of s.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	out := *s
	if s.Lines != nil {
		out.Lines = append([]Line(nil), s.Lines...)
	}
	return &out
}
