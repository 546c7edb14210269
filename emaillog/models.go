// Package emaillog records every attempted email delivery.
package emaillog

import (
	"context"
	"time"

	"github.com/xraph/folio/id"
)

// Entry is a single delivery attempt. Exactly one of InvoiceID and
// StatementID is set.
type Entry struct {
	ID          id.EmailLogID  `json:"id"`
	InvoiceID   id.InvoiceID   `json:"invoice_id,omitempty"`
	StatementID id.StatementID `json:"statement_id,omitempty"`
	Recipient   string         `json:"recipient"`
	Subject     string         `json:"subject"`
	Body        string         `json:"body,omitempty"`
	SentAt      time.Time      `json:"sent_at"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
}

// ListOpts filters the delivery log. Results are newest first.
type ListOpts struct {
	InvoiceID   id.InvoiceID
	StatementID id.StatementID
	FailedOnly  bool
	Limit       int
	Offset      int
}

// Store persists delivery attempts.
type Store interface {
	CreateEmailLog(ctx context.Context, e *Entry) error
	ListEmailLogs(ctx context.Context, opts ListOpts) ([]*Entry, error)
}
