package settings

import "context"

// Store persists the settings row and owns the invoice counter.
type Store interface {
	// GetSettings returns the settings row, creating it from Defaults when absent.
	GetSettings(ctx context.Context) (*Settings, error)
	// UpdateSettings overwrites the row. The counter is only written when
	// the new value is higher than the stored one, so an edit made from a
	// stale copy can never hand out a number twice.
	UpdateSettings(ctx context.Context, s *Settings) error
	// NextInvoiceNumber atomically returns prefix and counter and advances the counter.
	NextInvoiceNumber(ctx context.Context) (prefix string, n int64, err error)
	// PeekInvoiceNumber returns prefix and counter without advancing.
	PeekInvoiceNumber(ctx context.Context) (prefix string, n int64, err error)
}
