// Package numbering turns the persisted settings counter into invoice numbers.
//
// The read-increment-persist cycle is delegated to the store as a single
// atomic operation, so two callers can never observe the same counter value.
// Run Next inside the same store transaction as the invoice insert to make a
// failed insert give its number back.
package numbering

import (
	"context"
	"fmt"
)

// Width is the minimum number of digits in the numeric part.
const Width = 4

// Counter is the persisted invoice counter.
type Counter interface {
	// NextInvoiceNumber atomically returns the current prefix and counter
	// value and advances the stored counter by one.
	NextInvoiceNumber(ctx context.Context) (prefix string, n int64, err error)
	// PeekInvoiceNumber returns the prefix and counter value without advancing.
	PeekInvoiceNumber(ctx context.Context) (prefix string, n int64, err error)
}

// Format renders an invoice number: prefix followed by n zero-padded to Width digits.
// Counters wider than Width are kept intact (INV10000).
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, Width, n)
}

// Sequencer hands out invoice numbers from a Counter.
type Sequencer struct {
	counter Counter
}

// New creates a Sequencer over c.
func New(c Counter) *Sequencer {
	return &Sequencer{counter: c}
}

// Next consumes and returns the next invoice number.
func (s *Sequencer) Next(ctx context.Context) (string, error) {
	prefix, n, err := s.counter.NextInvoiceNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("numbering: next: %w", err)
	}
	return Format(prefix, n), nil
}

// NextUnused consumes counter values until inUse reports one as free and
// returns it. Values taken by hand-numbered invoices are skipped and stay
// consumed.
func (s *Sequencer) NextUnused(ctx context.Context, inUse func(ctx context.Context, number string) (bool, error)) (string, error) {
	for {
		number, err := s.Next(ctx)
		if err != nil {
			return "", err
		}
		taken, err := inUse(ctx, number)
		if err != nil {
			return "", fmt.Errorf("numbering: check %s: %w", number, err)
		}
		if !taken {
			return number, nil
		}
	}
}

// Peek returns the number the next call to Next would produce.
func (s *Sequencer) Peek(ctx context.Context) (string, error) {
	prefix, n, err := s.counter.PeekInvoiceNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("numbering: peek: %w", err)
	}
	return Format(prefix, n), nil
}

// WithCounter returns a Sequencer bound to c, typically a transaction-scoped store.
func (s *Sequencer) WithCounter(c Counter) *Sequencer {
	return &Sequencer{counter: c}
}
