package folio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/types"
)

// ──────────────────────────────────────────────────
// Invoice lifecycle
// ──────────────────────────────────────────────────

// CreateInvoice stores a new Draft invoice. A missing number is taken from
// the settings counter inside the same transaction as the insert, so a
// failed insert gives the number back. Counter values already used by a
// hand-numbered invoice are skipped. Missing dates, currency and payment
// terms default from settings. Line items are re-totalled; payments on the
// input are ignored.
//
// Any currency is accepted. Reports and statements total in one currency
// and leave out invoices in others.
func (f *Folio) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if inv.ClientID.IsNil() {
		return ValidationError{Field: "client_id", Message: "is required"}
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	err := f.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := activeClient(ctx, tx, inv.ClientID); err != nil {
			return err
		}
		return f.insertInvoice(ctx, tx, inv)
	})
	if err != nil {
		return err
	}

	f.logger.Info().
		Str("invoice", inv.Number).
		Str("client_id", inv.ClientID.String()).
		Str("total", inv.Total.String()).
		Msg("invoice created")
	f.plugins.EmitInvoiceCreated(ctx, inv)
	return nil
}

// insertInvoice fills defaults, numbers and totals inv, then inserts it.
// It must run inside a transaction.
func (f *Folio) insertInvoice(ctx context.Context, tx store.Store, inv *invoice.Invoice) error {
	cfg, err := tx.GetSettings(ctx)
	if err != nil {
		return err
	}

	now := f.Now()
	inv.ID = id.NewInvoiceID()
	inv.Entity = types.NewEntityAt(now)
	inv.Status = invoice.StatusDraft
	inv.SentAt = nil
	inv.PaidAt = nil
	inv.Payments = nil
	applyInvoiceDefaults(inv, cfg, invoice.Today(now))
	prepareLineItems(inv)
	invoice.ComputeTotals(inv)

	if strings.TrimSpace(inv.Number) == "" {
		number, err := sequencer(tx).NextUnused(ctx, numberTaken(tx))
		if err != nil {
			return err
		}
		inv.Number = number
	}

	return tx.CreateInvoice(ctx, inv)
}

// numberTaken reports whether an invoice already carries number.
func numberTaken(tx store.Store) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, number string) (bool, error) {
		_, err := tx.GetInvoiceByNumber(ctx, number)
		switch {
		case err == nil:
			return true, nil
		case IsNotFound(err):
			return false, nil
		}
		return false, err
	}
}

func applyInvoiceDefaults(inv *invoice.Invoice, cfg *settings.Settings, today time.Time) {
	if inv.Currency == "" {
		inv.Currency = cfg.Currency()
	}
	inv.Currency = strings.ToLower(inv.Currency)
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = today
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = invoice.Today(inv.InvoiceDate).AddDate(0, 0, cfg.TermDays())
	}
	if inv.PaymentTerms == "" {
		inv.PaymentTerms = cfg.DefaultPaymentTerms
	}
}

// prepareLineItems assigns IDs, owner and currency to every line item and
// orders them by SortOrder.
func prepareLineItems(inv *invoice.Invoice) {
	for i := range inv.LineItems {
		li := &inv.LineItems[i]
		if li.ID.IsNil() {
			li.ID = id.NewLineItemID()
		}
		li.InvoiceID = inv.ID
		li.UnitPrice = li.UnitPrice.WithCurrency(inv.Currency)
	}
	inv.SortLineItems()
}

// UpdateInvoice replaces the editable header fields and the full line-item
// set of an existing invoice and re-totals it. Number, creation time,
// payments and the sent and paid stamps are kept from the stored invoice.
// When the invoice has payments its status is re-derived from them.
func (f *Folio) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Status != "" && !inv.Status.Valid() {
		return ErrInvalidStatus
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	var previous invoice.Status
	err := f.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		cur, err := tx.GetInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		previous = cur.Status

		if inv.ClientID.IsNil() {
			inv.ClientID = cur.ClientID
		} else if inv.ClientID != cur.ClientID {
			if _, err := tx.GetClient(ctx, inv.ClientID); err != nil {
				return err
			}
		}
		if strings.TrimSpace(inv.Number) == "" {
			inv.Number = cur.Number
		}
		if inv.Status == "" {
			inv.Status = cur.Status
		}
		if inv.Currency == "" {
			inv.Currency = cur.Currency
		}
		inv.Currency = strings.ToLower(inv.Currency)
		if len(cur.Payments) > 0 && !strings.EqualFold(inv.Currency, cur.Currency) {
			return ValidationError{Field: "currency", Message: "cannot change once payments are recorded"}
		}
		if inv.InvoiceDate.IsZero() {
			inv.InvoiceDate = cur.InvoiceDate
		}
		if inv.DueDate.IsZero() {
			inv.DueDate = cur.DueDate
		}
		inv.Entity = cur.Entity
		inv.SentAt = cur.SentAt
		inv.PaidAt = cur.PaidAt
		inv.Payments = cur.Payments

		now := f.Now()
		prepareLineItems(inv)
		invoice.ComputeTotals(inv)
		if inv.Status != previous {
			if err := invoice.SetStatus(inv, inv.Status, now); err != nil {
				return err
			}
		}
		invoice.Reconcile(inv, now, f.paidTolerance)
		inv.TouchAt(now)

		return tx.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return err
	}

	f.logger.Info().Str("invoice", inv.Number).Msg("invoice updated")
	f.plugins.EmitInvoiceUpdated(ctx, inv)
	if inv.Status != previous {
		f.plugins.EmitInvoiceStatusChanged(ctx, inv, previous, inv.Status)
	}
	return nil
}

// DeleteInvoice removes an invoice with its line items and payments.
// Deleting a missing invoice is a no-op. The numbering counter is not
// touched.
func (f *Folio) DeleteInvoice(ctx context.Context, invID id.InvoiceID) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	inv, err := f.store.GetInvoice(ctx, invID)
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := f.store.DeleteInvoice(ctx, invID); err != nil {
		return err
	}

	f.logger.Info().Str("invoice", inv.Number).Msg("invoice deleted")
	f.plugins.EmitInvoiceDeleted(ctx, invID)
	return nil
}

// DuplicateInvoice creates a Draft copy of an invoice with a fresh number,
// dated today and due after the configured due days. Line items, notes and
// terms are copied; payments and sent or paid stamps are not.
func (f *Folio) DuplicateInvoice(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	var source, dup *invoice.Invoice
	err := f.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		source, err = tx.GetInvoice(ctx, invID)
		if err != nil {
			return err
		}

		today := f.today()
		dup = &invoice.Invoice{
			ClientID:     source.ClientID,
			Currency:     source.Currency,
			InvoiceDate:  today,
			DueDate:      today.AddDate(0, 0, f.dueDays),
			Notes:        source.Notes,
			PaymentTerms: source.PaymentTerms,
			LineItems:    make([]invoice.LineItem, len(source.LineItems)),
		}
		for i, li := range source.LineItems {
			li.ID = id.Nil
			li.LineTotal = types.Money{}
			dup.LineItems[i] = li
		}
		return f.insertInvoice(ctx, tx, dup)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Str("source", source.Number).
		Str("invoice", dup.Number).
		Msg("invoice duplicated")
	f.plugins.EmitInvoiceCreated(ctx, dup)
	f.plugins.EmitInvoiceDuplicated(ctx, source, dup)
	return dup, nil
}

// UpdateInvoiceStatus sets the stored status directly. Sent stamps SentAt
// and Paid stamps PaidAt, each only when unset.
func (f *Folio) UpdateInvoiceStatus(ctx context.Context, invID id.InvoiceID, status invoice.Status) (*invoice.Invoice, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return f.setStatus(ctx, invID, status, nil)
}

// setStatus applies status to the stored invoice when allow accepts it
// (nil accepts everything). A rejected invoice is returned unchanged.
func (f *Folio) setStatus(ctx context.Context, invID id.InvoiceID, status invoice.Status, allow func(*invoice.Invoice) bool) (*invoice.Invoice, error) {
	f.writeMu.Lock()
	inv, err := f.store.GetInvoice(ctx, invID)
	if err != nil {
		f.writeMu.Unlock()
		return nil, err
	}
	if allow != nil && !allow(inv) {
		f.writeMu.Unlock()
		return inv, nil
	}

	previous := inv.Status
	now := f.Now()
	if err := invoice.SetStatus(inv, status, now); err != nil {
		f.writeMu.Unlock()
		return nil, err
	}
	inv.TouchAt(now)
	err = f.store.UpdateInvoice(ctx, inv)
	f.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	if previous != status {
		f.logger.Info().
			Str("invoice", inv.Number).
			Str("from", string(previous)).
			Str("to", string(status)).
			Msg("invoice status changed")
		f.plugins.EmitInvoiceStatusChanged(ctx, inv, previous, status)
	}
	return inv, nil
}

// GetInvoice retrieves a fully hydrated invoice by ID.
func (f *Folio) GetInvoice(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	return f.store.GetInvoice(ctx, invID)
}

// GetInvoiceByNumber retrieves a fully hydrated invoice by its number.
func (f *Folio) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return f.store.GetInvoiceByNumber(ctx, strings.TrimSpace(number))
}

// ListInvoices lists invoices, newest first unless opts.Ascending.
func (f *Folio) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	return f.store.ListInvoices(ctx, opts)
}

// ListOverdueInvoices returns invoices stored as Overdue together with Sent
// invoices whose due date is before today, ordered by due date.
func (f *Folio) ListOverdueInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	today := f.today()

	sent, err := f.store.ListInvoices(ctx, invoice.ListOpts{Status: invoice.StatusSent, DueBefore: today})
	if err != nil {
		return nil, err
	}
	stored, err := f.store.ListInvoices(ctx, invoice.ListOpts{Status: invoice.StatusOverdue})
	if err != nil {
		return nil, err
	}

	result := append(sent, stored...)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].Number < result[j].Number
	})
	return result, nil
}

// GenerateInvoiceNumber consumes and returns the next invoice number.
// Prefer leaving Number empty on CreateInvoice, which numbers inside the
// insert transaction.
func (f *Folio) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	return sequencer(f.store).Next(ctx)
}

// PeekInvoiceNumber returns the number the next invoice would receive.
func (f *Folio) PeekInvoiceNumber(ctx context.Context) (string, error) {
	return sequencer(f.store).Peek(ctx)
}

// ClientHasInvoices reports whether any invoice references the client.
func (f *Folio) ClientHasInvoices(ctx context.Context, clientID id.ClientID) (bool, error) {
	n, err := f.store.CountInvoices(ctx, clientID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// activeClient loads a client and rejects inactive ones.
func activeClient(ctx context.Context, s client.Store, clientID id.ClientID) (*client.Client, error) {
	c, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrClientInactive, c.CompanyName)
	}
	return c, nil
}
