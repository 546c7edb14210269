package folio

import (
	"context"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/types"
)

// GenerateStatement builds and stores a running-balance statement for a
// client over the calendar days [start, end]. Each call stores a new
// snapshot; earlier statements are never modified.
func (f *Folio) GenerateStatement(ctx context.Context, clientID id.ClientID, start, end time.Time, opening types.Money) (*statement.Statement, error) {
	return f.GenerateStatementWithNotes(ctx, clientID, start, end, opening, "")
}

// GenerateStatementWithNotes is GenerateStatement with a note stored on the snapshot.
func (f *Folio) GenerateStatementWithNotes(ctx context.Context, clientID id.ClientID, start, end time.Time, opening types.Money, notes string) (*statement.Statement, error) {
	if invoice.Today(start).After(invoice.Today(end)) {
		return nil, ErrInvalidDateRange
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	var st *statement.Statement
	err := f.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetClient(ctx, clientID); err != nil {
			return err
		}
		cfg, err := tx.GetSettings(ctx)
		if err != nil {
			return err
		}

		invoices, err := tx.ListInvoices(ctx, invoice.ListOpts{
			ClientID:  clientID,
			From:      invoice.Today(start),
			To:        invoice.Today(end).Add(24*time.Hour - time.Nanosecond),
			Ascending: true,
		})
		if err != nil {
			return err
		}

		currency := opening.Currency
		if currency == "" {
			currency = cfg.Currency()
		}
		st, err = statement.Generate(statement.Input{
			ClientID: clientID,
			Currency: currency,
			Start:    start,
			End:      end,
			Opening:  opening,
			Invoices: invoices,
			Notes:    notes,
			Now:      f.Now(),
		})
		if err != nil {
			return err
		}
		return tx.CreateStatement(ctx, st)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Str("statement_id", st.ID.String()).
		Str("client_id", clientID.String()).
		Int("lines", len(st.Lines)).
		Str("closing", st.ClosingBalance.String()).
		Msg("statement generated")
	f.plugins.EmitStatementGenerated(ctx, st)
	return st, nil
}

// GetStatement retrieves a stored statement with its lines.
func (f *Folio) GetStatement(ctx context.Context, stmtID id.StatementID) (*statement.Statement, error) {
	return f.store.GetStatement(ctx, stmtID)
}

// ListStatements returns a client's statements, newest first, without lines.
func (f *Folio) ListStatements(ctx context.Context, clientID id.ClientID) ([]*statement.Statement, error) {
	return f.store.ListStatements(ctx, clientID)
}

// DeleteStatement removes a statement and its lines.
func (f *Folio) DeleteStatement(ctx context.Context, stmtID id.StatementID) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	return f.store.DeleteStatement(ctx, stmtID)
}
