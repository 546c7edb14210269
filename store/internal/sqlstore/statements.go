package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xraph/folio"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// ──────────────────────────────────────────────────
// Statements
// ──────────────────────────────────────────────────

const statementColumns = `id, client_id, currency, statement_date, start_date, end_date,
	opening_balance, closing_balance, notes, created_at`

func scanStatement(row rowScanner) (*statement.Statement, error) {
	var (
		st                            statement.Statement
		opening, closing              int64
		stmtDate, start, end, created dbTime
	)
	if err := row.Scan(&st.ID, &st.ClientID, &st.Currency, &stmtDate, &start, &end,
		&opening, &closing, &st.Notes, &created); err != nil {
		return nil, err
	}
	st.StatementDate = stmtDate.Time
	st.StartDate = start.Time
	st.EndDate = end.Time
	st.OpeningBalance = types.Money{Amount: opening, Currency: st.Currency}
	st.ClosingBalance = types.Money{Amount: closing, Currency: st.Currency}
	st.CreatedAt = created.Time
	return &st, nil
}

func (s *Store) CreateStatement(ctx context.Context, st *statement.Statement) error {
	return s.atomic(ctx, func(tx *Store) error {
		_, err := tx.exec(ctx, `INSERT INTO folio_statements (`+statementColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, st.ClientID, st.Currency, tx.d.timeArg(st.StatementDate),
			tx.d.timeArg(st.StartDate), tx.d.timeArg(st.EndDate),
			st.OpeningBalance.Amount, st.ClosingBalance.Amount, st.Notes, tx.d.timeArg(st.CreatedAt))
		if err != nil {
			return tx.uniqueErr(err)
		}
		for _, l := range st.Lines {
			_, err := tx.exec(ctx, `INSERT INTO folio_statement_lines
				(id, statement_id, invoice_id, kind, line_date, description, debit, credit, balance, sort_order)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				l.ID, st.ID, l.InvoiceID, string(l.Kind), tx.d.timeArg(l.Date), l.Description,
				l.Debit.Amount, l.Credit.Amount, l.Balance.Amount, l.SortOrder)
			if err != nil {
				return tx.uniqueErr(err)
			}
		}
		return nil
	})
}

func (s *Store) GetStatement(ctx context.Context, stmtID id.StatementID) (*statement.Statement, error) {
	st, err := scanStatement(s.queryRow(ctx,
		`SELECT `+statementColumns+` FROM folio_statements WHERE id = ?`, stmtID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrStatementNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `SELECT id, statement_id, invoice_id, kind, line_date, description,
		debit, credit, balance, sort_order
		FROM folio_statement_lines WHERE statement_id = ? ORDER BY sort_order, id`, stmtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st.Lines = make([]statement.Line, 0)
	for rows.Next() {
		var (
			l                      statement.Line
			kind                   string
			date                   dbTime
			debit, credit, balance int64
		)
		if err := rows.Scan(&l.ID, &l.StatementID, &l.InvoiceID, &kind, &date, &l.Description,
			&debit, &credit, &balance, &l.SortOrder); err != nil {
			return nil, err
		}
		l.Kind = statement.Kind(kind)
		l.Date = date.Time
		l.Debit = types.Money{Amount: debit, Currency: st.Currency}
		l.Credit = types.Money{Amount: credit, Currency: st.Currency}
		l.Balance = types.Money{Amount: balance, Currency: st.Currency}
		st.Lines = append(st.Lines, l)
	}
	return st, rows.Err()
}

func (s *Store) ListStatements(ctx context.Context, clientID id.ClientID) ([]*statement.Statement, error) {
	var w where
	if !clientID.IsNil() {
		w.add("client_id = ?", clientID)
	}
	rows, err := s.query(ctx, `SELECT `+statementColumns+` FROM folio_statements`+w.String()+
		` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*statement.Statement, 0)
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (s *Store) DeleteStatement(ctx context.Context, stmtID id.StatementID) error {
	return s.atomic(ctx, func(tx *Store) error {
		if _, err := tx.exec(ctx, `DELETE FROM folio_statement_lines WHERE statement_id = ?`, stmtID); err != nil {
			return err
		}
		res, err := tx.exec(ctx, `DELETE FROM folio_statements WHERE id = ?`, stmtID)
		if err != nil {
			return err
		}
		return affected(res, folio.ErrStatementNotFound)
	})
}

// ──────────────────────────────────────────────────
// Email log
// ──────────────────────────────────────────────────

func (s *Store) CreateEmailLog(ctx context.Context, e *emaillog.Entry) error {
	_, err := s.exec(ctx, `INSERT INTO folio_email_logs
		(id, invoice_id, statement_id, recipient, subject, body, sent_at, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.InvoiceID, e.StatementID, e.Recipient, e.Subject, e.Body,
		s.d.timeArg(e.SentAt), e.Success, e.Error)
	return s.uniqueErr(err)
}

func (s *Store) ListEmailLogs(ctx context.Context, opts emaillog.ListOpts) ([]*emaillog.Entry, error) {
	var w where
	if !opts.InvoiceID.IsNil() {
		w.add("invoice_id = ?", opts.InvoiceID)
	}
	if !opts.StatementID.IsNil() {
		w.add("statement_id = ?", opts.StatementID)
	}
	if opts.FailedOnly {
		w.add("success = ?", false)
	}
	q := `SELECT id, invoice_id, statement_id, recipient, subject, body, sent_at, success, error
		FROM folio_email_logs` + w.String() + ` ORDER BY sent_at DESC, id DESC`
	q += w.page(opts.Limit, opts.Offset)

	rows, err := s.query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*emaillog.Entry, 0)
	for rows.Next() {
		var (
			e      emaillog.Entry
			sentAt dbTime
		)
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.StatementID, &e.Recipient, &e.Subject, &e.Body,
			&sentAt, &e.Success, &e.Error); err != nil {
			return nil, err
		}
		e.SentAt = sentAt.Time
		result = append(result, &e)
	}
	return result, rows.Err()
}
