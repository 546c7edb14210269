package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

const invoiceColumns = `id, number, client_id, currency, invoice_date, due_date, status,
	subtotal, tax_amount, total, notes, payment_terms, sent_at, paid_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var (
		inv                  invoice.Invoice
		status               string
		subtotal, tax, total int64
		invoiceDate, dueDate dbTime
		sentAt, paidAt       dbTime
		createdAt, updatedAt dbTime
	)
	if err := row.Scan(&inv.ID, &inv.Number, &inv.ClientID, &inv.Currency, &invoiceDate, &dueDate, &status,
		&subtotal, &tax, &total, &inv.Notes, &inv.PaymentTerms, &sentAt, &paidAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	inv.Status = invoice.Status(status)
	inv.InvoiceDate = invoiceDate.Time
	inv.DueDate = dueDate.Time
	inv.Subtotal = types.Money{Amount: subtotal, Currency: inv.Currency}
	inv.TaxAmount = types.Money{Amount: tax, Currency: inv.Currency}
	inv.Total = types.Money{Amount: total, Currency: inv.Currency}
	inv.SentAt = sentAt.Ptr()
	inv.PaidAt = paidAt.Ptr()
	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Ptr()
	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return s.atomic(ctx, func(tx *Store) error {
		_, err := tx.exec(ctx, `INSERT INTO folio_invoices (`+invoiceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.Number, inv.ClientID, inv.Currency,
			tx.d.timeArg(inv.InvoiceDate), tx.d.timeArg(inv.DueDate), string(inv.Status),
			inv.Subtotal.Amount, inv.TaxAmount.Amount, inv.Total.Amount,
			inv.Notes, inv.PaymentTerms, tx.d.timePtrArg(inv.SentAt), tx.d.timePtrArg(inv.PaidAt),
			tx.d.timeArg(inv.CreatedAt), tx.d.timePtrArg(inv.UpdatedAt))
		if err != nil {
			return tx.uniqueErr(err)
		}
		return tx.insertLineItems(ctx, inv)
	})
}

func (s *Store) insertLineItems(ctx context.Context, inv *invoice.Invoice) error {
	for _, li := range inv.LineItems {
		_, err := s.exec(ctx, `INSERT INTO folio_line_items
			(id, invoice_id, product_id, description, quantity, unit_price, unit_price_currency, tax_rate, line_total, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			li.ID, inv.ID, li.ProductID, li.Description, li.Quantity,
			li.UnitPrice.Amount, li.UnitPrice.Currency, li.TaxRate, li.LineTotal.Amount, li.SortOrder)
		if err != nil {
			return s.uniqueErr(err)
		}
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	inv, err := scanInvoice(s.queryRow(ctx,
		`SELECT `+invoiceColumns+` FROM folio_invoices WHERE id = ?`, invID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, s.hydrate(ctx, inv)
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	inv, err := scanInvoice(s.queryRow(ctx,
		`SELECT `+invoiceColumns+` FROM folio_invoices WHERE number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, s.hydrate(ctx, inv)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var w where
	if !opts.ClientID.IsNil() {
		w.add("client_id = ?", opts.ClientID)
	}
	if opts.Status != "" {
		w.add("status = ?", string(opts.Status))
	}
	if !opts.From.IsZero() {
		w.add("invoice_date >= ?", s.d.timeArg(opts.From))
	}
	if !opts.To.IsZero() {
		w.add("invoice_date <= ?", s.d.timeArg(opts.To))
	}
	if !opts.DueBefore.IsZero() {
		w.add("due_date < ?", s.d.timeArg(opts.DueBefore))
	}
	if opts.Number != "" {
		w.add(`LOWER(number) LIKE ? ESCAPE '\'`, likePattern(opts.Number))
	}

	order := " ORDER BY invoice_date DESC, number DESC"
	if opts.Ascending {
		order = " ORDER BY invoice_date ASC, number ASC"
	}
	q := `SELECT ` + invoiceColumns + ` FROM folio_invoices` + w.String() + order
	q += w.page(opts.Limit, opts.Offset)

	rows, err := s.query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	result := make([]*invoice.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, inv := range result {
		if err := s.hydrate(ctx, inv); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return s.atomic(ctx, func(tx *Store) error {
		res, err := tx.exec(ctx, `UPDATE folio_invoices SET
			number = ?, client_id = ?, currency = ?, invoice_date = ?, due_date = ?, status = ?,
			subtotal = ?, tax_amount = ?, total = ?, notes = ?, payment_terms = ?,
			sent_at = ?, paid_at = ?, updated_at = ?
			WHERE id = ?`,
			inv.Number, inv.ClientID, inv.Currency, tx.d.timeArg(inv.InvoiceDate), tx.d.timeArg(inv.DueDate),
			string(inv.Status), inv.Subtotal.Amount, inv.TaxAmount.Amount, inv.Total.Amount,
			inv.Notes, inv.PaymentTerms, tx.d.timePtrArg(inv.SentAt), tx.d.timePtrArg(inv.PaidAt),
			tx.d.timePtrArg(inv.UpdatedAt), inv.ID)
		if err != nil {
			return tx.uniqueErr(err)
		}
		if err := affected(res, folio.ErrInvoiceNotFound); err != nil {
			return err
		}
		if _, err := tx.exec(ctx, `DELETE FROM folio_line_items WHERE invoice_id = ?`, inv.ID); err != nil {
			return err
		}
		return tx.insertLineItems(ctx, inv)
	})
}

func (s *Store) DeleteInvoice(ctx context.Context, invID id.InvoiceID) error {
	return s.atomic(ctx, func(tx *Store) error {
		for _, q := range []string{
			`DELETE FROM folio_payments WHERE invoice_id = ?`,
			`DELETE FROM folio_line_items WHERE invoice_id = ?`,
			`DELETE FROM folio_invoices WHERE id = ?`,
		} {
			if _, err := tx.exec(ctx, q, invID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AddPayment(ctx context.Context, p *invoice.Payment) error {
	return s.atomic(ctx, func(tx *Store) error {
		ok, err := tx.exists(ctx, `SELECT 1 FROM folio_invoices WHERE id = ?`, p.InvoiceID)
		if err != nil {
			return err
		}
		if !ok {
			return folio.ErrInvoiceNotFound
		}
		_, err = tx.exec(ctx, `INSERT INTO folio_payments
			(id, invoice_id, amount, currency, payment_date, method, reference, notes, recorded_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.InvoiceID, p.Amount.Amount, p.Amount.Currency, tx.d.timeArg(p.PaymentDate),
			string(p.Method), p.Reference, p.Notes, p.RecordedBy, tx.d.timeArg(p.CreatedAt))
		return tx.uniqueErr(err)
	})
}

func (s *Store) ListPayments(ctx context.Context, invID id.InvoiceID) ([]invoice.Payment, error) {
	var currency string
	err := s.queryRow(ctx, `SELECT currency FROM folio_invoices WHERE id = ?`, invID).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.payments(ctx, invID, currency)
}

func (s *Store) CountInvoices(ctx context.Context, clientID id.ClientID) (int, error) {
	var w where
	if !clientID.IsNil() {
		w.add("client_id = ?", clientID)
	}
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM folio_invoices`+w.String(), w.args...).Scan(&n)
	return n, err
}

// hydrate loads line items and payments onto inv.
func (s *Store) hydrate(ctx context.Context, inv *invoice.Invoice) error {
	lines, err := s.lineItems(ctx, inv)
	if err != nil {
		return err
	}
	inv.LineItems = lines
	inv.Payments, err = s.payments(ctx, inv.ID, inv.Currency)
	return err
}

func (s *Store) lineItems(ctx context.Context, inv *invoice.Invoice) ([]invoice.LineItem, error) {
	rows, err := s.query(ctx, `SELECT id, invoice_id, product_id, description, quantity,
		unit_price, unit_price_currency, tax_rate, line_total, sort_order
		FROM folio_line_items WHERE invoice_id = ? ORDER BY sort_order, id`, inv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]invoice.LineItem, 0)
	for rows.Next() {
		var (
			li               invoice.LineItem
			price, lineTotal int64
			priceCurrency    string
		)
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.ProductID, &li.Description, &li.Quantity,
			&price, &priceCurrency, &li.TaxRate, &lineTotal, &li.SortOrder); err != nil {
			return nil, err
		}
		if priceCurrency == "" {
			priceCurrency = inv.Currency
		}
		li.UnitPrice = types.Money{Amount: price, Currency: priceCurrency}
		li.LineTotal = types.Money{Amount: lineTotal, Currency: inv.Currency}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (s *Store) payments(ctx context.Context, invID id.InvoiceID, currency string) ([]invoice.Payment, error) {
	rows, err := s.query(ctx, `SELECT id, invoice_id, amount, currency, payment_date, method,
		reference, notes, recorded_by, created_at
		FROM folio_payments WHERE invoice_id = ? ORDER BY payment_date, created_at, id`, invID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]invoice.Payment, 0)
	for rows.Next() {
		var (
			p                    invoice.Payment
			amount               int64
			cur, method          string
			paymentDate, created dbTime
		)
		if err := rows.Scan(&p.ID, &p.InvoiceID, &amount, &cur, &paymentDate, &method,
			&p.Reference, &p.Notes, &p.RecordedBy, &created); err != nil {
			return nil, err
		}
		if cur == "" {
			cur = currency
		}
		p.Amount = types.Money{Amount: amount, Currency: cur}
		p.PaymentDate = paymentDate.Time
		p.Method = invoice.Method(method)
		p.CreatedAt = created.Time
		out = append(out, p)
	}
	return out, rows.Err()
}
