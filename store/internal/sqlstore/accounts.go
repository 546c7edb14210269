package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/types"
)

// ──────────────────────────────────────────────────
// Clients
// ──────────────────────────────────────────────────

const clientColumns = `id, company_name, contact_person, email, phone, billing_address,
	vat_number, is_active, created_at, updated_at`

func scanClient(row rowScanner) (*client.Client, error) {
	var (
		c                    client.Client
		createdAt, updatedAt dbTime
	)
	if err := row.Scan(&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone,
		&c.BillingAddress, &c.VatNumber, &c.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Ptr()
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	_, err := s.exec(ctx, `INSERT INTO folio_clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.BillingAddress,
		c.VatNumber, c.IsActive, s.d.timeArg(c.CreatedAt), s.d.timePtrArg(c.UpdatedAt))
	return s.uniqueErr(err)
}

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	c, err := scanClient(s.queryRow(ctx, `SELECT `+clientColumns+` FROM folio_clients WHERE id = ?`, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrClientNotFound
	}
	return c, err
}

func (s *Store) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	var w where
	if opts.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if opts.Search != "" {
		p := likePattern(opts.Search)
		w.add(`(LOWER(company_name) LIKE ? ESCAPE '\' OR LOWER(contact_person) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, p, p, p)
	}
	q := `SELECT ` + clientColumns + ` FROM folio_clients` + w.String() + ` ORDER BY LOWER(company_name), id`
	q += w.page(opts.Limit, opts.Offset)

	rows, err := s.query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*client.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	res, err := s.exec(ctx, `UPDATE folio_clients SET
		company_name = ?, contact_person = ?, email = ?, phone = ?, billing_address = ?,
		vat_number = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.BillingAddress,
		c.VatNumber, c.IsActive, s.d.timePtrArg(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return affected(res, folio.ErrClientNotFound)
}

// ──────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────

const productColumns = `id, name, description, unit_price, currency, tax_rate, sku,
	is_active, created_at, updated_at`

func scanProduct(row rowScanner) (*product.Product, error) {
	var (
		p                    product.Product
		price                int64
		currency             string
		rate                 decimal.NullDecimal
		createdAt, updatedAt dbTime
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &currency, &rate, &p.SKU,
		&p.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.UnitPrice = types.Money{Amount: price, Currency: currency}
	if rate.Valid {
		r := rate.Decimal
		p.TaxRate = &r
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Ptr()
	return &p, nil
}

func taxRateArg(r *decimal.Decimal) decimal.NullDecimal {
	if r == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *r, Valid: true}
}

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	_, err := s.exec(ctx, `INSERT INTO folio_products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.UnitPrice.Amount, p.UnitPrice.Currency, taxRateArg(p.TaxRate),
		p.SKU, p.IsActive, s.d.timeArg(p.CreatedAt), s.d.timePtrArg(p.UpdatedAt))
	return s.uniqueErr(err)
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, `SELECT `+productColumns+` FROM folio_products WHERE id = ?`, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrProductNotFound
	}
	return p, err
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*product.Product, error) {
	if sku == "" {
		return nil, folio.ErrProductNotFound
	}
	p, err := scanProduct(s.queryRow(ctx, `SELECT `+productColumns+` FROM folio_products WHERE sku = ?`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.ErrProductNotFound
	}
	return p, err
}

func (s *Store) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	var w where
	if opts.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if opts.Search != "" {
		p := likePattern(opts.Search)
		w.add(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\')`, p, p)
	}
	q := `SELECT ` + productColumns + ` FROM folio_products` + w.String() + ` ORDER BY LOWER(name), id`
	q += w.page(opts.Limit, opts.Offset)

	rows, err := s.query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	res, err := s.exec(ctx, `UPDATE folio_products SET
		name = ?, description = ?, unit_price = ?, currency = ?, tax_rate = ?, sku = ?,
		is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.UnitPrice.Amount, p.UnitPrice.Currency, taxRateArg(p.TaxRate), p.SKU,
		p.IsActive, s.d.timePtrArg(p.UpdatedAt), p.ID)
	if err != nil {
		return s.uniqueErr(err)
	}
	return affected(res, folio.ErrProductNotFound)
}
