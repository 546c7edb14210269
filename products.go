package folio

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/types"
)

// ──────────────────────────────────────────────────
// Product Management
// ──────────────────────────────────────────────────

func validateProduct(p *product.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	if p.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if p.UnitPrice.IsNegative() {
		return ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	if p.TaxRate != nil && p.TaxRate.IsNegative() {
		return ValidationError{Field: "tax_rate", Message: "must not be negative"}
	}
	return nil
}

// CreateProduct stores a new active product. A non-empty SKU must be unique.
func (f *Folio) CreateProduct(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if p.UnitPrice.Currency == "" {
		cfg, err := f.store.GetSettings(ctx)
		if err != nil {
			return err
		}
		p.UnitPrice = p.UnitPrice.WithCurrency(cfg.Currency())
	}
	if p.ID.IsNil() {
		p.ID = id.NewProductID()
	}
	p.Entity = types.NewEntityAt(f.Now())
	p.IsActive = true

	if err := f.store.CreateProduct(ctx, p); err != nil {
		return err
	}
	f.logger.Info().Str("product", p.Name).Str("sku", p.SKU).Msg("product created")
	return nil
}

// GetProduct retrieves a product by ID.
func (f *Folio) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	return f.store.GetProduct(ctx, productID)
}

// ListProducts lists products ordered by name.
func (f *Folio) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	return f.store.ListProducts(ctx, opts)
}

// UpdateProduct replaces a product's details, keeping its creation time.
func (f *Folio) UpdateProduct(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	cur, err := f.store.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.UnitPrice.Currency == "" {
		p.UnitPrice = p.UnitPrice.WithCurrency(cur.UnitPrice.Currency)
	}
	p.Entity = cur.Entity
	p.TouchAt(f.Now())

	return f.store.UpdateProduct(ctx, p)
}

// DeleteProduct deactivates a product. Existing invoice lines keep their
// copied description and price.
func (f *Folio) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	p, err := f.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	p.IsActive = false
	p.TouchAt(f.Now())
	return f.store.UpdateProduct(ctx, p)
}

// SKUExists reports whether sku belongs to a product other than excludeID.
func (f *Folio) SKUExists(ctx context.Context, sku string, excludeID id.ProductID) (bool, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return false, nil
	}
	p, err := f.store.GetProductBySKU(ctx, sku)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.ID != excludeID, nil
}

// ProductLine builds an invoice line for qty units of a product, using the
// settings default tax rate when the product has none.
func (f *Folio) ProductLine(ctx context.Context, productID id.ProductID, qty decimal.Decimal) (invoice.LineItem, error) {
	p, err := f.store.GetProduct(ctx, productID)
	if err != nil {
		return invoice.LineItem{}, err
	}
	cfg, err := f.store.GetSettings(ctx)
	if err != nil {
		return invoice.LineItem{}, err
	}
	return product.LineItem(p, qty, cfg.DefaultTaxRate), nil
}
