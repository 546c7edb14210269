package product

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

// Product is a catalogue entry that can be added to invoices.
type Product struct {
	types.Entity
	ID          id.ProductID     `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	UnitPrice   types.Money      `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"` // nil uses the settings default
	SKU         string           `json:"sku,omitempty"`
	IsActive    bool             `json:"is_active"`
}

// LineItem builds an invoice line for qty units of p. When p has no tax
// rate of its own, defaultRate applies.
func LineItem(p *Product, qty decimal.Decimal, defaultRate decimal.Decimal) invoice.LineItem {
	rate := defaultRate
	if p.TaxRate != nil {
		rate = *p.TaxRate
	}
	desc := p.Name
	if p.Description != "" {
		desc = p.Name + " - " + p.Description
	}
	return invoice.LineItem{
		ProductID:   p.ID,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   p.UnitPrice,
		TaxRate:     rate,
	}
}

// Clone returns a copy of p.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	out := *p
	if p.UpdatedAt != nil {
		u := *p.UpdatedAt
		out.UpdatedAt = &u
	}
	if p.TaxRate != nil {
		r := *p.TaxRate
		out.TaxRate = &r
	}
	return &out
}
