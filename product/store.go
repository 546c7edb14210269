package product

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store persists products.
type Store interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, productID id.ProductID) (*Product, error)
	// GetProductBySKU matches active and inactive products alike.
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	ListProducts(ctx context.Context, opts ListOpts) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
}

// ListOpts filters ListProducts. Results are ordered by name.
type ListOpts struct {
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}
