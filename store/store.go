// Package store defines the unified persistence contract for Folio.
// Backends live in the memory, sqlite, postgres and mongo subpackages.
package store

import (
	"context"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
)

// Store is the unified storage interface for all Folio entities.
// Aggregate method names are prefixed with their entity, so the
// per-aggregate interfaces embed without conflicts.
type Store interface {
	invoice.Store
	client.Store
	product.Store
	settings.Store
	statement.Store
	emaillog.Store

	// Tx runs fn against a transaction-scoped Store. The transaction
	// commits when fn returns nil and rolls back otherwise. Calling Tx on
	// the scoped store runs fn inside the enclosing transaction.
	Tx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
