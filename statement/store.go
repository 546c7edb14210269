package statement

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store persists statements with their lines.
type Store interface {
	CreateStatement(ctx context.Context, st *Statement) error
	GetStatement(ctx context.Context, stmtID id.StatementID) (*Statement, error)
	// ListStatements returns the client's statements newest first, without lines.
	ListStatements(ctx context.Context, clientID id.ClientID) ([]*Statement, error)
	DeleteStatement(ctx context.Context, stmtID id.StatementID) error
}
