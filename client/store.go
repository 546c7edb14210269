package client

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store persists clients.
type Store interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, clientID id.ClientID) (*Client, error)
	ListClients(ctx context.Context, opts ListOpts) ([]*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
}

// ListOpts filters ListClients. Results are ordered by company name.
type ListOpts struct {
	ActiveOnly bool
	Search     string // substring of company name, contact person or email
	Limit      int
	Offset     int
}
