package folio

import (
	"context"
	"strings"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/types"
)

// ──────────────────────────────────────────────────
// Client Management
// ──────────────────────────────────────────────────

// CreateClient stores a new active client.
func (f *Folio) CreateClient(ctx context.Context, c *client.Client) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if c.CompanyName == "" {
		return ValidationError{Field: "company_name", Message: "is required"}
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if c.ID.IsNil() {
		c.ID = id.NewClientID()
	}
	c.Entity = types.NewEntityAt(f.Now())
	c.Email = strings.TrimSpace(c.Email)
	c.IsActive = true

	if err := f.store.CreateClient(ctx, c); err != nil {
		return err
	}

	f.logger.Info().Str("client", c.CompanyName).Msg("client created")
	f.plugins.EmitClientCreated(ctx, c)
	return nil
}

// GetClient retrieves a client by ID.
func (f *Folio) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	return f.store.GetClient(ctx, clientID)
}

// ListClients lists clients ordered by company name.
func (f *Folio) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	return f.store.ListClients(ctx, opts)
}

// UpdateClient replaces a client's details, keeping its creation time.
func (f *Folio) UpdateClient(ctx context.Context, c *client.Client) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if c.CompanyName == "" {
		return ValidationError{Field: "company_name", Message: "is required"}
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	cur, err := f.store.GetClient(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Entity = cur.Entity
	c.TouchAt(f.Now())

	return f.store.UpdateClient(ctx, c)
}

// DeleteClient deactivates a client. Its invoices and statements stay
// intact; inactive clients cannot receive new invoices.
func (f *Folio) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	c, err := f.store.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	if !c.IsActive {
		return nil
	}
	c.IsActive = false
	c.TouchAt(f.Now())

	if err := f.store.UpdateClient(ctx, c); err != nil {
		return err
	}
	f.logger.Info().Str("client", c.CompanyName).Msg("client deactivated")
	return nil
}
