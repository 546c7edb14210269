package client

import (
	"strings"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/types"
)

// Client is a billed customer. Clients are soft-deleted by clearing IsActive
// so that their invoices and statements keep a valid reference.
type Client struct {
	types.Entity
	ID             id.ClientID `json:"id"`
	CompanyName    string      `json:"company_name"`
	ContactPerson  string      `json:"contact_person,omitempty"`
	Email          string      `json:"email,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	BillingAddress string      `json:"billing_address,omitempty"`
	VatNumber      string      `json:"vat_number,omitempty"`
	IsActive       bool        `json:"is_active"`
}

// Matches reports whether the client's name, contact or email contains q
// (case-insensitive).
func (c *Client) Matches(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range []string{c.CompanyName, c.ContactPerson, c.Email} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Clone returns a copy of c.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	out := *c
	if c.UpdatedAt != nil {
		u := *c.UpdatedAt
		out.UpdatedAt = &u
	}
	return &out
}
