// Package memory provides an in-memory Store for tests and single-process
// embedding. All values are deep-copied on the way in and out.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

type state struct {
	settings   *settings.Settings
	invoices   map[string]*invoice.Invoice
	clients    map[string]*client.Client
	products   map[string]*product.Product
	statements map[string]*statement.Statement
	emailLogs  []*emaillog.Entry
}

func newState() *state {
	return &state{
		invoices:   make(map[string]*invoice.Invoice),
		clients:    make(map[string]*client.Client),
		products:   make(map[string]*product.Product),
		statements: make(map[string]*statement.Statement),
	}
}

// clone deep-copies the state for transaction rollback.
func (st *state) clone() *state {
	out := newState()
	out.settings = st.settings.Clone()
	for k, v := range st.invoices {
		out.invoices[k] = v.Clone()
	}
	for k, v := range st.clients {
		out.clients[k] = v.Clone()
	}
	for k, v := range st.products {
		out.products[k] = v.Clone()
	}
	for k, v := range st.statements {
		out.statements[k] = v.Clone()
	}
	for _, e := range st.emailLogs {
		cp := *e
		out.emailLogs = append(out.emailLogs, &cp)
	}
	return out
}

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{st: newState()}
}

// ──────────────────────────────────────────────────
// Invoice Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.invoices[inv.ID.String()]; exists {
		return folio.ErrAlreadyExists
	}
	if s.numberTaken(inv.Number, inv.ID) {
		return folio.ErrDuplicateInvoiceNumber
	}
	s.st.invoices[inv.ID.String()] = inv.Clone()
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, ok := s.st.invoices[invID.String()]; ok {
		return inv.Clone(), nil
	}
	return nil, folio.ErrInvoiceNotFound
}

func (s *Store) GetInvoiceByNumber(_ context.Context, number string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.st.invoices {
		if inv.Number == number {
			return inv.Clone(), nil
		}
	}
	return nil, folio.ErrInvoiceNotFound
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.st.invoices {
		if matchInvoice(inv, opts) {
			result = append(result, inv.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			if opts.Ascending {
				return a.InvoiceDate.Before(b.InvoiceDate)
			}
			return a.InvoiceDate.After(b.InvoiceDate)
		}
		if opts.Ascending {
			return a.Number < b.Number
		}
		return a.Number > b.Number
	})

	return page(result, opts.Offset, opts.Limit), nil
}

func matchInvoice(inv *invoice.Invoice, opts invoice.ListOpts) bool {
	switch {
	case !opts.ClientID.IsNil() && inv.ClientID != opts.ClientID:
		return false
	case opts.Status != "" && inv.Status != opts.Status:
		return false
	case !opts.From.IsZero() && inv.InvoiceDate.Before(opts.From):
		return false
	case !opts.To.IsZero() && inv.InvoiceDate.After(opts.To):
		return false
	case !opts.DueBefore.IsZero() && !inv.DueDate.Before(opts.DueBefore):
		return false
	case opts.Number != "" && !strings.Contains(strings.ToLower(inv.Number), strings.ToLower(opts.Number)):
		return false
	}
	return true
}

func (s *Store) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.st.invoices[inv.ID.String()]
	if !ok {
		return folio.ErrInvoiceNotFound
	}
	if s.numberTaken(inv.Number, inv.ID) {
		return folio.ErrDuplicateInvoiceNumber
	}
	next := inv.Clone()
	next.Payments = cur.Payments
	s.st.invoices[inv.ID.String()] = next
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, invID id.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.st.invoices, invID.String())
	return nil
}

func (s *Store) AddPayment(_ context.Context, p *invoice.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.st.invoices[p.InvoiceID.String()]
	if !ok {
		return folio.ErrInvoiceNotFound
	}
	inv.Payments = append(inv.Payments, *p)
	return nil
}

func (s *Store) ListPayments(_ context.Context, invID id.InvoiceID) ([]invoice.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.st.invoices[invID.String()]
	if !ok {
		return nil, folio.ErrInvoiceNotFound
	}
	out := append([]invoice.Payment(nil), inv.Payments...)
	sortPayments(out)
	return out, nil
}

func (s *Store) CountInvoices(_ context.Context, clientID id.ClientID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, inv := range s.st.invoices {
		if clientID.IsNil() || inv.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

// numberTaken must be called with mu held.
func (s *Store) numberTaken(number string, self id.InvoiceID) bool {
	for _, inv := range s.st.invoices {
		if inv.Number == number && inv.ID != self {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────
// Client Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.clients[c.ID.String()]; exists {
		return folio.ErrAlreadyExists
	}
	s.st.clients[c.ID.String()] = c.Clone()
	return nil
}

func (s *Store) GetClient(_ context.Context, clientID id.ClientID) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.st.clients[clientID.String()]; ok {
		return c.Clone(), nil
	}
	return nil, folio.ErrClientNotFound
}

func (s *Store) ListClients(_ context.Context, opts client.ListOpts) ([]*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*client.Client, 0)
	for _, c := range s.st.clients {
		if opts.ActiveOnly && !c.IsActive {
			continue
		}
		if !c.Matches(opts.Search) {
			continue
		}
		result = append(result, c.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].CompanyName) < strings.ToLower(result[j].CompanyName)
	})
	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.clients[c.ID.String()]; !exists {
		return folio.ErrClientNotFound
	}
	s.st.clients[c.ID.String()] = c.Clone()
	return nil
}

// ──────────────────────────────────────────────────
// Product Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateProduct(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.products[p.ID.String()]; exists {
		return folio.ErrAlreadyExists
	}
	if s.skuTaken(p.SKU, p.ID) {
		return folio.ErrDuplicateSKU
	}
	s.st.products[p.ID.String()] = p.Clone()
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID id.ProductID) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.st.products[productID.String()]; ok {
		return p.Clone(), nil
	}
	return nil, folio.ErrProductNotFound
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.st.products {
		if sku != "" && p.SKU == sku {
			return p.Clone(), nil
		}
	}
	return nil, folio.ErrProductNotFound
}

func (s *Store) ListProducts(_ context.Context, opts product.ListOpts) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(opts.Search)
	result := make([]*product.Product, 0)
	for _, p := range s.st.products {
		if opts.ActiveOnly && !p.IsActive {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		result = append(result, p.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateProduct(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.products[p.ID.String()]; !exists {
		return folio.ErrProductNotFound
	}
	if s.skuTaken(p.SKU, p.ID) {
		return folio.ErrDuplicateSKU
	}
	s.st.products[p.ID.String()] = p.Clone()
	return nil
}

// skuTaken must be called with mu held.
func (s *Store) skuTaken(sku string, self id.ProductID) bool {
	if sku == "" {
		return false
	}
	for _, p := range s.st.products {
		if p.SKU == sku && p.ID != self {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────
// Settings Store implementation
// ──────────────────────────────────────────────────

func (s *Store) GetSettings(_ context.Context) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settingsLocked().Clone(), nil
}

func (s *Store) UpdateSettings(_ context.Context, in *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.settingsLocked()
	next := in.Clone()
	if next.InvoiceNextNumber < cur.InvoiceNextNumber {
		next.InvoiceNextNumber = cur.InvoiceNextNumber
	}
	next.UpdatedAt = time.Now().UTC()
	s.st.settings = next
	return nil
}

func (s *Store) NextInvoiceNumber(_ context.Context) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.settingsLocked()
	n := cur.InvoiceNextNumber
	cur.InvoiceNextNumber++
	return cur.InvoicePrefix, n, nil
}

func (s *Store) PeekInvoiceNumber(_ context.Context) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.settingsLocked()
	return cur.InvoicePrefix, cur.InvoiceNextNumber, nil
}

// settingsLocked must be called with mu held for writing.
func (s *Store) settingsLocked() *settings.Settings {
	if s.st.settings == nil {
		s.st.settings = settings.Defaults()
	}
	return s.st.settings
}

// ──────────────────────────────────────────────────
// Statement Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateStatement(_ context.Context, st *statement.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.statements[st.ID.String()]; exists {
		return folio.ErrAlreadyExists
	}
	s.st.statements[st.ID.String()] = st.Clone()
	return nil
}

func (s *Store) GetStatement(_ context.Context, stmtID id.StatementID) (*statement.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.st.statements[stmtID.String()]; ok {
		return st.Clone(), nil
	}
	return nil, folio.ErrStatementNotFound
}

func (s *Store) ListStatements(_ context.Context, clientID id.ClientID) ([]*statement.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*statement.Statement, 0)
	for _, st := range s.st.statements {
		if clientID.IsNil() || st.ClientID == clientID {
			cp := st.Clone()
			cp.Lines = nil
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteStatement(_ context.Context, stmtID id.StatementID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.statements[stmtID.String()]; !ok {
		return folio.ErrStatementNotFound
	}
	delete(s.st.statements, stmtID.String())
	return nil
}

// ──────────────────────────────────────────────────
// Email log Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateEmailLog(_ context.Context, e *emaillog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.st.emailLogs = append(s.st.emailLogs, &cp)
	return nil
}

func (s *Store) ListEmailLogs(_ context.Context, opts emaillog.ListOpts) ([]*emaillog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*emaillog.Entry, 0)
	for i := len(s.st.emailLogs) - 1; i >= 0; i-- {
		e := s.st.emailLogs[i]
		switch {
		case !opts.InvoiceID.IsNil() && e.InvoiceID != opts.InvoiceID:
			continue
		case !opts.StatementID.IsNil() && e.StatementID != opts.StatementID:
			continue
		case opts.FailedOnly && e.Success:
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	return page(result, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Store management
// ──────────────────────────────────────────────────

// Tx serializes transactions and restores a snapshot of the whole store
// when fn fails or panics.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.st.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.st = snap
		s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(ctx, &txStore{s}); err != nil {
		restore()
		return err
	}
	return nil
}

// txStore is the transaction-scoped view; nested Tx calls join the
// enclosing transaction.
type txStore struct {
	*Store
}

func (t *txStore) Tx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, t)
}

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions

func page[T any](items []T, offset, limit int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sortPayments(ps []invoice.Payment) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].PaymentDate.Equal(ps[j].PaymentDate) {
			return ps[i].PaymentDate.Before(ps[j].PaymentDate)
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}
