package plugin

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  zerolog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onInvoiceCreated       []OnInvoiceCreated
	onInvoiceUpdated       []OnInvoiceUpdated
	onInvoiceDeleted       []OnInvoiceDeleted
	onInvoiceDuplicated    []OnInvoiceDuplicated
	onInvoiceStatusChanged []OnInvoiceStatusChanged
	onPaymentRecorded      []OnPaymentRecorded
	onInvoicePaid          []OnInvoicePaid
	onOverpayment          []OnOverpayment
	onStatementGenerated   []OnStatementGenerated
	onClientCreated        []OnClientCreated
	onEmailSent            []OnEmailSent
	onEmailFailed          []OnEmailFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  zerolog.Nop(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger zerolog.Logger) *Registry {
	r.logger = logger.With().Str("component", "plugins").Logger()
	return r
}

// WithTimeout sets the per-call hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnInvoiceCreated); ok {
		r.onInvoiceCreated = append(r.onInvoiceCreated, v)
	}
	if v, ok := p.(OnInvoiceUpdated); ok {
		r.onInvoiceUpdated = append(r.onInvoiceUpdated, v)
	}
	if v, ok := p.(OnInvoiceDeleted); ok {
		r.onInvoiceDeleted = append(r.onInvoiceDeleted, v)
	}
	if v, ok := p.(OnInvoiceDuplicated); ok {
		r.onInvoiceDuplicated = append(r.onInvoiceDuplicated, v)
	}
	if v, ok := p.(OnInvoiceStatusChanged); ok {
		r.onInvoiceStatusChanged = append(r.onInvoiceStatusChanged, v)
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
	}
	if v, ok := p.(OnInvoicePaid); ok {
		r.onInvoicePaid = append(r.onInvoicePaid, v)
	}
	if v, ok := p.(OnOverpayment); ok {
		r.onOverpayment = append(r.onOverpayment, v)
	}
	if v, ok := p.(OnStatementGenerated); ok {
		r.onStatementGenerated = append(r.onStatementGenerated, v)
	}
	if v, ok := p.(OnClientCreated); ok {
		r.onClientCreated = append(r.onClientCreated, v)
	}
	if v, ok := p.(OnEmailSent); ok {
		r.onEmailSent = append(r.onEmailSent, v)
	}
	if v, ok := p.(OnEmailFailed); ok {
		r.onEmailFailed = append(r.onEmailFailed, v)
	}

	r.logger.Info().
		Str("name", p.Name()).
		Strs("interfaces", implementedInterfaces(p)).
		Msg("plugin registered")

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnInvoiceCreated", reflect.TypeOf((*OnInvoiceCreated)(nil)).Elem()},
	{"OnInvoiceUpdated", reflect.TypeOf((*OnInvoiceUpdated)(nil)).Elem()},
	{"OnInvoiceDeleted", reflect.TypeOf((*OnInvoiceDeleted)(nil)).Elem()},
	{"OnInvoiceDuplicated", reflect.TypeOf((*OnInvoiceDuplicated)(nil)).Elem()},
	{"OnInvoiceStatusChanged", reflect.TypeOf((*OnInvoiceStatusChanged)(nil)).Elem()},
	{"OnPaymentRecorded", reflect.TypeOf((*OnPaymentRecorded)(nil)).Elem()},
	{"OnInvoicePaid", reflect.TypeOf((*OnInvoicePaid)(nil)).Elem()},
	{"OnOverpayment", reflect.TypeOf((*OnOverpayment)(nil)).Elem()},
	{"OnStatementGenerated", reflect.TypeOf((*OnStatementGenerated)(nil)).Elem()},
	{"OnClientCreated", reflect.TypeOf((*OnClientCreated)(nil)).Elem()},
	{"OnEmailSent", reflect.TypeOf((*OnEmailSent)(nil)).Elem()},
	{"OnEmailFailed", reflect.TypeOf((*OnEmailFailed)(nil)).Elem()},
}

// implementedInterfaces returns the hook interfaces implemented by p.
func implementedInterfaces(p Plugin) []string {
	var out []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			out = append(out, h.name)
		}
	}
	return out
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit calls fn for every plugin in list. Failures are logged and never
// returned.
func emit[T Plugin](r *Registry, ctx context.Context, hook string, list []T, fn func(T) error) {
	for _, p := range list {
		if err := r.callWithTimeout(ctx, p.Name(), func() error { return fn(p) }); err != nil {
			r.logger.Warn().
				Str("plugin", p.Name()).
				Str("hook", hook).
				Err(err).
				Msg("plugin hook failed")
		}
	}
}

func snapshot[T any](r *Registry, list *[]T) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *list
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(r, ctx, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(r, ctx, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitInvoiceCreated emits an invoice created event.
func (r *Registry) EmitInvoiceCreated(ctx context.Context, inv *invoice.Invoice) {
	emit(r, ctx, "OnInvoiceCreated", snapshot(r, &r.onInvoiceCreated), func(p OnInvoiceCreated) error {
		return p.OnInvoiceCreated(ctx, inv.Clone())
	})
}

// EmitInvoiceUpdated emits an invoice updated event.
func (r *Registry) EmitInvoiceUpdated(ctx context.Context, inv *invoice.Invoice) {
	emit(r, ctx, "OnInvoiceUpdated", snapshot(r, &r.onInvoiceUpdated), func(p OnInvoiceUpdated) error {
		return p.OnInvoiceUpdated(ctx, inv.Clone())
	})
}

// EmitInvoiceDeleted emits an invoice deleted event.
func (r *Registry) EmitInvoiceDeleted(ctx context.Context, invID id.InvoiceID) {
	emit(r, ctx, "OnInvoiceDeleted", snapshot(r, &r.onInvoiceDeleted), func(p OnInvoiceDeleted) error {
		return p.OnInvoiceDeleted(ctx, invID)
	})
}

// EmitInvoiceDuplicated emits an invoice duplicated event.
func (r *Registry) EmitInvoiceDuplicated(ctx context.Context, source, copied *invoice.Invoice) {
	emit(r, ctx, "OnInvoiceDuplicated", snapshot(r, &r.onInvoiceDuplicated), func(p OnInvoiceDuplicated) error {
		return p.OnInvoiceDuplicated(ctx, source.Clone(), copied.Clone())
	})
}

// EmitInvoiceStatusChanged emits a status change event.
func (r *Registry) EmitInvoiceStatusChanged(ctx context.Context, inv *invoice.Invoice, from, to invoice.Status) {
	emit(r, ctx, "OnInvoiceStatusChanged", snapshot(r, &r.onInvoiceStatusChanged), func(p OnInvoiceStatusChanged) error {
		return p.OnInvoiceStatusChanged(ctx, inv.Clone(), from, to)
	})
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, inv *invoice.Invoice, pay invoice.Payment) {
	emit(r, ctx, "OnPaymentRecorded", snapshot(r, &r.onPaymentRecorded), func(p OnPaymentRecorded) error {
		cp := pay
		return p.OnPaymentRecorded(ctx, inv.Clone(), &cp)
	})
}

// EmitInvoicePaid emits an invoice paid event.
func (r *Registry) EmitInvoicePaid(ctx context.Context, inv *invoice.Invoice) {
	emit(r, ctx, "OnInvoicePaid", snapshot(r, &r.onInvoicePaid), func(p OnInvoicePaid) error {
		return p.OnInvoicePaid(ctx, inv.Clone())
	})
}

// EmitOverpayment emits an overpayment event.
func (r *Registry) EmitOverpayment(ctx context.Context, inv *invoice.Invoice, excess types.Money) {
	emit(r, ctx, "OnOverpayment", snapshot(r, &r.onOverpayment), func(p OnOverpayment) error {
		return p.OnOverpayment(ctx, inv.Clone(), excess)
	})
}

// EmitStatementGenerated emits a statement generated event.
func (r *Registry) EmitStatementGenerated(ctx context.Context, st *statement.Statement) {
	emit(r, ctx, "OnStatementGenerated", snapshot(r, &r.onStatementGenerated), func(p OnStatementGenerated) error {
		return p.OnStatementGenerated(ctx, st.Clone())
	})
}

// EmitClientCreated emits a client created event.
func (r *Registry) EmitClientCreated(ctx context.Context, c *client.Client) {
	emit(r, ctx, "OnClientCreated", snapshot(r, &r.onClientCreated), func(p OnClientCreated) error {
		return p.OnClientCreated(ctx, c.Clone())
	})
}

// EmitEmailSent emits a delivery success event.
func (r *Registry) EmitEmailSent(ctx context.Context, entry *emaillog.Entry) {
	emit(r, ctx, "OnEmailSent", snapshot(r, &r.onEmailSent), func(p OnEmailSent) error {
		cp := *entry
		return p.OnEmailSent(ctx, &cp)
	})
}

// EmitEmailFailed emits a delivery failure event.
func (r *Registry) EmitEmailFailed(ctx context.Context, entry *emaillog.Entry, cause error) {
	emit(r, ctx, "OnEmailFailed", snapshot(r, &r.onEmailFailed), func(p OnEmailFailed) error {
		cp := *entry
		return p.OnEmailFailed(ctx, &cp, cause)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the invoicing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
