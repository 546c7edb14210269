package folio

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/numbering"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/store"
)

// Folio is the invoicing engine.
type Folio struct {
	store   store.Store
	plugins *plugin.Registry
	logger  zerolog.Logger

	// writeMu serializes every mutating operation. Together with store.Tx
	// this keeps invoice numbering and payment application free of lost
	// updates even when background workers call in.
	writeMu sync.Mutex

	// Configuration
	now           func() time.Time
	paidTolerance int64
	dueDays       int
}

// New creates a new Folio instance.
func New(s store.Store, opts ...Option) *Folio {
	f := &Folio{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        zerolog.Nop(),
		now:           time.Now,
		paidTolerance: invoice.DefaultPaidTolerance,
		dueDays:       30,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Option configures a Folio instance.
type Option func(*Folio)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Folio) {
		f.logger = logger.With().Str("component", "folio").Logger()
		f.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(f *Folio) {
		_ = f.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(f *Folio) {
		f.plugins.WithTimeout(d)
	}
}

// WithClock replaces time.Now. Used by tests and replays.
func WithClock(now func() time.Time) Option {
	return func(f *Folio) {
		f.now = now
	}
}

// WithPaidTolerance sets the remaining balance, in minor units, at or
// below which an invoice counts as paid. The default is one cent.
func WithPaidTolerance(minor int64) Option {
	return func(f *Folio) {
		if minor >= 0 {
			f.paidTolerance = minor
		}
	}
}

// WithDueDays sets the due-date offset used by DuplicateInvoice.
func WithDueDays(days int) Option {
	return func(f *Folio) {
		if days > 0 {
			f.dueDays = days
		}
	}
}

// Start migrates the store and initializes plugins.
func (f *Folio) Start(ctx context.Context) error {
	if err := f.store.Migrate(ctx); err != nil {
		return err
	}

	f.plugins.EmitInit(ctx, f)

	f.logger.Info().
		Int64("paid_tolerance", f.paidTolerance).
		Int("due_days", f.dueDays).
		Int("plugins", f.plugins.Count()).
		Msg("folio started")

	return nil
}

// Stop shuts down plugins and closes the store.
func (f *Folio) Stop() error {
	f.plugins.EmitShutdown(context.Background())
	f.logger.Info().Msg("folio stopped")
	return f.store.Close()
}

// Store returns the underlying store.
func (f *Folio) Store() store.Store { return f.store }

// Plugins returns the plugin registry.
func (f *Folio) Plugins() *plugin.Registry { return f.plugins }

// Logger returns the engine logger.
func (f *Folio) Logger() zerolog.Logger { return f.logger }

// Now returns the engine clock's current time in UTC.
func (f *Folio) Now() time.Time { return f.now().UTC() }

// today is the current calendar day, midnight UTC.
func (f *Folio) today() time.Time { return invoice.Today(f.now()) }

// sequencer returns a numbering.Sequencer bound to s.
func sequencer(s store.Store) *numbering.Sequencer {
	return numbering.New(s)
}
