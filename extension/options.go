package extension

import (
	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/store"
)

// Option configures the Folio Forge extension.
type Option func(*Extension)

// WithStore sets the store for the folio engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithFolioOption passes a folio.Option through to the underlying engine.
func WithFolioOption(opt folio.Option) Option {
	return func(e *Extension) {
		e.folioOpts = append(e.folioOpts, opt)
	}
}

// WithPlugin registers a folio plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.folioOpts = append(e.folioOpts, folio.WithPlugin(p))
	}
}

// WithAPIOption passes an api.Option through to the HTTP handler.
func WithAPIOption(opt api.Option) Option {
	return func(e *Extension) {
		e.apiOpts = append(e.apiOpts, opt)
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for folio routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithPaidTolerance sets the paid threshold in minor units.
func WithPaidTolerance(minor int64) Option {
	return func(e *Extension) { e.config.PaidTolerance = minor }
}

// WithDueDays sets the fallback payment term in days.
func WithDueDays(days int) Option {
	return func(e *Extension) { e.config.DueDays = days }
}
