// Package extension provides the Forge extension adapter for Folio.
//
// It implements the forge.Extension interface to integrate Folio
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.folio" or "folio" keys.
package extension

import (
	"context"
	"errors"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "folio"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Invoicing and client ledger engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Folio as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	engine    *folio.Folio
	store     store.Store
	api       *api.Handler
	handler   http.Handler
	folioOpts []folio.Option
	apiOpts   []api.Option
}

// New creates a new Folio Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Folio instance.
// This is nil until Register is called.
func (e *Extension) Engine() *folio.Folio { return e.engine }

// Handler returns the HTTP API mounted under the configured base path.
// It is nil until Register is called, and stays nil when routes are disabled.
func (e *Extension) Handler() http.Handler { return e.handler }

// Register implements [forge.Extension]. It loads configuration,
// initializes the folio engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	e.build()

	if err := vessel.Provide(fapp.Container(), func() (*folio.Folio, error) {
		return e.engine, nil
	}); err != nil {
		return err
	}
	if e.api == nil {
		return nil
	}
	return vessel.Provide(fapp.Container(), func() (*api.Handler, error) {
		return e.api, nil
	})
}

// build constructs the engine and, unless routes are disabled, its router.
func (e *Extension) build() {
	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	e.engine = folio.New(e.store, e.buildFolioOpts()...)

	if !e.config.DisableRoutes {
		e.api = api.New(e.engine, e.apiOpts...)
		e.handler = api.NewRouter(e.api, e.config.BasePath)
	}
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("folio: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("folio: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildFolioOpts constructs folio.Option values from the resolved config.
func (e *Extension) buildFolioOpts() []folio.Option {
	opts := make([]folio.Option, 0, len(e.folioOpts)+2)

	if e.config.PaidTolerance > 0 {
		opts = append(opts, folio.WithPaidTolerance(e.config.PaidTolerance))
	}
	if e.config.DueDays > 0 {
		opts = append(opts, folio.WithDueDays(e.config.DueDays))
	}

	// Append any pass-through folio options.
	opts = append(opts, e.folioOpts...)

	return opts
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("folio: configuration is required but not found in config files; " +
				"ensure 'extensions.folio' or 'folio' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("folio: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("paid_tolerance", e.config.PaidTolerance),
		forge.F("due_days", e.config.DueDays),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.folio", "folio"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("folio: loaded config from file", forge.F("key", key))
			return cfg, true
		}
		e.Logger().Warn("folio: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.PaidTolerance == 0 {
		cfg.PaidTolerance = defaults.PaidTolerance
	}
	if cfg.DueDays == 0 {
		cfg.DueDays = defaults.DueDays
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps and
// programmatic bool flags override when true.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if yamlConfig.BasePath == "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.PaidTolerance == 0 {
		yamlConfig.PaidTolerance = programmaticConfig.PaidTolerance
	}
	if yamlConfig.DueDays == 0 {
		yamlConfig.DueDays = programmaticConfig.DueDays
	}
	return mergeWithDefaults(yamlConfig)
}
