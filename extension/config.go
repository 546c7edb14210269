package extension

// Config holds the Folio extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.folio" or "folio" keys).
type Config struct {
	// DisableRoutes prevents the HTTP API from being built and provided.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for folio routes (default: "/folio").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// PaidTolerance is the remaining balance, in minor units, at or below
	// which an invoice counts as fully paid (default: 1).
	PaidTolerance int64 `json:"paid_tolerance" mapstructure:"paid_tolerance" yaml:"paid_tolerance"`

	// DueDays is the fallback payment term when settings carry none (default: 30).
	DueDays int `json:"due_days" mapstructure:"due_days" yaml:"due_days"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:      "/folio",
		PaidTolerance: 1,
		DueDays:       30,
	}
}
