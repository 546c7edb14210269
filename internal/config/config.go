// Package config loads folio configuration from a YAML file and FOLIO_*
// environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xraph/folio/internal/logger"
)

// Config is the complete runtime configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      logger.Config  `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Delivery DeliveryConfig `yaml:"delivery"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // memory, sqlite, postgres, mongo
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"` // mongo database name
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SMTPConfig configures outgoing mail.
type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TLS         string `yaml:"tls"` // mandatory, opportunistic, none
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

// Enabled reports whether a mail host is configured.
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

// LedgerConfig tunes the engine.
type LedgerConfig struct {
	PaidTolerance int64 `yaml:"paid_tolerance"` // minor units
	DueDays       int   `yaml:"due_days"`
}

// DeliveryConfig sizes the email worker pool.
type DeliveryConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "folio.db", Database: "folio"},
		Log:      logger.DefaultConfig(),
		HTTP:     HTTPConfig{Addr: ":8080", BasePath: "/api", ShutdownTimeout: 10 * time.Second},
		SMTP:     SMTPConfig{Port: 587, TLS: "mandatory"},
		Ledger:   LedgerConfig{PaidTolerance: 1, DueDays: 30},
		Delivery: DeliveryConfig{Workers: 2, QueueSize: 64},
	}
}

// LoadDotEnv reads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load returns Default overlaid with the YAML file at path (if non-empty,
// else $FOLIO_CONFIG if set) and then with FOLIO_* variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FOLIO_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString("FOLIO_DB_DRIVER", &c.Database.Driver)
	setString("FOLIO_DB_DSN", &c.Database.DSN)
	setString("FOLIO_DB_NAME", &c.Database.Database)

	setString("FOLIO_LOG_LEVEL", &c.Log.Level)
	setString("FOLIO_LOG_FORMAT", &c.Log.Format)
	setString("FOLIO_LOG_TIME_FORMAT", &c.Log.TimeFormat)
	setString("FOLIO_LOG_OUTPUT", &c.Log.Output)

	setString("FOLIO_HTTP_ADDR", &c.HTTP.Addr)
	setString("FOLIO_HTTP_BASE_PATH", &c.HTTP.BasePath)

	setString("FOLIO_SMTP_HOST", &c.SMTP.Host)
	setString("FOLIO_SMTP_USERNAME", &c.SMTP.Username)
	setString("FOLIO_SMTP_PASSWORD", &c.SMTP.Password)
	setString("FOLIO_SMTP_TLS", &c.SMTP.TLS)
	setString("FOLIO_SMTP_FROM_ADDRESS", &c.SMTP.FromAddress)
	setString("FOLIO_SMTP_FROM_NAME", &c.SMTP.FromName)

	if err := setInt("FOLIO_SMTP_PORT", &c.SMTP.Port); err != nil {
		return err
	}
	if err := setInt("FOLIO_DUE_DAYS", &c.Ledger.DueDays); err != nil {
		return err
	}
	if v := os.Getenv("FOLIO_PAID_TOLERANCE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: FOLIO_PAID_TOLERANCE: %w", err)
		}
		c.Ledger.PaidTolerance = n
	}
	if err := setInt("FOLIO_DELIVERY_WORKERS", &c.Delivery.Workers); err != nil {
		return err
	}
	if err := setInt("FOLIO_DELIVERY_QUEUE_SIZE", &c.Delivery.QueueSize); err != nil {
		return err
	}
	if v := os.Getenv("FOLIO_HTTP_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: FOLIO_HTTP_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.HTTP.ShutdownTimeout = d
	}
	return nil
}

// Validate checks the values a backend or worker cannot start without.
func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "memory", "sqlite", "postgres", "mongo":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return errors.New("config: database dsn is required")
	}
	if c.Ledger.PaidTolerance < 0 {
		return errors.New("config: paid_tolerance must not be negative")
	}
	if c.Delivery.Workers < 1 || c.Delivery.QueueSize < 1 {
		return errors.New("config: delivery workers and queue_size must be positive")
	}
	switch c.SMTP.TLS {
	case "", "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("config: unknown smtp tls policy %q", c.SMTP.TLS)
	}
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}
