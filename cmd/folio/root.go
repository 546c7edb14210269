package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xraph/folio"
	audithook "github.com/xraph/folio/audit_hook"
	"github.com/xraph/folio/internal/config"
	"github.com/xraph/folio/internal/logger"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/store/mongo"
	"github.com/xraph/folio/store/postgres"
	"github.com/xraph/folio/store/sqlite"
)

var version = "dev"

// app is the state shared by every command. It is filled in by the root
// command's pre-run hook.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	closer io.Closer
	engine *folio.Folio
	reg    *prometheus.Registry
	out    io.Writer
}

var cli = &app{log: zerolog.Nop(), out: os.Stdout}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - invoices, payments and client statements",
	Long: `Folio keeps the invoices, payments and client statements of a small
business in one ledger.

Run "folio serve" for the HTTP API, or use the subcommands to work on the
ledger directly. Configuration comes from a YAML file (--config or
FOLIO_CONFIG), a .env file and FOLIO_* environment variables.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cli.close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a dotenv file")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = cli.close()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	l, closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}

	cli.cfg = cfg
	cli.log = l
	cli.closer = closer
	cli.out = cmd.OutOrStdout()
	return nil
}

// openStore connects to the backend named by cfg.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(ctx, cfg.DSN)
	case "postgres":
		return postgres.Open(ctx, cfg.DSN)
	case "mongo":
		return mongo.Open(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// open connects the store, builds the engine with the metrics and audit
// plugins and starts it. Later calls return the same engine.
func (a *app) open(ctx context.Context) (*folio.Folio, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	s, err := openStore(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Database.Driver, err)
	}

	a.reg = prometheus.NewRegistry()
	engine := folio.New(s,
		folio.WithLogger(logger.WithComponent(a.log, "engine")),
		folio.WithPaidTolerance(a.cfg.Ledger.PaidTolerance),
		folio.WithDueDays(a.cfg.Ledger.DueDays),
		folio.WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(a.reg))),
		folio.WithPlugin(audithook.New(
			audithook.LogRecorder(logger.WithComponent(a.log, "audit")),
		)),
	)
	if err := engine.Start(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	a.engine = engine
	return engine, nil
}

func (a *app) close() error {
	var err error
	if a.engine != nil {
		err = a.engine.Stop()
		a.engine = nil
	}
	if a.closer != nil {
		if cerr := a.closer.Close(); err == nil {
			err = cerr
		}
		a.closer = nil
	}
	return err
}
