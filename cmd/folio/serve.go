package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the Folio HTTP API with Prometheus metrics on /metrics.

When an SMTP host is configured the email delivery workers are started and
the send endpoints are enabled.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := cli.open(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Migrated %s store\n", cli.cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: http.addr from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.WithComponent(cli.log, "serve")

	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}

	opts := []api.Option{
		api.WithMetrics(cli.reg),
		api.WithLogger(logger.WithComponent(cli.log, "http")),
	}
	if w, err := startDelivery(ctx, engine); err != nil {
		log.Warn().Err(err).Msg("email delivery disabled")
	} else {
		defer w.Stop()
		opts = append(opts, api.WithDelivery(w))
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cli.cfg.HTTP.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(api.New(engine, opts...), cli.cfg.HTTP.BasePath),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("base_path", cli.cfg.HTTP.BasePath).
			Str("driver", cli.cfg.Database.Driver).
			Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// startDelivery starts the email worker pool when SMTP is configured.
func startDelivery(ctx context.Context, engine *folio.Folio) (*delivery.Worker, error) {
	m, err := newMailer(cli.cfg.SMTP)
	if err != nil {
		return nil, err
	}
	w := delivery.New(engine, m,
		delivery.WithWorkers(cli.cfg.Delivery.Workers),
		delivery.WithQueueSize(cli.cfg.Delivery.QueueSize),
		delivery.WithLogger(logger.WithComponent(cli.log, "delivery")),
	)
	w.Start(ctx)
	return w, nil
}
