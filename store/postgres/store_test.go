package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/postgres"
	"github.com/xraph/folio/store/storetest"
)

// Set FOLIO_TEST_POSTGRES_DSN to a disposable database to run these tests.
const dsnEnv = "FOLIO_TEST_POSTGRES_DSN"

var tables = []string{
	"folio_email_logs",
	"folio_statement_lines",
	"folio_statements",
	"folio_payments",
	"folio_line_items",
	"folio_invoices",
	"folio_products",
	"folio_clients",
	"folio_settings",
}

func TestStoreContract(t *testing.T) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := postgres.Open(ctx, dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.Migrate(ctx))

		for _, table := range tables {
			_, err := s.DB().ExecContext(ctx, "DELETE FROM "+table)
			require.NoError(t, err)
		}
		return s
	})
}
