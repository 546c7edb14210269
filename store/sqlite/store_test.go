package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/sqlite"
	"github.com/xraph/folio/store/storetest"
)

func openMemory(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, openMemory)
}

func TestMigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folio.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	_, _, err = s.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Migrate(ctx))

	var applied int
	require.NoError(t, reopened.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM folio_migrations`).Scan(&applied))
	assert.Equal(t, len(sqlite.Migrations), applied)

	_, n, err := reopened.PeekInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), n, "counter persisted across reopen")
}
