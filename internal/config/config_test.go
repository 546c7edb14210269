package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOLIO_CONFIG", "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(1), cfg.Ledger.PaidTolerance)
	assert.Equal(t, 30, cfg.Ledger.DueDays)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: postgres
  dsn: postgres://localhost/folio
http:
  addr: ":9090"
  shutdown_timeout: 3s
smtp:
  host: smtp.example.com
  port: 465
delivery:
  workers: 4
`), 0o600))

	t.Setenv("FOLIO_HTTP_ADDR", ":7070")
	t.Setenv("FOLIO_DUE_DAYS", "14")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 4, cfg.Delivery.Workers)
	assert.Equal(t, 64, cfg.Delivery.QueueSize, "unset keys keep defaults")
	assert.Equal(t, 14, cfg.Ledger.DueDays)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FOLIO_DB_DRIVER", "oracle")
	_, err := config.Load("")
	assert.Error(t, err)

	t.Setenv("FOLIO_DB_DRIVER", "memory")
	t.Setenv("FOLIO_DUE_DAYS", "soon")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestLoadDotEnvSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "absent.env")))

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FOLIO_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("FOLIO_TEST_DOTENV", "")
	os.Unsetenv("FOLIO_TEST_DOTENV")

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("FOLIO_TEST_DOTENV"))
}
