package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/internal/logger"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")

	l, closer, err := logger.Setup(logger.Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	cl := logger.WithComponent(l, "delivery")
	cl.Info().Str("invoice", "INV1001").Msg("sent")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"component":"delivery"`)
	assert.Contains(t, line, `"invoice":"INV1001"`)
	assert.Contains(t, line, `"message":"sent"`)
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, _, err := logger.Setup(logger.Config{Level: "loud"})
	assert.Error(t, err)
}
