package extension

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfigurations(t *testing.T) {
	yamlCfg := Config{BasePath: "/billing", DueDays: 14}
	programmatic := Config{DisableMigrate: true, BasePath: "/ignored", PaidTolerance: 5}

	got := mergeConfigurations(yamlCfg, programmatic)
	assert.Equal(t, "/billing", got.BasePath)
	assert.Equal(t, 14, got.DueDays)
	assert.Equal(t, int64(5), got.PaidTolerance)
	assert.True(t, got.DisableMigrate)
	assert.False(t, got.DisableRoutes)
}

func TestMergeWithDefaults(t *testing.T) {
	got := mergeWithDefaults(Config{DisableRoutes: true})
	assert.Equal(t, DefaultConfig().BasePath, got.BasePath)
	assert.Equal(t, int64(1), got.PaidTolerance)
	assert.Equal(t, 30, got.DueDays)
	assert.True(t, got.DisableRoutes)
}

func TestBuildMountsRoutes(t *testing.T) {
	e := New(WithConfig(mergeWithDefaults(Config{})))
	e.build()
	require.NotNil(t, e.Engine())
	require.NotNil(t, e.Handler())

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/folio/invoices", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, e.Health(t.Context()))
}

func TestBuildWithoutRoutes(t *testing.T) {
	e := New(WithDisableRoutes())
	e.config = mergeWithDefaults(e.config)
	e.build()
	assert.NotNil(t, e.Engine())
	assert.Nil(t, e.Handler())
}
