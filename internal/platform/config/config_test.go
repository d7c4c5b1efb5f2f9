package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PGSQL_URL", "postgres://localhost:5432/invoicing")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/invoicing", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, 4, cfg.CampaignConcurrency)
	assert.Equal(t, 3, cfg.APIRetries)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
}

func TestLoadConfig_RejectsMissingDatabaseURL(t *testing.T) {
	t.Setenv("PGSQL_URL", "")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestLoadConfig_RejectsMalformedProviderURL(t *testing.T) {
	t.Setenv("PGSQL_URL", "postgres://localhost:5432/invoicing")
	t.Setenv("BOOKINGS_API_URL", "://missing-scheme")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BookingsAPIURL")
}

func TestLoadConfig_ClampsConcurrency(t *testing.T) {
	t.Setenv("PGSQL_URL", "postgres://localhost:5432/invoicing")
	t.Setenv("CAMPAIGN_CONCURRENCY", "0")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.CampaignConcurrency)
}
