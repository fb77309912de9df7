package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintail/fintail/pkg/providers"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	require.NoError(t, err)

	assert.Len(t, cfg.Providers, 3)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, "fintail.db", cfg.DatabasePath)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
providers:
  - id: financial-modeling-prep
    apiKeyEnv: FMP_KEY
    requestsPerSecond: 4
  - id: yahoo-finance
    timeout: 20s
priority:
  - yahoo-finance
  - financial-modeling-prep
retry:
  maxAttempts: 5
  baseDelay: 250ms
batch:
  waveSize: 10
  wavePause: 5s
databasePath: /var/lib/fintail/fintail.db
`))
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, providers.FinancialModelingPrepID, cfg.Providers[0].ID)
	assert.Equal(t, 4.0, cfg.Providers[0].RequestsPerSecond)
	assert.Equal(t, 20*time.Second, cfg.Providers[1].Timeout)
	assert.Equal(t, []providers.ID{providers.YahooFinanceID, providers.FinancialModelingPrepID}, cfg.Priority)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 10, cfg.Batch.WaveSize)
	assert.Equal(t, "/var/lib/fintail/fintail.db", cfg.DatabasePath)
}

func TestParseRejectsUnknownProvider(t *testing.T) {
	_, err := Parse([]byte(`
providers:
  - id: bloomberg
`))
	assert.Error(t, err)
}

func TestParseRejectsDuplicateProvider(t *testing.T) {
	_, err := Parse([]byte(`
providers:
  - id: yahoo-finance
  - id: yahoo-finance
`))
	assert.Error(t, err)
}

func TestParseRejectsAllDisabled(t *testing.T) {
	_, err := Parse([]byte(`
providers:
  - id: yahoo-finance
    disabled: true
`))
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	cfg, err := Parse([]byte(`
providers:
  - id: financial-modeling-prep
    disabled: true
  - id: yahoo-finance
`))
	require.NoError(t, err)

	enabled := cfg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, providers.YahooFinanceID, enabled[0].ID)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("FINTAIL_TEST_KEY", "secret")

	p := Provider{ID: providers.FinancialModelingPrepID, APIKeyEnv: "FINTAIL_TEST_KEY"}
	assert.Equal(t, "secret", p.APIKey())

	p.APIKeyEnv = ""
	assert.Empty(t, p.APIKey())
}
