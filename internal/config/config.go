// Package config loads pipeline configuration from a YAML file with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/providers"
)

// Provider configures one data source.
type Provider struct {
	ID providers.ID `yaml:"id"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	// Keys never appear in the file itself.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`

	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond,omitempty"`
	Disabled          bool          `yaml:"disabled,omitempty"`
}

// APIKey resolves the provider's API key from the environment.
func (p Provider) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// Retry configures the aggregator's per-provider retry budget.
type Retry struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
}

// Batch configures multi-company runs.
type Batch struct {
	// WaveSize is how many companies run concurrently.
	WaveSize int `yaml:"waveSize"`

	// WavePause is the rest between waves, easing provider rate limits.
	WavePause time.Duration `yaml:"wavePause"`

	// Schedule is an optional cron expression for recurring runs.
	Schedule string `yaml:"schedule,omitempty"`
}

// Config is the root configuration.
type Config struct {
	Providers []Provider     `yaml:"providers"`
	Priority  []providers.ID `yaml:"priority,omitempty"`
	Retry     Retry          `yaml:"retry"`
	Batch     Batch          `yaml:"batch"`

	// DatabasePath is where the SQLite store lives.
	DatabasePath string `yaml:"databasePath"`
}

// Default returns the configuration used when no file is supplied:
// all three providers enabled in priority order, conservative retries,
// and a local database file.
func Default() *Config {
	return &Config{
		Providers: []Provider{
			{ID: providers.FinancialModelingPrepID, APIKeyEnv: "FMP_API_KEY"},
			{ID: providers.AlphaVantageID, APIKeyEnv: "ALPHA_VANTAGE_API_KEY"},
			{ID: providers.YahooFinanceID},
		},
		Retry:        Retry{MaxAttempts: 3, BaseDelay: time.Second},
		Batch:        Batch{WaveSize: 5, WavePause: 2 * time.Second},
		DatabasePath: "fintail.db",
	}
}

// Load reads and validates the YAML file at path. Fields left unset
// fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("config", fmt.Sprintf("reading %s", path), err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("config", "parsing yaml", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = d.Retry.MaxAttempts
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = d.Retry.BaseDelay
	}
	if c.Batch.WaveSize <= 0 {
		c.Batch.WaveSize = d.Batch.WaveSize
	}
	if c.Batch.WavePause < 0 {
		c.Batch.WavePause = d.Batch.WavePause
	}
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
}

func (c *Config) validate() error {
	enabled := 0
	seen := make(map[providers.ID]bool)
	for _, p := range c.Providers {
		if !p.ID.IsValid() {
			return errors.NewConfigError("config", fmt.Sprintf("unknown provider %q", p.ID), nil)
		}
		if seen[p.ID] {
			return errors.NewConfigError("config", fmt.Sprintf("provider %q listed twice", p.ID), nil)
		}
		seen[p.ID] = true
		if !p.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		return errors.NewConfigError("config", "no providers enabled", nil)
	}
	for _, id := range c.Priority {
		if !id.IsValid() {
			return errors.NewConfigError("config", fmt.Sprintf("unknown provider %q in priority", id), nil)
		}
	}
	return nil
}

// Enabled returns the enabled provider configurations in file order.
func (c *Config) Enabled() []Provider {
	var out []Provider
	for _, p := range c.Providers {
		if !p.Disabled {
			out = append(out, p)
		}
	}
	return out
}
