package cmd

import (
	"os"

	"github.com/spf13/viper"

	"github.com/fintail/fintail"
	"github.com/fintail/fintail/internal/config"
	"github.com/fintail/fintail/internal/providers/alphavantage"
	"github.com/fintail/fintail/internal/providers/fmp"
	"github.com/fintail/fintail/internal/providers/yahoo"
	"github.com/fintail/fintail/internal/store/sqlite"
	"github.com/fintail/fintail/pkg/aggregator"
	"github.com/fintail/fintail/pkg/providers"
	"github.com/fintail/fintail/pkg/store"
)

// loadConfig reads the config file named by --config, falling back to
// ./fintail.yaml and then to built-in defaults.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = "fintail.yaml"
		if _, err := os.Stat(path); err != nil {
			cfg := config.Default()
			applyFlagOverrides(cfg)
			return cfg, nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg)
	return cfg, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if db := viper.GetString("databasePath"); db != "" {
		cfg.DatabasePath = db
	}
}

// buildProvider constructs the client for one configured provider.
func buildProvider(p config.Provider) providers.Provider {
	switch p.ID {
	case providers.FinancialModelingPrepID:
		return fmp.New(fmp.Config{
			APIKey:            config.ResolveAPIKey(p),
			BaseURL:           p.BaseURL,
			Timeout:           p.Timeout,
			RequestsPerSecond: p.RequestsPerSecond,
		})
	case providers.AlphaVantageID:
		return alphavantage.New(alphavantage.Config{
			APIKey:            config.ResolveAPIKey(p),
			BaseURL:           p.BaseURL,
			Timeout:           p.Timeout,
			RequestsPerSecond: p.RequestsPerSecond,
		})
	case providers.YahooFinanceID:
		return yahoo.New(yahoo.Config{
			BaseURL:           p.BaseURL,
			Timeout:           p.Timeout,
			RequestsPerSecond: p.RequestsPerSecond,
		})
	}
	return nil
}

// openPipeline builds the pipeline client and store from configuration.
// The caller owns closing the returned store.
func openPipeline(cfg *config.Config) (fintail.Client, store.Store, error) {
	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	var provs []providers.Provider
	for _, p := range cfg.Enabled() {
		if client := buildProvider(p); client != nil {
			provs = append(provs, client)
		}
	}

	opts := []fintail.Option{
		fintail.WithProviders(provs...),
		fintail.WithStore(db),
		fintail.WithRetryPolicy(aggregator.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
		}),
	}
	if len(cfg.Priority) > 0 {
		opts = append(opts, fintail.WithPriority(cfg.Priority))
	}

	client, err := fintail.New(opts...)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return client, db, nil
}
