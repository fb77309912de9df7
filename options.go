package fintail

import (
	"github.com/rs/zerolog"

	"github.com/fintail/fintail/pkg/aggregator"
	"github.com/fintail/fintail/pkg/providers"
	"github.com/fintail/fintail/pkg/store"
)

// Option is a function that configures a pipeline client.
type Option func(*config) error

type config struct {
	providers []providers.Provider
	store     store.Store
	retry     *aggregator.RetryPolicy
	priority  []providers.ID
	logger    *zerolog.Logger
}

// WithProviders configures the providers to query. Their order is the
// order outcomes are reported in, and the tie-break order when no
// priority entry matches.
func WithProviders(provs ...providers.Provider) Option {
	return func(c *config) error {
		c.providers = provs
		return nil
	}
}

// WithStore configures where reconciled records are persisted.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		c.store = s
		return nil
	}
}

// WithRetryPolicy configures the per-provider retry budget.
func WithRetryPolicy(policy aggregator.RetryPolicy) Option {
	return func(c *config) error {
		c.retry = &policy
		return nil
	}
}

// WithPriority overrides the default primary-source priority order.
func WithPriority(priority []providers.ID) Option {
	return func(c *config) error {
		c.priority = priority
		return nil
	}
}

// WithLogger configures the logger used by the pipeline.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
