// Package fintail reconciles quarterly financial data from multiple
// market-data providers into one canonical series per company, scores
// its quality, and persists it idempotently.
//
// The pipeline for one company runs aggregation (parallel provider
// fetches with retries), reconciliation (primary-source selection and
// gap-fill), validation, quality scoring, and storage, in that order.
package fintail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fintail/fintail/pkg/aggregator"
	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/logging"
	"github.com/fintail/fintail/pkg/providers"
	"github.com/fintail/fintail/pkg/reconciler"
	"github.com/fintail/fintail/pkg/store"
)

// Client runs the reconciliation pipeline.
type Client interface {
	// ReconcileAndStore runs the full pipeline for one company and
	// persists the outcome. See the Result fields for what each stage
	// produced.
	ReconcileAndStore(ctx context.Context, companyID string, profile *financials.CompanyProfile) (*Result, error)

	// Reconcile runs the pipeline without the storage step. Useful for
	// dry runs and previews.
	Reconcile(ctx context.Context, companyID string) (*Result, error)

	// Providers returns the configured providers in configuration order.
	Providers() []providers.Provider
}

// client is the internal implementation of the Client interface.
type client struct {
	providers *providers.Providers
	store     store.Store
	rec       *reconciler.Reconciler
	retry     aggregator.RetryPolicy
	logger    *zerolog.Logger
}

// New creates a pipeline client with the given options. At least one
// provider is required; a store is required unless only Reconcile is
// used.
func New(opts ...Option) (Client, error) {
	c := &client{
		retry:  aggregator.DefaultRetryPolicy(),
		logger: logging.Default(),
	}

	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	c.providers = providers.NewProviders()
	for _, prov := range cfg.providers {
		c.providers.Set(prov)
	}
	c.store = cfg.store
	if cfg.retry != nil {
		c.retry = *cfg.retry
	}
	if cfg.logger != nil {
		c.logger = cfg.logger
	}

	recOpts := []reconciler.Option{}
	if len(cfg.priority) > 0 {
		recOpts = append(recOpts, reconciler.WithPriority(cfg.priority))
	}
	c.rec = reconciler.New(recOpts...)

	if c.providers.Len() == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	return c, nil
}

// Providers returns the configured providers in configuration order.
func (c *client) Providers() []providers.Provider {
	return c.providers.List()
}
