package fintail

import (
	"context"

	"github.com/google/uuid"

	"github.com/fintail/fintail/pkg/aggregator"
	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/logging"
	"github.com/fintail/fintail/pkg/quality"
	"github.com/fintail/fintail/pkg/reconciler"
	"github.com/fintail/fintail/pkg/store"
	"github.com/fintail/fintail/pkg/validator"
)

// Result collects what each pipeline stage produced for one company.
type Result struct {
	CompanyID   string              `json:"companyId" yaml:"companyId"`
	Series      reconciler.Series   `json:"series" yaml:"series"`
	Validations []validator.Outcome `json:"validations" yaml:"validations"`
	Quality     quality.Metrics     `json:"quality" yaml:"quality"`
	Storage     *store.Result       `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// ReconcileAndStore runs the full pipeline for one company. It returns
// a NoDataError when every provider fails, in which case the store is
// not touched.
func (c *client) ReconcileAndStore(ctx context.Context, companyID string, profile *financials.CompanyProfile) (*Result, error) {
	result, err := c.Reconcile(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c.store == nil {
		return nil, errors.NewConfigError("store", "no store configured", nil)
	}

	storage, err := c.store.WriteSeries(ctx, companyID, result.Series.Records, profile)
	if err != nil {
		return nil, err
	}
	result.Storage = &storage

	c.logger.Info().
		Str("company", companyID).
		Int("written", storage.RecordsWritten).
		Int("skipped", storage.DuplicatesSkipped).
		Bool("success", storage.Success).
		Msg("series stored")
	return result, nil
}

// Reconcile runs the pipeline up to quality scoring, leaving the store
// untouched.
func (c *client) Reconcile(ctx context.Context, companyID string) (*Result, error) {
	ctx = logging.WithLogger(ctx, c.logger)
	ctx = logging.WithRunID(ctx, uuid.NewString())
	ctx = logging.WithCompany(ctx, companyID)
	logger := logging.FromContext(ctx)

	outcomes := aggregator.Aggregate(ctx, companyID, c.providers.List(), c.retry)

	usable := 0
	for _, o := range outcomes {
		if o.HasRecords() {
			usable++
		}
	}
	if usable == 0 {
		logger.Warn().Int("providers", len(outcomes)).Msg("all providers failed")
		return nil, errors.NewNoDataError(companyID, len(outcomes))
	}

	series, validations := c.rec.Reconcile(ctx, outcomes)
	metrics := quality.Score(series.Records, outcomes)

	logger.Info().
		Str("primary", string(series.PrimarySourceID)).
		Int("quarters", len(series.Records)).
		Float64("quality", metrics.Overall).
		Msg("series reconciled")

	return &Result{
		CompanyID:   companyID,
		Series:      series,
		Validations: validations,
		Quality:     metrics,
	}, nil
}
