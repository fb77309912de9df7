// Package reconciler merges per-source fetch outcomes into one canonical
// quarterly series. A primary source is selected by fixed priority; the
// remaining sources only fill fields the primary left empty, quarter by
// quarter, so a secondary source can never override primary data.
package reconciler

import (
	"context"
	"sort"

	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/logging"
	"github.com/fintail/fintail/pkg/providers"
	"github.com/fintail/fintail/pkg/validator"
)

// NoPrimarySource is the attribution used when no provider succeeded.
const NoPrimarySource providers.ID = "none"

// MaxQuarters bounds the canonical series to the most recent quarters.
const MaxQuarters = 8

// Series is the canonical reconciled output for one company.
type Series struct {
	// PrimarySourceID names the provider whose records seeded the series,
	// or "none" when every provider failed.
	PrimarySourceID providers.ID `json:"primarySourceId"`

	// Records holds up to MaxQuarters accepted records, most recent first.
	Records []financials.QuarterlyRecord `json:"records"`
}

// Empty reports whether the series holds no records.
func (s Series) Empty() bool {
	return len(s.Records) == 0
}

// Reconciler merges source outcomes into a canonical series.
type Reconciler struct {
	priority []providers.ID
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPriority overrides the fixed provider priority order used to select
// the primary source.
func WithPriority(priority []providers.ID) Option {
	return func(r *Reconciler) {
		r.priority = priority
	}
}

// New creates a Reconciler. The default priority is the known provider order:
// FMP, then Alpha Vantage, then Yahoo Finance.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{priority: providers.IDs()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile builds the canonical series from per-source outcomes. It returns
// the series plus the validation outcome of every merged record, accepted or
// not; only accepted records make it into the series.
func (r *Reconciler) Reconcile(ctx context.Context, outcomes []providers.Outcome) (Series, []validator.Outcome) {
	logger := logging.FromContext(ctx)

	usable := usableOutcomes(outcomes)
	if len(usable) == 0 {
		return Series{PrimarySourceID: NoPrimarySource}, nil
	}

	primary := r.selectPrimary(usable)
	logger.Debug().
		Str("primary", primary.SourceID.String()).
		Int("usable_sources", len(usable)).
		Msg("Selected primary source")

	var validations []validator.Outcome
	var accepted []financials.QuarterlyRecord
	seen := make(map[string]bool)

	for _, rec := range primary.Records {
		// A primary record without a quarter cannot be keyed; skip it.
		if rec.Quarter == "" || seen[rec.Quarter] {
			continue
		}
		seen[rec.Quarter] = true

		merged := mergeQuarter(rec, primary.SourceID, usable)

		v := validator.Validate(merged)
		validations = append(validations, v)
		if !v.Accepted {
			logger.Debug().
				Str("quarter", rec.Quarter).
				Strs("errors", v.Errors).
				Msg("Dropping rejected record")
			continue
		}
		accepted = append(accepted, *v.Normalized)
	}

	// Most recent first. YYYY-QN sorts lexicographically by recency.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Quarter > accepted[j].Quarter
	})
	if len(accepted) > MaxQuarters {
		accepted = accepted[:MaxQuarters]
	}

	return Series{
		PrimarySourceID: primary.SourceID,
		Records:         accepted,
	}, validations
}

// usableOutcomes filters to outcomes that succeeded with records, keeping
// input order.
func usableOutcomes(outcomes []providers.Outcome) []providers.Outcome {
	var usable []providers.Outcome
	for _, o := range outcomes {
		if o.HasRecords() {
			usable = append(usable, o)
		}
	}
	return usable
}

// selectPrimary picks the highest-priority successful outcome. When no
// successful provider appears in the priority list, the first successful
// outcome in input order becomes primary; input order matches provider
// configuration order, so the fallback is deterministic too.
func (r *Reconciler) selectPrimary(usable []providers.Outcome) providers.Outcome {
	for _, id := range r.priority {
		for _, o := range usable {
			if o.SourceID == id {
				return o
			}
		}
	}
	return usable[0]
}

// mergeQuarter seeds a record from the primary source and fills still-empty
// fields from secondary sources that reported the same quarter. Filling is
// idempotent per field: once populated, later sources cannot change it, so
// secondary iteration order never affects the result.
func mergeQuarter(primary financials.QuarterlyRecord, primaryID providers.ID, usable []providers.Outcome) financials.QuarterlyRecord {
	merged := primary
	if merged.TotalRevenue == 0 {
		merged.TotalRevenue = merged.NetSales
	}

	for _, o := range usable {
		if o.SourceID == primaryID {
			continue
		}
		match, ok := findQuarter(o.Records, merged.Quarter)
		if !ok {
			continue
		}
		fillGaps(&merged, match)
	}
	return merged
}

// findQuarter returns the first record with the given quarter key.
func findQuarter(records []financials.QuarterlyRecord, quarter string) (financials.QuarterlyRecord, bool) {
	for _, rec := range records {
		if rec.Quarter == quarter {
			return rec, true
		}
	}
	return financials.QuarterlyRecord{}, false
}

// fillGaps copies fields from src into dst where dst still holds its default.
func fillGaps(dst *financials.QuarterlyRecord, src financials.QuarterlyRecord) {
	if dst.ReportDate == "" {
		dst.ReportDate = src.ReportDate
	}
	if dst.NetSales == 0 {
		dst.NetSales = src.NetSales
	}
	if dst.TotalRevenue == 0 {
		dst.TotalRevenue = src.TotalRevenue
	}
	if dst.NetIncome == 0 {
		dst.NetIncome = src.NetIncome
	}
	if dst.EPS == 0 {
		dst.EPS = src.EPS
	}
	if dst.OperatingIncome == 0 {
		dst.OperatingIncome = src.OperatingIncome
	}
	if dst.FreeCashFlow == 0 {
		dst.FreeCashFlow = src.FreeCashFlow
	}
	if dst.TotalAssets == nil {
		dst.TotalAssets = src.TotalAssets
	}
	if dst.TotalDebt == nil {
		dst.TotalDebt = src.TotalDebt
	}
	if dst.ShareholderEquity == nil {
		dst.ShareholderEquity = src.ShareholderEquity
	}
	if dst.SharesOutstanding == nil {
		dst.SharesOutstanding = src.SharesOutstanding
	}
}
