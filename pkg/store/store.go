// Package store defines the persistence contract for reconciled
// financial data. Records are keyed by company identifier and record
// kind, where the kind is either the company metadata row or one
// quarterly row per canonical quarter.
package store

import (
	"context"
	"strings"

	"github.com/fintail/fintail/pkg/financials"
)

// Record kinds under a company's partition.
const (
	MetadataKind  = "METADATA"
	QuarterPrefix = "QUARTER:"
)

// BatchSize is the number of rows written per batch.
const BatchSize = 25

// QuarterKind returns the record kind for a canonical quarter string.
func QuarterKind(quarter string) string {
	return QuarterPrefix + quarter
}

// QuarterFromKind extracts the quarter from a quarterly record kind.
// The second return is false for metadata or unrecognized kinds.
func QuarterFromKind(kind string) (string, bool) {
	q, ok := strings.CutPrefix(kind, QuarterPrefix)
	if !ok || q == "" {
		return "", false
	}
	return q, true
}

// Result reports what a WriteSeries call accomplished. Writes are
// at-least-once: a mid-batch failure leaves earlier batches in place
// and is reported rather than rolled back.
type Result struct {
	RecordsWritten    int      `json:"recordsWritten" yaml:"recordsWritten"`
	DuplicatesSkipped int      `json:"duplicatesSkipped" yaml:"duplicatesSkipped"`
	Errors            []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Success           bool     `json:"success" yaml:"success"`
}

// Store persists quarterly records and company profiles. Implementations
// own deduplication: re-storing a quarter already on record is a skip,
// not an overwrite.
type Store interface {
	// ExistingQuarters reports the quarter strings already stored for a
	// company.
	ExistingQuarters(ctx context.Context, companyID string) (map[string]bool, error)

	// WriteSeries writes the company profile (when non-nil) and any
	// quarterly records not already stored. It never writes a duplicate
	// quarter.
	WriteSeries(ctx context.Context, companyID string, records []financials.QuarterlyRecord, profile *financials.CompanyProfile) (Result, error)

	// Profile returns the stored company profile, or errors.ErrNotFound
	// if the company has no metadata record.
	Profile(ctx context.Context, companyID string) (*financials.CompanyProfile, error)

	// UpdateMarketCap refreshes the market-valuation fields on an
	// existing metadata record without touching the quarterly series.
	UpdateMarketCap(ctx context.Context, companyID string, marketCap, currentPrice, sharesOutstanding float64) error

	// ListBySector returns the tickers of companies in a sector.
	ListBySector(ctx context.Context, sector string) ([]string, error)

	// Close releases underlying resources.
	Close() error
}
