// Package memory provides an in-memory Store used by tests and dry
// runs. It mirrors the keyed layout of the durable store so behavior
// around duplicates and partial writes matches.
package memory

import (
	"context"
	"sync"

	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/store"
)

// Store keeps records keyed by (companyID, recordKind) behind a mutex.
type Store struct {
	mu       sync.RWMutex
	quarters map[string]map[string]financials.QuarterlyRecord
	profiles map[string]financials.CompanyProfile

	// FailAfter, when > 0, fails every write past the first N records
	// of a WriteSeries call. Used to exercise partial-failure paths.
	FailAfter int
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		quarters: make(map[string]map[string]financials.QuarterlyRecord),
		profiles: make(map[string]financials.CompanyProfile),
	}
}

var _ store.Store = (*Store)(nil)

// ExistingQuarters reports the quarters stored for a company.
func (s *Store) ExistingQuarters(ctx context.Context, companyID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]bool, len(s.quarters[companyID]))
	for q := range s.quarters[companyID] {
		existing[q] = true
	}
	return existing, nil
}

// WriteSeries stores the profile and any quarters not already present.
func (s *Store) WriteSeries(ctx context.Context, companyID string, records []financials.QuarterlyRecord, profile *financials.CompanyProfile) (store.Result, error) {
	existing, err := s.ExistingQuarters(ctx, companyID)
	if err != nil {
		return store.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := store.Result{Success: true}

	if profile != nil {
		s.profiles[companyID] = *profile
		result.RecordsWritten++
	}

	if s.quarters[companyID] == nil {
		s.quarters[companyID] = make(map[string]financials.QuarterlyRecord)
	}
	for _, rec := range records {
		if existing[rec.Quarter] {
			result.DuplicatesSkipped++
			continue
		}
		if s.FailAfter > 0 && result.RecordsWritten >= s.FailAfter {
			result.Success = false
			result.Errors = append(result.Errors, "simulated write failure")
			return result, nil
		}
		s.quarters[companyID][rec.Quarter] = rec
		result.RecordsWritten++
	}
	return result, nil
}

// Profile returns the stored profile for a company.
func (s *Store) Profile(ctx context.Context, companyID string) (*financials.CompanyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[companyID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &p, nil
}

// UpdateMarketCap refreshes valuation fields on an existing profile.
func (s *Store) UpdateMarketCap(ctx context.Context, companyID string, marketCap, currentPrice, sharesOutstanding float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[companyID]
	if !ok {
		return errors.ErrNotFound
	}
	p.MarketCap = marketCap
	p.CurrentPrice = currentPrice
	p.SharesOutstanding = sharesOutstanding
	s.profiles[companyID] = p
	return nil
}

// ListBySector returns the tickers whose profile matches the sector.
func (s *Store) ListBySector(ctx context.Context, sector string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tickers []string
	for id, p := range s.profiles {
		if p.Sector == sector {
			tickers = append(tickers, id)
		}
	}
	return tickers, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// QuarterCount reports the number of stored quarterly records for a
// company. Test helper.
func (s *Store) QuarterCount(companyID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quarters[companyID])
}

// Quarter returns a stored quarterly record. Test helper.
func (s *Store) Quarter(companyID, quarter string) (financials.QuarterlyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.quarters[companyID][quarter]
	return rec, ok
}
