// Package providers defines the interface and types for external financial
// data sources. Each provider client translates one vendor's wire schema into
// partial quarterly records ordered most-recent-first; the aggregator fans a
// company lookup out across all configured providers.
//
// Example usage:
//
//	records, err := provider.Fetch(ctx, "AAPL")
//	if err != nil {
//	    kind := errors.KindOf(err) // timeout, rate_limited, ...
//	}
package providers

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fintail/fintail/pkg/financials"
)

// ID represents the identifier of an external data provider.
type ID string

// String returns the string representation of a provider ID.
func (id ID) String() string {
	return string(id)
}

// Known provider IDs.
const (
	FinancialModelingPrepID ID = "financial-modeling-prep"
	AlphaVantageID          ID = "alpha-vantage"
	YahooFinanceID          ID = "yahoo-finance"
)

// IDs returns all known provider IDs in priority order, most authoritative
// first. The reconciler uses this order to pick its primary source.
func IDs() []ID {
	return []ID{
		FinancialModelingPrepID,
		AlphaVantageID,
		YahooFinanceID,
	}
}

// IsValid returns true if the ID is one of the known provider IDs.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Provider is a client for one external financial data source.
type Provider interface {
	// ID returns the identifier of this provider
	ID() ID

	// Fetch retrieves partial quarterly records for a company, ordered
	// most-recent-first. The call is bounded by ctx; on deadline it fails
	// with a timeout-kind error rather than hanging. Retries are the
	// aggregator's responsibility, never the provider's.
	Fetch(ctx context.Context, companyID string) ([]financials.QuarterlyRecord, error)
}

// Outcome is the immutable result of querying one provider for one company
// during a single aggregation run.
type Outcome struct {
	SourceID  ID                           `json:"sourceId"`
	Succeeded bool                         `json:"succeeded"`
	Records   []financials.QuarterlyRecord `json:"records,omitempty"`
	ErrorMsg  string                       `json:"errorMessage,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

// HasRecords reports whether the outcome succeeded with at least one record.
func (o Outcome) HasRecords() bool {
	return o.Succeeded && len(o.Records) > 0
}

// Providers is a thread-safe container for configured provider clients,
// preserving registration order for deterministic downstream processing.
type Providers struct {
	mu    sync.RWMutex
	order []ID
	byID  map[ID]Provider
}

// NewProviders creates a new Providers container.
func NewProviders() *Providers {
	return &Providers{byID: make(map[ID]Provider)}
}

// Get returns a provider by ID.
func (p *Providers) Get(id ID) (Provider, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prov, found := p.byID[id]
	return prov, found
}

// Set registers a provider, replacing any existing provider with the same ID
// while keeping its original position in the order.
func (p *Providers) Set(prov Provider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := prov.ID()
	if _, exists := p.byID[id]; !exists {
		p.order = append(p.order, id)
	}
	p.byID[id] = prov
}

// Len returns the number of registered providers.
func (p *Providers) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// List returns all providers in registration order.
func (p *Providers) List() []Provider {
	p.mu.RLock()
	defer p.mu.RUnlock()
	provs := make([]Provider, 0, len(p.order))
	for _, id := range p.order {
		provs = append(provs, p.byID[id])
	}
	return provs
}
