package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fintail/fintail/pkg/financials"
)

type stubProvider struct {
	id ID
}

func (s stubProvider) ID() ID { return s.id }

func (s stubProvider) Fetch(_ context.Context, _ string) ([]financials.QuarterlyRecord, error) {
	return nil, nil
}

func TestProvidersOrderStable(t *testing.T) {
	p := NewProviders()
	p.Set(stubProvider{id: YahooFinanceID})
	p.Set(stubProvider{id: FinancialModelingPrepID})
	p.Set(stubProvider{id: AlphaVantageID})

	var got []ID
	for _, prov := range p.List() {
		got = append(got, prov.ID())
	}
	assert.Equal(t, []ID{YahooFinanceID, FinancialModelingPrepID, AlphaVantageID}, got)

	// Replacing keeps the original position.
	p.Set(stubProvider{id: YahooFinanceID})
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, YahooFinanceID, p.List()[0].ID())
}

func TestIDValidity(t *testing.T) {
	for _, id := range IDs() {
		assert.True(t, id.IsValid(), id.String())
	}
	assert.False(t, ID("bloomberg").IsValid())
}

func TestOutcomeHasRecords(t *testing.T) {
	assert.False(t, Outcome{Succeeded: true}.HasRecords())
	assert.False(t, Outcome{Succeeded: false, Records: []financials.QuarterlyRecord{{}}}.HasRecords())
	assert.True(t, Outcome{Succeeded: true, Records: []financials.QuarterlyRecord{{}}}.HasRecords())
}
