package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
)

func series() []financials.QuarterlyRecord {
	return []financials.QuarterlyRecord{
		{Quarter: "2024-Q1", ReportDate: "2024-03-31", TotalRevenue: 100, NetIncome: 10},
		{Quarter: "2023-Q4", ReportDate: "2023-12-31", TotalRevenue: 90, NetIncome: 8},
	}
}

func TestWriteSeriesIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.WriteSeries(ctx, "AAPL", series(), nil)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, 2, first.RecordsWritten)
	assert.Zero(t, first.DuplicatesSkipped)

	second, err := s.WriteSeries(ctx, "AAPL", series(), nil)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Zero(t, second.RecordsWritten)
	assert.Equal(t, 2, second.DuplicatesSkipped)
	assert.Equal(t, 2, s.QuarterCount("AAPL"))
}

func TestWriteSeriesProfile(t *testing.T) {
	ctx := context.Background()
	s := New()

	profile := &financials.CompanyProfile{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology"}
	result, err := s.WriteSeries(ctx, "AAPL", series(), profile)
	require.NoError(t, err)
	assert.Equal(t, 3, result.RecordsWritten, "profile counts as one record")

	got, err := s.Profile(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", got.Name)

	_, err = s.Profile(ctx, "MSFT")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestExistingQuarters(t *testing.T) {
	ctx := context.Background()
	s := New()

	existing, err := s.ExistingQuarters(ctx, "AAPL")
	require.NoError(t, err)
	assert.Empty(t, existing)

	_, err = s.WriteSeries(ctx, "AAPL", series(), nil)
	require.NoError(t, err)

	existing, err = s.ExistingQuarters(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-Q1": true, "2023-Q4": true}, existing)
}

func TestPartialFailure(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailAfter = 1

	result, err := s.WriteSeries(ctx, "AAPL", series(), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.RecordsWritten)
	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, 1, s.QuarterCount("AAPL"), "earlier writes stay in place")
}

func TestUpdateMarketCap(t *testing.T) {
	ctx := context.Background()
	s := New()

	assert.ErrorIs(t, s.UpdateMarketCap(ctx, "AAPL", 1, 1, 1), errors.ErrNotFound)

	profile := &financials.CompanyProfile{Ticker: "AAPL", Name: "Apple Inc."}
	_, err := s.WriteSeries(ctx, "AAPL", nil, profile)
	require.NoError(t, err)

	require.NoError(t, s.UpdateMarketCap(ctx, "AAPL", 3e12, 195.5, 1.5e10))

	got, err := s.Profile(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3e12, got.MarketCap)
	assert.Equal(t, 195.5, got.CurrentPrice)
	assert.Equal(t, "Apple Inc.", got.Name, "non-valuation fields untouched")
}

func TestListBySector(t *testing.T) {
	ctx := context.Background()
	s := New()

	for ticker, sector := range map[string]string{"AAPL": "Technology", "MSFT": "Technology", "XOM": "Energy"} {
		_, err := s.WriteSeries(ctx, ticker, nil, &financials.CompanyProfile{Ticker: ticker, Sector: sector})
		require.NoError(t, err)
	}

	tech, err := s.ListBySector(ctx, "Technology")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, tech)
}
