package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/providers"
)

const fixtureResponse = `[
  {
    "date": "2023-12-31",
    "symbol": "AAPL",
    "calendarYear": "2023",
    "period": "Q4",
    "revenue": 119575000000,
    "netIncome": 33916000000,
    "eps": 2.18,
    "operatingIncome": 40373000000,
    "freeCashFlow": 37503000000
  },
  {
    "date": "2024-03-31",
    "symbol": "AAPL",
    "calendarYear": "2024",
    "period": "Q1",
    "revenue": 90753000000,
    "netIncome": 23636000000,
    "eps": 1.53,
    "operatingIncome": 27900000000,
    "freeCashFlow": 20694000000
  }
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "demo", BaseURL: srv.URL})
}

func TestFetch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/income-statement/AAPL", r.URL.Path)
		assert.Equal(t, "quarter", r.URL.Query().Get("period"))
		assert.Equal(t, "demo", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(fixtureResponse))
	})

	records, err := c.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first regardless of response order.
	assert.Equal(t, "2024-Q1", records[0].Quarter)
	assert.Equal(t, "2024-03-31", records[0].ReportDate)
	assert.Equal(t, 90753000000.0, records[0].TotalRevenue)
	assert.Equal(t, 1.53, records[0].EPS)

	assert.Equal(t, "2023-Q4", records[1].Quarter)

	// Net sales default to revenue when the vendor omits them.
	assert.Equal(t, records[0].TotalRevenue, records[0].NetSales)
}

func TestFetchEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.Fetch(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, errors.FailureInvalidSymbol, errors.KindOf(err))
}

func TestFetchQuarterFallsBackToDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"2024-06-30","symbol":"AAPL","calendarYear":"","period":"","revenue":1}]`))
	})

	records, err := c.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "2024-Q2", records[0].Quarter)
}

func TestID(t *testing.T) {
	assert.Equal(t, providers.FinancialModelingPrepID, New(Config{}).ID())
}
