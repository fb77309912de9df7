package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintail/fintail/pkg/errors"
)

const fixtureResponse = `{
  "quoteSummary": {
    "result": [
      {
        "incomeStatementHistoryQuarterly": {
          "incomeStatementHistory": [
            {
              "endDate": {"fmt": "2024-03-31"},
              "totalRevenue": {"raw": 90753000, "fmt": "90.75B"},
              "netIncome": {"raw": 23636000, "fmt": "23.64B"},
              "operatingIncome": {"raw": 27900000, "fmt": "27.9B"},
              "dilutedEPS": {"raw": 1.53, "fmt": "1.53"}
            },
            {
              "endDate": {"fmt": "2023-12-31"},
              "totalRevenue": {"raw": 119575000, "fmt": "119.58B"},
              "netIncome": {"raw": 33916000, "fmt": "33.92B"}
            }
          ]
        },
        "balanceSheetHistoryQuarterly": {
          "balanceSheetStatements": [
            {
              "endDate": {"fmt": "2024-03-31"},
              "totalAssets": {"raw": 337411000, "fmt": "337.41B"},
              "totalDebt": {"raw": 104590000, "fmt": "104.59B"},
              "totalStockholderEquity": {"raw": 74194000, "fmt": "74.19B"},
              "sharesOutstanding": {"raw": 15334080000, "fmt": "15.33B"}
            }
          ]
        }
      }
    ],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func TestFetch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quoteSummary/AAPL", r.URL.Path)
		_, _ = w.Write([]byte(fixtureResponse))
	})

	records, err := c.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "2024-Q1", first.Quarter)
	assert.Equal(t, "2024-03-31", first.ReportDate)

	// Statement values are reported in thousands.
	assert.Equal(t, 90753000000.0, first.TotalRevenue)
	assert.Equal(t, 23636000000.0, first.NetIncome)
	assert.Equal(t, 1.53, first.EPS, "EPS is per share, never scaled")

	require.NotNil(t, first.TotalAssets)
	assert.Equal(t, 337411000000.0, *first.TotalAssets)
	require.NotNil(t, first.SharesOutstanding)
	assert.Equal(t, 15334080000.0, *first.SharesOutstanding, "share counts are never scaled")

	// 2023-Q4 has no matching balance sheet entry.
	assert.Nil(t, records[1].TotalAssets)
}

func TestFetchAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ZZZZ"}}}`))
	})

	_, err := c.Fetch(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.Equal(t, errors.FailureInvalidSymbol, errors.KindOf(err))
}

func TestFetchEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
	})

	_, err := c.Fetch(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, errors.FailureMalformedResponse, errors.KindOf(err))
}
