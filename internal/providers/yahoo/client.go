// Package yahoo provides the Yahoo Finance provider client.
// Yahoo nests every figure in a {raw, fmt} wrapper and reports statement
// values in thousands, so conversion multiplies back to whole dollars.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/fintail/fintail/internal/transport"
	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/providers"
)

// DefaultBaseURL is the production Yahoo Finance quoteSummary endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v10/finance"

// value is Yahoo's {raw, fmt} numeric wrapper. Raw is nil when the figure is
// absent from the filing.
type value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// thousands returns the raw figure scaled from thousands to whole dollars,
// or 0 when absent.
func (v value) thousands() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw * 1000
}

// raw returns the unscaled figure, or 0 when absent.
func (v value) raw() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

// quarterStatement is one entry of incomeStatementHistoryQuarterly.
type quarterStatement struct {
	EndDate         struct{ Fmt string } `json:"endDate"`
	TotalRevenue    value                `json:"totalRevenue"`
	NetIncome       value                `json:"netIncome"`
	OperatingIncome value                `json:"operatingIncome"`
	FreeCashFlow    value                `json:"freeCashflow"`
	DilutedEPS      value                `json:"dilutedEPS"`
}

// balanceStatement is one entry of balanceSheetHistoryQuarterly.
type balanceStatement struct {
	EndDate           struct{ Fmt string } `json:"endDate"`
	TotalAssets       value                `json:"totalAssets"`
	TotalDebt         value                `json:"totalDebt"`
	StockholderEquity value                `json:"totalStockholderEquity"`
	SharesOutstanding value                `json:"sharesOutstanding"`
}

// response is the quoteSummary payload for the two statement modules.
type response struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistoryQuarterly struct {
				Statements []quarterStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistoryQuarterly"`
			BalanceSheetHistoryQuarterly struct {
				Statements []balanceStatement `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistoryQuarterly"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Config describes how to construct a Yahoo Finance client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client implements the providers.Provider interface for Yahoo Finance.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// New creates a new Yahoo Finance client. Yahoo's public quoteSummary API
// needs no API key.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		transport: transport.New(transport.Config{
			Provider:          providers.YahooFinanceID.String(),
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
	}
}

// ID implements the providers.Provider interface.
func (c *Client) ID() providers.ID {
	return providers.YahooFinanceID
}

// Fetch retrieves quarterly records for a company, most recent first.
func (c *Client) Fetch(ctx context.Context, companyID string) ([]financials.QuarterlyRecord, error) {
	u := fmt.Sprintf("%s/quoteSummary/%s?modules=incomeStatementHistoryQuarterly,balanceSheetHistoryQuarterly",
		c.baseURL, url.PathEscape(companyID))

	var resp response
	if err := c.transport.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, &errors.ProviderError{
			Provider: c.ID().String(),
			Kind:     errors.FailureInvalidSymbol,
			Message:  resp.QuoteSummary.Error.Description,
		}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &errors.ProviderError{
			Provider: c.ID().String(),
			Kind:     errors.FailureMalformedResponse,
			Message:  "quoteSummary returned no result",
		}
	}

	result := resp.QuoteSummary.Result[0]

	// Index balance sheets by quarter so income and balance figures for the
	// same period land in one record.
	balances := make(map[string]balanceStatement)
	for _, b := range result.BalanceSheetHistoryQuarterly.Statements {
		if q := quarterOfDate(b.EndDate.Fmt); q != "" {
			balances[q] = b
		}
	}

	var records []financials.QuarterlyRecord
	for _, s := range result.IncomeStatementHistoryQuarterly.Statements {
		quarter := quarterOfDate(s.EndDate.Fmt)
		if quarter == "" {
			continue
		}

		rec := financials.QuarterlyRecord{
			Quarter:         quarter,
			ReportDate:      s.EndDate.Fmt,
			NetSales:        s.TotalRevenue.thousands(),
			TotalRevenue:    s.TotalRevenue.thousands(),
			NetIncome:       s.NetIncome.thousands(),
			EPS:             s.DilutedEPS.raw(),
			OperatingIncome: s.OperatingIncome.thousands(),
			FreeCashFlow:    s.FreeCashFlow.thousands(),
		}

		if b, ok := balances[quarter]; ok {
			if v := b.TotalAssets.thousands(); v > 0 {
				rec.TotalAssets = financials.Float(v)
			}
			if v := b.TotalDebt.thousands(); v > 0 {
				rec.TotalDebt = financials.Float(v)
			}
			if v := b.StockholderEquity.thousands(); v > 0 {
				rec.ShareholderEquity = financials.Float(v)
			}
			if v := b.SharesOutstanding.raw(); v > 0 {
				rec.SharesOutstanding = financials.Float(v)
			}
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &errors.ProviderError{
			Provider: c.ID().String(),
			Kind:     errors.FailureInvalidSymbol,
			Message:  "no quarterly statements for " + companyID,
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReportDate > records[j].ReportDate
	})
	return records, nil
}

// quarterOfDate derives the canonical quarter string from a YYYY-MM-DD end
// date, or "" when the date does not parse.
func quarterOfDate(s string) string {
	d, err := time.Parse(financials.ReportDateLayout, s)
	if err != nil {
		return ""
	}
	return financials.QuarterOf(d)
}
