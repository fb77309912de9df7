// Package alphavantage provides the Alpha Vantage provider client.
// Alpha Vantage reports every numeric as a string and uses "None" for
// missing figures, so normalization here is mostly careful parsing.
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/fintail/fintail/internal/transport"
	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/providers"
)

// DefaultBaseURL is the production Alpha Vantage API endpoint.
const DefaultBaseURL = "https://www.alphavantage.co"

// response is the INCOME_STATEMENT function payload, reduced to the fields
// the pipeline consumes.
type response struct {
	Symbol           string   `json:"symbol"`
	QuarterlyReports []report `json:"quarterlyReports"`
	Note             string   `json:"Note,omitempty"`
	ErrorMessage     string   `json:"Error Message,omitempty"`
}

// report is one quarterly entry. All numerics arrive as strings.
type report struct {
	FiscalDateEnding  string `json:"fiscalDateEnding"`
	TotalRevenue      string `json:"totalRevenue"`
	NetSales          string `json:"netSales"`
	NetIncome         string `json:"netIncome"`
	ReportedEPS       string `json:"reportedEPS"`
	OperatingIncome   string `json:"operatingIncome"`
	FreeCashFlow      string `json:"freeCashFlow"`
	TotalAssets       string `json:"totalAssets"`
	TotalLiabilities  string `json:"totalLiabilities"`
	ShareholderEquity string `json:"totalShareholderEquity"`
	SharesOutstanding string `json:"commonSharesOutstanding"`
}

// Config describes how to construct an Alpha Vantage client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client implements the providers.Provider interface for Alpha Vantage.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// New creates a new Alpha Vantage client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		transport: transport.New(transport.Config{
			Provider:          providers.AlphaVantageID.String(),
			Auth:              &transport.QueryAuth{Param: "apikey"},
			APIKey:            cfg.APIKey,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
	}
}

// ID implements the providers.Provider interface.
func (c *Client) ID() providers.ID {
	return providers.AlphaVantageID
}

// Fetch retrieves quarterly records for a company, most recent first.
func (c *Client) Fetch(ctx context.Context, companyID string) ([]financials.QuarterlyRecord, error) {
	u := fmt.Sprintf("%s/query?function=INCOME_STATEMENT&symbol=%s", c.baseURL, url.QueryEscape(companyID))

	var resp response
	if err := c.transport.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	// The API reports throttling and bad symbols inside a 200 body.
	if resp.Note != "" {
		return nil, &errors.ProviderError{
			Provider: c.ID().String(),
			Kind:     errors.FailureRateLimited,
			Message:  resp.Note,
		}
	}
	if resp.ErrorMessage != "" || len(resp.QuarterlyReports) == 0 {
		return nil, &errors.ProviderError{
			Provider: c.ID().String(),
			Kind:     errors.FailureInvalidSymbol,
			Message:  "no quarterly reports for " + companyID,
		}
	}

	records := make([]financials.QuarterlyRecord, 0, len(resp.QuarterlyReports))
	for _, r := range resp.QuarterlyReports {
		rec, ok := convert(r)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReportDate > records[j].ReportDate
	})
	return records, nil
}

// convert maps one quarterly report to the common partial-record shape.
// Reports without a parseable fiscal date are dropped.
func convert(r report) (financials.QuarterlyRecord, bool) {
	d, err := time.Parse(financials.ReportDateLayout, r.FiscalDateEnding)
	if err != nil {
		return financials.QuarterlyRecord{}, false
	}

	rec := financials.QuarterlyRecord{
		Quarter:         financials.QuarterOf(d),
		ReportDate:      r.FiscalDateEnding,
		NetSales:        number(r.NetSales),
		TotalRevenue:    number(r.TotalRevenue),
		NetIncome:       number(r.NetIncome),
		EPS:             number(r.ReportedEPS),
		OperatingIncome: number(r.OperatingIncome),
		FreeCashFlow:    number(r.FreeCashFlow),
	}
	if rec.NetSales == 0 {
		rec.NetSales = rec.TotalRevenue
	}

	if v := number(r.TotalAssets); v > 0 {
		rec.TotalAssets = financials.Float(v)
	}
	if v := number(r.TotalLiabilities); v > 0 {
		rec.TotalDebt = financials.Float(v)
	}
	if v := number(r.ShareholderEquity); v > 0 {
		rec.ShareholderEquity = financials.Float(v)
	}
	if v := number(r.SharesOutstanding); v > 0 {
		rec.SharesOutstanding = financials.Float(v)
	}
	return rec, true
}

// number parses a vendor numeric string. "None", "-", and empty strings all
// mean the figure was not reported.
func number(s string) float64 {
	if s == "" || s == "None" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
