// Package fmp provides the Financial Modeling Prep provider client.
// FMP reports quarterly income-statement and cash-flow figures as plain
// dollar amounts keyed by fiscal period, which makes it the most complete
// of the configured vendors and the default primary source.
package fmp

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

// DefaultBaseURL is the production FMP API endpoint.
const DefaultBaseURL = "https://financialmodelingprep.com/api/v3"

// statement is one quarterly entry in the FMP income-statement response.
type statement struct {
	Date            string  `json:"date"`
	Symbol          string  `json:"symbol"`
	CalendarYear    string  `json:"calendarYear"`
	Period          string  `json:"period"` // "Q1".."Q4"
	Revenue         float64 `json:"revenue"`
	NetSales        float64 `json:"netSales"`
	NetIncome       float64 `json:"netIncome"`
	EPS             float64 `json:"eps"`
	OperatingIncome float64 `json:"operatingIncome"`
	FreeCashFlow    float64 `json:"freeCashFlow"`
}

// Config describes how to construct an FMP client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client implements the providers.Provider interface for FMP.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// New creates a new FMP client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		transport: transport.New(transport.Config{
			Provider:          providers.FinancialModelingPrepID.String(),
			Auth:              &transport.QueryAuth{Param: "apikey"},
			APIKey:            cfg.APIKey,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
	}
}

// ID implements the providers.Provider interface.
func (c *Client) ID() providers.ID {
	return providers.FinancialModelingPrepID
}

// Fetch retrieves quarterly records for a company, most recent first.
func (c *Client) Fetch(ctx context.Context, companyID string) ([]financials.QuarterlyRecord, error) {
	u := fmt.Sprintf("%s/income-statement/%s?period=quarter&limit=12", c.baseURL, url.PathEscape(companyID))

	var stmts []statement
	if err := c.transport.GetJSON(ctx, u, &stmts); err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, &errors.ProviderError{
			Provider: c.ID().String(),
			Kind:     errors.FailureInvalidSymbol,
			Message:  "no statements returned for " + companyID,
		}
	}

	records := make([]financials.QuarterlyRecord, 0, len(stmts))
	for _, s := range stmts {
		records = append(records, convert(s))
	}

	// FMP usually answers most-recent-first already, but the order is not
	// contractual. Sort by report date descending to make it so.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReportDate > records[j].ReportDate
	})
	return records, nil
}

// convert maps one FMP statement to the common partial-record shape.
func convert(s statement) financials.QuarterlyRecord {
	rec := financials.QuarterlyRecord{
		Quarter:         quarterOf(s),
		ReportDate:      s.Date,
		NetSales:        s.NetSales,
		TotalRevenue:    s.Revenue,
		NetIncome:       s.NetIncome,
		EPS:             s.EPS,
		OperatingIncome: s.OperatingIncome,
		FreeCashFlow:    s.FreeCashFlow,
	}
	if rec.NetSales == 0 {
		rec.NetSales = s.Revenue
	}
	return rec
}

// quarterOf derives the canonical quarter string, preferring the explicit
// fiscal period over date arithmetic.
func quarterOf(s statement) string {
	if year, err := strconv.Atoi(s.CalendarYear); err == nil && len(s.Period) == 2 && s.Period[0] == 'Q' {
		q := fmt.Sprintf("%04d-%s", year, s.Period)
		if financials.ValidQuarter(q) {
			return q
		}
	}
	if d, err := time.Parse(financials.ReportDateLayout, s.Date); err == nil {
		return financials.QuarterOf(d)
	}
	return ""
}
