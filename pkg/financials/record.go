// Package financials defines the core financial data types shared across the
// reconciliation pipeline: quarterly records, company profiles, and the
// canonical quarter string format.
//
// A QuarterlyRecord may be partial: provider clients populate only the fields
// their vendor reports, and the reconciler fills gaps from secondary sources.
package financials

import "time"

// QuarterlyRecord is one company's reported financials for one quarter.
//
// Required numeric fields default to 0 when unknown. Optional balance-sheet
// fields are pointers; nil means the source did not report them.
type QuarterlyRecord struct {
	// Quarter in canonical YYYY-QN form, e.g. "2024-Q1".
	Quarter string `json:"quarter" yaml:"quarter"`

	// ReportDate is the calendar date the quarter was reported, in
	// YYYY-MM-DD form. Validated, not trusted, downstream.
	ReportDate string `json:"reportDate" yaml:"reportDate"`

	NetSales        float64 `json:"netSales" yaml:"netSales"`
	TotalRevenue    float64 `json:"totalRevenue" yaml:"totalRevenue"`
	NetIncome       float64 `json:"netIncome" yaml:"netIncome"`
	EPS             float64 `json:"eps" yaml:"eps"`
	OperatingIncome float64 `json:"operatingIncome" yaml:"operatingIncome"`
	FreeCashFlow    float64 `json:"freeCashFlow" yaml:"freeCashFlow"`

	TotalAssets       *float64 `json:"totalAssets,omitempty" yaml:"totalAssets,omitempty"`
	TotalDebt         *float64 `json:"totalDebt,omitempty" yaml:"totalDebt,omitempty"`
	ShareholderEquity *float64 `json:"shareholderEquity,omitempty" yaml:"shareholderEquity,omitempty"`
	SharesOutstanding *float64 `json:"sharesOutstanding,omitempty" yaml:"sharesOutstanding,omitempty"`
}

// ReportDateLayout is the canonical layout for QuarterlyRecord.ReportDate.
const ReportDateLayout = "2006-01-02"

// ParseReportDate parses the record's report date, or returns an error if the
// date is missing or not a valid calendar date.
func (r QuarterlyRecord) ParseReportDate() (time.Time, error) {
	return time.Parse(ReportDateLayout, r.ReportDate)
}

// Float returns a pointer to v, for populating optional record fields.
func Float(v float64) *float64 {
	return &v
}

// CompanyProfile is static company metadata. It is owned by the store and
// referenced, never mutated, by the reconciliation core.
type CompanyProfile struct {
	Ticker            string  `json:"ticker" yaml:"ticker"`
	Name              string  `json:"name" yaml:"name"`
	Sector            string  `json:"sector" yaml:"sector"`
	Industry          string  `json:"industry,omitempty" yaml:"industry,omitempty"`
	Exchange          string  `json:"exchange,omitempty" yaml:"exchange,omitempty"`
	MarketCap         float64 `json:"marketCap,omitempty" yaml:"marketCap,omitempty"`
	CurrentPrice      float64 `json:"currentPrice,omitempty" yaml:"currentPrice,omitempty"`
	SharesOutstanding float64 `json:"sharesOutstanding,omitempty" yaml:"sharesOutstanding,omitempty"`
	Description       string  `json:"description,omitempty" yaml:"description,omitempty"`
}
