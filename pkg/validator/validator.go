// Package validator applies structural and cross-field consistency rules to
// reconciled quarterly records. Findings split into hard errors, which reject
// the record, and soft warnings, which keep it flagged.
package validator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fintail/fintail/pkg/financials"
)

// Tolerances for the cross-field consistency checks.
const (
	// epsTolerance warns when reported EPS deviates more than 10% from
	// net income divided by shares outstanding.
	epsTolerance = 0.1

	// equityTolerance warns when assets minus debt deviates more than 20%
	// from reported shareholder equity.
	equityTolerance = 0.2
)

// Outcome is the result of validating one quarterly record.
type Outcome struct {
	Accepted bool     `json:"accepted"`
	Quarter  string   `json:"quarter"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// Normalized is the cleaned-up record, present only when accepted.
	Normalized *financials.QuarterlyRecord `json:"normalizedRecord,omitempty"`
}

// Validate applies every rule to the record. Any error rejects it; warnings
// keep it but flag it. Accepted records come back normalized: revenue fields
// clamped to zero, optional fields kept only when positive.
func Validate(rec financials.QuarterlyRecord) Outcome {
	out := Outcome{Quarter: rec.Quarter}

	validateQuarter(rec, &out)
	validateReportDate(rec, &out)
	validateRevenue(rec, &out)
	validateEPS(rec, &out)
	validateBalanceSheet(rec, &out)
	validateRequired(rec, &out)

	out.Accepted = len(out.Errors) == 0
	if out.Accepted {
		normalized := normalize(rec)
		out.Normalized = &normalized
	}
	return out
}

// validateQuarter checks presence and canonical YYYY-QN form.
func validateQuarter(rec financials.QuarterlyRecord, out *Outcome) {
	if rec.Quarter == "" {
		out.Errors = append(out.Errors, "quarter is required")
		return
	}
	if !financials.ValidQuarter(rec.Quarter) {
		out.Errors = append(out.Errors, fmt.Sprintf("quarter %q is not in YYYY-QN format", rec.Quarter))
	}
}

// validateReportDate checks the report date parses; a future date is only a
// warning.
func validateReportDate(rec financials.QuarterlyRecord, out *Outcome) {
	if rec.ReportDate == "" {
		out.Errors = append(out.Errors, "reportDate is required")
		return
	}
	d, err := rec.ParseReportDate()
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("reportDate %q is not a valid calendar date", rec.ReportDate))
		return
	}
	if d.After(time.Now()) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("reportDate %s is in the future", rec.ReportDate))
	}
}

// validateRevenue checks revenue sign constraints and the net-sales vs
// total-revenue relationship.
func validateRevenue(rec financials.QuarterlyRecord, out *Outcome) {
	if rec.TotalRevenue < 0 {
		out.Errors = append(out.Errors, "totalRevenue cannot be negative")
	}
	if rec.NetSales < 0 {
		out.Errors = append(out.Errors, "netSales cannot be negative")
	}
	// Net sales above total revenue usually means the two figures come from
	// different definitions; keep the record but flag it.
	if rec.TotalRevenue > 0 && rec.NetSales > rec.TotalRevenue {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"netSales %.2f exceeds totalRevenue %.2f", rec.NetSales, rec.TotalRevenue))
	}
}

// validateEPS recomputes earnings per share from net income and shares
// outstanding and warns on a >10% deviation.
func validateEPS(rec financials.QuarterlyRecord, out *Outcome) {
	if rec.EPS == 0 || rec.NetIncome == 0 || rec.SharesOutstanding == nil {
		return
	}

	shares := *rec.SharesOutstanding
	recomputed := 0.0
	if shares > 0 {
		recomputed = rec.NetIncome / shares
	}
	if math.Abs(recomputed-rec.EPS) > math.Abs(rec.EPS*epsTolerance) {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"eps %.4f deviates from netIncome/sharesOutstanding (%.4f)", rec.EPS, recomputed))
	}
}

// validateBalanceSheet checks sign constraints on the optional balance-sheet
// fields and the assets − debt ≈ equity identity.
func validateBalanceSheet(rec financials.QuarterlyRecord, out *Outcome) {
	if rec.TotalAssets != nil && *rec.TotalAssets < 0 {
		out.Errors = append(out.Errors, "totalAssets cannot be negative")
	}
	if rec.TotalDebt != nil && *rec.TotalDebt < 0 {
		out.Errors = append(out.Errors, "totalDebt cannot be negative")
	}

	if rec.TotalAssets == nil || rec.TotalDebt == nil || rec.ShareholderEquity == nil {
		return
	}
	equity := *rec.ShareholderEquity
	derived := *rec.TotalAssets - *rec.TotalDebt
	if math.Abs(derived-equity) > math.Abs(equity*equityTolerance) {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"totalAssets - totalDebt (%.2f) deviates from shareholderEquity (%.2f)", derived, equity))
	}
}

// validateRequired reports all required fields that are empty or zero in one
// error.
func validateRequired(rec financials.QuarterlyRecord, out *Outcome) {
	var missing []string
	if rec.Quarter == "" {
		missing = append(missing, "quarter")
	}
	if rec.ReportDate == "" {
		missing = append(missing, "reportDate")
	}
	if rec.TotalRevenue == 0 {
		missing = append(missing, "totalRevenue")
	}
	if rec.NetIncome == 0 {
		missing = append(missing, "netIncome")
	}
	if len(missing) > 0 {
		out.Errors = append(out.Errors, "missing required fields: "+strings.Join(missing, ", "))
	}
}

// normalize produces the canonical form of an accepted record.
func normalize(rec financials.QuarterlyRecord) financials.QuarterlyRecord {
	rec.NetSales = math.Max(rec.NetSales, 0)
	rec.TotalRevenue = math.Max(rec.TotalRevenue, 0)

	rec.TotalAssets = positiveOrNil(rec.TotalAssets)
	rec.TotalDebt = positiveOrNil(rec.TotalDebt)
	rec.ShareholderEquity = positiveOrNil(rec.ShareholderEquity)
	rec.SharesOutstanding = positiveOrNil(rec.SharesOutstanding)
	return rec
}

// positiveOrNil drops optional values that are not strictly positive.
func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
