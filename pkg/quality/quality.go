// Package quality scores a reconciled quarterly series on four axes:
// how complete the core fields are, how internally consistent the
// figures look, how many configured sources actually answered, and how
// recent the latest report is.
package quality

import (
	"math"
	"time"

	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/providers"
)

// Metrics holds the four sub-scores and their weighted combination.
// Every value lies in [0, 1] and is rounded to two decimals.
type Metrics struct {
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Consistency  float64 `json:"consistency" yaml:"consistency"`
	Accuracy     float64 `json:"accuracy" yaml:"accuracy"`
	Timeliness   float64 `json:"timeliness" yaml:"timeliness"`
	Overall      float64 `json:"overall" yaml:"overall"`
}

// Weights applied to the sub-scores when computing Overall.
const (
	completenessWeight = 0.30
	consistencyWeight  = 0.25
	accuracyWeight     = 0.25
	timelinessWeight   = 0.20
)

// coreFields is the number of per-record figures counted toward
// completeness.
const coreFields = 5

// Score computes quality metrics for a set of accepted records and the
// source outcomes that produced them. An empty record set scores zero
// across the board.
func Score(records []financials.QuarterlyRecord, outcomes []providers.Outcome) Metrics {
	return ScoreAt(records, outcomes, time.Now())
}

// ScoreAt is Score with an explicit reference time for the timeliness
// calculation.
func ScoreAt(records []financials.QuarterlyRecord, outcomes []providers.Outcome, now time.Time) Metrics {
	if len(records) == 0 {
		return Metrics{}
	}

	m := Metrics{
		Completeness: completeness(records),
		Consistency:  consistency(records),
		Accuracy:     accuracy(outcomes),
		Timeliness:   timeliness(records, now),
	}
	m.Overall = completenessWeight*m.Completeness +
		consistencyWeight*m.Consistency +
		accuracyWeight*m.Accuracy +
		timelinessWeight*m.Timeliness

	m.Completeness = round2(m.Completeness)
	m.Consistency = round2(m.Consistency)
	m.Accuracy = round2(m.Accuracy)
	m.Timeliness = round2(m.Timeliness)
	m.Overall = round2(m.Overall)
	return m
}

// completeness is the fraction of non-zero core figures across the
// series.
func completeness(records []financials.QuarterlyRecord) float64 {
	var present int
	for _, rec := range records {
		for _, v := range []float64{rec.TotalRevenue, rec.NetIncome, rec.EPS, rec.OperatingIncome, rec.FreeCashFlow} {
			if v != 0 {
				present++
			}
		}
	}
	return float64(present) / float64(coreFields*len(records))
}

// consistency is the fraction of passed sanity checks. Records that
// trigger no checks score a full 1.
func consistency(records []financials.QuarterlyRecord) float64 {
	var applied, passed int
	for _, rec := range records {
		if rec.TotalRevenue > 0 && rec.NetSales > 0 {
			applied++
			if rec.NetSales <= rec.TotalRevenue*1.1 {
				passed++
			}
		}
		if rec.TotalRevenue > 0 {
			applied++
			if margin := rec.NetIncome / rec.TotalRevenue; margin >= -1 && margin <= 1 {
				passed++
			}
		}
	}
	if applied == 0 {
		return 1
	}
	return float64(passed) / float64(applied)
}

// accuracy is the fraction of sources that answered successfully.
func accuracy(outcomes []providers.Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	var succeeded int
	for _, o := range outcomes {
		if o.Succeeded {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(outcomes))
}

// timeliness decays linearly from 1 to 0 over a year past the most
// recent report date. Records without a parseable date are ignored; if
// none parse, timeliness is 0.
func timeliness(records []financials.QuarterlyRecord, now time.Time) float64 {
	var latest time.Time
	for _, rec := range records {
		d, err := rec.ParseReportDate()
		if err != nil {
			continue
		}
		if d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return 0
	}
	days := now.Sub(latest).Hours() / 24
	return math.Max(0, math.Min(1, 1-days/365))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
