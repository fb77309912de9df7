package reconciler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/providers"
)

func outcome(id providers.ID, records ...financials.QuarterlyRecord) providers.Outcome {
	return providers.Outcome{
		SourceID:  id,
		Succeeded: true,
		Records:   records,
		Timestamp: time.Now(),
	}
}

func failedOutcome(id providers.ID) providers.Outcome {
	return providers.Outcome{SourceID: id, Succeeded: false, ErrorMsg: "timeout", Timestamp: time.Now()}
}

func fullRecord(quarter, date string) financials.QuarterlyRecord {
	return financials.QuarterlyRecord{
		Quarter:      quarter,
		ReportDate:   date,
		NetSales:     95,
		TotalRevenue: 100,
		NetIncome:    10,
		EPS:          0.5,
	}
}

func TestReconcileEmptyOutcomes(t *testing.T) {
	r := New()

	series, validations := r.Reconcile(context.Background(), nil)
	assert.Equal(t, NoPrimarySource, series.PrimarySourceID)
	assert.True(t, series.Empty())
	assert.Empty(t, validations)

	// Failed and empty-record outcomes count as unusable.
	series, _ = r.Reconcile(context.Background(), []providers.Outcome{
		failedOutcome(providers.FinancialModelingPrepID),
		outcome(providers.AlphaVantageID),
	})
	assert.Equal(t, NoPrimarySource, series.PrimarySourceID)
}

func TestPriorityDeterminism(t *testing.T) {
	// Top priority failed: next in priority wins even when listed last.
	outcomes := []providers.Outcome{
		failedOutcome(providers.FinancialModelingPrepID),
		outcome(providers.YahooFinanceID, fullRecord("2024-Q1", "2024-03-31")),
		outcome(providers.AlphaVantageID, fullRecord("2024-Q1", "2024-03-31")),
	}

	series, _ := New().Reconcile(context.Background(), outcomes)
	assert.Equal(t, providers.AlphaVantageID, series.PrimarySourceID)
}

func TestPriorityTieBreakFirstInInputOrder(t *testing.T) {
	// No successful provider matches the priority list. The first usable
	// outcome in input order becomes primary.
	first := outcome("vendor-x", fullRecord("2024-Q1", "2024-03-31"))
	second := outcome("vendor-y", fullRecord("2024-Q1", "2024-03-31"))

	series, _ := New().Reconcile(context.Background(), []providers.Outcome{first, second})
	assert.Equal(t, providers.ID("vendor-x"), series.PrimarySourceID)
}

func TestGapFillNeverOverridesPrimary(t *testing.T) {
	primaryRec := fullRecord("2024-Q1", "2024-03-31")
	primaryRec.EPS = 0 // the only gap

	secondaryRec := financials.QuarterlyRecord{
		Quarter:      "2024-Q1",
		ReportDate:   "2024-04-15", // must not replace primary's date
		TotalRevenue: 999,          // must not replace primary's revenue
		EPS:          0.5,
	}

	outcomes := []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, primaryRec),
		outcome(providers.AlphaVantageID, secondaryRec),
	}

	series, _ := New().Reconcile(context.Background(), outcomes)
	require.Len(t, series.Records, 1)

	got := series.Records[0]
	want := primaryRec
	want.EPS = 0.5
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged record mismatch (-want +got):\n%s", diff)
	}
}

func TestGapFillFirstMatchWins(t *testing.T) {
	primaryRec := financials.QuarterlyRecord{
		Quarter: "2024-Q1", ReportDate: "2024-03-31", TotalRevenue: 100, NetIncome: 10,
	}
	secA := financials.QuarterlyRecord{Quarter: "2024-Q1", EPS: 0.5}
	secB := financials.QuarterlyRecord{Quarter: "2024-Q1", EPS: 0.9}

	forward := []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, primaryRec),
		outcome(providers.AlphaVantageID, secA),
		outcome(providers.YahooFinanceID, secB),
	}
	series, _ := New().Reconcile(context.Background(), forward)
	require.Len(t, series.Records, 1)

	// First fill wins; later sources cannot change a populated field.
	assert.Equal(t, 0.5, series.Records[0].EPS)
}

func TestGapFillOptionalFields(t *testing.T) {
	primaryRec := fullRecord("2024-Q1", "2024-03-31")
	secondaryRec := financials.QuarterlyRecord{
		Quarter:           "2024-Q1",
		TotalAssets:       financials.Float(1000),
		SharesOutstanding: financials.Float(20),
	}

	outcomes := []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, primaryRec),
		outcome(providers.AlphaVantageID, secondaryRec),
	}

	series, _ := New().Reconcile(context.Background(), outcomes)
	require.Len(t, series.Records, 1)
	require.NotNil(t, series.Records[0].TotalAssets)
	assert.Equal(t, 1000.0, *series.Records[0].TotalAssets)
}

func TestTotalRevenueSeededFromNetSales(t *testing.T) {
	rec := financials.QuarterlyRecord{
		Quarter: "2024-Q1", ReportDate: "2024-03-31", NetSales: 80, NetIncome: 5,
	}

	series, _ := New().Reconcile(context.Background(), []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, rec),
	})
	require.Len(t, series.Records, 1)
	assert.Equal(t, 80.0, series.Records[0].TotalRevenue)
}

func TestRecordsWithoutQuarterSkipped(t *testing.T) {
	noQuarter := financials.QuarterlyRecord{ReportDate: "2024-03-31", TotalRevenue: 100, NetIncome: 10}

	series, validations := New().Reconcile(context.Background(), []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, noQuarter, fullRecord("2024-Q1", "2024-03-31")),
	})
	assert.Len(t, validations, 1, "quarterless primary records never reach validation")
	require.Len(t, series.Records, 1)
	assert.Equal(t, "2024-Q1", series.Records[0].Quarter)
}

func TestRejectedRecordsDropped(t *testing.T) {
	bad := fullRecord("2023-Q4", "2023-12-31")
	bad.TotalRevenue = -1
	bad.NetSales = 0

	series, validations := New().Reconcile(context.Background(), []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, fullRecord("2024-Q1", "2024-03-31"), bad),
	})

	require.Len(t, validations, 2)
	assert.True(t, validations[0].Accepted)
	assert.False(t, validations[1].Accepted)

	require.Len(t, series.Records, 1)
	assert.Equal(t, "2024-Q1", series.Records[0].Quarter)
}

func TestTruncationToEightQuarters(t *testing.T) {
	var records []financials.QuarterlyRecord
	for year := 2021; year <= 2024; year++ {
		for q := 1; q <= 4; q++ {
			records = append(records, fullRecord(
				fmt.Sprintf("%d-Q%d", year, q),
				fmt.Sprintf("%d-%02d-01", year, q*3),
			))
		}
	}

	series, validations := New().Reconcile(context.Background(), []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, records...),
	})

	assert.Len(t, validations, 16, "all merged records are validated")
	require.Len(t, series.Records, MaxQuarters)
	assert.Equal(t, "2024-Q4", series.Records[0].Quarter)
	assert.Equal(t, "2023-Q1", series.Records[MaxQuarters-1].Quarter)
}

func TestDuplicateQuartersInPrimaryDeduplicated(t *testing.T) {
	a := fullRecord("2024-Q1", "2024-03-31")
	b := fullRecord("2024-Q1", "2024-04-02")
	b.TotalRevenue = 500

	series, _ := New().Reconcile(context.Background(), []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, a, b),
	})
	require.Len(t, series.Records, 1)
	assert.Equal(t, 100.0, series.Records[0].TotalRevenue, "first occurrence wins")
}

func TestWithPriority(t *testing.T) {
	outcomes := []providers.Outcome{
		outcome(providers.FinancialModelingPrepID, fullRecord("2024-Q1", "2024-03-31")),
		outcome(providers.YahooFinanceID, fullRecord("2024-Q1", "2024-03-31")),
	}

	r := New(WithPriority([]providers.ID{providers.YahooFinanceID}))
	series, _ := r.Reconcile(context.Background(), outcomes)
	assert.Equal(t, providers.YahooFinanceID, series.PrimarySourceID)
}
