// Package batch runs the reconciliation pipeline over many companies.
// Companies are processed in bounded waves with a pause in between so
// provider rate limits are not exhausted in one burst.
package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fintail/fintail"
	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/logging"
)

// Options bound a batch run.
type Options struct {
	// WaveSize is how many companies reconcile concurrently.
	WaveSize int

	// WavePause is the rest between waves.
	WavePause time.Duration
}

// CompanyResult is the per-company outcome of a batch run.
type CompanyResult struct {
	CompanyID string
	Result    *fintail.Result
	Err       error
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int
	Succeeded int
	NoData    int
	Failed    int
	Results   []CompanyResult
	Elapsed   time.Duration
}

// Runner drives batch reconciliation through a pipeline client.
type Runner struct {
	client fintail.Client
	opts   Options
}

// NewRunner creates a batch runner. Zero option fields get sensible
// defaults.
func NewRunner(client fintail.Client, opts Options) *Runner {
	if opts.WaveSize <= 0 {
		opts.WaveSize = 5
	}
	if opts.WavePause < 0 {
		opts.WavePause = 0
	}
	return &Runner{client: client, opts: opts}
}

// Run reconciles every company, wave by wave. Per-company failures are
// recorded in the summary and never abort the run; only context
// cancellation stops it early.
func (r *Runner) Run(ctx context.Context, companyIDs []string) (*Summary, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	summary := &Summary{
		Total:   len(companyIDs),
		Results: make([]CompanyResult, len(companyIDs)),
	}

	for waveStart := 0; waveStart < len(companyIDs); waveStart += r.opts.WaveSize {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		waveEnd := min(waveStart+r.opts.WaveSize, len(companyIDs))
		wave := companyIDs[waveStart:waveEnd]

		g, waveCtx := errgroup.WithContext(ctx)
		for i, companyID := range wave {
			slot := waveStart + i
			g.Go(func() error {
				result, err := r.client.ReconcileAndStore(waveCtx, companyID, nil)
				summary.Results[slot] = CompanyResult{CompanyID: companyID, Result: result, Err: err}
				return nil
			})
		}
		g.Wait()

		logger.Info().
			Int("from", waveStart).
			Int("to", waveEnd).
			Int("total", len(companyIDs)).
			Msg("wave complete")

		if waveEnd < len(companyIDs) && r.opts.WavePause > 0 {
			select {
			case <-time.After(r.opts.WavePause):
			case <-ctx.Done():
				summary.Elapsed = time.Since(start)
				return summary, ctx.Err()
			}
		}
	}

	for _, cr := range summary.Results {
		switch {
		case cr.Err == nil:
			summary.Succeeded++
		case errors.IsNoData(cr.Err):
			summary.NoData++
		default:
			summary.Failed++
		}
	}
	summary.Elapsed = time.Since(start)
	return summary, nil
}
