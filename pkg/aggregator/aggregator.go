// Package aggregator fans a single company lookup out to all configured
// provider clients in parallel and collects one outcome per provider. A slow
// or failing provider never delays or fails the others; each provider call
// runs inside its own retry loop.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/logging"
	"github.com/fintail/fintail/pkg/providers"
)

// RetryPolicy controls the per-provider retry loop.
type RetryPolicy struct {
	// MaxAttempts is the attempt budget per provider, including the first
	// attempt.
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number to produce the wait
	// between attempts: delay = BaseDelay × attempt.
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns the standard retry policy: 3 attempts with a
// linearly growing 1s base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// normalized fills zero-value policy fields with defaults.
func (p RetryPolicy) normalized() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	return p
}

// Aggregate queries every provider concurrently and returns exactly one
// outcome per provider, in the same order the providers were given. The
// outcome order is therefore stable regardless of which provider answered
// first, which keeps downstream priority selection deterministic.
func Aggregate(ctx context.Context, companyID string, provs []providers.Provider, policy RetryPolicy) []providers.Outcome {
	policy = policy.normalized()
	logger := logging.FromContext(ctx)

	outcomes := make([]providers.Outcome, len(provs))

	var wg sync.WaitGroup
	for i, prov := range provs {
		wg.Add(1)
		go func(i int, prov providers.Provider) {
			defer wg.Done()
			outcomes[i] = fetchWithRetry(ctx, companyID, prov, policy)
		}(i, prov)
	}
	wg.Wait()

	succeeded := 0
	for _, o := range outcomes {
		if o.Succeeded {
			succeeded++
		}
	}
	logger.Info().
		Str("company", companyID).
		Int("providers", len(provs)).
		Int("succeeded", succeeded).
		Msg("Aggregation complete")

	return outcomes
}

// fetchWithRetry runs the retry loop for one provider and always produces an
// outcome, successful or not.
func fetchWithRetry(ctx context.Context, companyID string, prov providers.Provider, policy RetryPolicy) providers.Outcome {
	logger := logging.FromContext(ctx)
	id := prov.ID()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		records, err := prov.Fetch(ctx, companyID)
		if err == nil {
			return providers.Outcome{
				SourceID:  id,
				Succeeded: true,
				Records:   records,
				Timestamp: time.Now(),
			}
		}

		lastErr = err
		logger.Warn().
			Err(err).
			Str("provider", id.String()).
			Str("kind", string(errors.KindOf(err))).
			Int("attempt", attempt).
			Int("max_attempts", policy.MaxAttempts).
			Msg("Provider fetch failed")

		if attempt == policy.MaxAttempts {
			break
		}
		if !sleep(ctx, policy.BaseDelay*time.Duration(attempt)) {
			// Run canceled; surface the last failure without burning
			// the remaining attempts.
			break
		}
	}

	return providers.Outcome{
		SourceID:  id,
		Succeeded: false,
		ErrorMsg:  lastErr.Error(),
		Timestamp: time.Now(),
	}
}

// sleep waits for d or until ctx is done, reporting whether the full delay
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
