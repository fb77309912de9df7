package batch

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/fintail/fintail/pkg/logging"
)

// Scheduler runs a batch on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
}

// NewScheduler wraps a runner in a cron scheduler.
func NewScheduler(runner *Runner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
	}
}

// Start registers the schedule and begins running batches until the
// context is canceled. Overlapping runs are skipped: a tick that fires
// while the previous batch is still going is dropped.
func (s *Scheduler) Start(ctx context.Context, spec string, companyIDs []string) error {
	logger := logging.FromContext(ctx)

	running := make(chan struct{}, 1)
	_, err := s.cron.AddFunc(spec, func() {
		select {
		case running <- struct{}{}:
		default:
			logger.Warn().Msg("previous batch still running, skipping tick")
			return
		}
		defer func() { <-running }()

		summary, err := s.runner.Run(ctx, companyIDs)
		if err != nil {
			logger.Error().Err(err).Msg("scheduled batch aborted")
			return
		}
		logger.Info().
			Int("succeeded", summary.Succeeded).
			Int("no_data", summary.NoData).
			Int("failed", summary.Failed).
			Dur("elapsed", summary.Elapsed).
			Msg("scheduled batch complete")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	return ctx.Err()
}
