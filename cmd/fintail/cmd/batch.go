package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintail/fintail/internal/batch"
	"github.com/fintail/fintail/pkg/logging"
)

const summaryRounding = 10 * time.Millisecond

var (
	batchSector   string
	batchSchedule string
	batchWaveSize int
)

var batchCmd = &cobra.Command{
	Use:   "batch [TICKER...]",
	Short: "Reconcile many companies in bounded waves",
	Long: `Batch reconciles a list of companies, a wave at a time, pausing
between waves so provider rate limits survive the run. Companies come
from the argument list or, with --sector, from the store.

With --schedule the batch repeats on a cron expression until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, db, err := openPipeline(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()

		tickers := args
		if batchSector != "" {
			tickers, err = db.ListBySector(ctx, batchSector)
			if err != nil {
				return err
			}
		}
		if len(tickers) == 0 {
			return fmt.Errorf("no companies to reconcile: pass tickers or --sector")
		}

		if batchWaveSize > 0 {
			cfg.Batch.WaveSize = batchWaveSize
		}
		runner := batch.NewRunner(client, batch.Options{
			WaveSize:  cfg.Batch.WaveSize,
			WavePause: cfg.Batch.WavePause,
		})

		schedule := batchSchedule
		if schedule == "" {
			schedule = cfg.Batch.Schedule
		}
		if schedule != "" {
			logging.Info().Str("schedule", schedule).Int("companies", len(tickers)).Msg("starting scheduler")
			return batch.NewScheduler(runner).Start(ctx, schedule, tickers)
		}

		summary, err := runner.Run(ctx, tickers)
		if err != nil {
			return err
		}
		fmt.Printf("Reconciled %d companies in %s: %d succeeded, %d no data, %d failed\n",
			summary.Total, summary.Elapsed.Round(summaryRounding),
			summary.Succeeded, summary.NoData, summary.Failed)
		for _, cr := range summary.Results {
			if cr.Err != nil {
				fmt.Printf("  %s: %v\n", cr.CompanyID, cr.Err)
			}
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d companies failed", summary.Failed)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchSector, "sector", "", "reconcile every stored company in this sector")
	batchCmd.Flags().StringVar(&batchSchedule, "schedule", "", "cron expression for recurring runs")
	batchCmd.Flags().IntVar(&batchWaveSize, "wave-size", 0, "companies reconciled concurrently")
	rootCmd.AddCommand(batchCmd)
}
