package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fintail/fintail"
	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
)

var (
	reconcileName    string
	reconcileSector  string
	reconcileDryRun  bool
	reconcileAsJSON  bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile TICKER",
	Short: "Reconcile and store one company's quarterly series",
	Args:  cobra.ExactArgs(1),
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

		ticker := args[0]
		ctx := cmd.Context()

		var result *fintail.Result
		if reconcileDryRun {
			result, err = client.Reconcile(ctx, ticker)
		} else {
			var profile *financials.CompanyProfile
			if reconcileName != "" || reconcileSector != "" {
				profile = &financials.CompanyProfile{
					Ticker: ticker,
					Name:   reconcileName,
					Sector: reconcileSector,
				}
			}
			result, err = client.ReconcileAndStore(ctx, ticker, profile)
		}
		if err != nil {
			if errors.IsNoData(err) {
				fmt.Fprintf(os.Stderr, "No data available for %s: every provider failed\n", ticker)
			}
			return err
		}

		if reconcileAsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printResult(result)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileName, "name", "", "company display name stored with the profile")
	reconcileCmd.Flags().StringVar(&reconcileSector, "sector", "", "company sector stored with the profile")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "reconcile without writing to the store")
	reconcileCmd.Flags().BoolVar(&reconcileAsJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(reconcileCmd)
}
