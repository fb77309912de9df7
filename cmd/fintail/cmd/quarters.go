package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fintail/fintail/internal/store/sqlite"
)

var quartersCmd = &cobra.Command{
	Use:   "quarters TICKER",
	Short: "List the quarters stored for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		ticker := args[0]
		ctx := cmd.Context()

		existing, err := db.ExistingQuarters(ctx, ticker)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			fmt.Printf("No quarters stored for %s\n", ticker)
			return nil
		}

		quarters := make([]string, 0, len(existing))
		for q := range existing {
			quarters = append(quarters, q)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(quarters)))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%d quarters\n", ticker, len(quarters))
		for _, q := range quarters {
			fmt.Fprintf(w, "  %s\n", q)
		}
		w.Flush()

		if profile, err := db.Profile(ctx, ticker); err == nil {
			fmt.Printf("\n%s (%s)", profile.Name, profile.Sector)
			if profile.MarketCap > 0 {
				fmt.Printf(", market cap %s", money.Sprintf("$%.0f", profile.MarketCap))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quartersCmd)
}
