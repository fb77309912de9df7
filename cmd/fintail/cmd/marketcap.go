package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fintail/fintail/internal/store/sqlite"
)

var (
	marketCapPrice  float64
	marketCapShares float64
	marketCapValue  float64
)

var marketCapCmd = &cobra.Command{
	Use:   "marketcap TICKER",
	Short: "Refresh a company's market valuation metadata",
	Long: `Marketcap updates the valuation fields on a stored company profile
without touching the quarterly series. The market cap defaults to
price times shares outstanding when not given explicitly.`,
	Args: cobra.ExactArgs(1),
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

		value := marketCapValue
		if value == 0 {
			value = marketCapPrice * marketCapShares
		}
		if value <= 0 {
			return fmt.Errorf("provide --value, or --price and --shares")
		}

		ticker := args[0]
		if err := db.UpdateMarketCap(cmd.Context(), ticker, value, marketCapPrice, marketCapShares); err != nil {
			return err
		}
		fmt.Printf("%s market cap set to %s\n", ticker, money.Sprintf("$%.0f", value))
		return nil
	},
}

func init() {
	marketCapCmd.Flags().Float64Var(&marketCapValue, "value", 0, "market cap in dollars")
	marketCapCmd.Flags().Float64Var(&marketCapPrice, "price", 0, "current share price")
	marketCapCmd.Flags().Float64Var(&marketCapShares, "shares", 0, "shares outstanding")
	rootCmd.AddCommand(marketCapCmd)
}
