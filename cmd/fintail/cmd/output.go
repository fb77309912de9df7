package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fintail/fintail"
)

// money formats large dollar figures with thousands separators.
var money = message.NewPrinter(language.AmericanEnglish)

// printResult writes a human-readable pipeline summary to stdout.
func printResult(result *fintail.Result) {
	fmt.Printf("Company:  %s\n", result.CompanyID)
	fmt.Printf("Primary:  %s\n", result.Series.PrimarySourceID)
	fmt.Printf("Quality:  %.2f (completeness %.2f, consistency %.2f, accuracy %.2f, timeliness %.2f)\n",
		result.Quality.Overall,
		result.Quality.Completeness,
		result.Quality.Consistency,
		result.Quality.Accuracy,
		result.Quality.Timeliness)

	if result.Storage != nil {
		fmt.Printf("Storage:  %d written, %d duplicates skipped\n",
			result.Storage.RecordsWritten, result.Storage.DuplicatesSkipped)
		for _, e := range result.Storage.Errors {
			fmt.Printf("          error: %s\n", e)
		}
	}

	warnings := 0
	for _, v := range result.Validations {
		warnings += len(v.Warnings)
	}
	if warnings > 0 {
		fmt.Printf("Warnings: %d across %d records\n", warnings, len(result.Validations))
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "QUARTER\tREPORT DATE\tREVENUE\tNET INCOME\tEPS")
	for _, rec := range result.Series.Records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
			rec.Quarter,
			rec.ReportDate,
			money.Sprintf("$%.0f", rec.TotalRevenue),
			money.Sprintf("$%.0f", rec.NetIncome),
			rec.EPS)
	}
	w.Flush()
}
