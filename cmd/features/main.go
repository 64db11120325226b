// Command features runs the second half of the pipeline: it reads the
// combined fundamentals table written by the extractor, aligns it to
// information dates and joins prices into the feature table.
package main

import (
	"flag"
	"os"

	"edgarcli/internal/app"
	"edgarcli/internal/operations"
)

func main() {
	tickers := flag.String("tickers", "", "comma-separated tickers or CIKs to join (default: all configured)")
	workbook := flag.Bool("workbook", false, "also write the Excel feature workbook")
	flag.Parse()

	os.Exit(app.RunCLI(app.CLIOptions{
		Mode:     operations.ModeFeatures,
		Tickers:  *tickers,
		Workbook: *workbook,
	}))
}
