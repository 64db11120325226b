// Command pipeline runs the full fundamentals feature pipeline:
// extract, combine, align and join in one process.
package main

import (
	"flag"
	"os"

	"edgarcli/internal/app"
	"edgarcli/internal/operations"
)

func main() {
	tickers := flag.String("tickers", "", "comma-separated tickers or CIKs to run (default: all configured)")
	workbook := flag.Bool("workbook", false, "also write the Excel feature workbook")
	flag.Parse()

	os.Exit(app.RunCLI(app.CLIOptions{
		Mode:     operations.ModeFull,
		Tickers:  *tickers,
		Workbook: *workbook,
	}))
}
