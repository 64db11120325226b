// Command extractor runs the first half of the pipeline: it extracts
// fundamentals from the raw disclosure documents and writes the
// per-entity and combined tables. Feed its output to the features
// binary.
package main

import (
	"flag"
	"os"

	"edgarcli/internal/app"
	"edgarcli/internal/operations"
)

func main() {
	tickers := flag.String("tickers", "", "comma-separated tickers or CIKs to run (default: all configured)")
	flag.Parse()

	os.Exit(app.RunCLI(app.CLIOptions{
		Mode:    operations.ModeExtract,
		Tickers: *tickers,
	}))
}
