// Command web serves the pipeline over HTTP: run control, status,
// data summaries and Prometheus metrics.
package main

import (
	"log/slog"
	"os"

	"edgarcli/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
