// Package app wires configuration, logging, telemetry and the
// operations manager into the runnable binaries: the CLI pipeline
// variants and the web server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"edgarcli/internal/config"
	"edgarcli/internal/exporter"
	"edgarcli/internal/infrastructure"
	"edgarcli/internal/loader"
	"edgarcli/internal/operations"
	"edgarcli/internal/validation"
)

// CLIOptions carries the flag values of the CLI binaries.
type CLIOptions struct {
	// Mode selects the stage set the binary runs.
	Mode operations.Mode
	// Tickers is the raw comma-separated ticker/CIK selection.
	Tickers string
	// Workbook also writes the Excel feature workbook.
	Workbook bool
}

// RunCLI is the shared entrypoint of the pipeline, extractor and
// features binaries. It returns the process exit code.
func RunCLI(opts CLIOptions) int {
	// A .env next to the binary fills unset variables. Absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return 1
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	selection := splitSelection(opts.Tickers)
	if len(selection) > 0 && len(loader.ResolveEntities(cfg.Entities, selection)) == 0 {
		// Selecting nothing is a clean no-op, not an error.
		logger.Info("selection matched no configured entities, nothing to do",
			slog.String("selection", opts.Tickers))
		return 0
	}

	paths := config.NewPaths(cfg.Paths)
	validator := validation.NewInputValidator(logger)
	if opts.Mode == operations.ModeFeatures {
		err = validator.ValidateSilverInputs(paths, cfg.Pipeline.BenchmarkSymbol)
	} else {
		err = validator.ValidateRawInputs(paths, cfg.Pipeline.BenchmarkSymbol)
	}
	if err != nil {
		logger.Error("input validation failed", "error", err)
		fmt.Fprintln(os.Stderr, "input validation failed:", err)
		return 1
	}

	manager, err := operations.NewPipelineManager(logger, cfg, operations.PipelineOptions{
		Mode:          opts.Mode,
		Selection:     selection,
		WriteWorkbook: opts.Workbook,
	})
	if err != nil {
		logger.Error("failed to assemble pipeline", "error", err)
		return 1
	}

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	if resp != nil {
		logger.Info("run summary",
			slog.String("status", string(resp.Status)),
			slog.Int("processed", resp.Batch.Processed),
			slog.Int("skipped", resp.Batch.Skipped),
			slog.Int("failed", resp.Batch.Failed),
			slog.Int("feature_rows", resp.FeatureRows))
		if len(resp.Batch.FailedIDs) > 0 {
			logger.Warn("failed entities",
				slog.String("ciks", strings.Join(resp.Batch.FailedIDs, ",")))
		}
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		fmt.Fprintln(os.Stderr, "run failed:", err)
		return 1
	}

	if artifacts, invErr := exporter.Inventory(paths); invErr != nil {
		logger.Warn("artifact inventory failed", "error", invErr)
	} else {
		for _, a := range artifacts {
			logger.Info("artifact",
				slog.String("path", a.Path),
				slog.Int("rows", a.RowCount))
		}
	}

	return 0
}

func splitSelection(tickers string) []string {
	if tickers == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(tickers, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
