// Package validation checks the on-disk data tree before a pipeline
// run so missing inputs fail fast with a clear message instead of
// halfway through a run.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"edgarcli/internal/config"
)

// InputValidator validates the pipeline's input tree.
type InputValidator struct {
	logger *slog.Logger
}

// NewInputValidator creates an input validator.
func NewInputValidator(logger *slog.Logger) *InputValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputValidator{logger: logger}
}

// ValidateRawInputs checks that the raw document directory exists and
// holds at least one document, and that the benchmark price series is
// present. Individual missing documents stay per-entity failures; this
// only rejects a tree where nothing could possibly run.
func (v *InputValidator) ValidateRawInputs(paths *config.Paths, benchmark string) error {
	if err := v.validateDirectory(paths.RawDir, "*.json"); err != nil {
		return fmt.Errorf("raw documents: %w", err)
	}
	if err := v.validateFile(paths.PricePath(benchmark)); err != nil {
		return fmt.Errorf("benchmark series %s: %w", benchmark, err)
	}
	return nil
}

// ValidateSilverInputs checks that a combined fundamentals table and
// the benchmark series exist, for runs starting from the silver table.
func (v *InputValidator) ValidateSilverInputs(paths *config.Paths, benchmark string) error {
	if err := v.validateFile(paths.SilverPath()); err != nil {
		return fmt.Errorf("combined fundamentals: %w", err)
	}
	if err := v.validateFile(paths.PricePath(benchmark)); err != nil {
		return fmt.Errorf("benchmark series %s: %w", benchmark, err)
	}
	return nil
}

func (v *InputValidator) validateDirectory(dir, requiredPattern string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, requiredPattern))
	if err != nil {
		return fmt.Errorf("failed to check for files: %w", err)
	}
	if len(matches) == 0 {
		v.logger.Error("no input files found",
			slog.String("directory", dir),
			slog.String("pattern", requiredPattern))
		return fmt.Errorf("no files matching %s in %s", requiredPattern, dir)
	}

	v.logger.Debug("input directory validated",
		slog.String("directory", dir),
		slog.Int("file_count", len(matches)))
	return nil
}

func (v *InputValidator) validateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}
	return nil
}
