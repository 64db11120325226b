// Package loader reads the pipeline's on-disk inputs: raw disclosure
// documents, daily price series, the share-count reference, and
// previously written fundamentals tables.
package loader

import (
	"log/slog"
	"os"
	"strings"

	"edgarcli/internal/config"

	apperrors "edgarcli/internal/errors"
)

// Loader resolves and reads pipeline inputs under the configured paths.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// New creates a loader.
func New(logger *slog.Logger, paths *config.Paths) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{paths: paths, logger: logger}
}

// ResolveEntities filters the configured entities by an explicit
// selection of tickers or CIKs (leading zeros ignored, case ignored).
// An empty selection means all configured entities. A selection that
// matches nothing is a no-op, not an error; the caller exits cleanly.
func ResolveEntities(entities []config.EntityConfig, selection []string) []config.EntityConfig {
	if len(selection) == 0 {
		return entities
	}

	wanted := make(map[string]bool, len(selection))
	for _, s := range selection {
		wanted[strings.ToUpper(strings.TrimLeft(s, "0"))] = true
	}

	var matched []config.EntityConfig
	for _, e := range entities {
		if wanted[strings.ToUpper(e.Ticker)] || wanted[strings.TrimLeft(e.CIK, "0")] {
			matched = append(matched, e)
		}
	}
	return matched
}

// ReadDocument reads one entity's raw disclosure document.
func (l *Loader) ReadDocument(cik string) ([]byte, error) {
	path := l.paths.RawDocumentPath(cik)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read raw document", err).
			WithContext("path", path)
	}
	return data, nil
}

// HasDocument reports whether an entity's raw document exists on disk.
func (l *Loader) HasDocument(cik string) bool {
	_, err := os.Stat(l.paths.RawDocumentPath(cik))
	return err == nil
}
