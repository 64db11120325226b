package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the on-disk layout of the pipeline's data tree:
// raw disclosure documents in, bronze/silver/feature tables out, price
// series alongside.
type Paths struct {
	RawDir      string
	BronzeDir   string
	SilverDir   string
	FeaturesDir string
	PricesDir   string
	SharesFile  string
}

// NewPaths builds a Paths from the configuration section.
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{
		RawDir:      cfg.RawDir,
		BronzeDir:   cfg.BronzeDir,
		SilverDir:   cfg.SilverDir,
		FeaturesDir: cfg.FeaturesDir,
		PricesDir:   cfg.PricesDir,
		SharesFile:  cfg.SharesFile,
	}
}

// EnsureDirs creates the output directories if they do not exist. The
// raw and prices directories are inputs and are not created here.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.BronzeDir, p.SilverDir, p.FeaturesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RawDocumentPath returns the path of an entity's raw disclosure JSON.
func (p *Paths) RawDocumentPath(cik string) string {
	return filepath.Join(p.RawDir, cik+".json")
}

// BronzePath returns the per-entity wide fundamentals CSV path.
func (p *Paths) BronzePath(cik string) string {
	return filepath.Join(p.BronzeDir, cik+".csv")
}

// SilverPath returns the combined fundamentals CSV path.
func (p *Paths) SilverPath() string {
	return filepath.Join(p.SilverDir, "fundamentals.csv")
}

// FeaturesPath returns the feature table CSV path.
func (p *Paths) FeaturesPath() string {
	return filepath.Join(p.FeaturesDir, "features.csv")
}

// FeaturesWorkbookPath returns the feature table Excel workbook path.
func (p *Paths) FeaturesWorkbookPath() string {
	return filepath.Join(p.FeaturesDir, "features.xlsx")
}

// PricePath returns the daily price CSV path for a ticker or the
// benchmark symbol.
func (p *Paths) PricePath(symbol string) string {
	return filepath.Join(p.PricesDir, symbol+".csv")
}

// RelativeOrAbsolute returns path relative to the working directory when
// possible, falling back to the absolute path otherwise.
func RelativeOrAbsolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return abs
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return abs
	}
	return rel
}
