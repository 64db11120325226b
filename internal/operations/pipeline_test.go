package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarcli/internal/config"
	"edgarcli/pkg/contracts/domain"
)

func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Pipeline: config.PipelineConfig{
			LagDays:            45,
			MaxForwardFillDays: 400,
			HorizonDays:        63,
			Epsilon:            1e-9,
			TargetUnit:         "USD",
			BenchmarkSymbol:    "SPY",
		},
		Entities: []config.EntityConfig{
			{Ticker: "AAPL", CIK: "0000320193"},
		},
		Paths: config.PathsConfig{
			RawDir:      filepath.Join(root, "raw"),
			BronzeDir:   filepath.Join(root, "bronze"),
			SilverDir:   filepath.Join(root, "silver"),
			FeaturesDir: filepath.Join(root, "features"),
			PricesDir:   filepath.Join(root, "prices"),
			SharesFile:  filepath.Join(root, "shares.csv"),
		},
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// flatPriceCSV covers every calendar day of 2021 at a constant close.
func flatPriceCSV(close float64) string {
	out := "Date,Adj Close\n"
	for d := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == 2021; d = d.AddDate(0, 0, 1) {
		out += fmt.Sprintf("%s,%g\n", d.Format("2006-01-02"), close)
	}
	return out
}

func quarterlyEquityDoc() string {
	return `{
		"cik": 320193,
		"entityName": "Apple Inc.",
		"facts": {"us-gaap": {
			"StockholdersEquity": {"units": {"USD": [
				{"end": "2021-03-31", "val": 100, "fy": 2021, "fp": "Q1", "form": "10-Q"},
				{"end": "2021-06-30", "val": 110, "fy": 2021, "fp": "Q2", "form": "10-Q"}
			]}}
		}}
	}`
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := pipelineConfig(t)
	paths := config.NewPaths(cfg.Paths)

	writeTestFile(t, paths.RawDocumentPath("0000320193"), quarterlyEquityDoc())
	writeTestFile(t, paths.PricePath("AAPL"), flatPriceCSV(10))
	writeTestFile(t, paths.PricePath("SPY"), flatPriceCSV(400))
	writeTestFile(t, cfg.Paths.SharesFile, "ticker,shares_outstanding\nAAPL,1000\n")

	m, err := NewPipelineManager(slog.Default(), cfg, PipelineOptions{})
	require.NoError(t, err)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)

	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, 1, resp.Batch.Processed)
	assert.Equal(t, 0, resp.Batch.Failed)
	require.Len(t, resp.Steps, 4)
	for _, step := range resp.Steps {
		assert.Equal(t, StepStatusCompleted, step.CurrentStatus(), step.ID)
	}

	state, ok := m.GetOperation(resp.ID)
	require.True(t, ok)
	rows := state.Features()
	require.NotEmpty(t, rows)

	// The Q1 filing (period end 2021-03-31) becomes visible 45 days
	// later. No feature row may exist before that.
	firstVisible := time.Date(2021, 5, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, firstVisible, rows[0].Date)

	// The Q2 filing (period end 2021-06-30) takes over on 2021-08-14.
	q2Visible := time.Date(2021, 8, 14, 0, 0, 0, 0, time.UTC)
	for _, row := range rows {
		equity, ok := row.Fundamental(domain.ConceptEquity)
		require.True(t, ok, row.Date)
		if row.Date.Before(q2Visible) {
			assert.Equal(t, 100.0, equity, row.Date)
		} else {
			assert.Equal(t, 110.0, equity, row.Date)
		}

		// Every row carries data only from filings old enough to be
		// public on its date.
		assert.False(t, row.Date.Before(row.PeriodEnd.AddDate(0, 0, 45)), row.Date)

		// flat 10 close with 1000 shares
		require.NotNil(t, row.MarketCap)
		assert.Equal(t, 10000.0, *row.MarketCap)
	}

	// Price coverage runs through year end, so the last row does too.
	assert.Equal(t, time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), rows[len(rows)-1].Date)

	// Flat prices make every computable forward return zero and no
	// label positive.
	for _, row := range rows {
		if row.HasLabel() {
			assert.Equal(t, 0.0, *row.ExcessReturn)
			assert.Equal(t, 0, *row.LabelUp)
		}
	}

	// Artifacts on disk.
	for _, path := range []string{
		paths.BronzePath("0000320193"),
		paths.SilverPath(),
		paths.FeaturesPath(),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestPipelineMalformedDocumentFailsEntityNotRun(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Entities = append(cfg.Entities, config.EntityConfig{Ticker: "MSFT", CIK: "0000789019"})
	paths := config.NewPaths(cfg.Paths)

	writeTestFile(t, paths.RawDocumentPath("0000320193"), quarterlyEquityDoc())
	writeTestFile(t, paths.RawDocumentPath("0000789019"), `{"cik": 789019`)
	writeTestFile(t, paths.PricePath("AAPL"), flatPriceCSV(10))
	writeTestFile(t, paths.PricePath("SPY"), flatPriceCSV(400))
	writeTestFile(t, cfg.Paths.SharesFile, "ticker,shares_outstanding\nAAPL,1000\n")

	m, err := NewPipelineManager(slog.Default(), cfg, PipelineOptions{})
	require.NoError(t, err)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)

	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, 1, resp.Batch.Processed)
	assert.Equal(t, 1, resp.Batch.Failed)
	assert.Equal(t, []string{"0000789019"}, resp.Batch.FailedIDs)
}

// Extract and features modes split the pipeline at the combined CSV:
// running them back to back must produce the same artifacts as a full
// run.
func TestPipelineSplitModesRoundTrip(t *testing.T) {
	cfg := pipelineConfig(t)
	paths := config.NewPaths(cfg.Paths)

	writeTestFile(t, paths.RawDocumentPath("0000320193"), quarterlyEquityDoc())
	writeTestFile(t, paths.PricePath("AAPL"), flatPriceCSV(10))
	writeTestFile(t, paths.PricePath("SPY"), flatPriceCSV(400))
	writeTestFile(t, cfg.Paths.SharesFile, "ticker,shares_outstanding\nAAPL,1000\n")

	extract, err := NewPipelineManager(slog.Default(), cfg, PipelineOptions{Mode: ModeExtract})
	require.NoError(t, err)
	resp, err := extract.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	require.Equal(t, OperationStatusCompleted, resp.Status)

	_, err = os.Stat(paths.SilverPath())
	require.NoError(t, err)
	_, err = os.Stat(paths.FeaturesPath())
	require.True(t, os.IsNotExist(err))

	feat, err := NewPipelineManager(slog.Default(), cfg, PipelineOptions{Mode: ModeFeatures})
	require.NoError(t, err)
	resp, err = feat.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	require.Equal(t, OperationStatusCompleted, resp.Status)

	state, ok := feat.GetOperation(resp.ID)
	require.True(t, ok)
	rows := state.Features()
	require.NotEmpty(t, rows)
	assert.Equal(t, time.Date(2021, 5, 15, 0, 0, 0, 0, time.UTC), rows[0].Date)
}

// An empty entity selection is handled by the callers before a run is
// started; a manager executed with none fails validation instead of
// producing empty artifacts.
func TestPipelineSelectionNoMatchFailsValidation(t *testing.T) {
	cfg := pipelineConfig(t)

	m, err := NewPipelineManager(slog.Default(), cfg, PipelineOptions{Selection: []string{"TSLA"}})
	require.NoError(t, err)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusFailed, resp.Steps[0].CurrentStatus())
}
