package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"edgarcli/internal/config"
	"edgarcli/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	root := t.TempDir()
	return &config.Paths{
		RawDir:      filepath.Join(root, "raw"),
		BronzeDir:   filepath.Join(root, "bronze"),
		SilverDir:   filepath.Join(root, "silver"),
		FeaturesDir: filepath.Join(root, "features"),
		PricesDir:   filepath.Join(root, "prices"),
		SharesFile:  filepath.Join(root, "shares.csv"),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(data), "\xEF\xBB\xBF")
	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

func TestWriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(slog.Default())

	path := filepath.Join(dir, "nested", "out.csv")
	err := writer.WriteSimpleCSV(path, []string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}})
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b"}, records[0])
	assert.Equal(t, []string{"3", "4"}, records[2])
}

func TestWriteCSVAppend(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(slog.Default())
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"a"}, [][]string{{"1"}}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{Records: [][]string{{"2"}}, Append: true}))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2"}, records[2])
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(slog.Default())
	path := filepath.Join(dir, "stream.csv")

	stream, err := writer.CreateStreamWriter(path, []string{"x", "y"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "2"}))
	require.NoError(t, stream.WriteRecord([]string{"3", "4"}))
	require.NoError(t, stream.Close())

	records := readCSV(t, path)
	require.Len(t, records, 3)
}

func TestExportEntityTableAbsentCellsStayEmpty(t *testing.T) {
	paths := testPaths(t)
	e := NewFundamentalsExporter(slog.Default(), paths)

	row := domain.FundamentalsRow{
		EntityID:     "0000320193",
		PeriodEnd:    time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC),
		FiscalYear:   2021,
		FiscalPeriod: domain.PeriodQ2,
	}
	row.SetValue(domain.ConceptEquity, 63000)
	row.SetValue(domain.ConceptRevenue, 89584)

	require.NoError(t, e.ExportEntityTable("0000320193", []domain.FundamentalsRow{row}))

	records := readCSV(t, paths.BronzePath("0000320193"))
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, []string{"cik", "end", "fy", "fp"}, header[:4])
	assert.Equal(t, domain.CanonicalConcepts(), header[4:])

	data := records[1]
	byCol := make(map[string]string, len(header))
	for i, name := range header {
		byCol[name] = data[i]
	}
	assert.Equal(t, "2021-03-31", byCol["end"])
	assert.Equal(t, "Q2", byCol["fp"])
	assert.Equal(t, "63000", byCol[domain.ConceptEquity])
	assert.Equal(t, "", byCol[domain.ConceptAssets]) // unreported, not zero
	assert.Equal(t, "", byCol[domain.ConceptCOGS])
}

func TestFundamentalsRoundTrip(t *testing.T) {
	paths := testPaths(t)
	e := NewFundamentalsExporter(slog.Default(), paths)

	row := domain.FundamentalsRow{
		EntityID:     "0000789019",
		PeriodEnd:    time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC),
		FiscalYear:   2021,
		FiscalPeriod: domain.PeriodQ4,
	}
	row.SetValue(domain.ConceptAssets, 333779000000)
	row.SetValue(domain.ConceptEPSDiluted, 2.17)

	require.NoError(t, e.ExportCombinedTable([]domain.FundamentalsRow{row}))

	records := readCSV(t, paths.SilverPath())
	require.Len(t, records, 2)
	// full precision preserved through the round trip
	assert.Contains(t, records[1], "3.33779e+11")
	assert.Contains(t, records[1], "2.17")
}

func TestExportFeaturesCSV(t *testing.T) {
	paths := testPaths(t)
	e := NewFeaturesExporter(slog.Default(), paths)

	labeled := domain.FeatureRow{
		EntityID: "0000320193",
		Ticker:   "AAPL",
		Date:     time.Date(2021, 5, 17, 0, 0, 0, 0, time.UTC),
		AdjClose: 125.5,
		Fundamentals: map[string]float64{
			domain.ConceptEquity: 63000,
		},
		PeriodEnd:             time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC),
		MarketCap:             float64Ptr(2.0e12),
		DebtEquity:            float64Ptr(4.55),
		FutureReturn:          float64Ptr(0.05),
		BenchmarkFutureReturn: float64Ptr(0.02),
		ExcessReturn:          float64Ptr(0.03),
		LabelUp:               intPtr(1),
	}
	unlabeled := domain.FeatureRow{
		EntityID:  "0000320193",
		Ticker:    "AAPL",
		Date:      time.Date(2021, 5, 18, 0, 0, 0, 0, time.UTC),
		AdjClose:  126.0,
		PeriodEnd: time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, e.ExportCSV([]domain.FeatureRow{labeled, unlabeled}))

	records := readCSV(t, paths.FeaturesPath())
	require.Len(t, records, 3)

	header := records[0]
	byCol := func(rec []string) map[string]string {
		m := make(map[string]string, len(header))
		for i, name := range header {
			m[name] = rec[i]
		}
		return m
	}

	first := byCol(records[1])
	assert.Equal(t, "AAPL", first["ticker"])
	assert.Equal(t, "2021-05-17", first["date"])
	assert.Equal(t, "63000", first[domain.ConceptEquity])
	assert.Equal(t, "0.03", first["excess_return"])
	assert.Equal(t, "1", first["label_up"])

	second := byCol(records[2])
	assert.Equal(t, "", second["market_cap"])
	assert.Equal(t, "", second["excess_return"])
	assert.Equal(t, "", second["label_up"]) // unlabeled tail row kept, marked absent
}

func TestExportWorkbookOneSheetPerTicker(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.FeaturesDir, 0755))
	e := NewFeaturesExporter(slog.Default(), paths)

	rows := []domain.FeatureRow{
		{EntityID: "0000320193", Ticker: "AAPL", Date: time.Date(2021, 5, 17, 0, 0, 0, 0, time.UTC), AdjClose: 125.5},
		{EntityID: "0000789019", Ticker: "MSFT", Date: time.Date(2021, 5, 17, 0, 0, 0, 0, time.UTC), AdjClose: 245.2},
	}

	require.NoError(t, e.ExportWorkbook(rows))

	f, err := excelize.OpenFile(paths.FeaturesWorkbookPath())
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, f.GetSheetList())

	ticker, err := f.GetCellValue("AAPL", "B2")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)
}

func TestInventory(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(slog.Default())

	require.NoError(t, writer.WriteSimpleCSV(paths.BronzePath("0000320193"),
		[]string{"a"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, writer.WriteSimpleCSV(paths.SilverPath(),
		[]string{"a"}, [][]string{{"1"}}))

	artifacts, err := Inventory(paths)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, paths.BronzePath("0000320193"), artifacts[0].Path)
	assert.Equal(t, 2, artifacts[0].RowCount)
	assert.Equal(t, 1, artifacts[1].RowCount)
}
