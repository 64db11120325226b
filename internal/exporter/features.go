package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"edgarcli/internal/config"
	"edgarcli/pkg/contracts/domain"
)

// FeaturesExporter writes the terminal feature table as CSV and as an
// Excel workbook for manual inspection.
type FeaturesExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewFeaturesExporter creates a feature table exporter.
func NewFeaturesExporter(logger *slog.Logger, paths *config.Paths) *FeaturesExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeaturesExporter{
		csvWriter: NewCSVWriter(logger),
		paths:     paths,
		logger:    logger,
	}
}

func featureHeaders() []string {
	headers := []string{"cik", "ticker", "date", "adj_close"}
	headers = append(headers, domain.CanonicalConcepts()...)
	return append(headers,
		"period_end",
		"market_cap", "market_cap_log", "debt_equity", "gross_margin", "revenue_qoq",
		"benchmark_close",
		"future_return", "benchmark_future_return", "excess_return", "label_up",
	)
}

func featureRecord(row domain.FeatureRow) []string {
	record := []string{
		row.EntityID,
		row.Ticker,
		formatDate(row.Date),
		formatValue(row.AdjClose),
	}
	for _, concept := range domain.CanonicalConcepts() {
		if v, ok := row.Fundamental(concept); ok {
			record = append(record, formatValue(v))
		} else {
			record = append(record, "")
		}
	}
	return append(record,
		formatDate(row.PeriodEnd),
		formatOptional(row.MarketCap),
		formatOptional(row.MarketCapLog),
		formatOptional(row.DebtEquity),
		formatOptional(row.GrossMargin),
		formatOptional(row.RevenueQoQ),
		formatOptional(row.BenchmarkClose),
		formatOptional(row.FutureReturn),
		formatOptional(row.BenchmarkFutureReturn),
		formatOptional(row.ExcessReturn),
		formatOptionalInt(row.LabelUp),
	)
}

// ExportCSV streams the feature rows to the features CSV. Absent
// derived values and labels become empty cells.
func (e *FeaturesExporter) ExportCSV(rows []domain.FeatureRow) error {
	stream, err := e.csvWriter.CreateStreamWriter(e.paths.FeaturesPath(), featureHeaders())
	if err != nil {
		return fmt.Errorf("failed to create features stream: %w", err)
	}

	for _, row := range rows {
		if err := stream.WriteRecord(featureRecord(row)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write feature row: %w", err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close features stream: %w", err)
	}

	e.logger.Info("feature table written",
		slog.String("path", e.paths.FeaturesPath()),
		slog.Int("row_count", len(rows)))
	return nil
}

// ExportWorkbook writes the feature rows to an Excel workbook, one
// sheet per ticker. Absent values stay empty cells there too.
func (e *FeaturesExporter) ExportWorkbook(rows []domain.FeatureRow) error {
	f := excelize.NewFile()
	defer f.Close()

	byTicker := make(map[string][]domain.FeatureRow)
	var order []string
	for _, row := range rows {
		if _, seen := byTicker[row.Ticker]; !seen {
			order = append(order, row.Ticker)
		}
		byTicker[row.Ticker] = append(byTicker[row.Ticker], row)
	}

	headers := featureHeaders()
	for i, ticker := range order {
		sheet := ticker
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheetRow(f, sheet, 1, headers); err != nil {
			return err
		}
		for rowIdx, row := range byTicker[ticker] {
			if err := writeSheetRow(f, sheet, rowIdx+2, featureRecord(row)); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(e.paths.FeaturesWorkbookPath()); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("feature workbook written",
		slog.String("path", e.paths.FeaturesWorkbookPath()),
		slog.Int("sheet_count", len(order)))
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write sheet row: %w", err)
	}
	return nil
}
