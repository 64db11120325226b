package exporter

import (
	"fmt"
	"log/slog"

	"edgarcli/internal/config"
	"edgarcli/pkg/contracts/domain"
)

// FundamentalsExporter writes wide fundamentals tables, one row per
// (entity, period end, fiscal year, fiscal period). Concepts that were
// not reported stay empty cells, never zero.
type FundamentalsExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
}

// NewFundamentalsExporter creates a fundamentals table exporter.
func NewFundamentalsExporter(logger *slog.Logger, paths *config.Paths) *FundamentalsExporter {
	return &FundamentalsExporter{
		csvWriter: NewCSVWriter(logger),
		paths:     paths,
	}
}

// fundamentalsHeaders is the wide table column order: identity columns
// first, then one column per canonical concept.
func fundamentalsHeaders() []string {
	return append([]string{"cik", "end", "fy", "fp"}, domain.CanonicalConcepts()...)
}

// ExportEntityTable writes one entity's fundamentals rows to its
// per-entity CSV.
func (e *FundamentalsExporter) ExportEntityTable(cik string, rows []domain.FundamentalsRow) error {
	if err := e.csvWriter.WriteSimpleCSV(e.paths.BronzePath(cik), fundamentalsHeaders(), rowsToRecords(rows)); err != nil {
		return fmt.Errorf("failed to write fundamentals table for %s: %w", cik, err)
	}
	return nil
}

// ExportCombinedTable writes the merged cross-entity fundamentals CSV.
func (e *FundamentalsExporter) ExportCombinedTable(rows []domain.FundamentalsRow) error {
	if err := e.csvWriter.WriteSimpleCSV(e.paths.SilverPath(), fundamentalsHeaders(), rowsToRecords(rows)); err != nil {
		return fmt.Errorf("failed to write combined fundamentals table: %w", err)
	}
	return nil
}

func rowsToRecords(rows []domain.FundamentalsRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := []string{
			row.EntityID,
			formatDate(row.PeriodEnd),
			fmt.Sprintf("%d", row.FiscalYear),
			string(row.FiscalPeriod),
		}
		for _, concept := range domain.CanonicalConcepts() {
			if v, ok := row.Value(concept); ok {
				record = append(record, formatValue(v))
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}
	return records
}
