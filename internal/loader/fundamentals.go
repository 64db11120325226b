package loader

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "edgarcli/internal/errors"
	"edgarcli/pkg/contracts/domain"
)

// ReadFundamentalsCSV reads a wide fundamentals table previously
// written by the exporter (bronze per-entity or combined silver).
// Empty concept cells mean the value was not reported and stay absent.
func (l *Loader) ReadFundamentalsCSV(path string) ([]domain.FundamentalsRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open fundamentals csv", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to parse fundamentals csv", err).
			WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"cik", "end", "fy", "fp"} {
		if _, ok := col[required]; !ok {
			return nil, apperrors.NewStorageError("fundamentals csv missing column "+required, nil).
				WithContext("path", path)
		}
	}

	rows := make([]domain.FundamentalsRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		end, err := time.Parse("2006-01-02", rec[col["end"]])
		if err != nil {
			continue
		}
		fy, err := strconv.Atoi(rec[col["fy"]])
		if err != nil {
			continue
		}

		row := domain.FundamentalsRow{
			EntityID:     rec[col["cik"]],
			PeriodEnd:    end,
			FiscalYear:   fy,
			FiscalPeriod: domain.FiscalPeriod(rec[col["fp"]]),
		}

		for _, concept := range domain.CanonicalConcepts() {
			idx, ok := col[concept]
			if !ok || idx >= len(rec) {
				continue
			}
			cell := strings.TrimSpace(rec[idx])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			row.SetValue(concept, v)
		}

		rows = append(rows, row)
	}

	return rows, nil
}
