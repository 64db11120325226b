package loader

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "edgarcli/internal/errors"
	"edgarcli/pkg/contracts/domain"
)

// LoadPriceSeries reads a ticker's daily price CSV and returns the
// bars tagged with the given entity ID, in file order.
func (l *Loader) LoadPriceSeries(symbol, entityID string) ([]domain.PriceBar, error) {
	records, closeIdx, dateIdx, err := l.readPriceCSV(symbol)
	if err != nil {
		return nil, err
	}

	bars := make([]domain.PriceBar, 0, len(records))
	for _, rec := range records {
		date, close, ok := parsePriceRecord(rec, dateIdx, closeIdx)
		if !ok {
			continue
		}
		bars = append(bars, domain.PriceBar{EntityID: entityID, Date: date, AdjClose: close})
	}

	l.logger.Debug("loaded price series",
		slog.String("symbol", symbol),
		slog.Int("bar_count", len(bars)))

	return bars, nil
}

// LoadBenchmark reads the benchmark symbol's daily close CSV.
func (l *Loader) LoadBenchmark(symbol string) ([]domain.BenchmarkBar, error) {
	records, closeIdx, dateIdx, err := l.readPriceCSV(symbol)
	if err != nil {
		return nil, err
	}

	bars := make([]domain.BenchmarkBar, 0, len(records))
	for _, rec := range records {
		date, close, ok := parsePriceRecord(rec, dateIdx, closeIdx)
		if !ok {
			continue
		}
		bars = append(bars, domain.BenchmarkBar{Date: date, Close: close})
	}

	return bars, nil
}

// readPriceCSV reads a price file and locates the date and close
// columns. An adjusted-close column ("adj" and "close" in the header)
// is preferred; any column containing "close" is the fallback.
func (l *Loader) readPriceCSV(symbol string) ([][]string, int, int, error) {
	path := l.paths.PricePath(symbol)
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, apperrors.NewStorageError("failed to open price file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, 0, apperrors.NewStorageError("failed to parse price csv", err).
			WithContext("path", path)
	}
	if len(rows) < 2 {
		return nil, 0, 0, apperrors.NewStorageError("price csv has no data rows", nil).
			WithContext("path", path)
	}

	header := rows[0]
	closeIdx := findCloseColumn(header)
	if closeIdx < 0 {
		return nil, 0, 0, apperrors.NewStorageError("no close column found in price csv", nil).
			WithContext("path", path)
	}
	dateIdx := findDateColumn(header)

	return rows[1:], closeIdx, dateIdx, nil
}

func findCloseColumn(header []string) int {
	for i, col := range header {
		low := strings.ToLower(col)
		if strings.Contains(low, "adj") && strings.Contains(low, "close") {
			return i
		}
	}
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), "close") {
			return i
		}
	}
	return -1
}

func findDateColumn(header []string) int {
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), "date") {
			return i
		}
	}
	return 0
}

func parsePriceRecord(rec []string, dateIdx, closeIdx int) (time.Time, float64, bool) {
	if dateIdx >= len(rec) || closeIdx >= len(rec) {
		return time.Time{}, 0, false
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[dateIdx]))
	if err != nil {
		return time.Time{}, 0, false
	}
	close, err := strconv.ParseFloat(strings.TrimSpace(rec[closeIdx]), 64)
	if err != nil {
		return time.Time{}, 0, false
	}
	return date, close, true
}
