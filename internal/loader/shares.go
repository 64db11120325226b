package loader

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"

	apperrors "edgarcli/internal/errors"
	"edgarcli/pkg/contracts/domain"
)

// LoadShares reads the share-count reference file
// (ticker,shares_outstanding). The sentinel "NA" marks a ticker whose
// count is legitimately unavailable; market capitalization stays absent
// for it downstream, never zero.
func (l *Loader) LoadShares() (map[string]domain.SharesOutstanding, error) {
	file, err := os.Open(l.paths.SharesFile)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open shares file", err).
			WithContext("path", l.paths.SharesFile)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to parse shares csv", err).
			WithContext("path", l.paths.SharesFile)
	}

	shares := make(map[string]domain.SharesOutstanding)
	for i, rec := range rows {
		if i == 0 || len(rec) < 2 {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(rec[0]))
		raw := strings.TrimSpace(rec[1])

		if strings.EqualFold(raw, "NA") || raw == "" {
			shares[ticker] = domain.SharesOutstanding{Ticker: ticker, Available: false}
			continue
		}

		count, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			l.logger.Warn("unparseable share count, treating as unavailable",
				slog.String("ticker", ticker),
				slog.String("value", raw))
			shares[ticker] = domain.SharesOutstanding{Ticker: ticker, Available: false}
			continue
		}

		shares[ticker] = domain.SharesOutstanding{Ticker: ticker, Count: count, Available: true}
	}

	return shares, nil
}

// SharesFor returns the reference entry for a ticker, defaulting to
// unavailable when the ticker is missing from the file.
func SharesFor(shares map[string]domain.SharesOutstanding, ticker string) domain.SharesOutstanding {
	if s, ok := shares[strings.ToUpper(ticker)]; ok {
		return s
	}
	return domain.SharesOutstanding{Ticker: strings.ToUpper(ticker), Available: false}
}
