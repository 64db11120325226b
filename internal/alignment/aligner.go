// Package alignment converts wide quarterly/annual fundamentals into a
// daily series with a hard guarantee against information leakage: a
// filing's values never appear on a calendar date earlier than its
// period end plus the disclosure-availability lag.
package alignment

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	apperrors "edgarcli/internal/errors"
	"edgarcli/pkg/contracts/domain"
)

// Config holds the alignment parameters.
type Config struct {
	// LagDays is the disclosure-availability delay in calendar days.
	LagDays int
	// MaxForwardFillDays bounds how many consecutive daily rows a
	// filing's values may occupy before they go stale.
	MaxForwardFillDays int
}

// Aligner lags, resamples and forward-fills fundamentals onto a daily
// calendar per entity.
type Aligner struct {
	lagDays   int
	maxFFDays int
	logger    *slog.Logger
}

// NewAligner validates the parameters and creates an aligner. A
// negative lag or a non-positive fill window is a configuration error.
func NewAligner(logger *slog.Logger, cfg Config) (*Aligner, error) {
	if cfg.LagDays < 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("lag_days must not be negative, got %d", cfg.LagDays))
	}
	if cfg.MaxForwardFillDays <= 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("max_forward_fill_days must be positive, got %d", cfg.MaxForwardFillDays))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aligner{
		lagDays:   cfg.LagDays,
		maxFFDays: cfg.MaxForwardFillDays,
		logger:    logger,
	}, nil
}

// InfoDate returns the first calendar date on which a filing with the
// given period end is treated as available.
func (a *Aligner) InfoDate(periodEnd time.Time) time.Time {
	return periodEnd.AddDate(0, 0, a.lagDays)
}

// Align broadcasts the combined fundamentals table onto a daily
// calendar. Entities are aligned independently; the output is sorted by
// (entity, date).
//
// Each row occupies the dates [info_date, info_date + window), where the
// window is cut short by the next row's info_date: a newer filing
// always preempts an active forward-fill, even if the older row's
// window has not expired. Dates before an entity's first info_date and
// dates past the last row's window carry no fundamentals at all.
//
// Rows sharing one info_date (an annual and a fourth-quarter row can
// end on the same day) collapse into a single daily row; the later row
// in table order wins per concept.
func (a *Aligner) Align(rows []domain.FundamentalsRow) []domain.DailyFundamentals {
	byEntity := make(map[string][]domain.FundamentalsRow)
	var order []string
	for _, row := range rows {
		if _, ok := byEntity[row.EntityID]; !ok {
			order = append(order, row.EntityID)
		}
		byEntity[row.EntityID] = append(byEntity[row.EntityID], row)
	}
	sort.Strings(order)

	var daily []domain.DailyFundamentals
	for _, entityID := range order {
		entityDaily := a.alignEntity(byEntity[entityID])
		daily = append(daily, entityDaily...)

		a.logger.Debug("aligned entity fundamentals",
			slog.String("entity_id", entityID),
			slog.Int("filing_rows", len(byEntity[entityID])),
			slog.Int("daily_rows", len(entityDaily)))
	}

	return daily
}

// segment is one filing's occupancy of the daily calendar.
type segment struct {
	infoDate  time.Time
	periodEnd time.Time
	values    map[string]float64
}

func (a *Aligner) alignEntity(rows []domain.FundamentalsRow) []domain.DailyFundamentals {
	if len(rows) == 0 {
		return nil
	}

	sorted := make([]domain.FundamentalsRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodEnd.Before(sorted[j].PeriodEnd)
	})

	// Collapse rows that land on the same info_date before building
	// segments; later table order wins per concept.
	var segments []segment
	for _, row := range sorted {
		info := a.InfoDate(row.PeriodEnd)
		if n := len(segments); n > 0 && segments[n-1].infoDate.Equal(info) {
			for concept, v := range row.Values {
				segments[n-1].values[concept] = v
			}
			continue
		}
		values := make(map[string]float64, len(row.Values))
		for concept, v := range row.Values {
			values[concept] = v
		}
		segments = append(segments, segment{
			infoDate:  info,
			periodEnd: row.PeriodEnd,
			values:    values,
		})
	}

	entityID := rows[0].EntityID
	var daily []domain.DailyFundamentals

	for i, seg := range segments {
		stop := seg.infoDate.AddDate(0, 0, a.maxFFDays)
		if i+1 < len(segments) && segments[i+1].infoDate.Before(stop) {
			stop = segments[i+1].infoDate
		}

		for d := seg.infoDate; d.Before(stop); d = d.AddDate(0, 0, 1) {
			daily = append(daily, domain.DailyFundamentals{
				EntityID:  entityID,
				Date:      d,
				PeriodEnd: seg.periodEnd,
				Values:    seg.values,
			})
		}
	}

	return daily
}

// CheckNoLeakage verifies the no-look-ahead invariant for every daily
// row: date >= period_end + lag. Returns an error naming the first
// violating row.
func CheckNoLeakage(daily []domain.DailyFundamentals, lagDays int) error {
	for _, row := range daily {
		earliest := row.PeriodEnd.AddDate(0, 0, lagDays)
		if row.Date.Before(earliest) {
			return fmt.Errorf("leakage: entity %s carries period end %s on %s, before %s",
				row.EntityID,
				row.PeriodEnd.Format("2006-01-02"),
				row.Date.Format("2006-01-02"),
				earliest.Format("2006-01-02"))
		}
	}
	return nil
}
