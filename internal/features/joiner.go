// Package features produces the final labeled feature table: aligned
// daily fundamentals joined against daily prices and the benchmark,
// with derived ratios and a forward-looking excess-return label.
//
// Derived fields use explicit absent semantics. A value that cannot be
// computed from available inputs stays nil and propagates as absent,
// never coerced to zero. The label fields look ahead and are excluded
// from model inputs.
package features

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	apperrors "edgarcli/internal/errors"
	"edgarcli/pkg/contracts/domain"
)

// Config holds the join and labeling parameters.
type Config struct {
	// HorizonDays is the label horizon in daily-grid positions within
	// each series, not calendar days.
	HorizonDays int
	// RevenueLookback is the revenue growth lookback in daily-grid
	// positions. The pipeline passes MaxForwardFillDays here, a
	// day-count approximation of quarter-over-quarter growth.
	RevenueLookback int
	// Epsilon is added to ratio denominators.
	Epsilon float64
}

// Joiner builds per-entity feature rows and concatenates them into the
// terminal feature table.
type Joiner struct {
	horizonDays int
	lookback    int
	epsilon     float64
	logger      *slog.Logger
}

// NewJoiner validates the parameters and creates a feature joiner.
func NewJoiner(logger *slog.Logger, cfg Config) (*Joiner, error) {
	if cfg.HorizonDays <= 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("horizon_days must be positive, got %d", cfg.HorizonDays))
	}
	if cfg.RevenueLookback <= 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("revenue_lookback must be positive, got %d", cfg.RevenueLookback))
	}
	if cfg.Epsilon <= 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("epsilon must be positive, got %g", cfg.Epsilon))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{
		horizonDays: cfg.HorizonDays,
		lookback:    cfg.RevenueLookback,
		epsilon:     cfg.Epsilon,
		logger:      logger,
	}, nil
}

// EntityInput bundles one entity's inputs to the join.
type EntityInput struct {
	EntityID string
	Ticker   string
	Prices   []domain.PriceBar
	Daily    []domain.DailyFundamentals
	Shares   domain.SharesOutstanding
}

// Build produces the feature table for all entities against one fully
// materialized benchmark series, ordered by (ticker, date). Labels are
// computed per entity; rows in the last HorizonDays positions of a
// series keep their place with an absent label.
func (j *Joiner) Build(inputs []EntityInput, benchmark []domain.BenchmarkBar) []domain.FeatureRow {
	benchByDate := benchmarkIndex(FillBenchmarkDaily(benchmark))

	sorted := make([]EntityInput, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, k int) bool { return sorted[i].Ticker < sorted[k].Ticker })

	var table []domain.FeatureRow
	for _, input := range sorted {
		rows := j.buildEntity(input, benchByDate)
		table = append(table, rows...)

		j.logger.Debug("built entity features",
			slog.String("ticker", input.Ticker),
			slog.String("entity_id", input.EntityID),
			slog.Int("price_bars", len(input.Prices)),
			slog.Int("feature_rows", len(rows)))
	}

	return table
}

// buildEntity assembles the feature rows for one entity: left-join daily
// fundamentals onto the price series, derive market cap, apply the
// positive-equity filter, compute ratios and the forward-return label.
func (j *Joiner) buildEntity(input EntityInput, benchByDate map[string]float64) []domain.FeatureRow {
	fundByDate := make(map[string]domain.DailyFundamentals, len(input.Daily))
	for _, d := range input.Daily {
		fundByDate[dateKey(d.Date)] = d
	}

	prices := make([]domain.PriceBar, len(input.Prices))
	copy(prices, input.Prices)
	sort.Slice(prices, func(i, k int) bool { return prices[i].Date.Before(prices[k].Date) })

	var rows []domain.FeatureRow
	for _, bar := range prices {
		row := domain.FeatureRow{
			EntityID: input.EntityID,
			Ticker:   input.Ticker,
			Date:     bar.Date,
			AdjClose: bar.AdjClose,
		}

		// Left join: a date with a price but no available fundamentals
		// keeps absent fundamental fields, not zeros.
		if fund, ok := fundByDate[dateKey(bar.Date)]; ok {
			row.Fundamentals = fund.Values
			row.PeriodEnd = fund.PeriodEnd
		}

		if input.Shares.Available {
			mc := bar.AdjClose * input.Shares.Count
			row.MarketCap = &mc
			mcLog := math.Log1p(mc)
			row.MarketCapLog = &mcLog
		}

		if close, ok := benchByDate[dateKey(bar.Date)]; ok {
			c := close
			row.BenchmarkClose = &c
		}

		// Positive-equity filter: accounting ratios are meaningless on
		// non-positive equity, so those rows leave the table entirely.
		equity, ok := row.Fundamental(domain.ConceptEquity)
		if !ok || equity <= 0 {
			continue
		}

		j.deriveRatios(&row, equity)
		rows = append(rows, row)
	}

	j.deriveRevenueGrowth(rows)
	j.deriveLabels(rows)

	return rows
}

func (j *Joiner) deriveRatios(row *domain.FeatureRow, equity float64) {
	if liabilities, ok := row.Fundamental(domain.ConceptLiabilities); ok {
		de := liabilities / (equity + j.epsilon)
		row.DebtEquity = &de
	}

	revenue, hasRevenue := row.Fundamental(domain.ConceptRevenue)
	cogs, hasCOGS := row.Fundamental(domain.ConceptCOGS)
	if hasRevenue && hasCOGS {
		gm := 1 - cogs/(revenue+j.epsilon)
		row.GrossMargin = &gm
	}
}

// deriveRevenueGrowth computes the percent change of revenue over the
// lookback, measured in positions within the entity's filtered row
// sequence. Absent when either endpoint lacks revenue or the past
// revenue is zero.
func (j *Joiner) deriveRevenueGrowth(rows []domain.FeatureRow) {
	for i := range rows {
		if i < j.lookback {
			continue
		}
		current, okNow := rows[i].Fundamental(domain.ConceptRevenue)
		past, okPast := rows[i-j.lookback].Fundamental(domain.ConceptRevenue)
		if !okNow || !okPast || past == 0 {
			continue
		}
		growth := current/past - 1
		rows[i].RevenueQoQ = &growth
	}
}

// deriveLabels fills the forward-return label fields. The forward
// observation sits exactly HorizonDays positions ahead in the entity's
// own row sequence; rows without one keep an absent label rather than
// a synthesized one.
func (j *Joiner) deriveLabels(rows []domain.FeatureRow) {
	for i := range rows {
		fwd := i + j.horizonDays
		if fwd >= len(rows) {
			continue
		}

		futureReturn := rows[fwd].AdjClose/rows[i].AdjClose - 1
		rows[i].FutureReturn = &futureReturn

		if rows[i].BenchmarkClose == nil || rows[fwd].BenchmarkClose == nil {
			continue
		}
		benchReturn := *rows[fwd].BenchmarkClose / *rows[i].BenchmarkClose - 1
		rows[i].BenchmarkFutureReturn = &benchReturn

		excess := futureReturn - benchReturn
		rows[i].ExcessReturn = &excess

		up := 0
		if excess > 0 {
			up = 1
		}
		rows[i].LabelUp = &up
	}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
