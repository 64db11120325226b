package domain

import (
	"time"
)

// FeatureRow is one row of the terminal feature table, keyed by
// (entity, date). Derived fields use pointers: nil means the value could
// not be computed from available data and must stay absent downstream,
// never coerced to zero. The forward-looking label fields are excluded
// from model inputs by contract.
type FeatureRow struct {
	EntityID string    `json:"entity_id"`
	Ticker   string    `json:"ticker"`
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`

	// Fundamentals carried from the aligned daily series. Missing key =
	// concept not available on this date.
	Fundamentals map[string]float64 `json:"fundamentals"`
	// PeriodEnd of the filing the fundamentals came from.
	PeriodEnd time.Time `json:"period_end"`

	MarketCap    *float64 `json:"market_cap,omitempty"`
	MarketCapLog *float64 `json:"market_cap_log,omitempty"`
	DebtEquity   *float64 `json:"debt_equity,omitempty"`
	GrossMargin  *float64 `json:"gross_margin,omitempty"`
	RevenueQoQ   *float64 `json:"revenue_qoq,omitempty"`

	BenchmarkClose *float64 `json:"benchmark_close,omitempty"`

	FutureReturn          *float64 `json:"future_return,omitempty"`
	BenchmarkFutureReturn *float64 `json:"benchmark_future_return,omitempty"`
	ExcessReturn          *float64 `json:"excess_return,omitempty"`
	LabelUp               *int     `json:"label_up,omitempty"`
}

// Fundamental returns a carried fundamental value and whether it is
// present on this row.
func (r *FeatureRow) Fundamental(concept string) (float64, bool) {
	v, ok := r.Fundamentals[concept]
	return v, ok
}

// HasLabel reports whether the forward-return label could be computed
// for this row (a forward observation existed for both the entity and
// the benchmark).
func (r *FeatureRow) HasLabel() bool {
	return r.ExcessReturn != nil
}
