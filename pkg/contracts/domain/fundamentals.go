package domain

import (
	"time"
)

// FiscalPeriod identifies the reporting period of a filing fact.
type FiscalPeriod string

const (
	PeriodQ1 FiscalPeriod = "Q1"
	PeriodQ2 FiscalPeriod = "Q2"
	PeriodQ3 FiscalPeriod = "Q3"
	PeriodQ4 FiscalPeriod = "Q4"
	PeriodFY FiscalPeriod = "FY"
)

// RecognizedPeriods is the set of fiscal period codes accepted during
// extraction. Observations with any other code are discarded.
var RecognizedPeriods = map[FiscalPeriod]bool{
	PeriodQ1: true,
	PeriodQ2: true,
	PeriodQ3: true,
	PeriodQ4: true,
	PeriodFY: true,
}

// Valid reports whether the period code is one of the recognized values.
func (p FiscalPeriod) Valid() bool {
	return RecognizedPeriods[p]
}

// Canonical concept names produced by extraction. One column per concept
// in the wide fundamentals table.
const (
	ConceptAssets      = "assets"
	ConceptLiabilities = "liabilities"
	ConceptEquity      = "equity"
	ConceptRevenue     = "revenue"
	ConceptCOGS        = "cogs"
	ConceptNetIncome   = "net_income"
	ConceptOperatingCF = "operating_cf"
	ConceptCapex       = "capex"
	ConceptEPSDiluted  = "eps_diluted"
)

// CanonicalConcepts returns the concept column order used by the wide
// fundamentals tables and their CSV form.
func CanonicalConcepts() []string {
	return []string{
		ConceptAssets,
		ConceptLiabilities,
		ConceptEquity,
		ConceptRevenue,
		ConceptCOGS,
		ConceptNetIncome,
		ConceptOperatingCF,
		ConceptCapex,
		ConceptEPSDiluted,
	}
}

// FilingFact is one reported value extracted from a disclosure document.
// Facts are ephemeral: they exist between extraction and the pivot into
// the wide fundamentals table.
type FilingFact struct {
	EntityID     string       `json:"entity_id"`
	PeriodEnd    time.Time    `json:"period_end"`
	FiscalYear   int          `json:"fiscal_year"`
	FiscalPeriod FiscalPeriod `json:"fiscal_period"`
	Concept      string       `json:"concept"`
	Value        float64      `json:"value"`
}

// FundamentalsRow is one wide row per (entity, period end, fiscal year,
// fiscal period). Values holds one entry per canonical concept that was
// reported; a missing key means the concept was not reported for the
// period, never zero.
type FundamentalsRow struct {
	EntityID     string             `json:"entity_id"`
	PeriodEnd    time.Time          `json:"period_end"`
	FiscalYear   int                `json:"fiscal_year"`
	FiscalPeriod FiscalPeriod       `json:"fiscal_period"`
	Values       map[string]float64 `json:"values"`
}

// Value returns the reported value for a canonical concept and whether
// the concept was reported at all.
func (r *FundamentalsRow) Value(concept string) (float64, bool) {
	v, ok := r.Values[concept]
	return v, ok
}

// SetValue records a concept value on the row, allocating the map on
// first use.
func (r *FundamentalsRow) SetValue(concept string, v float64) {
	if r.Values == nil {
		r.Values = make(map[string]float64)
	}
	r.Values[concept] = v
}

// DailyFundamentals is a FundamentalsRow broadcast onto one calendar day.
// PeriodEnd is carried from the source filing so the no-look-ahead
// guarantee (Date >= PeriodEnd + lag) stays checkable on every row.
type DailyFundamentals struct {
	EntityID  string             `json:"entity_id"`
	Date      time.Time          `json:"date"`
	PeriodEnd time.Time          `json:"period_end"`
	Values    map[string]float64 `json:"values"`
}

// Value returns the carried value for a canonical concept and whether it
// is present.
func (d *DailyFundamentals) Value(concept string) (float64, bool) {
	v, ok := d.Values[concept]
	return v, ok
}
