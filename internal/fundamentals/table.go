// Package fundamentals turns long-form filing facts into the wide
// per-entity fundamentals table and merges entities into the combined
// dataset. Restated filings are deduplicated here: for each
// (entity, fiscal year, fiscal period, concept) group only the fact
// with the latest period-end date survives.
package fundamentals

import (
	"fmt"
	"log/slog"
	"sort"

	"edgarcli/pkg/contracts/domain"
)

// groupKey identifies one deduplication group.
type groupKey struct {
	EntityID     string
	FiscalYear   int
	FiscalPeriod domain.FiscalPeriod
	Concept      string
}

// rowKey identifies one wide row.
type rowKey struct {
	EntityID     string
	PeriodEnd    int64
	FiscalYear   int
	FiscalPeriod domain.FiscalPeriod
}

// BuildTable deduplicates and pivots one entity's filing facts into
// wide rows sorted by period end.
//
// Restatement rule: facts are stably sorted by period end ascending and
// reduced last-write-wins per group, so the fact with the latest period
// end survives. When two duplicates share the same latest period end,
// the one appearing later in the input survives: a deterministic
// tie-break by input order, since accounting intent is not recoverable
// from the document.
func BuildTable(logger *slog.Logger, facts []domain.FilingFact) []domain.FundamentalsRow {
	if logger == nil {
		logger = slog.Default()
	}
	if len(facts) == 0 {
		return nil
	}

	sorted := make([]domain.FilingFact, len(facts))
	copy(sorted, facts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodEnd.Before(sorted[j].PeriodEnd)
	})

	deduped := make(map[groupKey]domain.FilingFact, len(sorted))
	for _, fact := range sorted {
		key := groupKey{
			EntityID:     fact.EntityID,
			FiscalYear:   fact.FiscalYear,
			FiscalPeriod: fact.FiscalPeriod,
			Concept:      fact.Concept,
		}
		deduped[key] = fact
	}

	rows := make(map[rowKey]*domain.FundamentalsRow)
	for _, fact := range deduped {
		key := rowKey{
			EntityID:     fact.EntityID,
			PeriodEnd:    fact.PeriodEnd.Unix(),
			FiscalYear:   fact.FiscalYear,
			FiscalPeriod: fact.FiscalPeriod,
		}
		row, ok := rows[key]
		if !ok {
			row = &domain.FundamentalsRow{
				EntityID:     fact.EntityID,
				PeriodEnd:    fact.PeriodEnd,
				FiscalYear:   fact.FiscalYear,
				FiscalPeriod: fact.FiscalPeriod,
			}
			rows[key] = row
		}
		row.SetValue(fact.Concept, fact.Value)
	}

	out := make([]domain.FundamentalsRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sortRows(out)

	logger.Debug("built fundamentals table",
		slog.String("entity_id", facts[0].EntityID),
		slog.Int("fact_count", len(facts)),
		slog.Int("deduped_facts", len(deduped)),
		slog.Int("row_count", len(out)))

	return out
}

// Merge concatenates multiple entities' wide tables into the combined
// dataset, sorted by (entity, period end). Keys cannot collide across
// entities because the entity is part of every key. Empty tables
// contribute nothing.
func Merge(tables ...[]domain.FundamentalsRow) []domain.FundamentalsRow {
	var combined []domain.FundamentalsRow
	for _, t := range tables {
		combined = append(combined, t...)
	}
	sortRows(combined)
	return combined
}

// ForwardFillQuarters fills concepts missing from a row with the value
// from the entity's previous row. Optional, off by default in the
// pipeline; it never fills across an entity boundary. Input must be
// sorted by (entity, period end), as Merge produces.
func ForwardFillQuarters(rows []domain.FundamentalsRow) []domain.FundamentalsRow {
	out := make([]domain.FundamentalsRow, len(rows))
	var prev *domain.FundamentalsRow

	for i, row := range rows {
		filled := domain.FundamentalsRow{
			EntityID:     row.EntityID,
			PeriodEnd:    row.PeriodEnd,
			FiscalYear:   row.FiscalYear,
			FiscalPeriod: row.FiscalPeriod,
			Values:       make(map[string]float64, len(row.Values)),
		}
		for concept, v := range row.Values {
			filled.Values[concept] = v
		}

		if prev != nil && prev.EntityID == row.EntityID {
			for concept, v := range prev.Values {
				if _, ok := filled.Values[concept]; !ok {
					filled.Values[concept] = v
				}
			}
		}

		out[i] = filled
		prev = &out[i]
	}

	return out
}

// ValidateUnique checks the post-deduplication invariant: no concept
// value survives twice for the same (entity, fiscal year, fiscal
// period). Returns an error naming the first offending key.
func ValidateUnique(rows []domain.FundamentalsRow) error {
	seen := make(map[groupKey]bool, len(rows))
	for _, row := range rows {
		for concept := range row.Values {
			key := groupKey{row.EntityID, row.FiscalYear, row.FiscalPeriod, concept}
			if seen[key] {
				return fmt.Errorf("duplicate %s value for entity %s %d %s",
					concept, row.EntityID, row.FiscalYear, row.FiscalPeriod)
			}
			seen[key] = true
		}
	}
	return nil
}

func sortRows(rows []domain.FundamentalsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].EntityID != rows[j].EntityID {
			return rows[i].EntityID < rows[j].EntityID
		}
		if !rows[i].PeriodEnd.Equal(rows[j].PeriodEnd) {
			return rows[i].PeriodEnd.Before(rows[j].PeriodEnd)
		}
		return rows[i].FiscalPeriod < rows[j].FiscalPeriod
	})
}
