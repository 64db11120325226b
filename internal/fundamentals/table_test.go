package fundamentals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarcli/pkg/contracts/domain"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func fact(entity, end string, fy int, fp domain.FiscalPeriod, concept string, value float64) domain.FilingFact {
	return domain.FilingFact{
		EntityID:     entity,
		PeriodEnd:    date(end),
		FiscalYear:   fy,
		FiscalPeriod: fp,
		Concept:      concept,
		Value:        value,
	}
}

func TestBuildTable_Empty(t *testing.T) {
	assert.Nil(t, BuildTable(nil, nil))
}

func TestBuildTable_RestatementWins(t *testing.T) {
	// Same (entity, fy, fp, concept) reported twice: the restated fact
	// with the later period end must survive.
	facts := []domain.FilingFact{
		fact("0000320193", "2021-04-03", 2021, domain.PeriodQ1, "equity", 110),
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
	}

	rows := BuildTable(nil, facts)

	require.Len(t, rows, 1)
	assert.Equal(t, date("2021-04-03"), rows[0].PeriodEnd)
	v, ok := rows[0].Value("equity")
	require.True(t, ok)
	assert.Equal(t, 110.0, v)
}

func TestBuildTable_TieBreakLastSeen(t *testing.T) {
	// Duplicates sharing the same latest period end: the one later in
	// the input survives. The rule is stable input order, documented,
	// not a guess at accounting intent.
	facts := []domain.FilingFact{
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 105),
	}

	rows := BuildTable(nil, facts)

	require.Len(t, rows, 1)
	v, ok := rows[0].Value("equity")
	require.True(t, ok)
	assert.Equal(t, 105.0, v)
}

func TestBuildTable_PivotWide(t *testing.T) {
	facts := []domain.FilingFact{
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "revenue", 5000),
		fact("0000320193", "2021-06-30", 2021, domain.PeriodQ2, "equity", 110),
	}

	rows := BuildTable(nil, facts)

	require.Len(t, rows, 2)
	assert.Equal(t, date("2021-03-31"), rows[0].PeriodEnd)
	assert.Equal(t, date("2021-06-30"), rows[1].PeriodEnd)

	eq, ok := rows[0].Value("equity")
	require.True(t, ok)
	assert.Equal(t, 100.0, eq)
	rev, ok := rows[0].Value("revenue")
	require.True(t, ok)
	assert.Equal(t, 5000.0, rev)

	_, ok = rows[1].Value("revenue")
	assert.False(t, ok, "Q2 must not inherit Q1 revenue")
}

func TestBuildTable_SortedByPeriodEnd(t *testing.T) {
	facts := []domain.FilingFact{
		fact("0000320193", "2021-12-31", 2021, domain.PeriodFY, "assets", 3),
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "assets", 1),
		fact("0000320193", "2021-06-30", 2021, domain.PeriodQ2, "assets", 2),
	}

	rows := BuildTable(nil, facts)

	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].PeriodEnd.Before(rows[i].PeriodEnd))
	}
}

func TestBuildTable_UniquenessInvariant(t *testing.T) {
	facts := []domain.FilingFact{
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
		fact("0000320193", "2021-04-03", 2021, domain.PeriodQ1, "equity", 110),
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "revenue", 5000),
		fact("0000320193", "2021-06-30", 2021, domain.PeriodQ2, "equity", 120),
	}

	rows := BuildTable(nil, facts)

	assert.NoError(t, ValidateUnique(rows))
}

func TestMerge(t *testing.T) {
	apple := BuildTable(nil, []domain.FilingFact{
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
	})
	msft := BuildTable(nil, []domain.FilingFact{
		fact("0000789019", "2021-03-31", 2021, domain.PeriodQ1, "equity", 200),
		fact("0000789019", "2020-12-31", 2020, domain.PeriodQ4, "equity", 190),
	})

	combined := Merge(apple, msft, nil)

	require.Len(t, combined, 3)
	assert.Equal(t, "0000320193", combined[0].EntityID)
	assert.Equal(t, "0000789019", combined[1].EntityID)
	assert.Equal(t, date("2020-12-31"), combined[1].PeriodEnd)
	assert.Equal(t, date("2021-03-31"), combined[2].PeriodEnd)
	assert.NoError(t, ValidateUnique(combined))
}

func TestMerge_EmptyEntityExcluded(t *testing.T) {
	apple := BuildTable(nil, []domain.FilingFact{
		fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
	})

	combined := Merge(apple, BuildTable(nil, nil))

	assert.Len(t, combined, 1)
}

func TestForwardFillQuarters(t *testing.T) {
	rows := Merge(
		BuildTable(nil, []domain.FilingFact{
			fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "equity", 100),
			fact("0000320193", "2021-03-31", 2021, domain.PeriodQ1, "revenue", 5000),
			fact("0000320193", "2021-06-30", 2021, domain.PeriodQ2, "equity", 110),
		}),
		BuildTable(nil, []domain.FilingFact{
			fact("0000789019", "2021-06-30", 2021, domain.PeriodQ2, "equity", 200),
		}),
	)

	filled := ForwardFillQuarters(rows)

	require.Len(t, filled, 3)

	// Q2 inherits the missing revenue from Q1 within the entity.
	rev, ok := filled[1].Value("revenue")
	require.True(t, ok)
	assert.Equal(t, 5000.0, rev)

	// The other entity's row must not inherit anything.
	_, ok = filled[2].Value("revenue")
	assert.False(t, ok, "fill must not cross an entity boundary")

	// The input rows are not mutated.
	_, ok = rows[1].Value("revenue")
	assert.False(t, ok)
}
