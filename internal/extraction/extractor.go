package extraction

import (
	"log/slog"
	"time"

	"edgarcli/pkg/contracts/domain"
)

// Extractor converts one entity's raw disclosure document into
// canonical long-form filing facts.
type Extractor struct {
	conceptMap []ConceptMapping
	unit       string
	logger     *slog.Logger
}

// Config configures an Extractor.
type Config struct {
	// ConceptMap is the ordered canonical-concept mapping. Nil uses
	// DefaultConceptMap.
	ConceptMap []ConceptMapping
	// TargetUnit is the reporting unit consulted, e.g. "USD".
	TargetUnit string
}

// NewExtractor creates a fact extractor.
func NewExtractor(logger *slog.Logger, cfg Config) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	conceptMap := cfg.ConceptMap
	if conceptMap == nil {
		conceptMap = DefaultConceptMap()
	}
	unit := cfg.TargetUnit
	if unit == "" {
		unit = "USD"
	}
	return &Extractor{
		conceptMap: conceptMap,
		unit:       unit,
		logger:     logger,
	}
}

// Extract emits one FilingFact per surviving observation per canonical
// concept. Observations outside the recognized fiscal periods are
// discarded, as are observations whose period-end date does not parse.
// A zero-length result signals "no qualifying data" and is a normal
// outcome, not an error; callers skip writing output for the entity.
func (e *Extractor) Extract(doc *Document) []domain.FilingFact {
	entityID := doc.EntityID()
	tags := doc.GAAPTags()

	var facts []domain.FilingFact
	dropped := 0

	for _, mapping := range e.conceptMap {
		series := firstPopulatedSeries(tags, mapping.Synonyms, e.unit)
		if series == nil {
			continue
		}

		for _, obs := range series {
			period := domain.FiscalPeriod(obs.FP)
			if !period.Valid() {
				dropped++
				continue
			}

			end, err := time.Parse("2006-01-02", obs.End)
			if err != nil {
				dropped++
				continue
			}

			facts = append(facts, domain.FilingFact{
				EntityID:     entityID,
				PeriodEnd:    end,
				FiscalYear:   obs.FY,
				FiscalPeriod: period,
				Concept:      mapping.Concept,
				Value:        obs.Value,
			})
		}
	}

	e.logger.Debug("extracted filing facts",
		slog.String("entity_id", entityID),
		slog.Int("fact_count", len(facts)),
		slog.Int("dropped_observations", dropped))

	return facts
}
