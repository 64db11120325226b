package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"edgarcli/internal/alignment"
	"edgarcli/internal/config"
	apperrors "edgarcli/internal/errors"
	"edgarcli/internal/exporter"
	"edgarcli/internal/extraction"
	"edgarcli/internal/features"
	"edgarcli/internal/fundamentals"
	"edgarcli/internal/loader"
	"edgarcli/pkg/contracts/domain"
)

// Step IDs, in execution order.
const (
	StepIDExtract = "extract"
	StepIDCombine = "combine"
	StepIDLoad    = "load"
	StepIDAlign   = "align"
	StepIDJoin    = "join"
)

// extractWorkers bounds the per-entity extraction fan-out.
const extractWorkers = 4

// ExtractStep reads each selected entity's raw disclosure document,
// extracts canonical facts, pivots them to a wide table and writes the
// per-entity CSV. One entity's failure never aborts the batch.
type ExtractStep struct {
	entities  []config.EntityConfig
	loader    *loader.Loader
	extractor *extraction.Extractor
	exporter  *exporter.FundamentalsExporter
	logger    *slog.Logger
}

// NewExtractStep creates the extraction step for a resolved entity set.
func NewExtractStep(logger *slog.Logger, entities []config.EntityConfig, l *loader.Loader, ex *extraction.Extractor, fe *exporter.FundamentalsExporter) *ExtractStep {
	return &ExtractStep{
		entities:  entities,
		loader:    l,
		extractor: ex,
		exporter:  fe,
		logger:    logger,
	}
}

func (s *ExtractStep) ID() string   { return StepIDExtract }
func (s *ExtractStep) Name() string { return "Extract fundamentals" }

func (s *ExtractStep) Validate(state *OperationState) error {
	if len(s.entities) == 0 {
		return apperrors.NewValidationError("no entities selected")
	}
	return nil
}

type extractResult struct {
	cik     string
	rows    []domain.FundamentalsRow
	skipped bool
	err     error
}

func (s *ExtractStep) Execute(ctx context.Context, state *OperationState) error {
	results := make([]extractResult, len(s.entities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)

	var mu sync.Mutex
	for i, entity := range s.entities {
		i, entity := i, entity
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := s.processEntity(entity)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var batch domain.BatchSummary
	var tables [][]domain.FundamentalsRow
	for _, res := range results {
		switch {
		case res.err != nil:
			batch.Failed++
			batch.FailedIDs = append(batch.FailedIDs, res.cik)
			s.logger.Error("entity failed",
				slog.String("cik", res.cik),
				slog.String("error", res.err.Error()))
		case res.skipped:
			batch.Skipped++
			s.logger.Warn("entity skipped, no qualifying data",
				slog.String("cik", res.cik))
		default:
			batch.Processed++
			tables = append(tables, res.rows)
		}
	}

	state.SetEntityTables(tables)
	state.RecordBatch(batch)

	s.logger.Info("extraction complete",
		slog.Int("processed", batch.Processed),
		slog.Int("skipped", batch.Skipped),
		slog.Int("failed", batch.Failed))
	return nil
}

// processEntity runs the per-entity extract path. A malformed document
// fails the entity; a well-formed document with nothing extractable
// skips it.
func (s *ExtractStep) processEntity(entity config.EntityConfig) extractResult {
	res := extractResult{cik: entity.CIK}

	data, err := s.loader.ReadDocument(entity.CIK)
	if err != nil {
		res.err = err
		return res
	}

	doc, err := extraction.ParseDocument(data)
	if err != nil {
		res.err = err
		return res
	}

	facts := s.extractor.Extract(doc)
	if len(facts) == 0 {
		res.skipped = true
		return res
	}

	rows := fundamentals.BuildTable(s.logger, facts)
	if err := s.exporter.ExportEntityTable(entity.CIK, rows); err != nil {
		res.err = err
		return res
	}

	res.rows = rows
	return res
}

// CombineStep merges the per-entity tables into the combined
// fundamentals dataset, optionally forward-fills missing quarters, and
// writes the combined CSV.
type CombineStep struct {
	crossQuarterFill bool
	exporter         *exporter.FundamentalsExporter
	logger           *slog.Logger
}

// NewCombineStep creates the combine step.
func NewCombineStep(logger *slog.Logger, crossQuarterFill bool, fe *exporter.FundamentalsExporter) *CombineStep {
	return &CombineStep{
		crossQuarterFill: crossQuarterFill,
		exporter:         fe,
		logger:           logger,
	}
}

func (s *CombineStep) ID() string   { return StepIDCombine }
func (s *CombineStep) Name() string { return "Combine entities" }

func (s *CombineStep) Validate(state *OperationState) error {
	if len(state.EntityTables()) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeNoQualifyingData,
			"no entity produced a fundamentals table", nil)
	}
	return nil
}

func (s *CombineStep) Execute(ctx context.Context, state *OperationState) error {
	combined := fundamentals.Merge(state.EntityTables()...)

	if err := fundamentals.ValidateUnique(combined); err != nil {
		return err
	}

	if s.crossQuarterFill {
		combined = fundamentals.ForwardFillQuarters(combined)
	}

	if err := s.exporter.ExportCombinedTable(combined); err != nil {
		return err
	}

	state.SetCombined(combined)
	s.logger.Info("combined fundamentals written",
		slog.Int("row_count", len(combined)),
		slog.Bool("cross_quarter_fill", s.crossQuarterFill))
	return nil
}

// LoadSilverStep bootstraps a run from a previously written combined
// fundamentals CSV instead of re-extracting. Used by the features
// binary.
type LoadSilverStep struct {
	loader *loader.Loader
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoadSilverStep creates the silver-table load step.
func NewLoadSilverStep(logger *slog.Logger, l *loader.Loader, paths *config.Paths) *LoadSilverStep {
	return &LoadSilverStep{loader: l, paths: paths, logger: logger}
}

func (s *LoadSilverStep) ID() string   { return StepIDLoad }
func (s *LoadSilverStep) Name() string { return "Load combined fundamentals" }

func (s *LoadSilverStep) Validate(state *OperationState) error {
	return nil
}

func (s *LoadSilverStep) Execute(ctx context.Context, state *OperationState) error {
	rows, err := s.loader.ReadFundamentalsCSV(s.paths.SilverPath())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeNoQualifyingData,
			"combined fundamentals table is empty", nil)
	}

	state.SetCombined(rows)
	s.logger.Info("combined fundamentals loaded",
		slog.String("path", s.paths.SilverPath()),
		slog.Int("row_count", len(rows)))
	return nil
}

// AlignStep lags the combined fundamentals to their information dates
// and broadcasts them onto a bounded daily grid.
type AlignStep struct {
	aligner *alignment.Aligner
	lagDays int
	logger  *slog.Logger
}

// NewAlignStep creates the alignment step.
func NewAlignStep(logger *slog.Logger, aligner *alignment.Aligner, lagDays int) *AlignStep {
	return &AlignStep{aligner: aligner, lagDays: lagDays, logger: logger}
}

func (s *AlignStep) ID() string   { return StepIDAlign }
func (s *AlignStep) Name() string { return "Align to information dates" }

func (s *AlignStep) Validate(state *OperationState) error {
	if len(state.Combined()) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeNoQualifyingData,
			"combined fundamentals table is empty", nil)
	}
	return nil
}

func (s *AlignStep) Execute(ctx context.Context, state *OperationState) error {
	daily := s.aligner.Align(state.Combined())

	// Every emitted row must sit at or after period end plus lag.
	if err := alignment.CheckNoLeakage(daily, s.lagDays); err != nil {
		return err
	}

	state.SetDaily(daily)
	s.logger.Info("daily fundamentals aligned",
		slog.Int("row_count", len(daily)))
	return nil
}

// JoinStep left-joins prices with the aligned fundamentals, derives
// ratios and forward-return labels, and writes the feature table.
type JoinStep struct {
	entities      []config.EntityConfig
	benchmark     string
	writeWorkbook bool
	loader        *loader.Loader
	joiner        *features.Joiner
	exporter      *exporter.FeaturesExporter
	logger        *slog.Logger
}

// NewJoinStep creates the feature join step.
func NewJoinStep(logger *slog.Logger, entities []config.EntityConfig, benchmark string, writeWorkbook bool, l *loader.Loader, j *features.Joiner, fe *exporter.FeaturesExporter) *JoinStep {
	return &JoinStep{
		entities:      entities,
		benchmark:     benchmark,
		writeWorkbook: writeWorkbook,
		loader:        l,
		joiner:        j,
		exporter:      fe,
		logger:        logger,
	}
}

func (s *JoinStep) ID() string   { return StepIDJoin }
func (s *JoinStep) Name() string { return "Join features" }

func (s *JoinStep) Validate(state *OperationState) error {
	if len(state.Daily()) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeNoQualifyingData,
			"no daily fundamentals to join", nil)
	}
	return nil
}

func (s *JoinStep) Execute(ctx context.Context, state *OperationState) error {
	benchmark, err := s.loader.LoadBenchmark(s.benchmark)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeMissingReference,
			fmt.Sprintf("benchmark series %s unavailable", s.benchmark), err)
	}

	shares, err := s.loader.LoadShares()
	if err != nil {
		// Market cap stays absent without the reference, the join
		// itself still proceeds.
		s.logger.Warn("share counts unavailable, market cap will be absent",
			slog.String("error", err.Error()))
		shares = map[string]domain.SharesOutstanding{}
	}

	dailyByEntity := make(map[string][]domain.DailyFundamentals)
	for _, d := range state.Daily() {
		dailyByEntity[d.EntityID] = append(dailyByEntity[d.EntityID], d)
	}

	var inputs []features.EntityInput
	for _, entity := range s.entities {
		daily, ok := dailyByEntity[entity.CIK]
		if !ok {
			continue
		}
		prices, err := s.loader.LoadPriceSeries(entity.Ticker, entity.CIK)
		if err != nil {
			s.logger.Warn("price series unavailable, entity excluded from features",
				slog.String("ticker", entity.Ticker),
				slog.String("error", err.Error()))
			continue
		}
		inputs = append(inputs, features.EntityInput{
			EntityID: entity.CIK,
			Ticker:   entity.Ticker,
			Prices:   prices,
			Daily:    daily,
			Shares:   loader.SharesFor(shares, entity.Ticker),
		})
	}

	rows := s.joiner.Build(inputs, benchmark)

	if err := s.exporter.ExportCSV(rows); err != nil {
		return err
	}
	if s.writeWorkbook {
		if err := s.exporter.ExportWorkbook(rows); err != nil {
			return err
		}
	}

	state.SetFeatures(rows)
	s.logger.Info("feature table built",
		slog.Int("row_count", len(rows)),
		slog.Int("entity_count", len(inputs)))
	return nil
}
