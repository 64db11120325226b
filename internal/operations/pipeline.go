package operations

import (
	"log/slog"

	"edgarcli/internal/alignment"
	"edgarcli/internal/config"
	"edgarcli/internal/exporter"
	"edgarcli/internal/extraction"
	"edgarcli/internal/features"
	"edgarcli/internal/infrastructure"
	"edgarcli/internal/loader"
)

// Mode selects which stages a manager runs.
type Mode string

const (
	// ModeFull runs extract, combine, align and join.
	ModeFull Mode = "full"
	// ModeExtract stops after the combined fundamentals table.
	ModeExtract Mode = "extract"
	// ModeFeatures starts from a previously written combined table.
	ModeFeatures Mode = "features"
)

// PipelineOptions tune how the assembled pipeline behaves.
type PipelineOptions struct {
	// Mode selects the stage set. Empty means ModeFull.
	Mode Mode
	// Selection restricts the run to specific tickers or CIKs.
	Selection []string
	// WriteWorkbook also writes the Excel workbook next to the CSV.
	WriteWorkbook bool
	// Providers carries the telemetry providers. Nil disables metrics.
	Providers *infrastructure.OTelProviders
}

// NewPipelineManager wires the full extract-combine-align-join pipeline
// from configuration.
func NewPipelineManager(logger *slog.Logger, cfg *config.Config, opts PipelineOptions) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	entities := loader.ResolveEntities(cfg.Entities, opts.Selection)

	ld := loader.New(logger, paths)
	extractor := extraction.NewExtractor(logger, extraction.Config{
		TargetUnit: cfg.Pipeline.TargetUnit,
	})

	aligner, err := alignment.NewAligner(logger, alignment.Config{
		LagDays:            cfg.Pipeline.LagDays,
		MaxForwardFillDays: cfg.Pipeline.MaxForwardFillDays,
	})
	if err != nil {
		return nil, err
	}

	joiner, err := features.NewJoiner(logger, features.Config{
		HorizonDays:     cfg.Pipeline.HorizonDays,
		RevenueLookback: cfg.Pipeline.MaxForwardFillDays,
		Epsilon:         cfg.Pipeline.Epsilon,
	})
	if err != nil {
		return nil, err
	}

	fundamentalsExporter := exporter.NewFundamentalsExporter(logger, paths)
	featuresExporter := exporter.NewFeaturesExporter(logger, paths)

	extractStep := NewExtractStep(logger, entities, ld, extractor, fundamentalsExporter)
	combineStep := NewCombineStep(logger, cfg.Pipeline.CrossQuarterFill, fundamentalsExporter)
	alignStep := NewAlignStep(logger, aligner, cfg.Pipeline.LagDays)
	joinStep := NewJoinStep(logger, entities, cfg.Pipeline.BenchmarkSymbol, opts.WriteWorkbook, ld, joiner, featuresExporter)

	var steps []Step
	switch opts.Mode {
	case ModeExtract:
		steps = []Step{extractStep, combineStep}
	case ModeFeatures:
		steps = []Step{NewLoadSilverStep(logger, ld, paths), alignStep, joinStep}
	default:
		steps = []Step{extractStep, combineStep, alignStep, joinStep}
	}

	tracer := NoopOperationTracer()
	if opts.Providers != nil && opts.Providers.Meter != nil {
		tracer, err = NewOperationTracer(opts.Providers)
		if err != nil {
			return nil, err
		}
	}

	return NewManager(logger, tracer, steps), nil
}
