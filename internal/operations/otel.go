package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"edgarcli/internal/infrastructure"
	"edgarcli/pkg/contracts/domain"
)

const (
	TracerName = "edgarcli.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates an operation tracer on the given providers.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}, nil
}

// NoopOperationTracer returns a tracer that records spans against the
// global (possibly no-op) providers and drops metrics. Used by the CLI
// binaries when metrics are disabled.
func NoopOperationTracer() *OperationTracer {
	return &OperationTracer{tracer: otel.Tracer(TracerName)}
}

// TraceRun opens the span for a whole pipeline run.
func (t *OperationTracer) TraceRun(ctx context.Context, operationID string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
		),
	)

	if t.metrics != nil {
		t.metrics.RunsTotal.Add(ctx, 1)
	}
	return ctx, span
}

// TraceStep opens the span for one step execution.
func (t *OperationTracer) TraceStep(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
	return ctx, span
}

// RecordStepCompletion closes out a step span with status and metrics.
func (t *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)

	if t.metrics != nil {
		attrs := metric.WithAttributes(
			attribute.String("step_id", stepID),
			attribute.String("status", status),
		)
		t.metrics.StageExecutions.Add(ctx, 1, attrs)
		t.metrics.StageDuration.Record(ctx, duration.Seconds(), attrs)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step execution failed")
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordRunCompletion closes out the run span with status, batch
// accounting and the produced row count.
func (t *OperationTracer) RecordRunCompletion(ctx context.Context, span trace.Span, duration time.Duration, batch domain.BatchSummary, featureRows int, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("operation.status", status),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int("operation.entities_processed", batch.Processed),
		attribute.Int("operation.entities_skipped", batch.Skipped),
		attribute.Int("operation.entities_failed", batch.Failed),
		attribute.Int("operation.feature_rows", featureRows),
	)

	if t.metrics != nil {
		t.metrics.RunDuration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(attribute.String("status", status)))
		t.metrics.EntitiesProcessed.Add(ctx, int64(batch.Processed))
		t.metrics.EntitiesSkipped.Add(ctx, int64(batch.Skipped))
		t.metrics.EntitiesFailed.Add(ctx, int64(batch.Failed))
		if featureRows > 0 {
			t.metrics.FeatureRows.Add(ctx, int64(featureRows))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("run failed with status: %s", status))
		return
	}
	span.SetStatus(codes.Ok, "run completed")
}
