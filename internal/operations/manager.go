package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"edgarcli/pkg/contracts/domain"
)

// OperationRequest selects what a pipeline run covers.
type OperationRequest struct {
	// ID is the run identifier. Generated when empty.
	ID string `json:"id,omitempty"`
	// StepID runs a single step instead of the full pipeline.
	StepID string `json:"step_id,omitempty" validate:"omitempty,oneof=extract combine load align join"`
	// Selection restricts the run to specific tickers or CIKs. Empty
	// means all configured entities.
	Selection []string `json:"selection,omitempty"`
}

// OperationResponse summarizes a finished (or failed) pipeline run.
type OperationResponse struct {
	ID          string              `json:"id"`
	Status      OperationStatus     `json:"status"`
	StartTime   time.Time           `json:"start_time"`
	EndTime     *time.Time          `json:"end_time,omitempty"`
	Steps       []*StepState        `json:"steps"`
	Batch       domain.BatchSummary `json:"batch"`
	FeatureRows int                 `json:"feature_rows"`
	Error       string              `json:"error,omitempty"`
}

// Manager orchestrates pipeline runs: it executes the registered steps
// in order, tracks per-step state, and records spans and metrics for
// each run.
type Manager struct {
	steps  []Step
	tracer *OperationTracer
	logger *slog.Logger

	mu         sync.RWMutex
	operations map[string]*OperationState
}

// NewManager creates an operation manager over an ordered step list.
func NewManager(logger *slog.Logger, tracer *OperationTracer, steps []Step) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NoopOperationTracer()
	}
	return &Manager{
		steps:      steps,
		tracer:     tracer,
		logger:     logger,
		operations: make(map[string]*OperationState),
	}
}

// Steps returns the registered steps in execution order.
func (m *Manager) Steps() []Step {
	return m.steps
}

// Execute runs a pipeline operation.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	steps, err := m.selectSteps(req.StepID)
	if err != nil {
		return nil, err
	}

	state := NewOperationState(req.ID)
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	m.storeOperation(state)

	ctx, span := m.tracer.TraceRun(ctx, req.ID)
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "pipeline run started",
		slog.String("operation_id", req.ID),
		slog.Int("step_count", len(steps)))

	runStart := time.Now()
	runErr := m.executeSequential(ctx, state, steps)

	if runErr != nil {
		if ctx.Err() != nil {
			state.Cancel()
		} else {
			state.Fail(runErr)
		}
	} else {
		state.Complete()
	}

	m.tracer.RecordRunCompletion(ctx, span, time.Since(runStart),
		state.BatchSummary(), len(state.Features()), runErr)

	m.logger.InfoContext(ctx, "pipeline run finished",
		slog.String("operation_id", req.ID),
		slog.String("status", string(state.Status)),
		slog.Duration("duration", time.Since(runStart)))

	return m.createResponse(state), runErr
}

// executeSequential runs the steps one by one, stopping at the first
// failure and marking the remaining steps skipped.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "run cancelled")
			return err
		}

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep validates and runs a single step with span and state
// bookkeeping.
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())

	stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	m.logger.InfoContext(stepCtx, "step started",
		slog.String("operation_id", state.ID),
		slog.String("step_id", step.ID()))

	start := time.Now()

	err := step.Validate(state)
	if err == nil {
		err = step.Execute(stepCtx, state)
	}

	duration := time.Since(start)
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		m.logger.ErrorContext(stepCtx, "step failed",
			slog.String("operation_id", state.ID),
			slog.String("step_id", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return fmt.Errorf("step %s: %w", step.ID(), err)
	}

	stepState.Complete()
	m.logger.InfoContext(stepCtx, "step completed",
		slog.String("operation_id", state.ID),
		slog.String("step_id", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.CurrentStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// selectSteps resolves the step list for a request: the full ordered
// pipeline, or a single step by ID.
func (m *Manager) selectSteps(stepID string) ([]Step, error) {
	if stepID == "" {
		return m.steps, nil
	}
	for _, step := range m.steps {
		if step.ID() == stepID {
			return []Step{step}, nil
		}
	}
	return nil, fmt.Errorf("unknown step: %s", stepID)
}

// GetOperation returns the state of a run by ID.
func (m *Manager) GetOperation(id string) (*OperationState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.operations[id]
	return state, ok
}

// ListOperations returns the states of all runs this manager has seen.
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	states := make([]*OperationState, 0, len(m.operations))
	for _, state := range m.operations {
		states = append(states, state)
	}
	return states
}

func (m *Manager) storeOperation(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:          state.ID,
		Status:      state.Status,
		StartTime:   state.StartTime,
		EndTime:     state.EndTime,
		Batch:       state.BatchSummary(),
		FeatureRows: len(state.Features()),
	}
	for _, id := range []string{StepIDExtract, StepIDCombine, StepIDLoad, StepIDAlign, StepIDJoin} {
		if s := state.GetStep(id); s != nil {
			resp.Steps = append(resp.Steps, s)
		}
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
