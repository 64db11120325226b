package operations

import (
	"sync"
	"time"

	"edgarcli/pkg/contracts/domain"
)

// OperationStatus represents the overall status of a pipeline run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState carries the complete state of one pipeline run: the
// per-step states plus the typed intermediate tables the steps hand to
// each other.
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// Batch tallies entity-level outcomes from the extraction step.
	Batch domain.BatchSummary `json:"batch"`

	// Intermediate tables. Each step writes its output for the next.
	entityTables [][]domain.FundamentalsRow
	combined     []domain.FundamentalsRow
	daily        []domain.DailyFundamentals
	features     []domain.FeatureRow

	Error error `json:"error,omitempty"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
}

// GetStep returns the state of a specific step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep records the state of a specific step
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// SetEntityTables stores the per-entity fundamentals tables.
func (p *OperationState) SetEntityTables(tables [][]domain.FundamentalsRow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entityTables = tables
}

// EntityTables returns the per-entity fundamentals tables.
func (p *OperationState) EntityTables() [][]domain.FundamentalsRow {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entityTables
}

// SetCombined stores the merged cross-entity fundamentals table.
func (p *OperationState) SetCombined(rows []domain.FundamentalsRow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.combined = rows
}

// Combined returns the merged cross-entity fundamentals table.
func (p *OperationState) Combined() []domain.FundamentalsRow {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.combined
}

// SetDaily stores the lagged daily fundamentals series.
func (p *OperationState) SetDaily(daily []domain.DailyFundamentals) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.daily = daily
}

// Daily returns the lagged daily fundamentals series.
func (p *OperationState) Daily() []domain.DailyFundamentals {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.daily
}

// SetFeatures stores the terminal feature table.
func (p *OperationState) SetFeatures(rows []domain.FeatureRow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.features = rows
}

// Features returns the terminal feature table.
func (p *OperationState) Features() []domain.FeatureRow {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.features
}

// RecordBatch stores the extraction batch summary.
func (p *OperationState) RecordBatch(batch domain.BatchSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Batch = batch
}

// BatchSummary returns the extraction batch summary.
func (p *OperationState) BatchSummary() domain.BatchSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Batch
}
