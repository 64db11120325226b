package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStep is a controllable step for manager tests.
type fakeStep struct {
	id          string
	validateErr error
	executeErr  error
	executed    bool
}

func (f *fakeStep) ID() string   { return f.id }
func (f *fakeStep) Name() string { return f.id }

func (f *fakeStep) Validate(state *OperationState) error {
	return f.validateErr
}

func (f *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	f.executed = true
	return f.executeErr
}

func TestManagerExecuteAllSteps(t *testing.T) {
	first := &fakeStep{id: "first"}
	second := &fakeStep{id: "second"}
	m := NewManager(nil, nil, []Step{first, second})

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)

	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.True(t, first.executed)
	assert.True(t, second.executed)
	assert.NotEmpty(t, resp.ID)
}

func TestManagerStepFailureSkipsRest(t *testing.T) {
	first := &fakeStep{id: "first", executeErr: errors.New("boom")}
	second := &fakeStep{id: "second"}
	m := NewManager(nil, nil, []Step{first, second})

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-1"})
	require.Error(t, err)

	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.False(t, second.executed)

	state, ok := m.GetOperation("run-1")
	require.True(t, ok)
	assert.Equal(t, StepStatusFailed, state.GetStep("first").CurrentStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep("second").CurrentStatus())
}

func TestManagerValidationFailureDoesNotExecute(t *testing.T) {
	step := &fakeStep{id: "only", validateErr: errors.New("not ready")}
	m := NewManager(nil, nil, []Step{step})

	_, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.False(t, step.executed)
}

func TestManagerSingleStepSelection(t *testing.T) {
	first := &fakeStep{id: "first"}
	second := &fakeStep{id: "second"}
	m := NewManager(nil, nil, []Step{first, second})

	resp, err := m.Execute(context.Background(), OperationRequest{StepID: "second"})
	require.NoError(t, err)

	assert.False(t, first.executed)
	assert.True(t, second.executed)
	require.Len(t, resp.Steps, 0) // fake IDs are not pipeline step IDs

	_, err = m.Execute(context.Background(), OperationRequest{StepID: "nope"})
	assert.Error(t, err)
}

func TestManagerCancelledContext(t *testing.T) {
	first := &fakeStep{id: "first"}
	m := NewManager(nil, nil, []Step{first})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := m.Execute(ctx, OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.False(t, first.executed)
}

func TestManagerListOperations(t *testing.T) {
	m := NewManager(nil, nil, []Step{&fakeStep{id: "only"}})

	_, err := m.Execute(context.Background(), OperationRequest{ID: "a"})
	require.NoError(t, err)
	_, err = m.Execute(context.Background(), OperationRequest{ID: "b"})
	require.NoError(t, err)

	assert.Len(t, m.ListOperations(), 2)
}
