package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "edgarcli/internal/errors"
	"edgarcli/internal/operations"
)

// runTimeout bounds a pipeline run started over HTTP.
const runTimeout = 30 * time.Minute

// OperationsHandler handles pipeline run HTTP requests
type OperationsHandler struct {
	manager *operations.Manager
	logger  *slog.Logger
	running atomic.Bool
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(manager *operations.Manager, logger *slog.Logger) *OperationsHandler {
	if manager == nil {
		panic("manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		manager: manager,
		logger:  logger.With(slog.String("handler", "operations")),
	}
}

// Routes returns the operations endpoint routes.
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.StartRun)
	r.Get("/", h.ListRuns)
	r.Get("/{id}", h.GetRun)
	return r
}

// StartRunRequest represents the request to start a pipeline run
type StartRunRequest struct {
	// StepID runs a single step instead of the full pipeline.
	StepID string `json:"step_id,omitempty"`
	// Selection restricts the run to specific tickers or CIKs.
	Selection []string `json:"selection,omitempty"`
}

// Bind implements the render.Binder interface for request validation
func (req *StartRunRequest) Bind(r *http.Request) error {
	switch req.StepID {
	case "", operations.StepIDExtract, operations.StepIDCombine,
		operations.StepIDAlign, operations.StepIDJoin:
		return nil
	}
	return errors.New("invalid step_id: " + req.StepID)
}

// StartRun handles POST /api/operations. One run at a time: a second
// request while a run is active gets 409.
func (h *OperationsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	req := &StartRunRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if !h.running.CompareAndSwap(false, true) {
		render.Render(w, r, apierrors.ErrRunInProgress)
		return
	}

	// Detach from the request context so the run survives the client
	// disconnecting.
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)

	opReq := operations.OperationRequest{
		StepID:    req.StepID,
		Selection: req.Selection,
	}

	go func() {
		defer cancel()
		defer h.running.Store(false)

		if _, err := h.manager.Execute(ctx, opReq); err != nil {
			h.logger.Error("pipeline run failed",
				slog.String("error", err.Error()))
		}
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "accepted"})
}

// ListRuns handles GET /api/operations
func (h *OperationsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	states := h.manager.ListOperations()
	render.JSON(w, r, map[string]interface{}{
		"operations": states,
		"count":      len(states),
	})
}

// GetRun handles GET /api/operations/{id}
func (h *OperationsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, ok := h.manager.GetOperation(id)
	if !ok {
		render.Render(w, r, apierrors.NotFoundError("operation"))
		return
	}
	render.JSON(w, r, state)
}
