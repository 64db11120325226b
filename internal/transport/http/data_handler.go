package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"edgarcli/internal/config"
	apierrors "edgarcli/internal/errors"
	"edgarcli/internal/exporter"
	"edgarcli/internal/operations"
	"edgarcli/pkg/contracts/domain"
)

// DataHandler serves read-only views over the pipeline's outputs
type DataHandler struct {
	manager *operations.Manager
	paths   *config.Paths
	logger  *slog.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(manager *operations.Manager, paths *config.Paths, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		manager: manager,
		paths:   paths,
		logger:  logger.With(slog.String("handler", "data")),
	}
}

// Routes returns the data endpoint routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/features/summary", h.FeaturesSummary)
	r.Get("/artifacts", h.Artifacts)
	return r
}

// FeatureSummary aggregates the most recent completed run's feature
// table.
type FeatureSummary struct {
	RowCount     int            `json:"row_count"`
	EntityCount  int            `json:"entity_count"`
	FirstDate    string         `json:"first_date,omitempty"`
	LastDate     string         `json:"last_date,omitempty"`
	LabeledRows  int            `json:"labeled_rows"`
	RowsByTicker map[string]int `json:"rows_by_ticker"`
}

// FeaturesSummary handles GET /api/data/features/summary
func (h *DataHandler) FeaturesSummary(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.latestFeatures()
	if !ok {
		render.Render(w, r, apierrors.NotFoundError("feature table"))
		return
	}

	render.JSON(w, r, summarizeFeatures(rows))
}

// Artifacts handles GET /api/data/artifacts
func (h *DataHandler) Artifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := exporter.Inventory(h.paths)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "artifact inventory failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrFileSystem)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"artifacts": artifacts,
		"count":     len(artifacts),
	})
}

// latestFeatures returns the feature table of the most recently
// started completed run.
func (h *DataHandler) latestFeatures() ([]domain.FeatureRow, bool) {
	var best *operations.OperationState
	for _, state := range h.manager.ListOperations() {
		if state.Status != operations.OperationStatusCompleted {
			continue
		}
		if best == nil || state.StartTime.After(best.StartTime) {
			best = state
		}
	}
	if best == nil || len(best.Features()) == 0 {
		return nil, false
	}
	return best.Features(), true
}

func summarizeFeatures(rows []domain.FeatureRow) FeatureSummary {
	summary := FeatureSummary{
		RowCount:     len(rows),
		RowsByTicker: make(map[string]int),
	}

	var first, last time.Time
	for _, row := range rows {
		summary.RowsByTicker[row.Ticker]++
		if row.HasLabel() {
			summary.LabeledRows++
		}
		if first.IsZero() || row.Date.Before(first) {
			first = row.Date
		}
		if row.Date.After(last) {
			last = row.Date
		}
	}

	summary.EntityCount = len(summary.RowsByTicker)
	if !first.IsZero() {
		summary.FirstDate = first.Format("2006-01-02")
		summary.LastDate = last.Format("2006-01-02")
	}
	return summary
}
