package handlers

import (
	"net/http"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/utils"
	"go.uber.org/zap"
)

// TraceStore defines the trace log operations exposed over HTTP.
type TraceStore interface {
	List() []models.ExecutionTrace
	Clear()
	ExportDataset() ([]byte, error)
}

// TraceHandler serves the trace log: list, clear, and dataset export.
type TraceHandler struct {
	store  TraceStore
	logger *zap.Logger
}

// NewTraceHandler creates a TraceHandler.
func NewTraceHandler(store TraceStore, logger *zap.Logger) *TraceHandler {
	return &TraceHandler{
		store:  store,
		logger: logger,
	}
}

// TraceListResponse wraps the trace listing.
type TraceListResponse struct {
	Count  int                     `json:"count"`
	Traces []models.ExecutionTrace `json:"traces"`
}

// HandleList handles GET /api/v1/traces.
func (h *TraceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	traces := h.store.List()
	if err := utils.WriteJSON(w, http.StatusOK, TraceListResponse{
		Count:  len(traces),
		Traces: traces,
	}); err != nil {
		h.logger.Error("failed to write trace list", zap.Error(err))
	}
}

// HandleClear handles DELETE /api/v1/traces.
func (h *TraceHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	h.logger.Info("trace log cleared")
	utils.WriteNoContent(w)
}

// HandleExport handles GET /api/v1/traces/export. The body is the dataset
// JSON itself, served as a download.
func (h *TraceHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ExportDataset()
	if err != nil {
		h.logger.Error("failed to export trace dataset", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to export trace dataset")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="eco-traces.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write trace dataset", zap.Error(err))
	}
}
