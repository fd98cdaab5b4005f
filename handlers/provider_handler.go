package handlers

import (
	"net/http"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/utils"
	"go.uber.org/zap"
)

// ProviderHandler serves the static provider capability catalog.
type ProviderHandler struct {
	registry *providers.Registry
	logger   *zap.Logger
}

// NewProviderHandler creates a ProviderHandler.
func NewProviderHandler(registry *providers.Registry, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		registry: registry,
		logger:   logger,
	}
}

// ProviderInfo describes one registered provider and its capabilities.
type ProviderInfo struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Capabilities []models.Capability `json:"capabilities"`
}

// HandleList handles GET /api/v1/providers.
func (h *ProviderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	all := h.registry.All()
	infos := make([]ProviderInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, ProviderInfo{
			ID:           p.ID(),
			Name:         p.Name(),
			Capabilities: p.Capabilities(),
		})
	}

	if err := utils.WriteJSON(w, http.StatusOK, infos); err != nil {
		h.logger.Error("failed to write provider list", zap.Error(err))
	}
}
