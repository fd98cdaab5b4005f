package handlers

import (
	"net/http"

	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/utils"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	registry *providers.Registry
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(registry *providers.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// HandleHealthz handles GET /healthz.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz handles GET /readyz: ready when at least one provider is
// registered and every adapter reports healthy.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]bool)
	ready := h.registry.Count() > 0
	for _, p := range h.registry.All() {
		healthy := p.HealthCheck(r.Context())
		checks[p.ID()] = healthy
		if !healthy {
			ready = false
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	_ = utils.WriteJSON(w, status, map[string]interface{}{
		"ready":     ready,
		"providers": checks,
	})
}
