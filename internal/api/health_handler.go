package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rcssa/match-api/internal/api/shared"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether the profile store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates a HealthHandler. A nil checker always reports ok.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.checker.HealthCheck(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "unavailable", err)
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
