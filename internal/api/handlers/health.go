package handlers

import (
	"context"
	"net/http"

	"github.com/paperchat-ai/paperchat/internal/api"
)

// ReadinessChecker reports whether the service can answer questions.
type ReadinessChecker interface {
	Ready(ctx context.Context) bool
}

type HealthHandler struct {
	checker ReadinessChecker
}

func NewHealthHandler(checker ReadinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// Health reports liveness plus readiness. The service is ready once the
// index holds at least one embedded chunk.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ready := h.checker.Ready(r.Context())
	api.JSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Ready:  ready,
	})
}
