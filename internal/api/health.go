package api

import (
	"context"
	"log/slog"
	"net/http"
)

// Health returns the health status of the API and the session log store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if h.repo == nil {
		checks["session_log"] = "disabled"
	} else if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["session_log"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["session_log"] = "ok"
	}

	JSON(w, statusCode, status)
}
