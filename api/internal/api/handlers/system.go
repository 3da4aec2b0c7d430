// api/internal/api/handlers/system.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by both the pgx pool and the in-memory store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthSource reports the outcome of the background store checks.
type HealthSource interface {
	Healthy() bool
}

type SystemHandler struct {
	store   Pinger
	monitor HealthSource
	version string
	logger  *slog.Logger
}

func NewSystemHandler(store Pinger, version string, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{store: store, version: version, logger: logger}
}

// WithMonitor lets Health answer 503 straight from the last background check
// instead of waiting on a ping to a store already known to be down.
func (h *SystemHandler) WithMonitor(m HealthSource) *SystemHandler {
	h.monitor = m
	return h
}

// Root handles GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Agent Bazaar API",
		"version": h.version,
	})
}

// Health handles GET /health. A failed store ping is reported as 503.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.monitor != nil && !h.monitor.Healthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
