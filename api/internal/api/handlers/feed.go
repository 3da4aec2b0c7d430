// api/internal/api/handlers/feed.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/irgordon/bazaar/api/internal/telemetry"
)

// FeedHandler streams completed sales to dashboards over Server-Sent Events.
type FeedHandler struct {
	hub       *telemetry.Hub
	logger    *slog.Logger
	keepAlive time.Duration
}

func NewFeedHandler(hub *telemetry.Hub, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{hub: hub, logger: logger, keepAlive: 25 * time.Second}
}

// Stream handles GET /api/purchases/feed[?agent_id=]
// Without agent_id every sale is streamed; with it, only sales touching that listing.
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	topic := telemetry.AllSales
	if raw := r.URL.Query().Get("agent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid_request", "agent_id must be a valid uuid")
			return
		}
		topic = id.String()
	}

	// 🛡️ SLA: Establish SSE connection
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.hub.Subscribe(topic)
	defer h.hub.Unsubscribe(topic, events)

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout by design of SSE.
	_ = rc.SetWriteDeadline(time.Time{})

	fmt.Fprintf(w, "event: connected\ndata: {\"topic\": %q}\n\n", topic)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("SSE flush unsupported", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("Failed to encode sale event", slog.Any("error", err))
				continue
			}
			fmt.Fprintf(w, "event: sale\ndata: %s\n\n", payload)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
