package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/haldorsen/breakwater/internal/events"
)

// handleStreamEvents streams dispatch completion events over SSE. The
// optional ?pool= query parameter narrows the stream to one pool; without it
// the client receives the firehose.
func (s *Server) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	poolKey := r.URL.Query().Get("pool")
	if poolKey == "" {
		poolKey = events.Firehose
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	ch, unsub := s.broker.Subscribe(poolKey)
	defer unsub()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case d := <-ch:
			payload, err := json.Marshal(d)
			if err != nil {
				s.logger.Error("marshal dispatch event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: dispatch\ndata: %s\n\n", payload); err != nil {
				return // Write failed (e.g. client gone).
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return // Client disconnected.
		}
	}
}
