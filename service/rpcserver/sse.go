package rpcserver

import (
	"fmt"
	"net/http"
	"time"
)

// handleStreamEvents streams lifecycle events (admitted, retried, landed,
// evicted) to an admin client as Server-Sent Events, for operator
// observability rather than client-facing delivery confirmation.
func (s *Server) handleStreamEvents() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			s.logger.Warn("failed to disable write deadline", "error", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, _ := w.(http.Flusher)

		msgChan, cancel := s.events.Subscribe(r.Context())
		defer cancel()

		fmt.Fprint(w, "event: connected\ndata: {}\n\n")
		if flusher != nil {
			flusher.Flush()
		}

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case msg, ok := <-msgChan:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: lifecycle\ndata: %s\n\n", msg)
				if flusher != nil {
					flusher.Flush()
				}
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				if flusher != nil {
					flusher.Flush()
				}
			case <-r.Context().Done():
				return
			}
		}
	})
}
