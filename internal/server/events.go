package server

import (
	"fmt"
	"net/http"

	"github.com/anastasia/starset/internal/notify"
)

// handleEvents streams change notifications over Server-Sent Events. Each
// event names the collection that changed; clients re-fetch the collection
// rather than reconstructing state from events, so delivery only needs to
// be at-least-once.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.hub.Subscribe(
		notify.TopicMachines,
		notify.TopicSessions,
		notify.TopicLogs,
		notify.TopicRotation,
	)
	defer cancel()

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case topic := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", topic)
			flusher.Flush()
		}
	}
}
