package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/enerscope/enerscope/internal/logger"
)

// handleEvents streams engine events to the UI as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := s.Bus.Subscribe(64)
	defer cancel()

	log.Info("event stream opened")
	for {
		select {
		case <-r.Context().Done():
			log.Info("event stream closed by client")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				log.Warn("failed to encode %s event: %v", event.Name, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()
		}
	}
}
