package handlers

import (
	"encoding/json"
	"net/http"
)

// ActiveCounter reports how many conversations are in flight.
type ActiveCounter interface {
	Active() int
}

// HandlePing handles /ping endpoint
func HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong\n"))
}

// HandleHealth handles /health endpoint
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// HandleStatus reports the number of active conversations as JSON.
func HandleStatus(sessions ActiveCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{
			"active_conversations": sessions.Active(),
		})
	}
}

// NewMux wires the health endpoints onto one mux.
func NewMux(sessions ActiveCounter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", HandlePing)
	mux.HandleFunc("/health", HandleHealth)
	mux.HandleFunc("/status", HandleStatus(sessions))
	return mux
}
