// Package api exposes a small HTTP surface for the hosting layer:
// a liveness probe and an on-demand check cycle trigger.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"price-monitor-bot/internal/monitor"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP handler around the monitor.
func NewRouter(m *monitor.Monitor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/cycle", func(w http.ResponseWriter, req *http.Request) {
		stats, err := m.RunCycleOnce(req.Context())
		if errors.Is(err, monitor.ErrCycleRunning) {
			writeJSON(w, http.StatusConflict, map[string]string{"status": "cycle already running"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"checked":  stats.Checked,
			"failed":   stats.Failed,
			"notified": stats.Notified,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
