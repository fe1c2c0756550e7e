package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trivia-live/internal/config"
)

// StatusFunc projects current session state for the read-only endpoint.
type StatusFunc func() (phase string, players int)

type statusResponse struct {
	Status  string `json:"status"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}

// NewHTTPServer wires the health, status, metrics and WebSocket routes.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, status StatusFunc, wsHandler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/status", func(w http.ResponseWriter, r *http.Request) {
		phase, players := status()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(statusResponse{Status: "ok", Phase: phase, Players: players}); err != nil {
			logger.Warn().Err(err).Msg("status encode failed")
		}
	})

	mux.HandleFunc("/ws", wsHandler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}
