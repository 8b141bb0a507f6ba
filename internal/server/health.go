package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type probeOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleLiveness handles GET /healthz
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probeOutput{Status: "ok"})
}

// handleReadiness handles GET /readyz
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.journal.Ready(ctx); err != nil {
		loggerFromContext(r.Context(), s.logger).Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, probeOutput{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, probeOutput{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
