package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-telegram/bot/models"

	"github.com/mixelka/gamebot/internal/database"
	"github.com/mixelka/gamebot/internal/metrics"
)

const (
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateSize     = 1 << 20
	ackBody           = "ok"
)

// handleWebhook handles POST /webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r.Context(), s.logger)

	if s.secret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			s.metrics.ObserveUpdate(metrics.ResultRejected)
			logger.Warn("webhook secret mismatch", "remote_addr", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var update models.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateSize)).Decode(&update); err != nil {
		s.metrics.ObserveUpdate(metrics.ResultMalformed)
		logger.Warn("failed to decode update", "error", err)
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	var chatID int64
	if update.Message != nil {
		chatID = update.Message.Chat.ID
	}

	err := s.journal.MarkUpdateProcessed(r.Context(), update.ID, chatID)
	switch {
	case errors.Is(err, database.ErrAlreadyExists):
		s.metrics.ObserveUpdate(metrics.ResultDuplicate)
		logger.Debug("update already processed, skipping", "update_id", update.ID)
		writeAck(w)
		return
	case err != nil:
		// Answer anyway; a lost journal entry only risks a duplicate reply
		logger.Error("failed to journal update", "error", err, "update_id", update.ID)
	}

	s.processor.ProcessUpdate(r.Context(), &update)
	s.metrics.ObserveUpdate(metrics.ResultProcessed)

	writeAck(w)
}

func writeAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ackBody))
}
