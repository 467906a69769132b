// Package handlers provides HTTP handlers for the lead assistant API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/assistant"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

const maxBodyBytes = 1 << 20

// Responder answers chat messages.
type Responder interface {
	Respond(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
	Stats() leads.Stats
}

// ChatHandler handles chat and stats requests.
type ChatHandler struct {
	logger    *observability.Logger
	responder Responder
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, responder Responder) *ChatHandler {
	return &ChatHandler{
		logger:    logger,
		responder: responder,
	}
}

// StatsResponseDTO is the body of GET /api/stats.
type StatsResponseDTO struct {
	Stats leads.Stats `json:"stats"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assistant.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.responder.Respond(ctx, req)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "empty message")
		return
	}
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("Chat request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// Stats handles GET /api/stats.
func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponseDTO{Stats: h.responder.Stats()})
}

// Ready handles GET /ready. The directory is loaded before the server
// starts, so readiness reports its size.
func (h *ChatHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"leads":  h.responder.Stats().Total,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
