package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat-ai/paperchat/internal/api"
	"github.com/paperchat-ai/paperchat/internal/domain"
)

type SessionHandler struct {
	sessions SessionProvider
}

func NewSessionHandler(sessions SessionProvider) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type TurnResponse struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}

// History exports a session's full transcript, oldest turn first.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	conv, ok := h.sessions.Lookup(sessionID)
	if !ok {
		api.HandleError(w, domain.ErrSessionNotFound)
		return
	}

	turns := conv.History()
	resp := HistoryResponse{
		SessionID: sessionID,
		Turns:     make([]TurnResponse, 0, len(turns)),
	}
	for _, turn := range turns {
		resp.Turns = append(resp.Turns, TurnResponse{
			Role:      string(turn.Role),
			Text:      turn.Text,
			Timestamp: turn.Timestamp,
		})
	}

	api.Success(w, http.StatusOK, resp)
}

// Delete removes a session entirely, unlike reset which keeps the
// session alive with an empty history.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if !h.sessions.Evict(sessionID) {
		api.HandleError(w, domain.ErrSessionNotFound)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
