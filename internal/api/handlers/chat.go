package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/paperchat-ai/paperchat/internal/api"
	"github.com/paperchat-ai/paperchat/internal/domain"
)

// Conversation is one session's question-answering loop.
type Conversation interface {
	Ask(ctx context.Context, question string) (string, error)
	History() []domain.Turn
	Reset()
}

// SessionProvider resolves session IDs to live conversations.
type SessionProvider interface {
	GetOrCreate(sessionID string) (Conversation, error)
	Lookup(sessionID string) (Conversation, bool)
	Evict(sessionID string) bool
}

type ChatHandler struct {
	sessions SessionProvider
}

func NewChatHandler(sessions SessionProvider) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

type AskRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type AskResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// Ask answers a question within a session. A missing session_id starts
// a fresh session whose generated ID is returned in the response.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	conv, err := h.sessions.GetOrCreate(req.SessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	answer, err := conv.Ask(r.Context(), req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		SessionID: req.SessionID,
		Answer:    answer,
	})
}

type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// Reset clears a session's history. Resetting an unknown session is a
// no-op and still succeeds.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if conv, ok := h.sessions.Lookup(req.SessionID); ok {
		conv.Reset()
	}

	api.Success(w, http.StatusOK, map[string]string{"session_id": req.SessionID})
}
