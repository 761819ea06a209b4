package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRequest(t *testing.T, method, sessionID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, "/sessions/"+sessionID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", sessionID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSessionHistory(t *testing.T) {
	now := time.Now().UTC()
	sessions := newFakeSessions()
	sessions.conversations["s1"] = &fakeConversation{history: []domain.Turn{
		{Role: domain.RoleAsker, Text: "Q1", Timestamp: now},
		{Role: domain.RoleResponder, Text: "A1", Timestamp: now.Add(time.Second)},
	}}
	handler := NewSessionHandler(sessions)

	rec := httptest.NewRecorder()
	handler.History(rec, sessionRequest(t, "GET", "s1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HistoryResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, "asker", resp.Turns[0].Role)
	assert.Equal(t, "Q1", resp.Turns[0].Text)
	assert.Equal(t, "responder", resp.Turns[1].Role)
}

func TestSessionHistoryEmptySession(t *testing.T) {
	sessions := newFakeSessions()
	sessions.conversations["s1"] = &fakeConversation{}
	handler := NewSessionHandler(sessions)

	rec := httptest.NewRecorder()
	handler.History(rec, sessionRequest(t, "GET", "s1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HistoryResponse
	decodeData(t, rec, &resp)
	assert.Empty(t, resp.Turns)
	assert.NotNil(t, resp.Turns)
}

func TestSessionHistoryNotFound(t *testing.T) {
	handler := NewSessionHandler(newFakeSessions())

	rec := httptest.NewRecorder()
	handler.History(rec, sessionRequest(t, "GET", "ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionDelete(t *testing.T) {
	sessions := newFakeSessions()
	sessions.conversations["s1"] = &fakeConversation{}
	handler := NewSessionHandler(sessions)

	rec := httptest.NewRecorder()
	handler.Delete(rec, sessionRequest(t, "DELETE", "s1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, ok := sessions.conversations["s1"]
	assert.False(t, ok)
}

func TestSessionDeleteNotFound(t *testing.T) {
	handler := NewSessionHandler(newFakeSessions())

	rec := httptest.NewRecorder()
	handler.Delete(rec, sessionRequest(t, "DELETE", "ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ErrCodeNotFound, resp.Code)
}
