package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paperchat-ai/paperchat/internal/api/handlers"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerConversation struct{}

func (routerConversation) Ask(ctx context.Context, question string) (string, error) {
	return "router answer", nil
}
func (routerConversation) History() []domain.Turn { return nil }
func (routerConversation) Reset()                 {}

type routerSessions struct{}

func (routerSessions) GetOrCreate(sessionID string) (handlers.Conversation, error) {
	return routerConversation{}, nil
}

func (routerSessions) Lookup(sessionID string) (handlers.Conversation, bool) {
	if sessionID == "known" {
		return routerConversation{}, true
	}
	return nil, false
}

func (routerSessions) Evict(sessionID string) bool { return sessionID == "known" }

type routerIngestor struct{}

func (routerIngestor) Ingest(ctx context.Context, docs []*domain.Document) (*service.IngestStats, error) {
	return &service.IngestStats{Documents: len(docs), Chunks: len(docs)}, nil
}

func (routerIngestor) IngestFromCorpus(ctx context.Context) (*service.IngestStats, error) {
	return &service.IngestStats{}, nil
}

type routerChecker struct{}

func (routerChecker) Ready(ctx context.Context) bool { return true }

func newTestRouter() http.Handler {
	sessions := routerSessions{}
	return NewRouter(RouterConfig{
		ChatHandler:    handlers.NewChatHandler(sessions),
		SessionHandler: handlers.NewSessionHandler(sessions),
		IngestHandler:  handlers.NewIngestHandler(routerIngestor{}),
		HealthHandler:  handlers.NewHealthHandler(routerChecker{}),
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"POST", "/chat", `{"session_id":"s1","question":"q"}`, http.StatusOK},
		{"POST", "/chat/reset", `{"session_id":"s1"}`, http.StatusOK},
		{"POST", "/ingest", `{"documents":[{"path":"a.txt","text":"hello"}]}`, http.StatusOK},
		{"GET", "/sessions/known/history", "", http.StatusOK},
		{"GET", "/sessions/ghost/history", "", http.StatusNotFound},
		{"DELETE", "/sessions/known", "", http.StatusNoContent},
		{"DELETE", "/sessions/ghost", "", http.StatusNotFound},
		{"GET", "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body *bytes.Reader
			if tt.body != "" {
				body = bytes.NewReader([]byte(tt.body))
			} else {
				body = bytes.NewReader(nil)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterPropagatesRequestID(t *testing.T) {
	router := newTestRouter()

	inbound := "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", inbound)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, inbound, rec.Header().Get("X-Request-ID"))
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	router := newTestRouter()

	big := strings.Repeat("a", 6*1024*1024)
	req := httptest.NewRequest("POST", "/chat", strings.NewReader(`{"question":"`+big+`"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.NotEqual(t, http.StatusOK, rec.Code)
}
