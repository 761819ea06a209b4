package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

func TestAPIClientPostUnwrapsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what?", req.Question)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": AskResponse{SessionID: "s1", Answer: "42"},
		})
	}))
	defer server.Close()

	resp, err := testClient(server.URL).Post("/chat", AskRequest{Question: "what?"})
	require.NoError(t, err)

	var askResp AskResponse
	require.NoError(t, json.Unmarshal(resp.Data, &askResp))
	assert.Equal(t, "42", askResp.Answer)
}

func TestAPIClientErrorCarriesCodeAndStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "vector index has no entries",
			"code":  "INDEX_EMPTY",
		})
	}))
	defer server.Close()

	_, err := testClient(server.URL).Post("/chat", AskRequest{Question: "q"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "INDEX_EMPTY", apiErr.Code)
	assert.Contains(t, apiErr.Message, "vector index has no entries")
}

func TestAPIClientPlainResponseWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Ready: true})
	}))
	defer server.Close()

	resp, err := testClient(server.URL).Get("/health")
	require.NoError(t, err)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Data, &health))
	assert.True(t, health.Ready)
}

func TestAPIClientNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Delete("/sessions/s1")
	assert.NoError(t, err)
}

func TestAPIClientNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Get("/health")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
