package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/assistant/chat", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req["sessionId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"olá","model":"claude-3.5-haiku","knowledgeApplied":[],"handoverTriggered":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Chat(context.Background(), "s1", "oi", "pt")
	require.NoError(t, err)
	assert.Equal(t, "olá", resp.Message)
	assert.Equal(t, "claude-3.5-haiku", resp.Model)
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Message is required"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Chat(context.Background(), "s1", "", "pt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message is required")
}

func TestResetSessionUsesDelete(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.ResetSession(context.Background(), "s1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/assistant/memory/s1", path)
}

func TestSearchKnowledge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":"kb-plano-pt","title":"Plano","content":"R$197/mês","category":"pricing","score":3}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	results, err := c.SearchKnowledge(context.Background(), "preço", "pt", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb-plano-pt", results[0].ID)
}
