package model

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClampMaxTokens(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 300},
		{10, 50},
		{50, 50},
		{300, 300},
		{400, 400},
		{9000, 400},
	}

	for _, tt := range tests {
		if got := ClampMaxTokens(tt.in); got != tt.want {
			t.Errorf("ClampMaxTokens(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOfflineModelWithKnowledge(t *testing.T) {
	corpus := knowledge.New([]knowledge.Entry{
		{ID: "kb-1", Category: "pricing", Language: "pt", Title: "Plano", Content: "US$ 197 por mês", Tags: []string{"preço"}},
	})
	offline := NewOffline(corpus)

	reply, err := offline.Generate(context.Background(), "qual o preço do plano", Options{Locale: "pt"})
	require.NoError(t, err)
	assert.Contains(t, reply, "Modo demonstração")
	assert.Contains(t, reply, "(pricing) Plano: US$ 197 por mês")
}

func TestOfflineModelWithoutKnowledge(t *testing.T) {
	offline := NewOffline(nil)

	reply, err := offline.Generate(context.Background(), "anything", Options{})
	require.NoError(t, err)
	assert.Contains(t, reply, "Modo demonstração")
	assert.NotContains(t, reply, "•")
}

func TestRemoteModelReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req["modelPreference"])
		assert.EqualValues(t, 300, req["max_tokens"])

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "resposta gerada", "model": "gpt-4o"})
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL, "gpt-4o", discardLogger())
	reply, err := m.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	assert.Equal(t, "resposta gerada", reply)
}

func TestRemoteModelUsesServerFallbackText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "fallback do servidor"})
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL, "auto", discardLogger())
	reply, err := m.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	assert.Equal(t, "fallback do servidor", reply)
}

func TestRemoteModelNeverErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "not json")
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL, "auto", discardLogger())
	reply, err := m.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)

	// Unreachable host degrades the same way.
	m = NewRemoteModel("http://127.0.0.1:1", "auto", discardLogger())
	reply, err = m.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Desculpe"))
}
