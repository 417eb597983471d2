package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duhenri9/solo-in-public/internal/assistant"
	"github.com/duhenri9/solo-in-public/internal/content"
	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
	"github.com/duhenri9/solo-in-public/internal/metrics"
	"github.com/duhenri9/solo-in-public/internal/model"
	"github.com/duhenri9/solo-in-public/internal/store"
	"github.com/duhenri9/solo-in-public/internal/telemetry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubGenerator struct {
	name  string
	reply string
	err   error
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(ctx context.Context, prompt string, opts model.Options) (string, error) {
	return s.reply, s.err
}

func testCorpus() *knowledge.Corpus {
	return knowledge.New([]knowledge.Entry{
		{ID: "kb-plano-pt", Category: "pricing", Language: "pt", Title: "Plano Pro-founder",
			Content: "R$197/mês com publicação assistida.", Tags: []string{"plano", "preço"}},
		{ID: "kb-metodo-pt", Category: "method", Language: "pt", Title: "Método",
			Content: "Ciclos semanais de build in public.", Tags: []string{"método"}},
	})
}

func newTestServer(t *testing.T, secondary model.Generator) *httptest.Server {
	t.Helper()

	logger := discardLogger()
	corpus := testCorpus()
	sessions := memory.NewLocalStore(memory.DefaultWindow)
	repo := store.NewMemoryRepository()
	collector := metrics.NewCollector()
	offline := model.NewOffline(corpus)

	router := assistant.NewRouter(nil, secondary, offline, collector)
	orch := assistant.NewOrchestrator(
		sessions, corpus, router,
		assistant.NewNotifier("", logger),
		telemetry.NewRecorder("", logger),
		knowledge.DefaultLimit, logger,
	)
	contentSvc := content.NewService(repo, secondary, corpus, content.DefaultMonthlyLimit, logger)

	h := NewHandler(orch, corpus, sessions, repo, collector, contentSvc, nil, secondary, offline, logger)
	srv := httptest.NewServer(NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "Posso ajudar com o plano."})

	resp := postJSON(t, srv.URL+"/assistant/chat", map[string]any{
		"sessionId": "s1",
		"message":   "Quero falar com uma pessoa",
		"locale":    "pt-BR",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[assistant.Response](t, resp)
	assert.True(t, body.HandoverTriggered)
	assert.Equal(t, "claude-3.5-haiku", body.Model)
	assert.Equal(t, "Posso ajudar com o plano.", body.Message)

	// The session now holds exactly the user turn and the reply.
	memResp, err := http.Get(srv.URL + "/assistant/memory/s1")
	require.NoError(t, err)
	messages := decode[map[string][]memory.Message](t, memResp)["messages"]
	assert.Len(t, messages, 2)
}

func TestChatValidation(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	resp := postJSON(t, srv.URL+"/assistant/chat", map[string]any{"sessionId": "s1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/assistant/chat", map[string]any{"message": "oi"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "Resposta direta."})

	resp := postJSON(t, srv.URL+"/assistant/generate", map[string]any{
		"prompt":          "Explique o plano",
		"modelPreference": "claude-3.5-haiku",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Resposta direta.", body["text"])
	assert.Equal(t, "claude-3.5-haiku", body["model"])
}

func TestGenerateRequiresPrompt(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	resp := postJSON(t, srv.URL+"/assistant/generate", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateProviderFailure(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", err: errors.New("down")})

	resp := postJSON(t, srv.URL+"/assistant/generate", map[string]any{"prompt": "oi"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, model.FallbackReply, body["text"])
	assert.Equal(t, "error", body["model"])
}

func TestGenerateOfflineDemoMode(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/assistant/generate", map[string]any{"prompt": "qual o preço do plano"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, model.OfflineName, body["model"])
	assert.Contains(t, body["text"], "Modo demonstração")
}

func TestKnowledgeSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	resp := postJSON(t, srv.URL+"/assistant/knowledge/search", map[string]any{
		"query": "qual o preço do plano", "locale": "pt-BR",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string][]knowledge.Snippet](t, resp)
	require.NotEmpty(t, body["results"])
	assert.Equal(t, "kb-plano-pt", body["results"][0].ID)

	missing := postJSON(t, srv.URL+"/assistant/knowledge/search", map[string]any{"locale": "pt"})
	defer missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestMemoryEndpointsRetainWindow(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	for i := 1; i <= 7; i++ {
		resp := postJSON(t, srv.URL+"/assistant/memory/win", memory.Message{
			Role: memory.RoleUser, Content: fmt.Sprintf("message %d", i),
		})
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/assistant/memory/win")
	require.NoError(t, err)
	messages := decode[map[string][]memory.Message](t, resp)["messages"]
	require.Len(t, messages, 6)
	assert.Equal(t, "message 2", messages[0].Content)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/assistant/memory/win", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	resp, err = http.Get(srv.URL + "/assistant/memory/win")
	require.NoError(t, err)
	messages = decode[map[string][]memory.Message](t, resp)["messages"]
	assert.Empty(t, messages)
}

func TestMetricsAndDashboard(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	resp := postJSON(t, srv.URL+"/assistant/metrics", map[string]any{
		"sessionId": "s1", "model": "gpt-4o", "responseTime": 120.0,
		"handoverTriggered": true,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	leadResp := postJSON(t, srv.URL+"/leads", map[string]any{"email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, leadResp.StatusCode)
	lead := decode[map[string]string](t, leadResp)
	assert.NotEmpty(t, lead["id"])
	assert.Equal(t, "synced", lead["status"])

	dashResp, err := http.Get(srv.URL + "/dashboard/metrics")
	require.NoError(t, err)
	summary := decode[store.DashboardSummary](t, dashResp)
	assert.Equal(t, 1, summary.TotalMessages)
	assert.Equal(t, 120.0, summary.AvgResponse)
	assert.Equal(t, 1, summary.Handovers)
	assert.Equal(t, 1, summary.LeadsCount)
}

func TestHandoverIntake(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "ok"})

	resp := postJSON(t, srv.URL+"/chatwood/handover", map[string]any{
		"sessionId": "s1", "userMessage": "quero falar com uma pessoa", "assistantReply": "claro",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "queued", body["status"])
}

func TestContentWorkflow(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{name: "claude-3.5-haiku", reply: "Post curto."})

	var lastID string
	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/content/generate", map[string]any{"topic": "lançamento"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decode[map[string]json.RawMessage](t, resp)
		var post store.Post
		require.NoError(t, json.Unmarshal(body["post"], &post))
		lastID = post.ID
	}

	// Fourth draft in the same month is rejected.
	over := postJSON(t, srv.URL+"/content/generate", map[string]any{"topic": "lançamento"})
	defer over.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, over.StatusCode)

	limits, err := http.Get(srv.URL + "/content/limits")
	require.NoError(t, err)
	lim := decode[content.Limits](t, limits)
	assert.Equal(t, content.Limits{AllowedPerMonth: 3, Used: 3, Remaining: 0}, lim)

	approve := postJSON(t, srv.URL+"/content/approve", map[string]any{"id": lastID})
	require.Equal(t, http.StatusOK, approve.StatusCode)
	approved := decode[map[string]store.Post](t, approve)
	assert.True(t, approved["post"].Approved)

	notFound := postJSON(t, srv.URL+"/content/approve", map[string]any{"id": "missing"})
	defer notFound.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)

	calendar, err := http.Get(srv.URL + "/content/calendar")
	require.NoError(t, err)
	suggestions := decode[map[string][]content.Suggestion](t, calendar)["suggestions"]
	assert.Len(t, suggestions, 7)
}
