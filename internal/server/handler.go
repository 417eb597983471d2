// Package server exposes the site backend over HTTP: the assistant
// chat and generation routes, conversation memory, knowledge search,
// telemetry intakes, lead capture, dashboard metrics and the content
// workflow.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/duhenri9/solo-in-public/internal/assistant"
	"github.com/duhenri9/solo-in-public/internal/content"
	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
	"github.com/duhenri9/solo-in-public/internal/metrics"
	"github.com/duhenri9/solo-in-public/internal/model"
	"github.com/duhenri9/solo-in-public/internal/store"
)

// Handler holds the wired collaborators behind all routes.
type Handler struct {
	orchestrator *assistant.Orchestrator
	searcher     knowledge.Searcher
	sessions     memory.Store
	repo         store.Repository
	collector    *metrics.Collector
	content      *content.Service
	premium      model.Generator
	secondary    model.Generator
	offline      model.Generator
	logger       *slog.Logger
}

// NewHandler creates the route handler. premium and secondary may be
// nil when the corresponding provider is not configured; offline must
// not be nil.
func NewHandler(
	orchestrator *assistant.Orchestrator,
	searcher knowledge.Searcher,
	sessions memory.Store,
	repo store.Repository,
	collector *metrics.Collector,
	contentSvc *content.Service,
	premium, secondary, offline model.Generator,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		searcher:     searcher,
		sessions:     sessions,
		repo:         repo,
		collector:    collector,
		content:      contentSvc,
		premium:      premium,
		secondary:    secondary,
		offline:      offline,
		logger:       logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes mounts every route on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assistant", func(r chi.Router) {
		r.Post("/chat", h.handleChat)
		r.Post("/generate", h.handleGenerate)
		r.Post("/knowledge/search", h.handleKnowledgeSearch)
		r.Post("/metrics", h.handleMetricsIntake)
		r.Route("/memory/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleMemoryGet)
			r.Post("/", h.handleMemoryAppend)
			r.Delete("/", h.handleMemoryClear)
		})
	})

	r.Post("/chatwood/handover", h.handleHandoverIntake)
	r.Post("/leads", h.handleLeadCapture)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/metrics", h.handleDashboard)
		r.Get("/performance", h.handlePerformance)
	})

	r.Route("/content", func(r chi.Router) {
		r.Get("/posts", h.handleContentPosts)
		r.Get("/limits", h.handleContentLimits)
		r.Get("/calendar", h.handleContentCalendar)
		r.Post("/generate", h.handleContentGenerate)
		r.Post("/approve", h.handleContentApprove)
	})
}

type chatRequest struct {
	SessionID string                     `json:"sessionId"`
	Message   string                     `json:"message"`
	Locale    string                     `json:"locale"`
	Lead      *assistant.LeadInformation `json:"leadInformation"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "Session id is required")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := h.orchestrator.ProcessMessage(r.Context(), assistant.Input{
		SessionID: req.SessionID,
		Message:   req.Message,
		Locale:    req.Locale,
		Lead:      req.Lead,
	})
	if err != nil {
		h.logger.Error("chat processing failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to process message")
		return
	}
	JSON(w, http.StatusOK, resp)
}

type generateRequest struct {
	Prompt          string `json:"prompt"`
	ModelPreference string `json:"modelPreference"`
	MaxTokens       int    `json:"max_tokens"`
	Locale          string `json:"locale"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		Error(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if req.Locale == "" {
		req.Locale = "pt"
	}

	generator := h.pickGenerator(req.ModelPreference)
	text, err := generator.Generate(r.Context(), req.Prompt, model.Options{
		Locale:    req.Locale,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		h.logger.Error("assistant generation failed", "model", generator.Name(), "error", err)
		JSON(w, http.StatusInternalServerError, map[string]string{
			"text":  model.FallbackReply,
			"model": "error",
		})
		return
	}
	JSON(w, http.StatusOK, map[string]string{"text": text, "model": generator.Name()})
}

// pickGenerator honors an explicit preference when that provider is
// configured; "auto" prefers the secondary model, then the premium
// one. Key-less deployments land on the offline model.
func (h *Handler) pickGenerator(preference string) model.Generator {
	switch {
	case preference == "gpt-4o" && h.premium != nil:
		return h.premium
	case preference == "claude-3.5-haiku" && h.secondary != nil:
		return h.secondary
	case h.secondary != nil:
		return h.secondary
	case h.premium != nil:
		return h.premium
	default:
		return h.offline
	}
}

type knowledgeSearchRequest struct {
	Query  string `json:"query"`
	Locale string `json:"locale"`
	Limit  int    `json:"limit"`
}

func (h *Handler) handleKnowledgeSearch(w http.ResponseWriter, r *http.Request) {
	var req knowledgeSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		Error(w, http.StatusBadRequest, "Query is required")
		return
	}
	if req.Locale == "" {
		req.Locale = "pt"
	}
	if req.Limit <= 0 {
		req.Limit = knowledge.DefaultLimit
	}

	results := h.searcher.Search(r.Context(), req.Query, req.Locale, req.Limit)
	if results == nil {
		results = []knowledge.Snippet{}
	}
	JSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleMemoryGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.sessions.Context(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("loading session memory failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to load memory")
		return
	}
	if messages == nil {
		messages = []memory.Message{}
	}
	JSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) handleMemoryAppend(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var msg memory.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.sessions.Append(r.Context(), sessionID, msg); err != nil {
		h.logger.Error("appending session memory failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to store message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMemoryClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		h.logger.Error("clearing session memory failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to clear memory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMetricsIntake(w http.ResponseWriter, r *http.Request) {
	var rec store.UsageRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.RecordedAt = time.Now().UTC()
	if err := h.repo.SaveUsage(r.Context(), rec); err != nil {
		h.logger.Error("saving usage record failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to record usage")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleHandoverIntake(w http.ResponseWriter, r *http.Request) {
	var rec store.HandoverRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.ReceivedAt = time.Now().UTC()
	if err := h.repo.SaveHandover(r.Context(), rec); err != nil {
		h.logger.Error("saving handover record failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to record handover")
		return
	}
	JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) handleLeadCapture(w http.ResponseWriter, r *http.Request) {
	var lead store.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := h.repo.SaveLead(r.Context(), lead)
	if err != nil {
		h.logger.Error("saving lead failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to save lead")
		return
	}
	JSON(w, http.StatusCreated, map[string]string{"id": saved.ID, "status": saved.Status})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard aggregation failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to aggregate metrics")
		return
	}
	JSON(w, http.StatusOK, summary)
}

func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.collector.Snapshot())
}

func (h *Handler) handleContentPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.Posts(r.Context())
	if err != nil {
		h.logger.Error("listing posts failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *Handler) handleContentLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.content.Limits(r.Context())
	if err != nil {
		h.logger.Error("reading content limits failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to read limits")
		return
	}
	JSON(w, http.StatusOK, limits)
}

func (h *Handler) handleContentCalendar(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{"suggestions": h.content.Calendar()})
}

type contentGenerateRequest struct {
	Topic   string `json:"topic"`
	Persona string `json:"persona"`
	Locale  string `json:"locale"`
}

func (h *Handler) handleContentGenerate(w http.ResponseWriter, r *http.Request) {
	var req contentGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, remaining, err := h.content.Generate(r.Context(), req.Topic, req.Persona, req.Locale)
	if err != nil {
		var limitErr *content.LimitError
		if errors.As(err, &limitErr) {
			JSON(w, http.StatusTooManyRequests, map[string]any{
				"error":           "Monthly limit reached",
				"allowedPerMonth": limitErr.Allowed,
				"used":            limitErr.Used,
			})
			return
		}
		h.logger.Error("post generation failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to generate post")
		return
	}
	JSON(w, http.StatusCreated, map[string]any{"post": post, "remaining": remaining})
}

type contentApproveRequest struct {
	ID string `json:"id"`
}

func (h *Handler) handleContentApprove(w http.ResponseWriter, r *http.Request) {
	var req contentApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		Error(w, http.StatusBadRequest, "id required")
		return
	}

	post, err := h.content.Approve(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			Error(w, http.StatusNotFound, "not found")
			return
		}
		h.logger.Error("post approval failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to approve post")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"post": post})
}
