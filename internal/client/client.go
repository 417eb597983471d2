// Package client provides a REST client for the Solo in Public server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/duhenri9/solo-in-public/internal/assistant"
	"github.com/duhenri9/solo-in-public/internal/content"
	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
	"github.com/duhenri9/solo-in-public/internal/store"
)

// Client talks to the Solo in Public backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, SOLO_SERVER_URL is used,
// then localhost:8787.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("SOLO_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8787"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("SOLO_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Chat sends one message through the assistant pipeline.
func (c *Client) Chat(ctx context.Context, sessionID, message, locale string) (assistant.Response, error) {
	var resp assistant.Response
	err := c.do(ctx, http.MethodPost, "/assistant/chat", map[string]any{
		"sessionId": sessionID,
		"message":   message,
		"locale":    locale,
	}, &resp)
	return resp, err
}

// Generate asks for a raw completion of an already built prompt.
func (c *Client) Generate(ctx context.Context, prompt, preference string, maxTokens int) (text, model string, err error) {
	var resp struct {
		Text  string `json:"text"`
		Model string `json:"model"`
	}
	err = c.do(ctx, http.MethodPost, "/assistant/generate", map[string]any{
		"prompt":          prompt,
		"modelPreference": preference,
		"max_tokens":      maxTokens,
	}, &resp)
	return resp.Text, resp.Model, err
}

// SearchKnowledge queries the knowledge base.
func (c *Client) SearchKnowledge(ctx context.Context, query, locale string, limit int) ([]knowledge.Snippet, error) {
	var resp struct {
		Results []knowledge.Snippet `json:"results"`
	}
	err := c.do(ctx, http.MethodPost, "/assistant/knowledge/search", map[string]any{
		"query":  query,
		"locale": locale,
		"limit":  limit,
	}, &resp)
	return resp.Results, err
}

// Memory returns the stored history of a session.
func (c *Client) Memory(ctx context.Context, sessionID string) ([]memory.Message, error) {
	var resp struct {
		Messages []memory.Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/assistant/memory/"+sessionID, nil, &resp)
	return resp.Messages, err
}

// ResetSession clears the memory of a session.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/assistant/memory/"+sessionID, nil, nil)
}

// Dashboard returns the aggregated usage metrics.
func (c *Client) Dashboard(ctx context.Context) (store.DashboardSummary, error) {
	var summary store.DashboardSummary
	err := c.do(ctx, http.MethodGet, "/dashboard/metrics", nil, &summary)
	return summary, err
}

// GeneratePost creates a content draft for the topic.
func (c *Client) GeneratePost(ctx context.Context, topic, persona, locale string) (store.Post, int, error) {
	var resp struct {
		Post      store.Post `json:"post"`
		Remaining int        `json:"remaining"`
	}
	err := c.do(ctx, http.MethodPost, "/content/generate", map[string]any{
		"topic":   topic,
		"persona": persona,
		"locale":  locale,
	}, &resp)
	return resp.Post, resp.Remaining, err
}

// ApprovePost marks a draft as approved.
func (c *Client) ApprovePost(ctx context.Context, id string) (store.Post, error) {
	var resp struct {
		Post store.Post `json:"post"`
	}
	err := c.do(ctx, http.MethodPost, "/content/approve", map[string]string{"id": id}, &resp)
	return resp.Post, err
}

// Posts lists the stored drafts.
func (c *Client) Posts(ctx context.Context) ([]store.Post, error) {
	var resp struct {
		Posts []store.Post `json:"posts"`
	}
	err := c.do(ctx, http.MethodGet, "/content/posts", nil, &resp)
	return resp.Posts, err
}

// Calendar returns suggested publishing slots.
func (c *Client) Calendar(ctx context.Context) ([]content.Suggestion, error) {
	var resp struct {
		Suggestions []content.Suggestion `json:"suggestions"`
	}
	err := c.do(ctx, http.MethodGet, "/content/calendar", nil, &resp)
	return resp.Suggestions, err
}
