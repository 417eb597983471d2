package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RemoteSearcher delegates to the knowledge search endpoint and falls
// back to a local searcher when the service is unreachable or answers
// with a non-success status.
type RemoteSearcher struct {
	baseURL  string
	client   *http.Client
	fallback Searcher
	logger   *slog.Logger
}

var _ Searcher = (*RemoteSearcher)(nil)

// NewRemoteSearcher creates a client for the search service rooted at
// baseURL. fallback must not be nil.
func NewRemoteSearcher(baseURL string, fallback Searcher, logger *slog.Logger) *RemoteSearcher {
	return &RemoteSearcher{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		fallback: fallback,
		logger:   logger,
	}
}

func (s *RemoteSearcher) Search(ctx context.Context, query, locale string, limit int) []Snippet {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := s.post(ctx, query, locale, limit)
	if err != nil {
		s.logger.Warn("falling back to local knowledge base", "error", err)
		return s.fallback.Search(ctx, query, locale, limit)
	}
	return results
}

func (s *RemoteSearcher) post(ctx context.Context, query, locale string, limit int) ([]Snippet, error) {
	body, err := json.Marshal(map[string]any{
		"query":  query,
		"locale": locale,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/assistant/knowledge/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("knowledge search: status %d", resp.StatusCode)
	}

	var payload struct {
		Results []Snippet `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload.Results, nil
}
