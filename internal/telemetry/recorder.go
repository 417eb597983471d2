// Package telemetry ships assistant usage records to the metrics sink.
// Recording is best-effort: a missing sink is a no-op and network
// failures are logged, never propagated, so telemetry can never break
// the user-facing reply path.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
)

// Usage is one assistant interaction record.
type Usage struct {
	SessionID         string              `json:"sessionId"`
	Model             string              `json:"model"`
	ResponseTimeMs    float64             `json:"responseTime"`
	TokenCost         float64             `json:"tokenCost"`
	HandoverTriggered bool                `json:"handoverTriggered"`
	KnowledgeApplied  []knowledge.Snippet `json:"knowledgeApplied"`
}

// Recorder posts usage records to the sink endpoint.
type Recorder struct {
	sinkURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewRecorder creates a recorder. An empty sinkURL disables shipping
// entirely.
func NewRecorder(sinkURL string, logger *slog.Logger) *Recorder {
	return &Recorder{
		sinkURL: sinkURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// RecordUsage ships one record. It never returns an error.
func (r *Recorder) RecordUsage(ctx context.Context, usage Usage) {
	if r.sinkURL == "" {
		return
	}

	body, err := json.Marshal(usage)
	if err != nil {
		r.logger.Warn("unable to encode assistant telemetry", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.sinkURL+"/assistant/metrics", bytes.NewReader(body))
	if err != nil {
		r.logger.Warn("unable to build assistant telemetry request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("unable to send assistant telemetry", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		r.logger.Warn("assistant telemetry rejected", "status", resp.StatusCode)
	}
}
