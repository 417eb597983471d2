// Package store persists the operational records of the site backend:
// usage telemetry, handover intakes, captured leads and generated
// posts. Two implementations exist, an in-memory one for key-less
// local setups and tests, and a SurrealDB-backed one for deployments.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
)

// UsageRecord is one telemetry observation shipped by the assistant.
type UsageRecord struct {
	SessionID         string              `json:"sessionId"`
	Model             string              `json:"model"`
	ResponseTime      float64             `json:"responseTime"`
	TokenCost         float64             `json:"tokenCost"`
	HandoverTriggered bool                `json:"handoverTriggered"`
	KnowledgeApplied  []knowledge.Snippet `json:"knowledgeApplied,omitempty"`
	RecordedAt        time.Time           `json:"recordedAt"`
}

// HandoverRecord is an escalated exchange received on the Chatwood
// intake route.
type HandoverRecord struct {
	SessionID      string    `json:"sessionId"`
	UserMessage    string    `json:"userMessage"`
	AssistantReply string    `json:"assistantReply"`
	ReceivedAt     time.Time `json:"receivedAt"`
}

// Lead is a captured visitor contact. Status is always "synced" once
// the record is stored.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Company     string    `json:"company,omitempty"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Post is a generated LinkedIn draft, capped per calendar month.
type Post struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Persona    string     `json:"persona"`
	Locale     string     `json:"locale"`
	CreatedAt  time.Time  `json:"createdAt"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	MonthKey   string     `json:"monthKey"`
}

// DashboardSummary aggregates usage records for the metrics endpoint.
type DashboardSummary struct {
	TotalMessages int     `json:"totalMessages"`
	AvgResponse   float64 `json:"avgResponseTime"`
	Handovers     int     `json:"handovers"`
	Messages24h   int     `json:"messages24h"`
	LeadsCount    int     `json:"leadsCount"`
}

// ErrPostNotFound is returned when approving an unknown post id.
var ErrPostNotFound = fmt.Errorf("post not found")

// Repository is the persistence surface the HTTP server depends on.
type Repository interface {
	SaveUsage(ctx context.Context, rec UsageRecord) error
	SaveHandover(ctx context.Context, rec HandoverRecord) error
	Dashboard(ctx context.Context) (DashboardSummary, error)

	SaveLead(ctx context.Context, lead Lead) (Lead, error)

	SavePost(ctx context.Context, post Post) error
	ListPosts(ctx context.Context) ([]Post, error)
	ApprovePost(ctx context.Context, id string) (Post, error)
	CountPostsInMonth(ctx context.Context, monthKey string) (int, error)
}

// MonthKey formats the monthly cap bucket, "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
