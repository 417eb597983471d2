package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
)

// SurrealRepository implements Repository on top of SurrealDB.
type SurrealRepository struct {
	client *Client
}

var _ Repository = (*SurrealRepository)(nil)

func NewSurrealRepository(client *Client) *SurrealRepository {
	return &SurrealRepository{client: client}
}

type usageRow struct {
	SessionID         string              `json:"session_id"`
	Model             string              `json:"model"`
	ResponseTime      float64             `json:"response_time"`
	TokenCost         float64             `json:"token_cost"`
	HandoverTriggered bool                `json:"handover_triggered"`
	KnowledgeApplied  []knowledge.Snippet `json:"knowledge_applied,omitempty"`
	RecordedAt        time.Time           `json:"recorded_at"`
}

func (r *SurrealRepository) SaveUsage(ctx context.Context, rec UsageRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	_, err := surrealdb.Query[any](ctx, r.client.db, `
		CREATE usage_record CONTENT {
			session_id: $session_id,
			model: $model,
			response_time: $response_time,
			token_cost: $token_cost,
			handover_triggered: $handover_triggered,
			knowledge_applied: $knowledge_applied,
			recorded_at: $recorded_at
		}
	`, map[string]any{
		"session_id":         rec.SessionID,
		"model":              rec.Model,
		"response_time":      rec.ResponseTime,
		"token_cost":         rec.TokenCost,
		"handover_triggered": rec.HandoverTriggered,
		"knowledge_applied":  rec.KnowledgeApplied,
		"recorded_at":        rec.RecordedAt,
	})
	if err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func (r *SurrealRepository) SaveHandover(ctx context.Context, rec HandoverRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	_, err := surrealdb.Query[any](ctx, r.client.db, `
		CREATE handover_record CONTENT {
			session_id: $session_id,
			user_message: $user_message,
			assistant_reply: $assistant_reply,
			received_at: $received_at
		}
	`, map[string]any{
		"session_id":      rec.SessionID,
		"user_message":    rec.UserMessage,
		"assistant_reply": rec.AssistantReply,
		"received_at":     rec.ReceivedAt,
	})
	if err != nil {
		return fmt.Errorf("save handover: %w", err)
	}
	return nil
}

type dashboardRow struct {
	TotalMessages int     `json:"total_messages"`
	AvgResponse   float64 `json:"avg_response"`
	Handovers     int     `json:"handovers"`
	Messages24h   int     `json:"messages_24h"`
}

type countRow struct {
	Count int `json:"count"`
}

func (r *SurrealRepository) Dashboard(ctx context.Context) (DashboardSummary, error) {
	rows, err := surrealdb.Query[[]dashboardRow](ctx, r.client.db, `
		SELECT
			count() AS total_messages,
			math::mean(response_time) AS avg_response,
			count(handover_triggered = true) AS handovers,
			count(recorded_at > time::now() - 24h) AS messages_24h
		FROM usage_record GROUP ALL
	`, nil)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard usage: %w", err)
	}

	var summary DashboardSummary
	if rows != nil && len(*rows) > 0 && len((*rows)[0].Result) > 0 {
		row := (*rows)[0].Result[0]
		summary.TotalMessages = row.TotalMessages
		summary.AvgResponse = row.AvgResponse
		summary.Handovers = row.Handovers
		summary.Messages24h = row.Messages24h
	}

	leads, err := surrealdb.Query[[]countRow](ctx, r.client.db, `
		SELECT count() AS count FROM lead GROUP ALL
	`, nil)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard leads: %w", err)
	}
	if leads != nil && len(*leads) > 0 && len((*leads)[0].Result) > 0 {
		summary.LeadsCount = (*leads)[0].Result[0].Count
	}
	return summary, nil
}

func (r *SurrealRepository) SaveLead(ctx context.Context, lead Lead) (Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	lead.Status = "synced"
	if lead.SubmittedAt.IsZero() {
		lead.SubmittedAt = time.Now().UTC()
	}

	_, err := surrealdb.Query[any](ctx, r.client.db, `
		CREATE lead CONTENT {
			lead_id: $lead_id,
			name: $name,
			email: $email,
			company: $company,
			status: $status,
			submitted_at: $submitted_at
		}
	`, map[string]any{
		"lead_id":      lead.ID,
		"name":         lead.Name,
		"email":        lead.Email,
		"company":      lead.Company,
		"status":       lead.Status,
		"submitted_at": lead.SubmittedAt,
	})
	if err != nil {
		return Lead{}, fmt.Errorf("save lead: %w", err)
	}
	return lead, nil
}

type postRow struct {
	PostID     string     `json:"post_id"`
	Content    string     `json:"content"`
	Persona    string     `json:"persona"`
	Locale     string     `json:"locale"`
	CreatedAt  time.Time  `json:"created_at"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	MonthKey   string     `json:"month_key"`
}

func (row postRow) toPost() Post {
	return Post{
		ID:         row.PostID,
		Content:    row.Content,
		Persona:    row.Persona,
		Locale:     row.Locale,
		CreatedAt:  row.CreatedAt,
		Approved:   row.Approved,
		ApprovedAt: row.ApprovedAt,
		MonthKey:   row.MonthKey,
	}
}

func (r *SurrealRepository) SavePost(ctx context.Context, post Post) error {
	_, err := surrealdb.Query[any](ctx, r.client.db, `
		CREATE post CONTENT {
			post_id: $post_id,
			content: $content,
			persona: $persona,
			locale: $locale,
			created_at: $created_at,
			approved: $approved,
			approved_at: $approved_at,
			month_key: $month_key
		}
	`, map[string]any{
		"post_id":     post.ID,
		"content":     post.Content,
		"persona":     post.Persona,
		"locale":      post.Locale,
		"created_at":  post.CreatedAt,
		"approved":    post.Approved,
		"approved_at": post.ApprovedAt,
		"month_key":   post.MonthKey,
	})
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (r *SurrealRepository) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := surrealdb.Query[[]postRow](ctx, r.client.db, `
		SELECT * FROM post ORDER BY created_at ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if rows == nil || len(*rows) == 0 {
		return []Post{}, nil
	}
	posts := make([]Post, 0, len((*rows)[0].Result))
	for _, row := range (*rows)[0].Result {
		posts = append(posts, row.toPost())
	}
	return posts, nil
}

func (r *SurrealRepository) ApprovePost(ctx context.Context, id string) (Post, error) {
	rows, err := surrealdb.Query[[]postRow](ctx, r.client.db, `
		UPDATE post SET approved = true, approved_at = time::now()
		WHERE post_id = $post_id
	`, map[string]any{"post_id": id})
	if err != nil {
		return Post{}, fmt.Errorf("approve post: %w", err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return Post{}, ErrPostNotFound
	}
	return (*rows)[0].Result[0].toPost(), nil
}

func (r *SurrealRepository) CountPostsInMonth(ctx context.Context, monthKey string) (int, error) {
	rows, err := surrealdb.Query[[]countRow](ctx, r.client.db, `
		SELECT count() AS count FROM post WHERE month_key = $month_key GROUP ALL
	`, map[string]any{"month_key": monthKey})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return 0, nil
	}
	return (*rows)[0].Result[0].Count, nil
}

// SessionStore implements the conversation memory contract on
// SurrealDB, trimming each session to the configured window on append.
type SessionStore struct {
	client *Client
	window int
}

var _ memory.Store = (*SessionStore)(nil)

func NewSessionStore(client *Client, window int) *SessionStore {
	if window < 1 {
		window = memory.DefaultWindow
	}
	return &SessionStore{client: client, window: window}
}

func (s *SessionStore) Context(ctx context.Context, sessionID string) ([]memory.Message, error) {
	rows, err := surrealdb.Query[[]memory.Message](ctx, s.client.db, `
		SELECT role, content, timestamp FROM session_message
		WHERE session_id = $session_id ORDER BY created ASC
	`, map[string]any{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rows == nil || len(*rows) == 0 {
		return nil, nil
	}
	return (*rows)[0].Result, nil
}

func (s *SessionStore) Append(ctx context.Context, sessionID string, msg memory.Message) error {
	_, err := surrealdb.Query[any](ctx, s.client.db, `
		CREATE session_message CONTENT {
			session_id: $session_id,
			role: $role,
			content: $content,
			timestamp: $timestamp
		};
		DELETE session_message
		WHERE session_id = $session_id
		AND id NOTINSIDE (
			SELECT VALUE id FROM session_message
			WHERE session_id = $session_id
			ORDER BY created DESC LIMIT $window
		);
	`, map[string]any{
		"session_id": sessionID,
		"role":       msg.Role,
		"content":    msg.Content,
		"timestamp":  msg.Timestamp,
		"window":     s.window,
	})
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	_, err := surrealdb.Query[any](ctx, s.client.db, `
		DELETE session_message WHERE session_id = $session_id
	`, map[string]any{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
