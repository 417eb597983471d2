package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps all records in process memory. It backs local
// development without a database and the unit tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	usage     []UsageRecord
	handovers []HandoverRecord
	leads     []Lead
	posts     []Post
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveUsage(_ context.Context, rec UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	r.usage = append(r.usage, rec)
	return nil
}

func (r *MemoryRepository) SaveHandover(_ context.Context, rec HandoverRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	r.handovers = append(r.handovers, rec)
	return nil
}

func (r *MemoryRepository) Dashboard(_ context.Context) (DashboardSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := DashboardSummary{
		TotalMessages: len(r.usage),
		LeadsCount:    len(r.leads),
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	var totalResponse float64
	for _, rec := range r.usage {
		totalResponse += rec.ResponseTime
		if rec.HandoverTriggered {
			summary.Handovers++
		}
		if rec.RecordedAt.After(cutoff) {
			summary.Messages24h++
		}
	}
	if summary.TotalMessages > 0 {
		summary.AvgResponse = totalResponse / float64(summary.TotalMessages)
	}
	return summary, nil
}

func (r *MemoryRepository) SaveLead(_ context.Context, lead Lead) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	lead.Status = "synced"
	if lead.SubmittedAt.IsZero() {
		lead.SubmittedAt = time.Now().UTC()
	}
	r.leads = append(r.leads, lead)
	return lead, nil
}

func (r *MemoryRepository) SavePost(_ context.Context, post Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, post)
	return nil
}

func (r *MemoryRepository) ListPosts(_ context.Context) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Post, len(r.posts))
	copy(out, r.posts)
	return out, nil
}

func (r *MemoryRepository) ApprovePost(_ context.Context, id string) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.posts {
		if r.posts[i].ID == id {
			now := time.Now().UTC()
			r.posts[i].Approved = true
			r.posts[i].ApprovedAt = &now
			return r.posts[i], nil
		}
	}
	return Post{}, ErrPostNotFound
}

func (r *MemoryRepository) CountPostsInMonth(_ context.Context, monthKey string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, post := range r.posts {
		if post.MonthKey == monthKey {
			count++
		}
	}
	return count, nil
}
