// Package content generates short LinkedIn drafts for the founder,
// capped per calendar month, with an approval workflow and publishing
// slot suggestions.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/model"
	"github.com/duhenri9/solo-in-public/internal/store"
)

// DefaultMonthlyLimit caps generated posts per calendar month.
const DefaultMonthlyLimit = 3

// generationSystem frames the model call for post drafts.
const generationSystem = "Gerador de posts do Solo in Public. Seja direto, sem emojis, útil."

const generationMaxTokens = 280

// LimitError signals that the monthly cap is exhausted.
type LimitError struct {
	Allowed int
	Used    int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("monthly limit reached: %d of %d posts used", e.Used, e.Allowed)
}

// Limits reports the current month's generation budget.
type Limits struct {
	AllowedPerMonth int `json:"allowedPerMonth"`
	Used            int `json:"used"`
	Remaining       int `json:"remaining"`
}

// Suggestion is one proposed publishing slot.
type Suggestion struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	Reason string `json:"reason"`
}

// Service generates, approves and schedules posts. The generator may
// be nil; key-less deployments then produce a demo draft seeded from
// the knowledge corpus.
type Service struct {
	repo      store.Repository
	generator model.Generator
	searcher  knowledge.Searcher
	limit     int
	logger    *slog.Logger

	now func() time.Time
}

func NewService(repo store.Repository, generator model.Generator, searcher knowledge.Searcher, limit int, logger *slog.Logger) *Service {
	if limit < 1 {
		limit = DefaultMonthlyLimit
	}
	return &Service{
		repo:      repo,
		generator: generator,
		searcher:  searcher,
		limit:     limit,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate creates one draft for the topic, enforcing the monthly cap.
// It returns the stored post and the remaining budget for the month.
func (s *Service) Generate(ctx context.Context, topic, persona, locale string) (store.Post, int, error) {
	if persona == "" {
		persona = "default"
	}
	if locale == "" {
		locale = "pt"
	}

	mk := store.MonthKey(s.now())
	used, err := s.repo.CountPostsInMonth(ctx, mk)
	if err != nil {
		return store.Post{}, 0, fmt.Errorf("counting posts: %w", err)
	}
	if used >= s.limit {
		return store.Post{}, 0, &LimitError{Allowed: s.limit, Used: used}
	}

	text := s.draft(ctx, topic, persona, locale)
	if text == "" {
		text = "Post gerado com sucesso."
	}

	post := store.Post{
		ID:        uuid.NewString(),
		Content:   text,
		Persona:   persona,
		Locale:    locale,
		CreatedAt: s.now().UTC(),
		MonthKey:  mk,
	}
	if err := s.repo.SavePost(ctx, post); err != nil {
		return store.Post{}, 0, fmt.Errorf("saving post: %w", err)
	}

	remaining := s.limit - used - 1
	if remaining < 0 {
		remaining = 0
	}
	return post, remaining, nil
}

func (s *Service) draft(ctx context.Context, topic, persona, locale string) string {
	subject := topic
	if subject == "" {
		subject = "sua jornada como founder solo"
	}

	if s.generator != nil {
		prompt := fmt.Sprintf(
			"Persona: %s\nIdioma: %s\nGere um post curto e autêntico para LinkedIn sobre: %s\nEm 5-7 linhas, com CTA leve. Sem emojis.",
			persona, locale, subject,
		)
		text, err := s.generator.Generate(ctx, prompt, model.Options{
			Locale:    locale,
			MaxTokens: generationMaxTokens,
			System:    generationSystem,
		})
		if err == nil {
			return strings.TrimSpace(text)
		}
		s.logger.Warn("post generation failed, using demo draft", "error", err)
	}

	query := topic
	if query == "" {
		query = "solo in public"
	}
	snippets := s.searcher.Search(ctx, query, locale, 2)
	lines := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		lines = append(lines, fmt.Sprintf("• %s: %s", snippet.Title, snippet.Content))
	}
	return "Modo demonstração — sem chaves de modelo. Ideias de post baseadas no conhecimento:\n" +
		strings.Join(lines, "\n")
}

// Approve marks a draft as approved. Nothing is ever published without
// this step.
func (s *Service) Approve(ctx context.Context, id string) (store.Post, error) {
	return s.repo.ApprovePost(ctx, id)
}

// Posts lists every stored draft, oldest first.
func (s *Service) Posts(ctx context.Context) ([]store.Post, error) {
	return s.repo.ListPosts(ctx)
}

// Limits reports the month's budget.
func (s *Service) Limits(ctx context.Context) (Limits, error) {
	used, err := s.repo.CountPostsInMonth(ctx, store.MonthKey(s.now()))
	if err != nil {
		return Limits{}, fmt.Errorf("counting posts: %w", err)
	}
	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Limits{AllowedPerMonth: s.limit, Used: used, Remaining: remaining}, nil
}

// Calendar suggests publishing slots for the next two weeks, every
// other day at rotating morning/noon/afternoon hours.
func (s *Service) Calendar() []Suggestion {
	start := s.now()
	suggestions := make([]Suggestion, 0, 7)
	for i := 0; i < 14; i += 2 {
		day := start.AddDate(0, 0, i)
		slot := time.Date(day.Year(), day.Month(), day.Day(), 9+(i%3)*3, 0, 0, 0, day.Location())
		suggestions = append(suggestions, Suggestion{
			Date:   slot.UTC().Format(time.RFC3339),
			Slot:   slot.Format("02/01/2006 15:04"),
			Reason: "Horário sugerido com base em boas práticas de alcance no LinkedIn.",
		})
	}
	return suggestions
}
