package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
)

// OfflineName identifies the deterministic demo model.
const OfflineName = "default"

// OfflineModel answers without any external provider, surfacing the
// closest knowledge snippets so the demo stays useful. It is the last
// routing resort when no credentials are configured.
type OfflineModel struct {
	searcher knowledge.Searcher
}

var _ Generator = (*OfflineModel)(nil)

// NewOffline creates the demo model. searcher may be nil, in which
// case no snippets are included.
func NewOffline(searcher knowledge.Searcher) *OfflineModel {
	return &OfflineModel{searcher: searcher}
}

func (m *OfflineModel) Name() string {
	return OfflineName
}

func (m *OfflineModel) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	locale := opts.Locale
	if locale == "" {
		locale = "pt"
	}

	var snippets []knowledge.Snippet
	if m.searcher != nil {
		snippets = m.searcher.Search(ctx, prompt, locale, knowledge.DefaultLimit)
	}

	if len(snippets) == 0 {
		return "Modo demonstração — sem chaves de modelo configuradas. Compartilhe mais detalhes ou configure as chaves do modelo para respostas completas.", nil
	}

	bullets := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		bullets = append(bullets, fmt.Sprintf("• (%s) %s: %s", snippet.Category, snippet.Title, snippet.Content))
	}

	return fmt.Sprintf("Modo demonstração — sem chaves de modelo configuradas. Com base no nosso conhecimento:\n%s\n\nSe quiser respostas reais, configure OPENAI_API_KEY ou ANTHROPIC_API_KEY no backend.",
		strings.Join(bullets, "\n")), nil
}
