package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
)

// SemanticIndex scores corpus entries by cosine similarity against an
// embedded query. The corpus vectors are computed once at start; any
// embedding failure at query time falls back to the keyword search.
type SemanticIndex struct {
	corpus   *Corpus
	embedder embeddings.Embedder
	vectors  [][]float32
	logger   *slog.Logger
}

var _ Searcher = (*SemanticIndex)(nil)

// NewSemanticIndex embeds every corpus entry up front. Index position
// i holds the vector for corpus entry i.
func NewSemanticIndex(ctx context.Context, corpus *Corpus, embedder embeddings.Embedder, logger *slog.Logger) (*SemanticIndex, error) {
	texts := make([]string, 0, corpus.Len())
	for _, entry := range corpus.Entries() {
		texts = append(texts, entry.Title+"\n"+entry.Content)
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed knowledge corpus: %w", err)
	}
	if len(vectors) != corpus.Len() {
		return nil, fmt.Errorf("embed knowledge corpus: got %d vectors for %d entries", len(vectors), corpus.Len())
	}

	return &SemanticIndex{
		corpus:   corpus,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}, nil
}

// Search embeds the query and returns the closest entries. The locale
// is only used by the keyword fallback; similarity ranking itself is
// language-agnostic.
func (s *SemanticIndex) Search(ctx context.Context, query, locale string, limit int) []Snippet {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		s.logger.Warn("embedding search failed, falling back to keyword search", "error", err)
		return s.corpus.Search(ctx, query, locale, limit)
	}

	entries := s.corpus.Entries()
	results := make([]Snippet, 0, len(entries))
	for i, entry := range entries {
		results = append(results, Snippet{
			ID:       entry.ID,
			Title:    entry.Title,
			Content:  entry.Content,
			Category: entry.Category,
			Score:    cosineSimilarity(queryVector, s.vectors[i]),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
