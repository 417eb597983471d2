// Package knowledge provides retrieval over the static Solo in Public
// knowledge corpus: a local keyword search that is always available, an
// optional embedding-based index, and a client for the remote search
// endpoint. All strategies degrade to the keyword search on failure.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	_ "embed"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// DefaultLimit is the number of snippets returned when the caller does
// not ask for a specific amount.
const DefaultLimit = 3

// Entry is one read-only corpus item, loaded at process start and
// never mutated at runtime.
type Entry struct {
	ID       string   `yaml:"id" json:"id"`
	Category string   `yaml:"category" json:"category"`
	Language string   `yaml:"language" json:"language"`
	Title    string   `yaml:"title" json:"title"`
	Content  string   `yaml:"content" json:"content"`
	Tags     []string `yaml:"tags" json:"tags"`
}

// Snippet is a scored retrieval result. Scores are only comparable
// within a single retrieval call: the keyword search counts token
// hits, the semantic index yields cosine similarity.
type Snippet struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Searcher retrieves snippets relevant to a query. Implementations
// never surface transport errors; they fall back and return whatever
// they can.
type Searcher interface {
	Search(ctx context.Context, query, locale string, limit int) []Snippet
}

//go:embed corpus.yaml
var embeddedCorpus []byte

// Corpus is the in-memory knowledge base with keyword retrieval.
type Corpus struct {
	entries []Entry
}

var _ Searcher = (*Corpus)(nil)

// New creates a corpus from explicit entries, preserving their order.
func New(entries []Entry) *Corpus {
	return &Corpus{entries: entries}
}

// Default loads the corpus embedded in the binary.
func Default() (*Corpus, error) {
	return parse(embeddedCorpus)
}

// LoadFile loads a corpus from a YAML file, for deployments that ship
// their own knowledge base.
func LoadFile(path string) (*Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge corpus: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Corpus, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse knowledge corpus: %w", err)
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("knowledge corpus is empty")
	}
	return &Corpus{entries: doc.Entries}, nil
}

// Entries returns the corpus items in their source order.
func (c *Corpus) Entries() []Entry {
	return c.entries
}

// Len returns the number of corpus items.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Search runs the keyword search: the query is tokenized on
// whitespace after normalization, entries are filtered by language,
// and each entry scores one point per token found in its normalized
// title+content+tags, plus one when any entry tag appears inside the
// query. Zero-score entries are dropped; ties keep corpus order.
func (c *Corpus) Search(_ context.Context, query, locale string, limit int) []Snippet {
	normalizedQuery := Normalize(query)
	keywords := strings.Fields(normalizedQuery)
	if len(keywords) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var results []Snippet
	for _, entry := range c.entries {
		if !languageMatches(entry.Language, locale) {
			continue
		}

		haystack := Normalize(entry.Title + " " + entry.Content + " " + strings.Join(entry.Tags, " "))
		score := 0
		for _, keyword := range keywords {
			if strings.Contains(haystack, keyword) {
				score++
			}
		}
		for _, tag := range entry.Tags {
			if strings.Contains(normalizedQuery, Normalize(tag)) {
				score++
				break
			}
		}
		if score == 0 {
			continue
		}

		results = append(results, Snippet{
			ID:       entry.ID,
			Title:    entry.Title,
			Content:  entry.Content,
			Category: entry.Category,
			Score:    float64(score),
		})
	}

	// Stable: equal scores keep corpus order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func languageMatches(entryLanguage, locale string) bool {
	return entryLanguage == locale || (entryLanguage == "pt" && strings.HasPrefix(locale, "pt"))
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize decomposes text (NFD), strips diacritics and lowercases
// it, so "preço" and "preco" compare equal.
func Normalize(text string) string {
	stripped, _, err := transform.String(diacriticStripper, text)
	if err != nil {
		stripped = text
	}
	return strings.ToLower(stripped)
}
