package knowledge

import (
	"context"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{ID: "a", Category: "product", Language: "en", Title: "alpha shipping", Content: "ship updates weekly", Tags: []string{"shipping"}},
		{ID: "b", Category: "product", Language: "en", Title: "alpha billing", Content: "billing runs monthly", Tags: []string{"billing"}},
		{ID: "c", Category: "support", Language: "en", Title: "book a call", Content: "schedule time with the team", Tags: []string{"demo"}},
		{ID: "d", Category: "preços", Language: "pt", Title: "Plano mensal", Content: "O plano custa US$ 197 por mês", Tags: []string{"preço"}},
	}
}

func TestSearchBlankQuery(t *testing.T) {
	corpus := New(testEntries())

	for _, query := range []string{"", "   ", "\t\n "} {
		if got := corpus.Search(context.Background(), query, "en", 3); len(got) != 0 {
			t.Errorf("Search(%q) returned %d snippets, want 0", query, len(got))
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	corpus := New(testEntries())

	got := corpus.Search(context.Background(), "zzz qqq", "en", 3)
	if len(got) != 0 {
		t.Errorf("got %d snippets for unmatched query, want 0", len(got))
	}
}

func TestSearchStableTieOrder(t *testing.T) {
	corpus := New(testEntries())

	got := corpus.Search(context.Background(), "alpha", "en", 3)
	if len(got) != 2 {
		t.Fatalf("got %d snippets, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("tie order = [%s %s], want corpus order [a b]", got[0].ID, got[1].ID)
	}
	if got[0].Score != got[1].Score {
		t.Errorf("expected equal scores, got %v and %v", got[0].Score, got[1].Score)
	}
}

func TestSearchTagBoost(t *testing.T) {
	corpus := New(testEntries())

	got := corpus.Search(context.Background(), "can I book a demo call", "en", 3)
	if len(got) == 0 {
		t.Fatal("expected results")
	}
	if got[0].ID != "c" {
		t.Errorf("top result = %s, want c (tag boost)", got[0].ID)
	}
	// "book" + "a" + "call" + "demo" token hits plus the tag boost.
	if got[0].Score < 2 {
		t.Errorf("boosted score = %v, want >= 2", got[0].Score)
	}
}

func TestSearchLanguageFilter(t *testing.T) {
	corpus := New(testEntries())
	ctx := context.Background()

	// pt entries answer pt-BR locales.
	got := corpus.Search(ctx, "plano", "pt-BR", 3)
	if len(got) != 1 || got[0].ID != "d" {
		t.Fatalf("pt-BR search = %v, want [d]", got)
	}

	// en entries do not.
	got = corpus.Search(ctx, "alpha", "pt-BR", 3)
	if len(got) != 0 {
		t.Errorf("en entries leaked into pt-BR search: %v", got)
	}
}

func TestSearchDiacriticInsensitive(t *testing.T) {
	corpus := New(testEntries())

	got := corpus.Search(context.Background(), "preco do plano", "pt", 3)
	if len(got) != 1 || got[0].ID != "d" {
		t.Fatalf("got %v, want entry d via diacritic-stripped match", got)
	}
}

func TestSearchLimit(t *testing.T) {
	entries := []Entry{
		{ID: "1", Language: "en", Title: "go tips", Content: "go"},
		{ID: "2", Language: "en", Title: "go tricks", Content: "go"},
		{ID: "3", Language: "en", Title: "go notes", Content: "go"},
		{ID: "4", Language: "en", Title: "go ideas", Content: "go"},
	}
	corpus := New(entries)

	got := corpus.Search(context.Background(), "go", "en", 2)
	if len(got) != 2 {
		t.Fatalf("got %d snippets, want 2", len(got))
	}

	// Zero limit falls back to the default.
	got = corpus.Search(context.Background(), "go", "en", 0)
	if len(got) != DefaultLimit {
		t.Fatalf("got %d snippets with zero limit, want %d", len(got), DefaultLimit)
	}
}

func TestDefaultCorpus(t *testing.T) {
	corpus, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if corpus.Len() == 0 {
		t.Fatal("embedded corpus is empty")
	}

	got := corpus.Search(context.Background(), "qual o preço do plano", "pt", 3)
	if len(got) == 0 {
		t.Fatal("expected pricing entry for pt pricing query")
	}
	if got[0].ID != "kb-plano-pt" {
		t.Errorf("top result = %s, want kb-plano-pt", got[0].ID)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Preço", "preco"},
		{"DEMONSTRAÇÃO", "demonstracao"},
		{"already plain", "already plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
