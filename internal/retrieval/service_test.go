package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/FINSIGHT/finsight/internal/models"
)

type fakeKeyword struct {
	docs []models.RankedDocument
	err  error
}

func (f *fakeKeyword) Search(string, int) ([]models.RankedDocument, error) {
	return f.docs, f.err
}

type fakeVector struct {
	docs []models.RankedDocument
	err  error
}

func (f *fakeVector) Search(context.Context, string, int) ([]models.RankedDocument, error) {
	return f.docs, f.err
}

type fakeWeb struct {
	docs   []models.RankedDocument
	err    error
	called int
}

func (f *fakeWeb) Search(context.Context, string, []string, bool) ([]models.RankedDocument, error) {
	f.called++
	return f.docs, f.err
}

type fakeCache struct {
	entry *models.ResearchEntry
	err   error
}

func (f *fakeCache) LookupResearch(context.Context, string) (*models.ResearchEntry, error) {
	return f.entry, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func ranked(source string, texts ...string) []models.RankedDocument {
	out := make([]models.RankedDocument, 0, len(texts))
	for i, text := range texts {
		out = append(out, models.RankedDocument{
			Score:  float64(len(texts) - i),
			Text:   text,
			Source: source,
		})
	}
	return out
}

func TestRetrieveCacheShortCircuits(t *testing.T) {
	web := &fakeWeb{docs: ranked("web", "should not appear")}
	cache := &fakeCache{entry: &models.ResearchEntry{Query: "tcs outlook", Answer: "stable"}}
	svc := NewService(&fakeKeyword{}, &fakeVector{}, web, cache, testLogger())

	result := svc.Retrieve(context.Background(), "tcs outlook", nil, true, false)

	if result.Cached == nil || result.Cached.Answer != "stable" {
		t.Fatalf("cached = %+v, want the stored entry", result.Cached)
	}
	if len(result.Documents) != 0 {
		t.Errorf("documents = %v, want none on cache hit", result.Documents)
	}
	if web.called != 0 {
		t.Errorf("web search ran %d times despite cache hit", web.called)
	}
}

func TestRetrieveCacheErrorDegrades(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	keyword := &fakeKeyword{docs: ranked("keyword", "doc one", "doc two", "doc three")}
	svc := NewService(keyword, &fakeVector{}, nil, cache, testLogger())

	result := svc.Retrieve(context.Background(), "tcs results", nil, false, false)
	if len(result.Documents) != 3 {
		t.Errorf("got %d documents, want 3 despite cache error", len(result.Documents))
	}
}

func TestRetrieveSearchFailuresDegradeToEmpty(t *testing.T) {
	keyword := &fakeKeyword{err: errors.New("index corrupt")}
	vector := &fakeVector{err: errors.New("embedder down")}
	svc := NewService(keyword, vector, nil, nil, testLogger())

	result := svc.Retrieve(context.Background(), "anything", nil, false, false)
	if len(result.Documents) != 0 {
		t.Errorf("documents = %v, want none", result.Documents)
	}
}

func TestRetrieveWebFallbackWhenLocalThin(t *testing.T) {
	keyword := &fakeKeyword{docs: ranked("keyword", "only local doc")}
	web := &fakeWeb{docs: ranked("web", "fresh web doc")}
	svc := NewService(keyword, &fakeVector{}, web, nil, testLogger())

	result := svc.Retrieve(context.Background(), "obscure event", nil, false, false)

	if web.called != 1 {
		t.Fatalf("web search ran %d times, want 1", web.called)
	}
	if !result.UsedWeb {
		t.Error("UsedWeb = false, want true")
	}
	if len(result.Documents) != 2 {
		t.Errorf("got %d documents, want local + web", len(result.Documents))
	}
}

func TestRetrieveWebSkippedWhenLocalSufficient(t *testing.T) {
	keyword := &fakeKeyword{docs: ranked("keyword", "one", "two", "three", "four")}
	web := &fakeWeb{docs: ranked("web", "unneeded")}
	svc := NewService(keyword, &fakeVector{}, web, nil, testLogger())

	result := svc.Retrieve(context.Background(), "well covered topic", nil, false, false)

	if web.called != 0 {
		t.Errorf("web search ran %d times, want 0", web.called)
	}
	if result.UsedWeb {
		t.Error("UsedWeb = true, want false")
	}
}

func TestRetrieveWantWebForcesFallback(t *testing.T) {
	keyword := &fakeKeyword{docs: ranked("keyword", "one", "two", "three", "four")}
	web := &fakeWeb{docs: []models.RankedDocument{{Score: 0.8, Text: "breaking story", Source: "web"}}}
	svc := NewService(keyword, &fakeVector{}, web, nil, testLogger())

	result := svc.Retrieve(context.Background(), "latest news", nil, true, false)

	if web.called != 1 {
		t.Fatalf("web search ran %d times, want 1", web.called)
	}
	// Synthetic web scores are small relative to the raw keyword scores
	// here, but must still appear in the merged list.
	found := false
	for _, d := range result.Documents {
		if d.Text == "breaking story" {
			found = true
		}
	}
	if !found {
		t.Error("web document missing from merged results")
	}
}

func TestRetrieveMergeDeduplicatesAgainstLocal(t *testing.T) {
	shared := strings.Repeat("same story ", 25)
	keyword := &fakeKeyword{docs: []models.RankedDocument{{Score: 2, Text: shared + "local tail", Source: "keyword"}}}
	web := &fakeWeb{docs: []models.RankedDocument{
		{Score: 0.8, Text: shared + "web tail", Source: "web"},
		{Score: 0.8, Text: "genuinely new story", Source: "web"},
	}}
	svc := NewService(keyword, &fakeVector{}, web, nil, testLogger())

	result := svc.Retrieve(context.Background(), "same story", nil, true, false)

	texts := make([]string, 0, len(result.Documents))
	for _, d := range result.Documents {
		texts = append(texts, d.Text)
	}
	if len(result.Documents) != 2 {
		t.Fatalf("documents = %v, want 2 after dedup", texts)
	}
	for _, d := range result.Documents {
		if d.Text == shared+"web tail" {
			t.Errorf("web duplicate survived; want the local instance only")
		}
	}
}

func TestRetrieveCapsDocumentCount(t *testing.T) {
	texts := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		texts = append(texts, fmt.Sprintf("local doc %d", i))
	}
	keyword := &fakeKeyword{docs: ranked("keyword", texts...)}
	svc := NewService(keyword, &fakeVector{}, nil, nil, testLogger())

	result := svc.Retrieve(context.Background(), "broad query", nil, false, false)
	if len(result.Documents) != maxDocuments {
		t.Errorf("got %d documents, want cap of %d", len(result.Documents), maxDocuments)
	}
}
