package fusion

import (
	"fmt"
	"strings"
	"testing"

	"github.com/FINSIGHT/finsight/internal/models"
)

func docs(texts ...string) []models.RankedDocument {
	out := make([]models.RankedDocument, 0, len(texts))
	for i, text := range texts {
		out = append(out, models.RankedDocument{
			Score:  float64(len(texts) - i),
			Text:   text,
			Source: "keyword",
		})
	}
	return out
}

func textsOf(list []models.RankedDocument) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Text)
	}
	return out
}

func TestFuseIdempotence(t *testing.T) {
	// Fusing a list against itself only rescales scores; relative order
	// must not change.
	list := docs("alpha earnings beat", "beta guidance cut", "gamma dividend declared")

	fused := Fuse(list, list, DefaultK, Weights{Keyword: 0.5, Vector: 0.5})

	if len(fused) != len(list) {
		t.Fatalf("fused length = %d, want %d", len(fused), len(list))
	}
	for i := range list {
		if fused[i].Text != list[i].Text {
			t.Errorf("position %d: got %q, want %q", i, fused[i].Text, list[i].Text)
		}
	}
}

func TestFusePreservesPerSourceOrder(t *testing.T) {
	// Monotonic-rank preservation: fusion never reverses the relative
	// order of two documents from the same source list.
	keyword := docs("k one", "k two", "k three", "k four")
	vector := docs("v one", "v two", "v three")

	fused := Fuse(keyword, vector, DefaultK, ForQuery(true))

	position := make(map[string]int)
	for i, d := range fused {
		position[d.Text] = i
	}

	for _, source := range [][]models.RankedDocument{keyword, vector} {
		for i := 0; i < len(source)-1; i++ {
			if position[source[i].Text] > position[source[i+1].Text] {
				t.Errorf("fusion reversed %q and %q", source[i].Text, source[i+1].Text)
			}
		}
	}
}

func TestFuseNonOverlappingEqualsScoreSortedConcatenation(t *testing.T) {
	keyword := docs("k one", "k two")
	vector := docs("v one", "v two")

	w := Weights{Keyword: 0.5, Vector: 0.5}
	fused := Fuse(keyword, vector, DefaultK, w)

	// Equal weights and equal ranks pair up; ties resolve to first-seen
	// (keyword side first).
	want := []string{"k one", "v one", "k two", "v two"}
	got := textsOf(fused)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("fused order = %v, want %v", got, want)
	}
}

func TestFuseRewardsDocumentsInBothLists(t *testing.T) {
	shared := "shared doc about quarterly results"
	keyword := docs(shared, "keyword only doc")
	vector := docs("vector only doc", shared)

	fused := Fuse(keyword, vector, DefaultK, Weights{Keyword: 0.5, Vector: 0.5})

	if fused[0].Text != shared {
		t.Fatalf("top doc = %q, want the shared doc", fused[0].Text)
	}
	counts := 0
	for _, d := range fused {
		if d.Text == shared {
			counts++
		}
	}
	if counts != 1 {
		t.Errorf("shared doc appears %d times, want 1", counts)
	}
}

func TestFuseDeduplicatesByPrefix(t *testing.T) {
	prefix := strings.Repeat("x", 200)
	a := models.RankedDocument{Text: prefix + " long tail A", Source: "keyword"}
	b := models.RankedDocument{Text: strings.ToUpper(prefix) + " long tail B", Source: "vector"}

	fused := Fuse([]models.RankedDocument{a}, []models.RankedDocument{b}, DefaultK, Weights{Keyword: 0.5, Vector: 0.5})

	if len(fused) != 1 {
		t.Fatalf("fused length = %d, want 1 after prefix dedup", len(fused))
	}
	if fused[0].Text != a.Text {
		t.Errorf("surviving text = %q, want the first-seen instance", fused[0].Text)
	}

	// Score must be the sum of both contributions.
	want := 0.5/(DefaultK+1) + 0.5/(DefaultK+1)
	if diff := fused[0].Score - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("score = %v, want %v", fused[0].Score, want)
	}
}

func TestForQueryWeightPolicy(t *testing.T) {
	w := ForQuery(true)
	if w.Keyword != 0.6 || w.Vector != 0.4 {
		t.Errorf("symbol query weights = %+v, want 0.6/0.4", w)
	}

	w = ForQuery(false)
	if w.Keyword != 0.3 || w.Vector != 0.7 {
		t.Errorf("symbol-free query weights = %+v, want 0.3/0.7", w)
	}
}

func TestFuseEmptyInputs(t *testing.T) {
	if got := Fuse(nil, nil, DefaultK, ForQuery(false)); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}

	only := docs("solo doc")
	fused := Fuse(only, nil, DefaultK, ForQuery(true))
	if len(fused) != 1 || fused[0].Text != "solo doc" {
		t.Errorf("single-list fusion = %v", fused)
	}
}
