package fusion

import (
	"sort"

	"github.com/FINSIGHT/finsight/internal/models"
)

// DefaultK dampens the influence of exact rank position for lower ranks.
// Standard practice tests values between 10 and 100.
const DefaultK = 60

// Weights carries the per-source multipliers for one fusion call.
type Weights struct {
	Keyword float64
	Vector  float64
}

// ForQuery picks the weight policy: symbol-bearing queries benefit more
// from exact lexical matching, symbol-free queries from meaning matching.
func ForQuery(hasSymbols bool) Weights {
	if hasSymbols {
		return Weights{Keyword: 0.6, Vector: 0.4}
	}
	return Weights{Keyword: 0.3, Vector: 0.7}
}

// Fuse merges two ranked lists with reciprocal rank fusion. For every
// logical document (identified by its dedup key) the score is the sum of
// weight/(k+rank) over the lists it appears in, rank being 1-based. The
// first-seen instance supplies the surviving text and metadata.
func Fuse(keyword, vector []models.RankedDocument, k float64, w Weights) []models.RankedDocument {
	if k <= 0 {
		k = DefaultK
	}

	type entry struct {
		doc   models.RankedDocument
		score float64
		order int
	}

	merged := make(map[string]*entry)
	order := 0

	accumulate := func(list []models.RankedDocument, weight float64) {
		for i, doc := range list {
			key := doc.DedupKey()
			contribution := weight / (k + float64(i+1))
			if e, ok := merged[key]; ok {
				e.score += contribution
				continue
			}
			merged[key] = &entry{doc: doc, score: contribution, order: order}
			order++
		}
	}

	accumulate(keyword, w.Keyword)
	accumulate(vector, w.Vector)

	entries := make([]*entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}

	// Stable by first-seen order on equal scores.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].order < entries[j].order
	})

	out := make([]models.RankedDocument, 0, len(entries))
	for _, e := range entries {
		doc := e.doc
		doc.Score = e.score
		out = append(out, doc)
	}
	return out
}
