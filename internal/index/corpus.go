package index

import "sync"

// Corpus is the append-only document set behind the keyword index.
// Duplicate IDs are ignored so ingestion retries stay idempotent.
type Corpus struct {
	mu   sync.RWMutex
	ids  map[string]bool
	docs []Document
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{ids: make(map[string]bool)}
}

// Add appends documents with unseen IDs and returns how many were new.
func (c *Corpus) Add(docs ...Document) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, doc := range docs {
		if doc.ID != "" && c.ids[doc.ID] {
			continue
		}
		if doc.ID != "" {
			c.ids[doc.ID] = true
		}
		c.docs = append(c.docs, doc)
		added++
	}
	return added
}

// Snapshot returns a copy of the current document set.
func (c *Corpus) Snapshot() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Size returns the current document count.
func (c *Corpus) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
