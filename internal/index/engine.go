package index

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/FINSIGHT/finsight/internal/models"
)

// Document is one corpus entry for the keyword index.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Source   string            `json:"source"`
	Symbol   string            `json:"symbol,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// termPattern mirrors the corpus tokenizer: alphanumeric runs with
// internal dots (decimals, dotted tickers) or a trailing percent sign.
var termPattern = regexp.MustCompile(`[a-z0-9]+(?:\.[a-z0-9]+)*%?`)

var digitsOnly = regexp.MustCompile(`^[0-9.%]+$`)

// Tokenize lowers the text and extracts query terms, dropping
// single-character tokens unless they are purely numeric.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := termPattern.FindAllString(lower, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 1 && !digitsOnly.MatchString(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Engine is the BM25-style keyword index over the news corpus. The index
// is fully rebuildable; Build replaces the previous contents.
type Engine struct {
	mu    sync.RWMutex
	index bleve.Index
	path  string
	count int
}

// NewEngine creates an engine. An empty path keeps the index in memory.
func NewEngine(path string) (*Engine, error) {
	e := &Engine{path: path}
	idx, err := e.open()
	if err != nil {
		return nil, err
	}
	e.index = idx
	return e, nil
}

func (e *Engine) open() (bleve.Index, error) {
	m := buildIndexMapping()
	if e.path == "" {
		idx, err := bleve.NewMemOnly(m)
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return idx, nil
	}

	idx, err := bleve.Open(e.path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(e.path, m)
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return idx, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Store = true
	textField.Index = true
	docMapping.AddFieldMappingsAt("text", textField)

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Store = true
	keywordField.Index = true
	docMapping.AddFieldMappingsAt("source", keywordField)
	docMapping.AddFieldMappingsAt("symbol", keywordField)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Build replaces the index contents with the given corpus in one batch.
func (e *Engine) Build(docs []Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fresh, err := func() (bleve.Index, error) {
		if e.path == "" {
			return bleve.NewMemOnly(buildIndexMapping())
		}
		// On-disk rebuilds reuse the existing index; stale entries are
		// overwritten by ID.
		return e.index, nil
	}()
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	batch := fresh.NewBatch()
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("doc-%d", i)
		}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("batch index: %w", err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		return fmt.Errorf("execute batch: %w", err)
	}

	if e.path == "" && fresh != e.index {
		old := e.index
		e.index = fresh
		if old != nil {
			_ = old.Close()
		}
	}
	e.count = len(docs)
	return nil
}

// Count returns the document count at last build.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.count
}

// Stale reports whether the corpus has drifted since the last build.
func (e *Engine) Stale(corpusSize int) bool {
	return corpusSize != e.Count()
}

// Search runs a ranked match query and returns hits with strictly
// positive scores, descending.
func (e *Engine) Search(query string, limit int) ([]models.RankedDocument, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	match := bleve.NewMatchQuery(strings.Join(terms, " "))
	match.SetField("text")

	request := bleve.NewSearchRequest(match)
	request.Fields = []string{"text", "source", "symbol"}
	request.Size = limit

	result, err := e.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	out := make([]models.RankedDocument, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if hit.Score <= 0 {
			continue
		}
		doc := models.RankedDocument{
			Score:  hit.Score,
			Source: "keyword",
			Metadata: map[string]string{
				"id": hit.ID,
			},
		}
		if text, ok := hit.Fields["text"].(string); ok {
			doc.Text = text
		}
		if sym, ok := hit.Fields["symbol"].(string); ok && sym != "" {
			doc.Metadata["symbol"] = sym
		}
		if src, ok := hit.Fields["source"].(string); ok && src != "" {
			doc.Metadata["origin"] = src
		}
		out = append(out, doc)
	}
	return out, nil
}

// Close releases the underlying index.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return nil
	}
	return e.index.Close()
}
