package vector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	wvmodels "github.com/weaviate/weaviate/entities/models"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

const defaultClassName = "ResearchDocument"

// WeaviateStore is the remote vector backend for deployments where the
// corpus outgrows the in-memory store.
type WeaviateStore struct {
	client *weaviate.Client
	class  string
}

// NewWeaviateStore connects to a Weaviate instance at host using the
// given scheme ("http" or "https").
func NewWeaviateStore(host, scheme string) (*WeaviateStore, error) {
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("connect weaviate: %w", err)
	}
	return &WeaviateStore{client: client, class: defaultClassName}, nil
}

// Upsert batches the documents in. Object IDs are derived
// deterministically from the document IDs so re-ingesting the same
// corpus overwrites in place instead of duplicating.
func (s *WeaviateStore) Upsert(ctx context.Context, docs []StoredDoc) error {
	if len(docs) == 0 {
		return nil
	}

	objects := make([]*wvmodels.Object, 0, len(docs))
	for _, d := range docs {
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", d.ID, err)
		}
		objects = append(objects, &wvmodels.Object{
			Class: s.class,
			ID:    strfmt.UUID(uuid.NewMD5(uuid.NameSpaceOID, []byte(d.ID)).String()),
			Properties: map[string]interface{}{
				"text": d.Text,
				"meta": string(meta),
			},
			Vector: d.Vector,
		})
	}

	if _, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx); err != nil {
		return fmt.Errorf("batch upsert: %w", err)
	}
	return nil
}

// Search runs a nearVector query and returns the top-k hits with their
// certainty as similarity.
func (s *WeaviateStore) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if k <= 0 {
		k = 5
	}

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "meta"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}
	near := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	resp, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithNearVector(near).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("near vector query: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("near vector query: %s", resp.Errors[0].Message)
	}

	return parseHits(resp.Data, s.class)
}

func parseHits(data map[string]wvmodels.JSONObject, class string) ([]Hit, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	rows, ok := get[class].([]interface{})
	if !ok {
		return nil, nil
	}

	hits := make([]Hit, 0, len(rows))
	for _, row := range rows {
		obj, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		hit := Hit{}
		if text, ok := obj["text"].(string); ok {
			hit.Text = text
		}
		if raw, ok := obj["meta"].(string); ok && raw != "" {
			var meta map[string]string
			if err := json.Unmarshal([]byte(raw), &meta); err == nil {
				hit.Metadata = meta
			}
		}
		if add, ok := obj["_additional"].(map[string]interface{}); ok {
			if certainty, ok := add["certainty"].(float64); ok {
				hit.Similarity = certainty
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
