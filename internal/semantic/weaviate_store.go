package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/suchanek/codekg/internal/primitives"
)

// weaviateBatchSize mirrors jinterlante1206-AleutianLocal's seeder
// batch size for Weaviate object imports.
const weaviateBatchSize = 100

// weaviateNamespace seeds deterministic per-object UUIDs so that
// re-indexing the same node id always produces the same Weaviate
// object, making Upsert idempotent (spec.md §4.4 requires building
// twice to converge to the same index contents).
var weaviateNamespace = uuid.MustParse("8f14e45f-ceea-467e-adc9-15476f4f0f9d")

// WeaviateVectorStore is an optional VectorStore backend for
// deployments running a standalone Weaviate instance instead of the
// default embedded SQLite store. Grounded on
// jinterlante1206-AleutianLocal's services/code_buddy/seeder package
// (schema creation, batched object upsert, GraphQL search).
type WeaviateVectorStore struct {
	client    *weaviate.Client
	className string
	dim       int
	dimKnown  bool
}

func NewWeaviateVectorStore(scheme, host, className string) *WeaviateVectorStore {
	cfg := weaviate.Config{Scheme: scheme, Host: host}
	return &WeaviateVectorStore{
		client:    weaviate.New(cfg),
		className: className,
	}
}

func (vs *WeaviateVectorStore) Dimension() (int, bool) { return vs.dim, vs.dimKnown }

func (vs *WeaviateVectorStore) Wipe(ctx context.Context, dim int) error {
	_ = vs.client.Schema().ClassDeleter().WithClassName(vs.className).Do(ctx)

	indexFilterable := true
	class := &models.Class{
		Class:      vs.className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "codekgId", DataType: []string{"text"}, IndexFilterable: &indexFilterable, Tokenization: "field"},
			{Name: "kind", DataType: []string{"text"}, IndexFilterable: &indexFilterable, Tokenization: "field"},
			{Name: "name", DataType: []string{"text"}, Tokenization: "word"},
			{Name: "qualname", DataType: []string{"text"}, Tokenization: "word"},
			{Name: "modulePath", DataType: []string{"text"}, IndexFilterable: &indexFilterable, Tokenization: "field"},
		},
	}
	if err := vs.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("semantic: create weaviate class %s: %w", vs.className, err)
	}
	vs.dim = dim
	vs.dimKnown = true
	return nil
}

func (vs *WeaviateVectorStore) Upsert(ctx context.Context, rows []Row) error {
	for i := 0; i < len(rows); i += weaviateBatchSize {
		end := i + weaviateBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		objects := make([]*models.Object, len(batch))
		for j, r := range batch {
			objects[j] = &models.Object{
				Class: vs.className,
				ID:    objectIDFor(r.ID),
				Properties: map[string]interface{}{
					"codekgId":   r.ID,
					"kind":       string(r.Kind),
					"name":       r.Name,
					"qualname":   r.QualName,
					"modulePath": r.ModulePath,
				},
				Vector: r.Vector,
			}
		}
		result, err := vs.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return fmt.Errorf("semantic: weaviate batch upsert: %w", err)
		}
		for _, obj := range result {
			if obj.Result != nil && obj.Result.Errors != nil {
				return fmt.Errorf("semantic: weaviate object error: %+v", obj.Result.Errors)
			}
		}
	}
	return nil
}

func objectIDFor(nodeID string) string {
	return uuid.NewSHA1(weaviateNamespace, []byte(nodeID)).String()
}

func (vs *WeaviateVectorStore) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	fields := []graphql.Field{
		{Name: "codekgId"},
		{Name: "kind"},
		{Name: "name"},
		{Name: "qualname"},
		{Name: "modulePath"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	nearVector := vs.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := vs.client.GraphQL().Get().
		WithClassName(vs.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("semantic: weaviate search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("semantic: weaviate search error: %s", result.Errors[0].Message)
	}
	return parseWeaviateResults(result.Data, vs.className)
}

func parseWeaviateResults(data map[string]interface{}, className string) ([]SearchResult, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	objects, ok := get[className].([]interface{})
	if !ok {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(objects))
	for rank, raw := range objects {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		rec := Record{
			ID:         stringField(m, "codekgId"),
			Kind:       primitives.Kind(stringField(m, "kind")),
			Name:       stringField(m, "name"),
			QualName:   stringField(m, "qualname"),
			ModulePath: stringField(m, "modulePath"),
		}
		var distance float64
		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				distance = d
			}
		}
		results = append(results, SearchResult{Record: rec, Distance: distance, Rank: rank})
	}
	return results, nil
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
