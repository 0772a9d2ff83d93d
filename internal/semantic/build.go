package semantic

import (
	"context"
	"fmt"

	"github.com/suchanek/codekg/internal/primitives"
	"github.com/suchanek/codekg/internal/store"
)

// BatchSize bounds how many texts Build ever requests embeddings for
// in a single Embedder call (spec.md §4.4: "requests embeddings in
// fixed-size batches").
const BatchSize = 64

// BuildResult reports what Build did, feeding orchestrator.BuildStats.
type BuildResult struct {
	IndexedRows int
	Dimension   int
}

// Build enumerates eligible nodes from st in id order, embeds them in
// fixed-size batches, and upserts the results into vs, keyed by node
// id (spec.md §4.4: "build(store, wipe)"). If wipe is set, vs is
// dropped and recreated at the embedder's reported dimension (or the
// documented 384 fallback) before anything is written.
func Build(ctx context.Context, st *store.Store, vs VectorStore, embedder Embedder, wipe bool) (BuildResult, error) {
	dim := embedder.Dimension()
	if dim <= 0 {
		dim = defaultDimension
	}
	if wipe {
		if err := vs.Wipe(ctx, dim); err != nil {
			return BuildResult{}, fmt.Errorf("semantic: build wipe: %w", err)
		}
	}

	nodes, err := st.QueryNodes([]primitives.Kind{
		primitives.KindModule, primitives.KindClass, primitives.KindFunction, primitives.KindMethod,
	}, "")
	if err != nil {
		return BuildResult{}, fmt.Errorf("semantic: build query nodes: %w", err)
	}

	indexed := 0
	for i := 0; i < len(nodes); i += BatchSize {
		end := i + BatchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		batch := nodes[i:end]

		texts := make([]string, len(batch))
		for j, n := range batch {
			texts[j] = BuildText(n)
		}
		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return BuildResult{}, fmt.Errorf("semantic: embed batch at offset %d: %w", i, err)
		}
		if len(vectors) != len(batch) {
			return BuildResult{}, fmt.Errorf("semantic: embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		rows := make([]Row, len(batch))
		for j, n := range batch {
			rows[j] = Row{
				Record: Record{ID: n.ID, Kind: n.Kind, Name: n.Name, QualName: n.QualName, ModulePath: n.ModulePath},
				Vector: vectors[j],
			}
		}
		if err := vs.Upsert(ctx, rows); err != nil {
			return BuildResult{}, fmt.Errorf("semantic: upsert batch at offset %d: %w", i, err)
		}
		indexed += len(rows)
	}

	return BuildResult{IndexedRows: indexed, Dimension: dim}, nil
}
