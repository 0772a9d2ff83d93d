package semantic

import (
	"context"
	"fmt"
	"sort"
)

// Search embeds queryText and returns its k nearest neighbors from vs,
// re-sorted by (distance, id) so ties break deterministically
// regardless of how the underlying VectorStore ordered them (spec.md
// §4.4: "search(query_text, k) ... results are ordered by ascending
// distance, ties broken by id").
func Search(ctx context.Context, vs VectorStore, embedder Embedder, queryText string, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("semantic: embed query: %w", err)
	}
	results, err := vs.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("semantic: vector search: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}
