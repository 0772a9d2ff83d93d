// Package semantic implements the node-embedding index described in
// spec.md §4.4: a stable embedding-text format, a build pipeline that
// batches eligible nodes through an injected Embedder, and a
// k-nearest-neighbor search over an injected VectorStore. Neither
// interface nor any concrete node shape existed in the teacher, which
// has no embedding concern — grounded instead on
// jinterlante1206-AleutianLocal's embedding/vector-store stack.
package semantic

import (
	"context"

	"github.com/suchanek/codekg/internal/primitives"
)

// defaultDimension is the fallback vector width spec.md §4.4 names for
// an Embedder that cannot report its own dimension.
const defaultDimension = 384

// Record identifies one embedded node, independent of its vector.
type Record struct {
	ID         string
	Kind       primitives.Kind
	Name       string
	QualName   string
	ModulePath string
}

// Row is one vector-store row: a Record plus its embedding.
type Row struct {
	Record
	Vector []float32
}

// SearchResult is one k-NN hit (spec.md §4.4: "search(query_text, k) ...
// returns k seed records (id, kind, name, qualname, module_path,
// distance, rank)").
type SearchResult struct {
	Record
	Distance float64
	Rank     int
}

// Embedder turns text into vectors (spec.md §4.4: "embed_texts(list of
// strings) → list of vectors", optional "embed_query"). Implementations
// must be pure with respect to their input text within a run: identical
// text yields identical vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorStore persists embedded rows keyed by node id and answers k-NN
// queries. Wipe drops and recreates the store at the given dimension
// (spec.md §4.4: "if wipe is set the table is dropped and recreated
// with the current vector dimension").
type VectorStore interface {
	Upsert(ctx context.Context, rows []Row) error
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)
	Dimension() (dim int, known bool)
	Wipe(ctx context.Context, dim int) error
}
