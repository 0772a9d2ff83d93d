// Package orchestrator composes internal/extractor, internal/store,
// and internal/semantic into the build/query/pack API spec.md §4.5
// describes. Grounded on the teacher's internal/tools package (the
// MCP tool handlers it wraps around its own store/search/snippet
// primitives), adapted here into a protocol-free programmatic API
// with its own state machine and Prometheus instrumentation.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/suchanek/codekg/internal/extractor"
	"github.com/suchanek/codekg/internal/primitives"
	"github.com/suchanek/codekg/internal/semantic"
	"github.com/suchanek/codekg/internal/store"
)

// Orchestrator owns one repository's open store and index handles for
// its lifetime (spec.md §9, "Global state. The core has none ...the
// orchestrator owns its open handles").
type Orchestrator struct {
	cfg      Config
	embedder semantic.Embedder
	vstore   semantic.VectorStore
	metrics  *metrics

	mu    sync.RWMutex
	state State
	st    *store.Store
}

// New constructs an Orchestrator in state Fresh. embedder and vstore
// are injected so callers can substitute semantic.NewFakeEmbedder and
// a semantic.SQLiteVectorStore under a temporary directory in tests
// without network access.
func New(cfg Config, embedder semantic.Embedder, vstore semantic.VectorStore) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg.withDefaults(),
		embedder: embedder,
		vstore:   vstore,
		metrics:  defaultMetrics,
		state:    StateFresh,
	}
}

func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Close releases the orchestrator's open store handle, if any.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st == nil {
		return nil
	}
	err := o.st.Close()
	o.st = nil
	return err
}

func (o *Orchestrator) ensureStore() (*store.Store, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st != nil {
		return o.st, nil
	}
	st, err := store.Open(o.cfg.DBPath)
	if err != nil {
		return nil, wrapStoreError("open store", err)
	}
	o.st = st
	if o.state < StateHasStore {
		o.state = StateHasStore
	}
	return st, nil
}

// Build runs the full pipeline: extraction, store write, index build
// (spec.md §4.5.1).
func (o *Orchestrator) Build(ctx context.Context, wipe bool) (stats BuildStats, err error) {
	start := time.Now()
	defer func() { o.metrics.observe("build", start, err) }()

	if _, err = o.BuildGraph(ctx, wipe); err != nil {
		return BuildStats{}, err
	}
	return o.BuildIndex(ctx, wipe)
}

// BuildGraph runs extraction and the store write only (steps 1-2 of
// spec.md §4.5.1).
func (o *Orchestrator) BuildGraph(ctx context.Context, wipe bool) (stats BuildStats, err error) {
	start := time.Now()
	defer func() { o.metrics.observe("build_graph", start, err) }()

	result, err := extractor.Extract(ctx, o.cfg.RepoRoot)
	if err != nil {
		return BuildStats{}, wrapStoreError("extract", err)
	}

	st, err := o.ensureStore()
	if err != nil {
		return BuildStats{}, err
	}
	if err = st.Write(result.Nodes, result.Edges, wipe); err != nil {
		return BuildStats{}, wrapStoreError("write", err)
	}

	storeStats, err := st.Stats()
	if err != nil {
		return BuildStats{}, wrapStoreError("stats", err)
	}
	return BuildStats{
		RepoRoot:   o.cfg.RepoRoot,
		DBPath:     o.cfg.DBPath,
		TotalNodes: storeStats.TotalNodes,
		TotalEdges: storeStats.TotalEdges,
		NodeCounts: statsFromStore(storeStats),
		EdgeCounts: edgeStatsFromStore(storeStats),
	}, nil
}

// BuildIndex runs the semantic index build only (step 3 of spec.md
// §4.5.1); requires a populated store.
func (o *Orchestrator) BuildIndex(ctx context.Context, wipe bool) (stats BuildStats, err error) {
	start := time.Now()
	defer func() { o.metrics.observe("build_index", start, err) }()

	st, err := o.ensureStore()
	if err != nil {
		return BuildStats{}, err
	}

	result, err := semantic.Build(ctx, st, o.vstore, o.embedder, wipe)
	if err != nil {
		return BuildStats{}, wrapIndexError("build index", err)
	}

	o.mu.Lock()
	o.state = StateHasIndex
	o.mu.Unlock()

	storeStats, err := st.Stats()
	if err != nil {
		return BuildStats{}, wrapStoreError("stats", err)
	}
	return BuildStats{
		RepoRoot:     o.cfg.RepoRoot,
		DBPath:       o.cfg.DBPath,
		TotalNodes:   storeStats.TotalNodes,
		TotalEdges:   storeStats.TotalEdges,
		NodeCounts:   statsFromStore(storeStats),
		EdgeCounts:   edgeStatsFromStore(storeStats),
		IndexedRows:  result.IndexedRows,
		EmbeddingDim: result.Dimension,
	}, nil
}

// Stats reports the canonical store's current contents (spec.md §6,
// "stats()").
func (o *Orchestrator) Stats(ctx context.Context) (Stats, error) {
	st, err := o.ensureStore()
	if err != nil {
		return Stats{}, err
	}
	storeStats, err := st.Stats()
	if err != nil {
		return Stats{}, wrapStoreError("stats", err)
	}
	return Stats{
		TotalNodes: storeStats.TotalNodes,
		TotalEdges: storeStats.TotalEdges,
		NodeCounts: statsFromStore(storeStats),
		EdgeCounts: edgeStatsFromStore(storeStats),
		DBPath:     o.cfg.DBPath,
	}, nil
}

// Node fetches a single node by id (spec.md §6, "node(id)"). A
// missing node is reported as ok=false, per the NotFound error kind
// (spec.md §7: "returned as an absent value, not as a failure").
func (o *Orchestrator) Node(ctx context.Context, id string) (primitives.Node, bool, error) {
	st, err := o.ensureStore()
	if err != nil {
		return primitives.Node{}, false, err
	}
	n, ok, err := st.Node(id)
	if err != nil {
		return primitives.Node{}, false, wrapStoreError("node lookup", err)
	}
	return n, ok, nil
}

// Query runs the hybrid semantic-seed + graph-expansion retrieval
// spec.md §4.5.2 describes.
func (o *Orchestrator) Query(ctx context.Context, p QueryParams) (result QueryResult, err error) {
	start := time.Now()
	defer func() { o.metrics.observe("query", start, err) }()

	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state == StateFresh {
		return QueryResult{}, newStateError("query rejected in Fresh state; call build_graph first")
	}

	if err = validateQueryParams(p); err != nil {
		return QueryResult{}, err
	}
	if p.Q == "" {
		return QueryResult{}, newQueryError("empty query")
	}

	st, err := o.ensureStore()
	if err != nil {
		return QueryResult{}, err
	}

	seeds, seedDistance, err := o.seed(ctx, p.Q, p.K, state)
	if err != nil {
		return QueryResult{}, err
	}

	provenance, err := st.Expand(seeds, p.Hop, p.Rels)
	if err != nil {
		return QueryResult{}, wrapStoreError("expand", err)
	}

	nodes := make([]RankedNode, 0, len(provenance))
	for id, prov := range provenance {
		n, ok, err := st.Node(id)
		if err != nil {
			return QueryResult{}, wrapStoreError("fetch node", err)
		}
		if !ok {
			continue
		}
		if n.Kind == primitives.KindSymbol && !p.IncludeSymbols {
			continue
		}
		nodes = append(nodes, RankedNode{
			Node:         n,
			BestHop:      prov.BestHop,
			ViaSeed:      prov.ViaSeed,
			SeedDistance: seedDistance[prov.ViaSeed],
		})
	}
	rankNodes(nodes)

	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	edges, err := st.EdgesWithin(ids)
	if err != nil {
		return QueryResult{}, wrapStoreError("edges within", err)
	}

	return QueryResult{
		Query:         p.Q,
		SeedsCount:    len(seeds),
		ExpandedCount: len(provenance),
		ReturnedNodes: len(nodes),
		Hop:           p.Hop,
		Rels:          p.Rels,
		Nodes:         nodes,
		Edges:         edges,
	}, nil
}

// seed resolves query() step 1: semantic search for seed ids, plus a
// seed_id → distance map used by the ranking key. At k=0 or with an
// empty index, seeds is empty (spec.md §4.5.2 step 1).
func (o *Orchestrator) seed(ctx context.Context, q string, k int, state State) ([]string, map[string]float64, error) {
	if k <= 0 || q == "" || state != StateHasIndex {
		return nil, map[string]float64{}, nil
	}
	hits, err := semantic.Search(ctx, o.vstore, o.embedder, q, k)
	if err != nil {
		return nil, nil, wrapIndexError("seed search", err)
	}
	seeds := make([]string, len(hits))
	distances := make(map[string]float64, len(hits))
	for i, h := range hits {
		seeds[i] = h.ID
		distances[h.ID] = h.Distance
	}
	return seeds, distances, nil
}

// rankNodes sorts by the composite key spec.md §4.5.2 step 5 fixes:
// (best_hop, seed_distance of via_seed, kind_priority, id), all
// ascending.
func rankNodes(nodes []RankedNode) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.BestHop != b.BestHop {
			return a.BestHop < b.BestHop
		}
		if a.SeedDistance != b.SeedDistance {
			return a.SeedDistance < b.SeedDistance
		}
		pa, pb := primitives.KindPriority(a.Kind), primitives.KindPriority(b.Kind)
		if pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	})
}
