package store

import (
	"testing"

	"github.com/suchanek/codekg/internal/primitives"
)

func mustStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleGraph() ([]primitives.Node, []primitives.Edge) {
	nodes := []primitives.Node{
		{ID: "mod:pkg/a.py", Kind: primitives.KindModule, Name: "a", QualName: "pkg.a", ModulePath: "pkg/a.py"},
		{ID: "cls:pkg/a.py:A", Kind: primitives.KindClass, Name: "A", QualName: "A", ModulePath: "pkg/a.py", LineNo: 1, EndLineNo: 2},
		{ID: "cls:pkg/a.py:B", Kind: primitives.KindClass, Name: "B", QualName: "B", ModulePath: "pkg/a.py", LineNo: 4, EndLineNo: 6},
		{ID: "m:pkg/a.py:B.f", Kind: primitives.KindMethod, Name: "f", QualName: "B.f", ModulePath: "pkg/a.py", LineNo: 5, EndLineNo: 6},
		{ID: "sym:os", Kind: primitives.KindSymbol, Name: "os", QualName: "os"},
	}
	edges := []primitives.Edge{
		{Src: "mod:pkg/a.py", Rel: primitives.RelContains, Dst: "cls:pkg/a.py:A", Evidence: map[string]any{"lineno": 1}},
		{Src: "mod:pkg/a.py", Rel: primitives.RelContains, Dst: "cls:pkg/a.py:B", Evidence: map[string]any{"lineno": 4}},
		{Src: "cls:pkg/a.py:B", Rel: primitives.RelContains, Dst: "m:pkg/a.py:B.f", Evidence: map[string]any{"lineno": 5}},
		{Src: "cls:pkg/a.py:B", Rel: primitives.RelInherits, Dst: "cls:pkg/a.py:A", Evidence: map[string]any{"lineno": 4, "expr": "A"}},
		{Src: "mod:pkg/a.py", Rel: primitives.RelImports, Dst: "sym:os", Evidence: map[string]any{"lineno": 1, "expr": "import os"}},
	}
	return nodes, edges
}

func TestWriteAndNodeRoundTrip(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	n, ok, err := s.Node("cls:pkg/a.py:B")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if !ok {
		t.Fatal("expected node cls:pkg/a.py:B to exist")
	}
	if n.Name != "B" || n.LineNo != 4 {
		t.Errorf("unexpected node: %+v", n)
	}

	_, ok, err = s.Node("does-not-exist")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if ok {
		t.Error("expected absent node to report ok=false")
	}
}

func TestWriteWipeReplacesContents(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	onlyModule := []primitives.Node{nodes[0]}
	if err := s.Write(onlyModule, nil, true); err != nil {
		t.Fatalf("Write (wipe): %v", err)
	}

	all, err := s.QueryNodes(nil, "")
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 node after wipe, got %d", len(all))
	}

	edgesAfter, err := s.EdgesWithin([]string{"mod:pkg/a.py", "cls:pkg/a.py:A", "cls:pkg/a.py:B"})
	if err != nil {
		t.Fatalf("EdgesWithin: %v", err)
	}
	if len(edgesAfter) != 0 {
		t.Errorf("expected no edges after wipe, got %d", len(edgesAfter))
	}
}

func TestWriteUpsertWithoutWipeUnionsContents(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes[:2], edges[:1], false); err != nil {
		t.Fatalf("Write (first): %v", err)
	}
	if err := s.Write(nodes[2:], edges[1:], false); err != nil {
		t.Fatalf("Write (second): %v", err)
	}

	all, err := s.QueryNodes(nil, "")
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(all) != len(nodes) {
		t.Fatalf("expected %d nodes, got %d", len(nodes), len(all))
	}
}

func TestQueryNodesFilters(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	classes, err := s.QueryNodes([]primitives.Kind{primitives.KindClass}, "")
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(classes))
	}
	if classes[0].ID > classes[1].ID {
		t.Error("expected nodes in ascending id order")
	}

	byModule, err := s.QueryNodes(nil, "pkg/a.py")
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(byModule) != 4 {
		t.Fatalf("expected 4 nodes under pkg/a.py, got %d", len(byModule))
	}
}

func TestEdgesWithinOnlyReturnsInternalEdges(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	within, err := s.EdgesWithin([]string{"cls:pkg/a.py:B", "cls:pkg/a.py:A"})
	if err != nil {
		t.Fatalf("EdgesWithin: %v", err)
	}
	if len(within) != 1 {
		t.Fatalf("expected exactly 1 edge within {A, B}, got %d", len(within))
	}
	if within[0].Rel != primitives.RelInherits {
		t.Errorf("expected INHERITS edge, got %s", within[0].Rel)
	}
}

func TestStats(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalNodes != len(nodes) || st.TotalEdges != len(edges) {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if st.NodesByKind[primitives.KindClass] != 2 {
		t.Errorf("expected 2 class nodes, got %d", st.NodesByKind[primitives.KindClass])
	}
	if st.EdgesByRel[primitives.RelContains] != 3 {
		t.Errorf("expected 3 CONTAINS edges, got %d", st.EdgesByRel[primitives.RelContains])
	}
}

func TestExpandHopZeroYieldsOnlySeeds(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	prov, err := s.Expand([]string{"cls:pkg/a.py:B"}, 0, primitives.AllRels)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(prov) != 1 {
		t.Fatalf("expected exactly 1 entry at hop 0, got %d", len(prov))
	}
	if p := prov["cls:pkg/a.py:B"]; p.BestHop != 0 || p.ViaSeed != "cls:pkg/a.py:B" {
		t.Errorf("unexpected provenance at hop 0: %+v", p)
	}
}

func TestExpandUndirectedReachesBothDirections(t *testing.T) {
	s := mustStore(t)
	nodes, edges := sampleGraph()
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// B --INHERITS--> A; expanding from A must still reach B, since
	// expansion treats edges as undirected (spec.md §4.3).
	prov, err := s.Expand([]string{"cls:pkg/a.py:A"}, 1, []primitives.Rel{primitives.RelInherits})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	p, ok := prov["cls:pkg/a.py:B"]
	if !ok {
		t.Fatal("expected B reachable from A via undirected INHERITS traversal")
	}
	if p.BestHop != 1 || p.ViaSeed != "cls:pkg/a.py:A" {
		t.Errorf("unexpected provenance: %+v", p)
	}
}

func TestExpandMultiSeedTieBreakPicksLexicographicallySmallest(t *testing.T) {
	s := mustStore(t)
	// Two seeds both CALL the same class, so it is at hop 1 from each;
	// the smaller seed id must win as via_seed.
	nodes := []primitives.Node{
		{ID: "cls:pkg/a.py:Shared", Kind: primitives.KindClass, Name: "Shared", QualName: "Shared", ModulePath: "pkg/a.py"},
		{ID: "seed:zzz", Kind: primitives.KindSymbol, Name: "zzz", QualName: "zzz"},
		{ID: "seed:aaa", Kind: primitives.KindSymbol, Name: "aaa", QualName: "aaa"},
	}
	edges := []primitives.Edge{
		{Src: "seed:zzz", Rel: primitives.RelCalls, Dst: "cls:pkg/a.py:Shared", Evidence: map[string]any{}},
		{Src: "seed:aaa", Rel: primitives.RelCalls, Dst: "cls:pkg/a.py:Shared", Evidence: map[string]any{}},
	}
	if err := s.Write(nodes, edges, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	prov, err := s.Expand([]string{"seed:zzz", "seed:aaa"}, 1, []primitives.Rel{primitives.RelCalls})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	p, ok := prov["cls:pkg/a.py:Shared"]
	if !ok {
		t.Fatal("expected Shared to be reached")
	}
	if p.ViaSeed != "seed:aaa" {
		t.Errorf("expected tie-break to pick seed:aaa, got %s", p.ViaSeed)
	}
}

func TestExpandRejectsNegativeHops(t *testing.T) {
	s := mustStore(t)
	if _, err := s.Expand([]string{"x"}, -1, primitives.AllRels); err == nil {
		t.Error("expected an error for a negative hop count")
	}
}

func TestExpandEmptySeedsYieldsEmptyResult(t *testing.T) {
	s := mustStore(t)
	prov, err := s.Expand(nil, 2, primitives.AllRels)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(prov) != 0 {
		t.Errorf("expected empty result for empty seed set, got %d entries", len(prov))
	}
}
