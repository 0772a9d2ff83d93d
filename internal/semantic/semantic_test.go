package semantic

import (
	"context"
	"testing"

	"github.com/suchanek/codekg/internal/primitives"
	"github.com/suchanek/codekg/internal/store"
)

func TestBuildTextFormat(t *testing.T) {
	n := primitives.Node{
		Kind: primitives.KindFunction, Name: "f", QualName: "pkg.mod.f",
		ModulePath: "pkg/mod.py", LineNo: 12, Docstring: "does a thing",
	}
	got := BuildText(n)
	want := "KIND: function\nNAME: f\nQUALNAME: pkg.mod.f\nMODULE: pkg/mod.py\nLINE: 12\nDOCSTRING:\ndoes a thing"
	if got != want {
		t.Fatalf("BuildText mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestEligible(t *testing.T) {
	cases := map[primitives.Kind]bool{
		primitives.KindModule:   true,
		primitives.KindClass:    true,
		primitives.KindFunction: true,
		primitives.KindMethod:   true,
		primitives.KindSymbol:   false,
	}
	for kind, want := range cases {
		if got := Eligible(kind); got != want {
			t.Errorf("Eligible(%s) = %v, want %v", kind, got, want)
		}
	}
}

func TestFakeEmbedderDeterministic(t *testing.T) {
	e := NewFakeEmbedder(32)
	v1, err := e.EmbedQuery(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	v2, err := e.EmbedQuery(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(v1) != 32 || len(v2) != 32 {
		t.Fatalf("expected dimension 32, got %d and %d", len(v1), len(v2))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("expected identical vectors for identical text, differ at index %d: %v vs %v", i, v1[i], v2[i])
		}
	}

	v3, err := e.EmbedQuery(context.Background(), "a different string")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	same := true
	for i := range v1 {
		if v1[i] != v3[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different text to produce a different vector")
	}
}

func TestBuildAndSearchRoundTrip(t *testing.T) {
	ctx := context.Background()

	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	nodes := []primitives.Node{
		{ID: "fn:pkg/a.py:alpha", Kind: primitives.KindFunction, Name: "alpha", QualName: "pkg.a.alpha", ModulePath: "pkg/a.py", Docstring: "computes alpha"},
		{ID: "fn:pkg/a.py:beta", Kind: primitives.KindFunction, Name: "beta", QualName: "pkg.a.beta", ModulePath: "pkg/a.py", Docstring: "computes beta"},
		{ID: "sym:os", Kind: primitives.KindSymbol, Name: "os", QualName: "os"},
	}
	if err := st.Write(nodes, nil, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dir := t.TempDir()
	vs, err := OpenSQLiteVectorStore(dir, "nodes")
	if err != nil {
		t.Fatalf("OpenSQLiteVectorStore: %v", err)
	}

	embedder := NewFakeEmbedder(16)
	result, err := Build(ctx, st, vs, embedder, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.IndexedRows != 2 {
		t.Fatalf("expected 2 eligible rows indexed (symbol excluded), got %d", result.IndexedRows)
	}

	hits, err := Search(ctx, vs, embedder, BuildText(nodes[0]), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 results, got %d", len(hits))
	}
	if hits[0].ID != "fn:pkg/a.py:alpha" {
		t.Errorf("expected exact-text query to rank its own node first, got %s", hits[0].ID)
	}
	if hits[0].Rank != 0 || hits[1].Rank != 1 {
		t.Errorf("expected ranks 0 and 1, got %d and %d", hits[0].Rank, hits[1].Rank)
	}
}
