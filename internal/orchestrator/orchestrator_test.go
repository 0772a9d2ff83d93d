package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/suchanek/codekg/internal/primitives"
	"github.com/suchanek/codekg/internal/semantic"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func newTestOrchestrator(t *testing.T, repoRoot string) *Orchestrator {
	t.Helper()
	cfg := Config{
		RepoRoot: repoRoot,
		DBPath:   filepath.Join(repoRoot, ".codekg", "graph.db"),
		IndexDir: filepath.Join(repoRoot, ".codekg", "index"),
	}
	vs, err := semantic.OpenSQLiteVectorStore(cfg.IndexDir, "nodes")
	if err != nil {
		t.Fatalf("OpenSQLiteVectorStore: %v", err)
	}
	o := New(cfg, semantic.NewFakeEmbedder(16), vs)
	t.Cleanup(func() { o.Close() })
	return o
}

func TestBuildAndQuerySingleFunction(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.py", "def foo():\n    pass\n")

	o := newTestOrchestrator(t, root)
	stats, err := o.Build(ctx, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.TotalNodes != 2 {
		t.Fatalf("expected 2 nodes (module + function), got %d", stats.TotalNodes)
	}
	if stats.IndexedRows != 2 {
		t.Fatalf("expected 2 indexed rows, got %d", stats.IndexedRows)
	}

	result, err := o.Query(ctx, QueryParams{Q: "foo", K: 1, Hop: 0})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if result.ReturnedNodes != 1 {
		t.Fatalf("expected exactly 1 returned node, got %d", result.ReturnedNodes)
	}
	if result.Nodes[0].ID != "fn:pkg/a.py:foo" {
		t.Errorf("expected fn:pkg/a.py:foo, got %s", result.Nodes[0].ID)
	}
}

func TestQueryRejectedInFreshState(t *testing.T) {
	root := t.TempDir()
	o := newTestOrchestrator(t, root)
	_, err := o.Query(context.Background(), QueryParams{Q: "x", K: 1})
	if err == nil {
		t.Fatal("expected query to be rejected in Fresh state")
	}
}

func TestQueryRejectsNegativeHopAndUnknownRel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/a.py", "def foo():\n    pass\n")
	o := newTestOrchestrator(t, root)
	ctx := context.Background()
	if _, err := o.Build(ctx, true); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := o.Query(ctx, QueryParams{Q: "foo", K: 1, Hop: -1}); err == nil {
		t.Error("expected error for negative hop")
	}
	if _, err := o.Query(ctx, QueryParams{Q: "foo", K: 1, Rels: []primitives.Rel{"BOGUS"}}); err == nil {
		t.Error("expected error for unknown relation")
	}
}

func TestKZeroReturnsNoNodes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/a.py", "def foo():\n    pass\n")
	o := newTestOrchestrator(t, root)
	ctx := context.Background()
	if _, err := o.Build(ctx, true); err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := o.Query(ctx, QueryParams{Q: "foo", K: 0, Hop: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if result.ReturnedNodes != 0 {
		t.Fatalf("expected 0 returned nodes at k=0, got %d", result.ReturnedNodes)
	}
}

func TestHybridQueryHopExpansion(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "pkg/db.py", "class DatabaseManager:\n    def connect(self):\n        pass\n")
	writeFile(t, root, "pkg/use.py", "from pkg.db import DatabaseManager\n\ndef main():\n    DatabaseManager().connect()\n")

	o := newTestOrchestrator(t, root)
	if _, err := o.Build(ctx, true); err != nil {
		t.Fatalf("Build: %v", err)
	}

	pack, err := o.Pack(ctx, PackParams{
		QueryParams: QueryParams{Q: "database connection", K: 4, Hop: 1},
		Context:     5, MaxLines: DefaultMaxLines, MaxNodes: DefaultMaxNodes, PerFileCap: DefaultPerFileCap,
	})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(pack.Nodes) == 0 {
		t.Fatal("expected at least one packed node")
	}
	for _, n := range pack.Nodes {
		if n.Snippet.Start > n.Snippet.End {
			t.Errorf("invalid span for %s: %d-%d", n.ID, n.Snippet.Start, n.Snippet.End)
		}
	}

	md := pack.Markdown()
	if md == "" {
		t.Error("expected non-empty markdown")
	}
}
