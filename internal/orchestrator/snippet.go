package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/suchanek/codekg/internal/primitives"
)

// snippetGapLines is the dedup-overlap tolerance spec.md §9 documents
// as a tunable, not a derived invariant: two spans in the same file
// within this many lines of each other are treated as overlapping.
const snippetGapLines = 2

// fileCache holds already-read source files for the duration of a
// single Pack call (spec.md §5, "The snippet file cache is private to
// a single pack invocation and discarded on return").
type fileCache struct {
	repoRoot string
	lines    map[string][]string
}

func newFileCache(repoRoot string) *fileCache {
	return &fileCache{repoRoot: repoRoot, lines: make(map[string][]string)}
}

// resolve joins modulePath against repoRoot and rejects any result
// that escapes it (spec.md §4.5.3 step 2, the path-traversal guard).
func (c *fileCache) resolve(modulePath string) (string, error) {
	abs := filepath.Join(c.repoRoot, modulePath)
	rel, err := filepath.Rel(c.repoRoot, abs)
	if err != nil || strings.HasPrefix(rel, "..") || rel == ".." {
		return "", &Error{Kind: KindPathEscape, Msg: fmt.Sprintf("path escapes repository root: %s", modulePath)}
	}
	return abs, nil
}

func (c *fileCache) readLines(modulePath string) ([]string, error) {
	if lines, ok := c.lines[modulePath]; ok {
		return lines, nil
	}
	abs, err := c.resolve(modulePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open %s: %w", abs, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("orchestrator: scan %s: %w", abs, err)
	}
	c.lines[modulePath] = lines
	return lines, nil
}

// span computes [start, end] for a node (spec.md §4.5.3 step 1).
func span(n primitives.Node, context, maxLines int) (int, int) {
	if n.Kind == primitives.KindModule || !n.HasLocation() {
		top := maxLines
		if top > topWindowLines {
			top = topWindowLines
		}
		return 1, top
	}
	start := n.LineNo - context
	if start < 1 {
		start = 1
	}
	end := n.EndLineNo + context
	ceiling := n.LineNo - 1 + maxLines
	if end > ceiling {
		end = ceiling
	}
	return start, end
}

type keptSpan struct {
	start, end int
}

// overlapsOrNear reports whether a candidate span should be treated
// as a duplicate of an already-kept span in the same file (spec.md
// §4.5.3 step 3).
func overlapsOrNear(existing []keptSpan, start, end int) bool {
	for _, k := range existing {
		if start <= k.end+snippetGapLines && k.start <= end+snippetGapLines {
			return true
		}
	}
	return false
}

// Pack runs Query with p's embedded parameters, then extracts a
// deduplicated, capped set of source snippets per node (spec.md
// §4.5.3).
func (o *Orchestrator) Pack(ctx context.Context, p PackParams) (pack SnippetPack, err error) {
	start := time.Now()
	defer func() { o.metrics.observe("pack", start, err) }()

	result, err := o.Query(ctx, p.QueryParams)
	if err != nil {
		return SnippetPack{}, err
	}

	cache := newFileCache(o.cfg.RepoRoot)
	keptByFile := make(map[string][]keptSpan)
	perFileCount := make(map[string]int)

	packed := make([]PackedNode, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		if perFileCount[n.ModulePath] >= p.PerFileCap {
			continue
		}
		startLine, endLine := span(n.Node, p.Context, p.MaxLines)
		if n.ModulePath == "" {
			continue
		}
		if overlapsOrNear(keptByFile[n.ModulePath], startLine, endLine) {
			continue
		}

		lines, err := cache.readLines(n.ModulePath)
		if err != nil {
			if pe, ok := err.(*Error); ok && pe.Kind == KindPathEscape {
				continue
			}
			return SnippetPack{}, wrapStoreError("read snippet source", err)
		}
		if len(lines) == 0 {
			continue
		}
		if endLine > len(lines) {
			endLine = len(lines)
		}
		if startLine > endLine {
			continue
		}

		text := renderSnippet(lines, startLine, endLine)
		abs, _ := cache.resolve(n.ModulePath)

		keptByFile[n.ModulePath] = append(keptByFile[n.ModulePath], keptSpan{start: startLine, end: endLine})
		perFileCount[n.ModulePath]++
		packed = append(packed, PackedNode{
			RankedNode: n,
			Snippet:    Snippet{Path: abs, Start: startLine, End: endLine, Text: text},
		})

		if len(packed) >= p.MaxNodes {
			break
		}
	}

	return SnippetPack{
		Query:         result.Query,
		SeedsCount:    result.SeedsCount,
		ExpandedCount: result.ExpandedCount,
		ReturnedNodes: len(packed),
		Hop:           result.Hop,
		Rels:          result.Rels,
		Nodes:         packed,
		Edges:         result.Edges,
	}, nil
}

func renderSnippet(lines []string, start, end int) string {
	width := len(fmt.Sprintf("%d", len(lines)))
	var b strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&b, "%0*d | %s\n", width, i, lines[i-1])
	}
	return b.String()
}
