// Package extractor implements the two-pass per-file syntax-tree walk
// described in spec.md §4.2: pass 1 emits module/class/function/method
// definitions plus CONTAINS/IMPORTS/INHERITS edges, pass 2 re-walks each
// file to emit best-effort CALLS edges. Grounded on the teacher's
// internal/pipeline package (pipeline.go's pass orchestration,
// imports.go's import-statement parsing, inherits.go's base-class
// resolution, usages.go's parallel per-file worker pattern), simplified
// to the conservative, single-language resolution spec.md actually asks
// for.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/suchanek/codekg/internal/discover"
	"github.com/suchanek/codekg/internal/parser"
	"github.com/suchanek/codekg/internal/primitives"
)

// Warning is a non-fatal extraction problem (spec.md §7, ExtractionWarning).
type Warning struct {
	File    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}

// Result is the extractor's output: a finite ordered sequence of nodes and
// edges, plus any warnings collected along the way.
type Result struct {
	Nodes    []primitives.Node
	Edges    []primitives.Edge
	Warnings []Warning
}

// Extract walks repoRoot and returns its complete node/edge set. Same
// input (same file contents, same tree) always produces byte-identical
// output: file order is sorted, parsing/pass-1/pass-2 may run in
// parallel internally but every merge step iterates the sorted file list.
func Extract(ctx context.Context, repoRoot string) (*Result, error) {
	repoRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("extractor: resolve repo root: %w", err)
	}

	files, err := discover.Discover(ctx, repoRoot)
	if err != nil {
		return nil, fmt.Errorf("extractor: discover: %w", err)
	}

	result := &Result{}
	if len(files) == 0 {
		return result, nil
	}

	// Stage 1: parse + pass-1 walk each file independently, in parallel.
	extractions := make([]*fileExtraction, len(files))
	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			extractions[i] = extractFile(f, repoRoot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stage 2: merge pass-1 definitions into a global registry, in sorted
	// file order, so cross-file import/inherit/call resolution is
	// independent of how stage 1's goroutines happened to finish.
	reg := newRegistry()
	moduleByQualname := make(map[string]string, len(files))
	for _, fe := range extractions {
		moduleByQualname[primitives.ModuleQualname(fe.modulePath)] = fe.modulePath
	}
	for _, fe := range extractions {
		for _, d := range fe.defs {
			reg.register(fe.modulePath, d.name, d.kind, d.qualname, d.id)
		}
		result.Warnings = append(result.Warnings, fe.warnings...)
	}

	// Stage 3: resolve imports and INHERITS per file, in parallel; these
	// depend only on the now-complete registry and module set, not on
	// each other.
	g2, gctx2 := errgroup.WithContext(ctx)
	g2.SetLimit(workers)
	for _, fe := range extractions {
		fe := fe
		g2.Go(func() error {
			if err := gctx2.Err(); err != nil {
				return err
			}
			fe.importMap = resolveImports(fe, moduleByQualname)
			fe.pass1Edges = append(fe.pass1Edges, importEdges(fe)...)
			fe.pass1Edges = append(fe.pass1Edges, resolveInherits(fe, reg)...)
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return nil, err
	}

	// Stage 4: pass 2, call resolution, in parallel; depends on the
	// registry and every file's own import map (already computed).
	g3, gctx3 := errgroup.WithContext(ctx)
	g3.SetLimit(workers)
	for _, fe := range extractions {
		fe := fe
		g3.Go(func() error {
			if err := gctx3.Err(); err != nil {
				return err
			}
			fe.pass2Edges = resolveCalls(fe, reg)
			return nil
		})
	}
	if err := g3.Wait(); err != nil {
		return nil, err
	}

	// Every pass needing the parsed tree has now run; release tree-sitter's
	// C-allocated trees before the merge step instead of leaking one per file.
	for _, fe := range extractions {
		if fe.tree != nil {
			fe.tree.Close()
			fe.tree = nil
		}
	}

	// Stage 5: deterministic merge. Within a file: module node, then
	// definitions in tree order, then pass-1 edges, then pass-2 edges.
	// Across files: sorted file order.
	sort.Slice(extractions, func(i, j int) bool { return extractions[i].relPath < extractions[j].relPath })
	for _, fe := range extractions {
		result.Nodes = append(result.Nodes, fe.moduleNode)
		for _, d := range fe.defs {
			result.Nodes = append(result.Nodes, d.node)
		}
		result.Edges = append(result.Edges, fe.pass1Edges...)
		result.Edges = append(result.Edges, fe.pass2Edges...)
	}
	// Symbol nodes are deduplicated and appended last, sorted by id so
	// their position in the output is itself deterministic.
	result.Nodes = append(result.Nodes, collectSymbolNodes(extractions)...)

	return result, nil
}

// extractFile parses one file and runs pass 1 on it. Parse failures and
// per-construct errors are reported as warnings; the caller still
// receives whatever could be recovered (possibly nothing but the module
// node).
func extractFile(f discover.FileInfo, repoRoot string) *fileExtraction {
	fe := &fileExtraction{
		relPath:    f.RelPath,
		modulePath: f.RelPath,
	}

	source, err := readFile(f.AbsPath)
	if err != nil {
		fe.warnings = append(fe.warnings, Warning{File: f.RelPath, Message: "read: " + err.Error()})
		fe.moduleNode = bareModuleNode(f.RelPath)
		return fe
	}
	fe.source = source

	tree, err := parser.Parse(source)
	if err != nil {
		fe.warnings = append(fe.warnings, Warning{File: f.RelPath, Message: "parse: " + err.Error()})
		fe.moduleNode = bareModuleNode(f.RelPath)
		return fe
	}
	fe.tree = tree

	runPass1(fe)
	return fe
}

func bareModuleNode(relPath string) primitives.Node {
	qn := primitives.ModuleQualname(relPath)
	return primitives.Node{
		ID:         primitives.NodeID(primitives.KindModule, relPath, qn),
		Kind:       primitives.KindModule,
		Name:       lastSegment(qn, '.'),
		QualName:   qn,
		ModulePath: relPath,
	}
}

func lastSegment(s string, sep byte) string {
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			last = i + 1
		}
	}
	return s[last:]
}
