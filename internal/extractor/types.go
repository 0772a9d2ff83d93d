package extractor

import (
	"os"
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/suchanek/codekg/internal/primitives"
)

// def is one class/function/method definition discovered during pass 1,
// before any cross-file resolution has happened.
type def struct {
	node      primitives.Node
	id        string
	kind      primitives.Kind
	name      string
	qualname  string
	baseNames []string // raw (unresolved) base-class expressions, classes only
}

// rawImport is one name bound by an import or from-import statement, with
// its absolute dotted module path already computed (relative imports
// resolved against the current file's package) but not yet checked
// against the cross-file module set.
type rawImport struct {
	localName string // name bound in this file's scope
	absDotted string // absolute dotted path, e.g. "pkg.sub.Thing"
	lineNo    int
	expr      string // full statement text, for IMPORTS evidence
}

// importBinding is what a local name resolves to after cross-file
// resolution.
type importBinding struct {
	destID         string
	destKind       primitives.Kind // KindModule or KindSymbol
	destModulePath string          // populated when destKind == KindModule
	destDotted     string          // the resolved absolute dotted name
}

// fileExtraction accumulates one file's pass-1 and pass-2 results.
type fileExtraction struct {
	relPath    string
	modulePath string
	source     []byte
	tree       *tree_sitter.Tree

	moduleNode primitives.Node
	moduleQN   string
	defs       []def
	rawImports []rawImport

	importMap map[string]importBinding

	pass1Edges []primitives.Edge
	pass2Edges []primitives.Edge

	warnings []Warning

	symbols map[string]primitives.Node // id -> symbol node, deduped within the file
}

func (fe *fileExtraction) addSymbol(id, dottedName string) primitives.Node {
	if fe.symbols == nil {
		fe.symbols = make(map[string]primitives.Node)
	}
	if n, ok := fe.symbols[id]; ok {
		return n
	}
	n := primitives.Node{
		ID:       id,
		Kind:     primitives.KindSymbol,
		Name:     lastSegment(dottedName, '.'),
		QualName: dottedName,
	}
	fe.symbols[id] = n
	return n
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// collectSymbolNodes merges every file's deduplicated symbol nodes into
// one globally-deduplicated, id-sorted slice.
func collectSymbolNodes(extractions []*fileExtraction) []primitives.Node {
	merged := make(map[string]primitives.Node)
	for _, fe := range extractions {
		for id, n := range fe.symbols {
			merged[id] = n
		}
	}
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]primitives.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, merged[id])
	}
	return out
}
