package extractor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/suchanek/codekg/internal/lang"
	"github.com/suchanek/codekg/internal/parser"
	"github.com/suchanek/codekg/internal/primitives"
)

// runPass1 builds the module node, walks the file for class/function/method
// definitions and their CONTAINS edges, and parses import statements.
// Grounded on spec.md's description of pass 1 and on the teacher's
// pipeline.go traversal shape, simplified to the single-language,
// two-level (module, class) containment this module's grammar needs.
func runPass1(fe *fileExtraction) {
	root := fe.tree.RootNode()
	fe.moduleQN = primitives.ModuleQualname(fe.modulePath)
	moduleID := primitives.NodeID(primitives.KindModule, fe.modulePath, fe.moduleQN)

	fe.moduleNode = primitives.Node{
		ID:         moduleID,
		Kind:       primitives.KindModule,
		Name:       lastSegment(fe.moduleQN, '.'),
		QualName:   fe.moduleQN,
		ModulePath: fe.modulePath,
		LineNo:     1,
		EndLineNo:  int(root.EndPosition().Row) + 1,
		Docstring:  leadingDocstring(root, fe.source),
	}

	walkDefs(fe, root, "module", "", moduleID)
	parseRawImports(fe)
}

// walkDefs descends container's named children looking for class and
// function definitions. ctxKind is "module" or "class" and identifies
// the lexical context the children are found in; ctxQualname
// and ctxID name that context's own qualname and node id (the empty
// string for the module context, which has no qualname prefix).
func walkDefs(fe *fileExtraction, container *tree_sitter.Node, ctxKind, ctxQualname, ctxID string) {
	if container == nil {
		return
	}
	for i := uint(0); i < container.NamedChildCount(); i++ {
		child := container.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case lang.KindDecoratedDef:
			if inner := innerDefinition(child); inner != nil {
				handleDef(fe, inner, ctxKind, ctxQualname, ctxID)
			}
		case lang.KindClassDef, lang.KindFunctionDef:
			handleDef(fe, child, ctxKind, ctxQualname, ctxID)
		default:
			walkDefs(fe, child, ctxKind, ctxQualname, ctxID)
		}
	}
}

// innerDefinition returns the class_definition or function_definition a
// decorated_definition wraps.
func innerDefinition(decorated *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < decorated.NamedChildCount(); i++ {
		c := decorated.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Kind() == lang.KindClassDef || c.Kind() == lang.KindFunctionDef {
			return c
		}
	}
	return nil
}

// handleDef emits a node and CONTAINS edge for one class or function
// definition found directly in ctxKind's body. Only class bodies are
// descended into; a function's body is never walked, so a function
// nested inside another function gets no node of its own.
func handleDef(fe *fileExtraction, node *tree_sitter.Node, ctxKind, ctxQualname, ctxID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, fe.source)

	var kind primitives.Kind
	switch node.Kind() {
	case lang.KindClassDef:
		kind = primitives.KindClass
	case lang.KindFunctionDef:
		if ctxKind == "function" {
			return
		}
		if ctxKind == "class" {
			kind = primitives.KindMethod
		} else {
			kind = primitives.KindFunction
		}
	default:
		return
	}

	qualname := name
	if ctxQualname != "" {
		qualname = ctxQualname + "." + name
	}
	id := primitives.NodeID(kind, fe.modulePath, qualname)
	bodyNode := node.ChildByFieldName("body")
	lineNo := int(node.StartPosition().Row) + 1
	endLineNo := int(node.EndPosition().Row) + 1

	n := primitives.Node{
		ID:         id,
		Kind:       kind,
		Name:       name,
		QualName:   qualname,
		ModulePath: fe.modulePath,
		LineNo:     lineNo,
		EndLineNo:  endLineNo,
		Docstring:  leadingDocstring(bodyNode, fe.source),
	}
	d := def{node: n, id: id, kind: kind, name: name, qualname: qualname}
	if kind == primitives.KindClass {
		d.baseNames = collectBaseNames(node, fe.source)
	}
	fe.defs = append(fe.defs, d)
	fe.pass1Edges = append(fe.pass1Edges, primitives.Edge{
		Src: ctxID, Rel: primitives.RelContains, Dst: id,
		Evidence: map[string]any{"lineno": lineNo},
	})

	if kind == primitives.KindClass {
		walkDefs(fe, bodyNode, "class", qualname, id)
	}
}

// collectBaseNames reads the raw (unresolved) base-class expressions from
// a class_definition's superclasses argument list. Keyword arguments
// (e.g. "metaclass=...") are not base classes and are skipped.
func collectBaseNames(node *tree_sitter.Node, source []byte) []string {
	supers := node.ChildByFieldName("superclasses")
	if supers == nil {
		return nil
	}
	var names []string
	for i := uint(0); i < supers.NamedChildCount(); i++ {
		arg := supers.NamedChild(i)
		if arg == nil {
			continue
		}
		if arg.Kind() == lang.KindIdentifier || arg.Kind() == lang.KindAttribute {
			names = append(names, parser.NodeText(arg, source))
		}
	}
	return names
}
