package extractor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/suchanek/codekg/internal/lang"
	"github.com/suchanek/codekg/internal/parser"
	"github.com/suchanek/codekg/internal/primitives"
)

// callCtx tracks, while re-walking a file for pass 2, the nearest
// enclosing class (for self/cls resolution) and the nearest enclosing
// tracked function or method (the source of any CALLS edge). A call
// found inside a nested, untracked function bubbles up to the nearest
// tracked one, since pass 1 never gives the nested function its own node.
type callCtx struct {
	classQualname string
	enclosingDef  string
	inClassBody   bool // true only directly in a class body, no intervening function
}

// resolveCalls re-traverses the file tracking the enclosing definition
// and emits one CALLS edge per call expression found inside one,
// following spec.md's three-step resolution: same-module bare name,
// import-bound name, then self/cls-qualified attribute access on the
// current class, falling back to a symbol node whose id is the callee
// expression's own text. Grounded on the teacher's internal/pipeline
// usages.go / resolver.go parallel per-file walk, simplified to the
// conservative single-language resolution spec.md asks for.
func resolveCalls(fe *fileExtraction, reg *registry) []primitives.Edge {
	if fe.tree == nil {
		return nil
	}
	var edges []primitives.Edge
	walkCalls(fe, reg, fe.tree.RootNode(), callCtx{}, &edges)
	return edges
}

func walkCalls(fe *fileExtraction, reg *registry, container *tree_sitter.Node, ctx callCtx, edges *[]primitives.Edge) {
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
				walkOneNode(fe, reg, inner, ctx, edges)
			}
		case lang.KindClassDef, lang.KindFunctionDef:
			walkOneNode(fe, reg, child, ctx, edges)
		case lang.KindCall:
			if ctx.enclosingDef != "" {
				*edges = append(*edges, resolveOneCall(fe, reg, child, ctx))
			}
			walkCalls(fe, reg, child, ctx, edges)
		default:
			walkCalls(fe, reg, child, ctx, edges)
		}
	}
}

func walkOneNode(fe *fileExtraction, reg *registry, node *tree_sitter.Node, ctx callCtx, edges *[]primitives.Edge) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, fe.source)
	body := node.ChildByFieldName("body")

	if node.Kind() == lang.KindClassDef {
		qualname := name
		if ctx.classQualname != "" {
			qualname = ctx.classQualname + "." + name
		}
		entry, _ := reg.lookup(fe.modulePath, qualname)
		newCtx := callCtx{
			classQualname: qualname,
			enclosingDef:  ctx.enclosingDef,
			inClassBody:   ctx.enclosingDef == "" && entry.kind == primitives.KindClass,
		}
		walkCalls(fe, reg, body, newCtx, edges)
		return
	}

	// function_definition: a tracked method (direct child of a class
	// body), a tracked top-level function, or an untracked nested
	// function whose calls bubble up to ctx.enclosingDef.
	newDefID := ctx.enclosingDef
	if ctx.enclosingDef == "" {
		if ctx.inClassBody {
			entry, _ := reg.lookup(fe.modulePath, ctx.classQualname+"."+name)
			newDefID = entry.id
		} else {
			entry, _ := reg.lookup(fe.modulePath, name)
			newDefID = entry.id
		}
	}
	newCtx := callCtx{
		classQualname: ctx.classQualname,
		enclosingDef:  newDefID,
		inClassBody:   false,
	}
	walkCalls(fe, reg, body, newCtx, edges)
}

func resolveOneCall(fe *fileExtraction, reg *registry, call *tree_sitter.Node, ctx callCtx) primitives.Edge {
	lineNo := int(call.StartPosition().Row) + 1
	exprText := parser.NodeText(call, fe.source)
	fn := call.ChildByFieldName("function")

	destID := resolveCallee(fe, reg, fn, ctx, exprText)
	return primitives.Edge{
		Src: ctx.enclosingDef,
		Rel: primitives.RelCalls,
		Dst: destID,
		Evidence: map[string]any{
			"lineno": lineNo,
			"expr":   exprText,
		},
	}
}

func resolveCallee(fe *fileExtraction, reg *registry, fn *tree_sitter.Node, ctx callCtx, exprText string) string {
	if fn == nil {
		return symbolFallback(fe, exprText)
	}

	switch fn.Kind() {
	case lang.KindIdentifier:
		name := parser.NodeText(fn, fe.source)
		if entry, ok := reg.lookup(fe.modulePath, name); ok &&
			(entry.kind == primitives.KindFunction || entry.kind == primitives.KindMethod) {
			return entry.id
		}
		if binding, ok := fe.importMap[name]; ok {
			return binding.destID
		}
		return symbolFallback(fe, name)

	case lang.KindAttribute:
		obj := fn.ChildByFieldName("object")
		attrNode := fn.ChildByFieldName("attribute")
		if obj == nil || attrNode == nil {
			return symbolFallback(fe, parser.NodeText(fn, fe.source))
		}
		objText := parser.NodeText(obj, fe.source)
		attrName := parser.NodeText(attrNode, fe.source)
		calleeText := parser.NodeText(fn, fe.source)

		if ctx.classQualname != "" && (objText == "self" || objText == "cls" || objText == lastSegment(ctx.classQualname, '.')) {
			if entry, ok := reg.lookup(fe.modulePath, ctx.classQualname+"."+attrName); ok {
				return entry.id
			}
		}
		if binding, ok := fe.importMap[objText]; ok {
			if binding.destKind == primitives.KindModule {
				if entry, ok := reg.lookup(binding.destModulePath, attrName); ok && entry.kind == primitives.KindFunction {
					return entry.id
				}
			}
			return symbolFallback(fe, binding.destDotted+"."+attrName)
		}
		return symbolFallback(fe, calleeText)

	default:
		return symbolFallback(fe, exprText)
	}
}

func symbolFallback(fe *fileExtraction, dottedName string) string {
	id := primitives.SymbolID(dottedName)
	fe.addSymbol(id, dottedName)
	return id
}
