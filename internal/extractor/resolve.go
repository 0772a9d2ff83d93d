package extractor

import "github.com/suchanek/codekg/internal/primitives"

// resolveImports turns each rawImport's absolute dotted path into a
// concrete destination: an in-repo module node if moduleByQualname knows
// it, otherwise a symbol node. moduleByQualname maps every module's
// dotted qualname to its module_path and is built once per Extract run
// across all files, so this resolves against the complete repository
// regardless of which file is processed first.
func resolveImports(fe *fileExtraction, moduleByQualname map[string]string) map[string]importBinding {
	bindings := make(map[string]importBinding, len(fe.rawImports))
	for _, ri := range fe.rawImports {
		// A name re-imported under the same local name later in the file
		// overwrites the earlier binding, matching ordinary Python
		// rebinding semantics.
		bindings[ri.localName] = bindingFor(fe, ri.absDotted, moduleByQualname)
	}
	return bindings
}

func bindingFor(fe *fileExtraction, absDotted string, moduleByQualname map[string]string) importBinding {
	if modPath, ok := moduleByQualname[absDotted]; ok {
		return importBinding{
			destID:         primitives.NodeID(primitives.KindModule, modPath, absDotted),
			destKind:       primitives.KindModule,
			destModulePath: modPath,
			destDotted:     absDotted,
		}
	}
	id := primitives.SymbolID(absDotted)
	fe.addSymbol(id, absDotted)
	return importBinding{destID: id, destKind: primitives.KindSymbol, destDotted: absDotted}
}

// importEdges emits one IMPORTS edge per raw import, using the file's
// already-resolved importMap. Two raw imports that bind the same local
// name to different targets within one file are rare enough in practice
// that this module accepts the simplification of using the name's final
// binding for both edges, rather than re-resolving per statement.
func importEdges(fe *fileExtraction) []primitives.Edge {
	edges := make([]primitives.Edge, 0, len(fe.rawImports))
	for _, ri := range fe.rawImports {
		b, ok := fe.importMap[ri.localName]
		if !ok {
			continue
		}
		edges = append(edges, primitives.Edge{
			Src: fe.moduleNode.ID,
			Rel: primitives.RelImports,
			Dst: b.destID,
			Evidence: map[string]any{
				"lineno": ri.lineNo,
				"expr":   ri.expr,
			},
		})
	}
	return edges
}

// resolveInherits emits one INHERITS edge per base-class expression,
// resolving against (a) a class defined in the same module, then (b) a
// name bound by an IMPORTS edge in this module, falling back to a
// symbol node.
func resolveInherits(fe *fileExtraction, reg *registry) []primitives.Edge {
	var edges []primitives.Edge
	for _, d := range fe.defs {
		if d.kind != primitives.KindClass {
			continue
		}
		for _, baseName := range d.baseNames {
			edges = append(edges, primitives.Edge{
				Src: d.id,
				Rel: primitives.RelInherits,
				Dst: resolveBaseName(fe, reg, baseName),
				Evidence: map[string]any{
					"lineno": d.node.LineNo,
					"expr":   baseName,
				},
			})
		}
	}
	return edges
}

func resolveBaseName(fe *fileExtraction, reg *registry, baseName string) string {
	if entry, ok := reg.lookup(fe.modulePath, baseName); ok && entry.kind == primitives.KindClass {
		return entry.id
	}
	if binding, ok := fe.importMap[firstDotSegment(baseName)]; ok {
		return binding.destID
	}
	id := primitives.SymbolID(baseName)
	fe.addSymbol(id, baseName)
	return id
}
