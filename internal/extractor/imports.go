package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/suchanek/codekg/internal/lang"
	"github.com/suchanek/codekg/internal/parser"
)

// parseRawImports walks the whole file collecting one rawImport per name
// bound by an import or from-import statement. Grounded on the teacher's
// internal/pipeline/imports.go Python handling (the dotted_name and
// aliased_import child shapes below an import_statement or
// import_from_statement), simplified to resolve straight to an absolute
// dotted path since this module only ever checks a name against its own
// repository's module set, not a multi-project registry.
func parseRawImports(fe *fileExtraction) {
	parser.Walk(fe.tree.RootNode(), func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case lang.KindImportStatement:
			collectImportStatement(fe, node)
			return false
		case lang.KindImportFrom:
			collectImportFrom(fe, node)
			return false
		}
		return true
	})
}

func collectImportStatement(fe *fileExtraction, node *tree_sitter.Node) {
	lineNo := int(node.StartPosition().Row) + 1
	expr := parser.NodeText(node, fe.source)

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case lang.KindDottedName:
			dotted := parser.NodeText(child, fe.source)
			fe.rawImports = append(fe.rawImports, rawImport{
				localName: firstDotSegment(dotted),
				absDotted: dotted,
				lineNo:    lineNo,
				expr:      expr,
			})
		case lang.KindAliasedImport:
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			dotted := parser.NodeText(nameNode, fe.source)
			local := firstDotSegment(dotted)
			if aliasNode != nil {
				local = parser.NodeText(aliasNode, fe.source)
			}
			fe.rawImports = append(fe.rawImports, rawImport{
				localName: local,
				absDotted: dotted,
				lineNo:    lineNo,
				expr:      expr,
			})
		}
	}
}

func collectImportFrom(fe *fileExtraction, node *tree_sitter.Node) {
	lineNo := int(node.StartPosition().Row) + 1
	expr := parser.NodeText(node, fe.source)

	moduleNode := node.ChildByFieldName("module_name")
	var written string
	dots := 0
	if moduleNode != nil {
		written = parser.NodeText(moduleNode, fe.source)
		for dots < len(written) && written[dots] == '.' {
			dots++
		}
		written = written[dots:]
	} else if strings.HasPrefix(expr, "from .") {
		// Bare relative import: "from . import x" / "from .. import x".
		rest := strings.TrimPrefix(expr, "from ")
		for dots < len(rest) && rest[dots] == '.' {
			dots++
		}
	}

	base := written
	if dots > 0 {
		base = relativeBase(fe, dots, written)
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case lang.KindDottedName:
			name := parser.NodeText(child, fe.source)
			if name == written && moduleNode != nil {
				continue // the "from X" clause itself, not an imported member
			}
			fe.rawImports = append(fe.rawImports, rawImport{
				localName: firstDotSegment(name),
				absDotted: joinDotted(base, name),
				lineNo:    lineNo,
				expr:      expr,
			})
		case lang.KindAliasedImport:
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := parser.NodeText(nameNode, fe.source)
			local := firstDotSegment(name)
			if aliasNode != nil {
				local = parser.NodeText(aliasNode, fe.source)
			}
			fe.rawImports = append(fe.rawImports, rawImport{
				localName: local,
				absDotted: joinDotted(base, name),
				lineNo:    lineNo,
				expr:      expr,
			})
		}
	}
}

// relativeBase resolves a relative from-import's leading dots against the
// current file's own package. One dot means "this package"; each
// additional dot climbs one package level further up.
func relativeBase(fe *fileExtraction, dots int, written string) string {
	var parts []string
	if fe.moduleQN != "" {
		parts = strings.Split(fe.moduleQN, ".")
	}
	isPackage := strings.HasSuffix(fe.relPath, "/"+lang.PackageIndicator) || fe.relPath == lang.PackageIndicator
	if !isPackage && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	up := dots - 1
	if up > len(parts) {
		up = len(parts)
	}
	parts = parts[:len(parts)-up]
	return joinDotted(strings.Join(parts, "."), written)
}

func joinDotted(base, suffix string) string {
	if base == "" {
		return suffix
	}
	if suffix == "" {
		return base
	}
	return base + "." + suffix
}

func firstDotSegment(s string) string {
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		return s[:idx]
	}
	return s
}
