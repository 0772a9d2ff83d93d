package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/suchanek/codekg/internal/lang"
	"github.com/suchanek/codekg/internal/parser"
)

// leadingDocstring extracts a PEP 257 docstring from a definition's body
// block (or, for a module, the root node itself, which plays the same
// role). Grounded on the teacher's extractPythonDocstring
// (internal/pipeline/docstrings.go), narrowed to the one language this
// module parses.
func leadingDocstring(body *tree_sitter.Node, source []byte) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != lang.KindExpressionStmt {
		return ""
	}
	if first.NamedChildCount() == 0 {
		return ""
	}
	strNode := first.NamedChild(0)
	if strNode == nil || strNode.Kind() != lang.KindString {
		return ""
	}
	return cleanDocstring(parser.NodeText(strNode, source))
}

// cleanDocstring strips the triple-quote delimiters and dedents
// continuation lines.
func cleanDocstring(s string) string {
	for _, delim := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, delim) && strings.HasSuffix(s, delim) && len(s) >= 6 {
			s = s[3 : len(s)-3]
			break
		}
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= 1 {
		return strings.TrimSpace(s)
	}
	minIndent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= minIndent {
				lines[i] = lines[i][minIndent:]
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
