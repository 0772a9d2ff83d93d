package orchestrator

import (
	"fmt"
	"strings"
)

// Markdown renders the pack as line-numbered markdown (spec.md §6,
// "Markdown format: one section per node with a header line carrying
// id, kind, module_path, and line range, followed by a fenced block
// whose body is the snippet text with 1-based line numbers, zero-padded
// to the width of the file's largest line number"). The snippet text
// is already zero-padded by Pack's renderSnippet, so this only adds
// headers and fences.
func (p SnippetPack) Markdown() string {
	var b strings.Builder
	for i, node := range p.Nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s (%s) %s:%d-%d\n\n", node.ID, node.Kind, node.ModulePath, node.Snippet.Start, node.Snippet.End)
		b.WriteString("```\n")
		b.WriteString(node.Snippet.Text)
		b.WriteString("```\n")
	}
	return b.String()
}
