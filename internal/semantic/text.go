package semantic

import (
	"fmt"
	"strconv"

	"github.com/suchanek/codekg/internal/primitives"
)

// Eligible reports whether a node's kind may enter the semantic index
// (spec.md §4.4: "only nodes whose kind ∈ {module, class, function,
// method} are embedded. Symbol nodes are never embedded.").
func Eligible(kind primitives.Kind) bool {
	switch kind {
	case primitives.KindModule, primitives.KindClass, primitives.KindFunction, primitives.KindMethod:
		return true
	default:
		return false
	}
}

// BuildText renders a node's embedding text in the format spec.md §4.4
// fixes as stable: changing it invalidates every index built against
// the old format.
func BuildText(n primitives.Node) string {
	return fmt.Sprintf(
		"KIND: %s\nNAME: %s\nQUALNAME: %s\nMODULE: %s\nLINE: %s\nDOCSTRING:\n%s",
		n.Kind, n.Name, n.QualName, n.ModulePath, strconv.Itoa(n.LineNo), n.Docstring,
	)
}
