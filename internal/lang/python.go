// Package lang names the tree-sitter Python grammar's node kinds that the
// extractor matches against. Keeping these as named constants (rather than
// bare string literals scattered through the walker) is the teacher's
// convention for isolating a parser upgrade to one file.
package lang

// Node kinds produced by github.com/tree-sitter/tree-sitter-python.
const (
	KindModule          = "module"
	KindClassDef        = "class_definition"
	KindFunctionDef     = "function_definition"
	KindDecoratedDef    = "decorated_definition"
	KindBlock           = "block"
	KindArgumentList    = "argument_list"
	KindCall            = "call"
	KindAttribute       = "attribute"
	KindIdentifier      = "identifier"
	KindDottedName      = "dotted_name"
	KindAliasedImport   = "aliased_import"
	KindImportStatement = "import_statement"
	KindImportFrom      = "import_from_statement"
	KindString          = "string"
	KindExpressionStmt  = "expression_statement"
)

// FileExtension is the only source suffix the extractor accepts.
const FileExtension = ".py"

// PackageIndicator marks a directory as a Python package for qualname
// purposes (an __init__.py contributes its parent directory's name, not
// "__init__", to the dotted module path).
const PackageIndicator = "__init__.py"
