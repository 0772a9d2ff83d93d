package primitives

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts an absolute or OS-specific filesystem path,
// relative to root, into a repo-relative POSIX path: forward slashes, no
// leading "./", no leading slash. This is the module_path used in every
// identifier and in the embedding text, so it must be pure and
// platform-independent — grounded on the teacher's fqn.Compute, which
// performs the equivalent filepath.ToSlash normalization before deriving
// a qualified name (internal/fqn/fqn.go).
func NormalizePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	rel = strings.TrimPrefix(rel, "/")
	return rel
}

// ModuleQualname derives the dotted module path for a Python file from its
// repo-relative path: the ".py" suffix is dropped, separators become dots,
// and a package's "__init__" segment is elided so the package directory
// itself stands for the module (mirrors Python's own import semantics).
func ModuleQualname(modulePath string) string {
	trimmed := strings.TrimSuffix(modulePath, ".py")
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
