package extractor

import "github.com/suchanek/codekg/internal/primitives"

// regEntry is one registered definition.
type regEntry struct {
	kind     primitives.Kind
	qualname string
	id       string
}

// registry indexes every class/function/method definition by
// (modulePath, simpleName) so cross-file resolution never has to guess:
// a lookup either finds an exact definition or it doesn't. Grounded on
// the teacher's FunctionRegistry (internal/pipeline/resolver.go), but
// keyed by module instead of flattened to a single simple-name index —
// this module's resolver never does project-wide fuzzy matching, so it
// has no need for the teacher's byName/suffix/import-distance machinery.
type registry struct {
	byModule map[string]map[string]regEntry
}

func newRegistry() *registry {
	return &registry{byModule: make(map[string]map[string]regEntry)}
}

func (r *registry) register(modulePath, name string, kind primitives.Kind, qualname, id string) {
	m, ok := r.byModule[modulePath]
	if !ok {
		m = make(map[string]regEntry)
		r.byModule[modulePath] = m
	}
	// A module may define several methods with the same simple name across
	// different classes (e.g. two classes both with a "run" method); the
	// registry is queried with a fully-qualified lookup name in that case
	// (the qualname key below), so the simple-name slot only needs to win
	// for top-level classes and functions, which are unique per module.
	if _, exists := m[name]; !exists || qualname == name {
		m[name] = regEntry{kind: kind, qualname: qualname, id: id}
	}
	// Also index by full qualname so method lookups ("C.f") are exact.
	if _, exists := m[qualname]; !exists {
		m[qualname] = regEntry{kind: kind, qualname: qualname, id: id}
	}
}

// lookup finds a definition by simple or dotted name within one module.
func (r *registry) lookup(modulePath, name string) (regEntry, bool) {
	m, ok := r.byModule[modulePath]
	if !ok {
		return regEntry{}, false
	}
	e, ok := m[name]
	return e, ok
}
