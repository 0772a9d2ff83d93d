package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/suchanek/codekg/internal/primitives"
)

func scanNode(row interface {
	Scan(dest ...any) error
}) (primitives.Node, error) {
	var n primitives.Node
	var kind string
	if err := row.Scan(&n.ID, &kind, &n.Name, &n.QualName, &n.ModulePath, &n.LineNo, &n.EndLineNo, &n.Docstring); err != nil {
		return primitives.Node{}, err
	}
	n.Kind = primitives.Kind(kind)
	return n, nil
}

// Node looks up a single node by id, returning (Node{}, false, nil)
// when absent (spec.md §4.3: "node(id) → Node or absent").
func (s *Store) Node(id string) (primitives.Node, bool, error) {
	row := s.db.QueryRow(`SELECT id, kind, name, qualname, module_path, lineno, end_lineno, docstring FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return primitives.Node{}, false, nil
	}
	if err != nil {
		return primitives.Node{}, false, fmt.Errorf("store: node %s: %w", id, err)
	}
	return n, true, nil
}

// QueryNodes returns every node matching the given filters, in
// ascending id order for determinism. A nil/empty kinds slice means
// "any kind"; an empty modulePrefix means "any module".
func (s *Store) QueryNodes(kinds []primitives.Kind, modulePrefix string) ([]primitives.Node, error) {
	var clauses []string
	var args []any

	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		clauses = append(clauses, "kind IN ("+strings.Join(placeholders, ",")+")")
	}
	if modulePrefix != "" {
		clauses = append(clauses, "module_path LIKE ?")
		args = append(args, modulePrefix+"%")
	}

	query := `SELECT id, kind, name, qualname, module_path, lineno, end_lineno, docstring FROM nodes`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query nodes: %w", err)
	}
	defer rows.Close()

	var out []primitives.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// EdgesWithin returns every edge whose src and dst are both present in
// ids (spec.md §4.3: "edges_within(id_set)"), sorted by (src, rel,
// dst) for determinism. Queried in chunks bounded well under SQLite's
// default 999 bind-variable limit, filtering the far endpoint in Go
// rather than issuing a combinatorial two-sided IN query.
func (s *Store) EdgesWithin(ids []string) ([]primitives.Edge, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	const chunkSize = 400
	var edges []primitives.Edge
	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]
		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = strings.TrimSuffix(placeholders, ",")
		args := make([]any, len(chunk))
		for j, id := range chunk {
			args[j] = id
		}

		rows, err := s.db.Query(`SELECT src, rel, dst, evidence FROM edges WHERE src IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("store: edges_within: %w", err)
		}
		for rows.Next() {
			var src, rel, dst, evidence string
			if err := rows.Scan(&src, &rel, &dst, &evidence); err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: scan edge: %w", err)
			}
			if idSet[dst] {
				edges = append(edges, primitives.Edge{
					Src:      src,
					Rel:      primitives.Rel(rel),
					Dst:      dst,
					Evidence: unmarshalEvidence(evidence),
				})
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Src != b.Src {
			return a.Src < b.Src
		}
		if a.Rel != b.Rel {
			return a.Rel < b.Rel
		}
		return a.Dst < b.Dst
	})
	return edges, nil
}

// Stats reports node counts grouped by kind and edge counts grouped by
// relation (spec.md §4.3: "stats() → counts grouped by kind and by
// relation"). Every known kind and relation is present in the result,
// zero-valued if absent from the store, so callers never need a
// presence check.
type Stats struct {
	NodesByKind map[primitives.Kind]int
	EdgesByRel  map[primitives.Rel]int
	TotalNodes  int
	TotalEdges  int
}

func (s *Store) Stats() (Stats, error) {
	st := Stats{
		NodesByKind: map[primitives.Kind]int{},
		EdgesByRel:  map[primitives.Rel]int{},
	}
	for _, k := range []primitives.Kind{
		primitives.KindModule, primitives.KindClass, primitives.KindFunction, primitives.KindMethod, primitives.KindSymbol,
	} {
		st.NodesByKind[k] = 0
	}
	for _, r := range primitives.AllRels {
		st.EdgesByRel[r] = 0
	}

	nodeRows, err := s.db.Query(`SELECT kind, COUNT(*) FROM nodes GROUP BY kind`)
	if err != nil {
		return Stats{}, fmt.Errorf("store: stats nodes: %w", err)
	}
	for nodeRows.Next() {
		var kind string
		var count int
		if err := nodeRows.Scan(&kind, &count); err != nil {
			nodeRows.Close()
			return Stats{}, err
		}
		st.NodesByKind[primitives.Kind(kind)] = count
		st.TotalNodes += count
	}
	if err := nodeRows.Err(); err != nil {
		nodeRows.Close()
		return Stats{}, err
	}
	nodeRows.Close()

	edgeRows, err := s.db.Query(`SELECT rel, COUNT(*) FROM edges GROUP BY rel`)
	if err != nil {
		return Stats{}, fmt.Errorf("store: stats edges: %w", err)
	}
	for edgeRows.Next() {
		var rel string
		var count int
		if err := edgeRows.Scan(&rel, &count); err != nil {
			edgeRows.Close()
			return Stats{}, err
		}
		st.EdgesByRel[primitives.Rel(rel)] = count
		st.TotalEdges += count
	}
	if err := edgeRows.Err(); err != nil {
		edgeRows.Close()
		return Stats{}, err
	}
	edgeRows.Close()

	return st, nil
}
