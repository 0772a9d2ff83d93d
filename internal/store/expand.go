package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suchanek/codekg/internal/primitives"
)

// Provenance records, for one node reached by Expand, the minimum
// number of in-R edges from any seed (BestHop) and the
// lexicographically smallest seed that achieves it (ViaSeed).
type Provenance struct {
	BestHop int
	ViaSeed string
}

// Expand performs the bounded, undirected BFS described in spec.md
// §4.3: starting from seeds at hop 0, it advances the frontier hop by
// hop along edges whose relation is in rels, treating every edge as
// traversable in both directions, and returns every reached node's
// best hop count and the seed that reached it first under the
// lexicographic tie-break. Grounded on the teacher's
// internal/store/traverse.go single-seed BFS and impact.go's
// DeduplicateHops minimum-hop-wins pattern, generalized to multiple
// seeds, both edge directions, and explicit via-seed provenance.
func (s *Store) Expand(seeds []string, hops int, rels []primitives.Rel) (map[string]Provenance, error) {
	if hops < 0 {
		return nil, fmt.Errorf("store: expand: negative hop count %d", hops)
	}
	result := make(map[string]Provenance, len(seeds))
	if len(seeds) == 0 {
		return result, nil
	}

	sortedSeeds := append([]string(nil), seeds...)
	sort.Strings(sortedSeeds)

	frontier := make([]string, 0, len(sortedSeeds))
	for _, seed := range sortedSeeds {
		if _, ok := result[seed]; ok {
			continue
		}
		result[seed] = Provenance{BestHop: 0, ViaSeed: seed}
		frontier = append(frontier, seed)
	}

	for hop := 1; hop <= hops; hop++ {
		type candidate struct {
			node string
			via  string
		}
		var candidates []candidate
		for _, u := range frontier {
			neighbors, err := s.neighbors(u, rels)
			if err != nil {
				return nil, err
			}
			via := result[u].ViaSeed
			for _, v := range neighbors {
				if _, visited := result[v]; visited {
					continue
				}
				candidates = append(candidates, candidate{node: v, via: via})
			}
		}
		if len(candidates) == 0 {
			break
		}

		bestVia := make(map[string]string, len(candidates))
		for _, c := range candidates {
			if cur, ok := bestVia[c.node]; !ok || c.via < cur {
				bestVia[c.node] = c.via
			}
		}

		next := make([]string, 0, len(bestVia))
		for node := range bestVia {
			next = append(next, node)
		}
		sort.Strings(next)

		for _, node := range next {
			result[node] = Provenance{BestHop: hop, ViaSeed: bestVia[node]}
		}
		frontier = next
	}

	return result, nil
}

// neighbors returns the sorted, deduplicated set of node ids reachable
// from id via one edge whose relation is in rels, considering both
// src→dst and dst→src (spec.md §4.3: "edges are traversed as
// undirected for expansion purposes").
func (s *Store) neighbors(id string, rels []primitives.Rel) ([]string, error) {
	if len(rels) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(rels))
	relArgs := make([]any, len(rels))
	for i, r := range rels {
		placeholders[i] = "?"
		relArgs[i] = string(r)
	}
	relClause := strings.Join(placeholders, ",")

	seen := make(map[string]bool)

	outArgs := append([]any{id}, relArgs...)
	outRows, err := s.db.Query(`SELECT dst FROM edges WHERE src = ? AND rel IN (`+relClause+`)`, outArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: neighbors (outbound): %w", err)
	}
	for outRows.Next() {
		var dst string
		if err := outRows.Scan(&dst); err != nil {
			outRows.Close()
			return nil, err
		}
		seen[dst] = true
	}
	if err := outRows.Err(); err != nil {
		outRows.Close()
		return nil, err
	}
	outRows.Close()

	inArgs := append([]any{id}, relArgs...)
	inRows, err := s.db.Query(`SELECT src FROM edges WHERE dst = ? AND rel IN (`+relClause+`)`, inArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: neighbors (inbound): %w", err)
	}
	for inRows.Next() {
		var src string
		if err := inRows.Scan(&src); err != nil {
			inRows.Close()
			return nil, err
		}
		seen[src] = true
	}
	if err := inRows.Err(); err != nil {
		inRows.Close()
		return nil, err
	}
	inRows.Close()

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
