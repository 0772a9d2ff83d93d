package store

import (
	"database/sql"
	"fmt"

	"github.com/suchanek/codekg/internal/primitives"
)

// Write performs the store's one write operation (spec.md §4.3): if
// wipe is set, both tables are cleared first; otherwise rows are
// upserted by primary key. The whole call is one transaction — a
// failure partway through leaves the store exactly as it was before
// the call — guarded by an exclusive file lock held for the
// transaction's duration so no other writer can interleave.
func (s *Store) Write(nodes []primitives.Node, edges []primitives.Edge, wipe bool) error {
	release, err := s.acquireWriteLock()
	if err != nil {
		return err
	}
	defer release()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin write: %w", err)
	}
	if err := s.writeTx(tx, nodes, edges, wipe); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit write: %w", err)
	}
	return nil
}

func (s *Store) writeTx(tx *sql.Tx, nodes []primitives.Node, edges []primitives.Edge, wipe bool) error {
	if wipe {
		if _, err := tx.Exec(`DELETE FROM edges`); err != nil {
			return fmt.Errorf("store: wipe edges: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM nodes`); err != nil {
			return fmt.Errorf("store: wipe nodes: %w", err)
		}
	}

	const upsertNode = `
	INSERT INTO nodes (id, kind, name, qualname, module_path, lineno, end_lineno, docstring)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		kind = excluded.kind,
		name = excluded.name,
		qualname = excluded.qualname,
		module_path = excluded.module_path,
		lineno = excluded.lineno,
		end_lineno = excluded.end_lineno,
		docstring = excluded.docstring`
	for _, n := range nodes {
		if _, err := tx.Exec(upsertNode, n.ID, string(n.Kind), n.Name, n.QualName, n.ModulePath, n.LineNo, n.EndLineNo, n.Docstring); err != nil {
			return fmt.Errorf("store: upsert node %s: %w", n.ID, err)
		}
	}

	const upsertEdge = `
	INSERT INTO edges (src, rel, dst, evidence)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(src, rel, dst) DO UPDATE SET evidence = excluded.evidence`
	for _, e := range edges {
		if _, err := tx.Exec(upsertEdge, e.Src, string(e.Rel), e.Dst, marshalEvidence(e.Evidence)); err != nil {
			return fmt.Errorf("store: upsert edge %s-%s->%s: %w", e.Src, e.Rel, e.Dst, err)
		}
	}
	return nil
}
