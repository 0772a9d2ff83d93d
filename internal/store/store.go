// Package store implements the canonical graph database described in
// spec.md §4.3: a two-table SQLite schema keyed by the deterministic
// string ids from internal/primitives, an atomic upsert-or-wipe write
// path, filtered reads, and a bounded undirected BFS with provenance.
// Grounded on the teacher's internal/store package (store.go's
// connection/schema-init pattern, nodes.go/edges.go's batched upsert
// shape), narrowed from the teacher's multi-tenant, int64-keyed model
// to the spec's single-repository, string-id model.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection holding one repository's graph. A
// Store opened with Open takes its write lock from a sibling
// "<dbPath>.lock" file for the duration of each Write call; a Store
// opened with OpenMemory never locks, since nothing outside this
// process can see it.
type Store struct {
	db       *sql.DB
	dbPath   string
	lockPath string // empty for in-memory stores
}

// Open opens or creates the canonical graph file at dbPath, creating
// its parent directory if necessary.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dbPath, err)
	}
	s := &Store{db: db, dbPath: dbPath, lockPath: dbPath + ".lock"}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory store, used by tests and by callers
// that only need a transient graph.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("store: open memory: %w", err)
	}
	s := &Store{db: db, dbPath: ":memory:"}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

// Path returns the canonical graph file's path, or ":memory:" for an
// in-memory store.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS nodes (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		qualname    TEXT NOT NULL,
		module_path TEXT NOT NULL DEFAULT '',
		lineno      INTEGER NOT NULL DEFAULT 0,
		end_lineno  INTEGER NOT NULL DEFAULT 0,
		docstring   TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);
	CREATE INDEX IF NOT EXISTS idx_nodes_module_path ON nodes(module_path);

	CREATE TABLE IF NOT EXISTS edges (
		src      TEXT NOT NULL,
		rel      TEXT NOT NULL,
		dst      TEXT NOT NULL,
		evidence TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (src, rel, dst)
	);
	CREATE INDEX IF NOT EXISTS idx_edges_src ON edges(src);
	CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(dst);
	CREATE INDEX IF NOT EXISTS idx_edges_rel ON edges(rel);
	`
	_, err := s.db.Exec(schema)
	return err
}

// marshalEvidence serializes an edge's evidence map to JSON.
func marshalEvidence(evidence map[string]any) string {
	if len(evidence) == 0 {
		return "{}"
	}
	b, err := json.Marshal(evidence)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// unmarshalEvidence deserializes an edge's evidence column.
func unmarshalEvidence(data string) map[string]any {
	if data == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return map[string]any{}
	}
	return m
}
