package semantic

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/suchanek/codekg/internal/primitives"
)

// SQLiteVectorStore is the default VectorStore backend: a sibling
// SQLite database holding one row per embedded node, with brute-force
// cosine-distance k-NN search (spec.md §4.4: "the default vector store
// is the same SQLite file family as the graph store; no external
// vector database is required"). Grounded on internal/store's
// connection-open pattern, narrowed to this package's one table.
type SQLiteVectorStore struct {
	db       *sql.DB
	table    string
	dim      int
	dimKnown bool
}

func OpenSQLiteVectorStore(indexDir, tableName string) (*SQLiteVectorStore, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("semantic: mkdir %s: %w", indexDir, err)
	}
	table := sanitizeTableName(tableName)
	dbPath := filepath.Join(indexDir, "semantic.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("semantic: open %s: %w", dbPath, err)
	}
	vs := &SQLiteVectorStore{db: db, table: table}
	if err := vs.ensureMetaTable(); err != nil {
		db.Close()
		return nil, err
	}
	if err := vs.loadDimension(); err != nil {
		db.Close()
		return nil, err
	}
	return vs, nil
}

// sanitizeTableName keeps only identifier characters, since table
// is interpolated directly into SQL statements below (sql.DB has no
// placeholder syntax for identifiers).
func sanitizeTableName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "semantic_nodes"
	}
	return b.String()
}

func (vs *SQLiteVectorStore) ensureMetaTable() error {
	_, err := vs.db.Exec(`CREATE TABLE IF NOT EXISTS semantic_meta (table_name TEXT PRIMARY KEY, dim INTEGER NOT NULL)`)
	return err
}

func (vs *SQLiteVectorStore) loadDimension() error {
	var dim int
	err := vs.db.QueryRow(`SELECT dim FROM semantic_meta WHERE table_name = ?`, vs.table).Scan(&dim)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("semantic: load dimension: %w", err)
	}
	vs.dim = dim
	vs.dimKnown = true
	return nil
}

func (vs *SQLiteVectorStore) Dimension() (int, bool) { return vs.dim, vs.dimKnown }

func (vs *SQLiteVectorStore) Wipe(ctx context.Context, dim int) error {
	if _, err := vs.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, vs.table)); err != nil {
		return fmt.Errorf("semantic: drop %s: %w", vs.table, err)
	}
	schema := fmt.Sprintf(`
	CREATE TABLE %s (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		qualname    TEXT NOT NULL,
		module_path TEXT NOT NULL DEFAULT '',
		vector      TEXT NOT NULL
	)`, vs.table)
	if _, err := vs.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("semantic: create %s: %w", vs.table, err)
	}
	if _, err := vs.db.ExecContext(ctx,
		`INSERT INTO semantic_meta (table_name, dim) VALUES (?, ?)
		 ON CONFLICT(table_name) DO UPDATE SET dim = excluded.dim`, vs.table, dim); err != nil {
		return fmt.Errorf("semantic: record dimension: %w", err)
	}
	vs.dim = dim
	vs.dimKnown = true
	return nil
}

func (vs *SQLiteVectorStore) Upsert(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := vs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("semantic: begin upsert: %w", err)
	}
	upsert := fmt.Sprintf(`
	INSERT INTO %s (id, kind, name, qualname, module_path, vector)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		kind = excluded.kind, name = excluded.name, qualname = excluded.qualname,
		module_path = excluded.module_path, vector = excluded.vector`, vs.table)
	for _, r := range rows {
		encoded, err := json.Marshal(r.Vector)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("semantic: marshal vector for %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, upsert, r.ID, string(r.Kind), r.Name, r.QualName, r.ModulePath, string(encoded)); err != nil {
			tx.Rollback()
			return fmt.Errorf("semantic: upsert row %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("semantic: commit upsert: %w", err)
	}
	return nil
}

func (vs *SQLiteVectorStore) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	query := fmt.Sprintf(`SELECT id, kind, name, qualname, module_path, vector FROM %s`, vs.table)
	rows, err := vs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic: search scan %s: %w", vs.table, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var rec Record
		var kind, encoded string
		if err := rows.Scan(&rec.ID, &kind, &rec.Name, &rec.QualName, &rec.ModulePath, &encoded); err != nil {
			return nil, fmt.Errorf("semantic: scan row: %w", err)
		}
		rec.Kind = primitives.Kind(kind)
		var candidate []float32
		if err := json.Unmarshal([]byte(encoded), &candidate); err != nil {
			return nil, fmt.Errorf("semantic: unmarshal vector for %s: %w", rec.ID, err)
		}
		results = append(results, SearchResult{Record: rec, Distance: cosineDistance(vector, candidate)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("semantic: search iterate %s: %w", vs.table, err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return 1 - cosine
}
