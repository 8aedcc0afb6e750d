// Package sqlitestore is the reference store.{get,set,query,vectorSearch}
// capability, backed by SQLite via database/sql and the mattn/go-sqlite3
// driver. vectorSearch is a linear cosine-similarity scan over a side
// table — no vector index library appears anywhere in the retrieved
// examples, so this stays a plain scan rather than reach for an
// out-of-pack dependency (see DESIGN.md).
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	agent "github.com/tonioloewald/agent-99"
)

// Store implements agent.StoreCapability.
type Store struct {
	db *sql.DB
}

var _ agent.StoreCapability = (*Store)(nil)

// Open creates the kv/vectors tables if they don't already exist and
// returns a Store wrapping db.
func Open(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return nil, fmt.Errorf("sqlitestore: creating kv table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vectors (key TEXT PRIMARY KEY, value TEXT NOT NULL, vec TEXT NOT NULL)`); err != nil {
		return nil, fmt.Errorf("sqlitestore: creating vectors table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return agent.Null{}, nil
	}
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(raw))
	return err
}

// SetVector stores value under key alongside its embedding vec so it later
// surfaces from VectorSearch. The core's store.* atoms never populate
// vectors implicitly — a host wires this in directly when it wants a
// value to be searchable by similarity.
func (s *Store) SetVector(ctx context.Context, key string, value any, vec []float64) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	vecRaw, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO vectors (key, value, vec) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, vec = excluded.vec`, key, string(raw), string(vecRaw))
	return err
}

// Query runs a key-prefix scan: q is a map with an optional "prefix"
// string field (absent or non-map q matches every row). The core spec
// leaves store.query's argument shape to the host.
func (s *Store) Query(ctx context.Context, q any) ([]any, error) {
	prefix := ""
	if m, ok := q.(map[string]any); ok {
		if p, ok := m["prefix"].(string); ok {
			prefix = p
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT value FROM kv WHERE key LIKE ? ORDER BY key`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// VectorSearch ranks every stored vector by cosine similarity to vec, most
// similar first.
func (s *Store) VectorSearch(ctx context.Context, vec []float64) ([]any, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT value, vec FROM vectors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		value any
		score float64
	}
	var candidates []scored

	for rows.Next() {
		var valueRaw, vecRaw string
		if err := rows.Scan(&valueRaw, &vecRaw); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(valueRaw), &v); err != nil {
			return nil, err
		}
		var candidate []float64
		if err := json.Unmarshal([]byte(vecRaw), &candidate); err != nil {
			return nil, err
		}
		candidates = append(candidates, scored{value: v, score: cosineSimilarity(vec, candidate)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]any, len(candidates))
	for i, c := range candidates {
		out[i] = c.value
	}
	return out, nil
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
