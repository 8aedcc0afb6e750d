package sqlitestore

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	agent "github.com/tonioloewald/agent-99"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := Open(db)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return store
}

func TestGetSetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", map[string]any{"data": "fresh"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, ok := v.(map[string]any)
	if !ok || out["data"] != "fresh" {
		t.Errorf("expected round-tripped value, got %#v", v)
	}
}

func TestGetMissingKeyReturnsNullSentinel(t *testing.T) {
	store := openTestStore(t)
	v, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(agent.Null); !ok {
		t.Errorf("expected a missing key to resolve to agent.Null{}, got %v (%T)", v, v)
	}
}

func TestSetOverwritesExistingKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	store.Set(ctx, "k", "first")
	store.Set(ctx, "k", "second")

	v, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "second" {
		t.Errorf("expected the second write to win, got %v", v)
	}
}

func TestQueryFiltersByPrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	store.Set(ctx, "user:1", "alice")
	store.Set(ctx, "user:2", "bob")
	store.Set(ctx, "order:1", "widget")

	results, err := store.Query(ctx, map[string]any{"prefix": "user:"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results for prefix 'user:', got %d: %#v", len(results), results)
	}
}

func TestQueryWithNoPrefixMatchesEverything(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	store.Set(ctx, "a", 1.0)
	store.Set(ctx, "b", 2.0)

	results, err := store.Query(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected every row to match an empty prefix, got %d", len(results))
	}
}

func TestVectorSearchOrdersByCosineSimilarity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SetVector(ctx, "close", "close-match", []float64{1, 0, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetVector(ctx, "far", "far-match", []float64{0, 1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := store.VectorSearch(ctx, []float64{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] != "close-match" {
		t.Errorf("expected the closer vector to rank first, got %#v", results)
	}
}

func TestCosineSimilarityOrthogonalIsZero(t *testing.T) {
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("expected orthogonal vectors to have zero similarity, got %v", got)
	}
}

func TestCosineSimilarityIdenticalIsOne(t *testing.T) {
	got := cosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3})
	if got < 0.999999 || got > 1.000001 {
		t.Errorf("expected identical vectors to have similarity ~1, got %v", got)
	}
}

func TestCosineSimilarityZeroVectorIsZero(t *testing.T) {
	if got := cosineSimilarity([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Errorf("expected a zero-magnitude vector to have zero similarity, got %v", got)
	}
}
