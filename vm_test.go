package agent

import (
	"context"
	"testing"
)

func TestNewVMFuelDefaultsTo1000(t *testing.T) {
	vm := NewVM(nil)
	ast := Step{"op": "seq", "steps": []any{}}
	result, err := vm.Run(context.Background(), ast, nil, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FuelUsed != 0 {
		t.Errorf("expected an empty seq to spend no fuel, got %d", result.FuelUsed)
	}

	steps := make([]any, 1000)
	for i := range steps {
		steps[i] = Step{"op": "var.set", "key": "k", "value": i}
	}
	full, err := vm.Run(context.Background(), Step{"op": "seq", "steps": steps}, nil, RunOptions{})
	if err != nil {
		t.Fatalf("expected 1000 steps to fit the default fuel, got %v", err)
	}
	if full.FuelUsed != 1000 {
		t.Errorf("expected 1000 fuel used, got %d", full.FuelUsed)
	}
	over := append(steps, Step{"op": "var.set", "key": "k", "value": 1000})
	if _, err := vm.Run(context.Background(), Step{"op": "seq", "steps": over}, nil, RunOptions{}); err == nil {
		t.Error("expected a 1001st step to exceed the default fuel of 1000")
	} else if _, ok := err.(*OutOfFuelError); !ok {
		t.Errorf("expected *OutOfFuelError past the default fuel, got %v (%T)", err, err)
	}
}

func TestRunIDIsUniquePerRun(t *testing.T) {
	vm := NewVM(nil)
	ast := Step{"op": "seq", "steps": []any{}}
	r1, err := vm.Run(context.Background(), ast, nil, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := vm.Run(context.Background(), ast, nil, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.RunID == "" || r2.RunID == "" {
		t.Fatal("expected a non-empty RunID for every run")
	}
	if r1.RunID == r2.RunID {
		t.Error("expected distinct runs to get distinct RunIDs")
	}
}

func TestCatalogIsSortedByCategoryThenOp(t *testing.T) {
	vm := NewVM(nil)
	docs := vm.Catalog()
	if len(docs) == 0 {
		t.Fatal("expected the built-in registry to populate the catalog")
	}
	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1], docs[i]
		if prev.Category > cur.Category {
			t.Fatalf("catalog not sorted by category: %q before %q", prev.Category, cur.Category)
		}
		if prev.Category == cur.Category && prev.Op > cur.Op {
			t.Fatalf("catalog not sorted by op within category %q: %q before %q", prev.Category, prev.Op, cur.Op)
		}
	}
}

func TestCatalogEveryBuiltinHasACategory(t *testing.T) {
	vm := NewVM(nil)
	for _, doc := range vm.Catalog() {
		if doc.Category == "" {
			t.Errorf("atom %q has no category", doc.Op)
		}
	}
}

func cacheOrFetchAST() Step {
	return Step{
		"op": "seq",
		"steps": []any{
			Step{"op": "store.get", "key": "args.url", "result": "result"},
			Step{"op": "neq", "a": "result", "b": nil, "result": "hasCache"},
			Step{
				"op":        "if",
				"condition": "hasCache",
				"vars":      map[string]any{"hasCache": "hasCache"},
				"then": []any{
					Step{"op": "return", "schema": []any{"result"}},
				},
				"else": []any{
					Step{"op": "http.fetch", "url": "args.url", "result": "result"},
					Step{"op": "store.set", "key": "args.url", "value": "result"},
					Step{"op": "return", "schema": []any{"result"}},
				},
			},
			Step{"op": "return", "schema": []any{"result"}},
		},
	}
}

// scenario 1: cache miss then set.
func TestScenarioCacheMissThenSet(t *testing.T) {
	store := &fakeStore{data: map[string]any{}}
	fetchCalls := 0
	fetch := func(ctx context.Context, url string, req FetchRequest) (any, error) {
		fetchCalls++
		return map[string]any{"data": "fresh"}, nil
	}

	vm := NewVM(nil)
	result, err := vm.Run(context.Background(), cacheOrFetchAST(), map[string]any{"url": "http://api.data"}, RunOptions{
		Fuel:         100,
		Capabilities: Capabilities{Fetch: fetch, Store: store},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetchCalls != 1 {
		t.Errorf("expected fetch to be called exactly once, got %d", fetchCalls)
	}
	stored, _ := store.data["http://api.data"]
	want := map[string]any{"data": "fresh"}
	if stored == nil || stored.(map[string]any)["data"] != "fresh" {
		t.Errorf("expected store.set to persist %#v, got %#v", want, stored)
	}
	out := result.Output.(map[string]any)
	if out["result"].(map[string]any)["data"] != "fresh" {
		t.Errorf("expected output.result to be the freshly fetched value, got %#v", out["result"])
	}
}

// scenario 2: cache hit.
func TestScenarioCacheHit(t *testing.T) {
	store := &fakeStore{data: map[string]any{"http://api.data": map[string]any{"data": "cached"}}}
	fetchCalls := 0
	fetch := func(ctx context.Context, url string, req FetchRequest) (any, error) {
		fetchCalls++
		return map[string]any{"data": "fresh"}, nil
	}

	vm := NewVM(nil)
	result, err := vm.Run(context.Background(), cacheOrFetchAST(), map[string]any{"url": "http://api.data"}, RunOptions{
		Fuel:         100,
		Capabilities: Capabilities{Fetch: fetch, Store: store},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetchCalls != 0 {
		t.Errorf("expected fetch to never be invoked on a cache hit, got %d calls", fetchCalls)
	}
	out := result.Output.(map[string]any)
	if out["result"].(map[string]any)["data"] != "cached" {
		t.Errorf("expected output.result to be the cached value, got %#v", out["result"])
	}
}

// scenario 3: template echo.
func TestScenarioTemplateEcho(t *testing.T) {
	store := &fakeStore{data: map[string]any{"secret_id": "Server Value for secret_id"}}
	ast := Step{
		"op": "seq",
		"steps": []any{
			Step{"op": "store.get", "key": "args.key", "result": "val"},
			Step{"op": "template", "tmpl": "Echo: {{val}}", "vars": map[string]any{"val": "val"}, "result": "response"},
			Step{"op": "return", "schema": []any{"response"}},
		},
	}
	vm := NewVM(nil)
	result, err := vm.Run(context.Background(), ast, map[string]any{"key": "secret_id"}, RunOptions{
		Fuel:         100,
		Capabilities: Capabilities{Store: store},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := result.Output.(map[string]any)
	if out["response"] != "Echo: Server Value for secret_id" {
		t.Errorf("expected templated echo, got %v", out["response"])
	}
}
