package agent

import "sync"

// CacheKey is any comparable value usable as a TypeSafeCache key.
type CacheKey interface{}

// TypeSafeCache is a generic concurrent-safe cache over sync.Map.
type TypeSafeCache[T any] struct {
	data sync.Map
}

// NewTypeSafeCache creates an empty cache.
func NewTypeSafeCache[T any]() *TypeSafeCache[T] {
	return &TypeSafeCache[T]{}
}

func (c *TypeSafeCache[T]) Load(key CacheKey) (T, bool) {
	value, ok := c.data.Load(key)
	if !ok {
		var zero T
		return zero, false
	}
	return value.(T), true
}

func (c *TypeSafeCache[T]) Store(key CacheKey, value T) {
	c.data.Store(key, value)
}

func (c *TypeSafeCache[T]) Delete(key CacheKey) {
	c.data.Delete(key)
}

func (c *TypeSafeCache[T]) Size() int {
	count := 0
	c.data.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// exprTokenCache memoizes tokenize(expr) across repeated evaluations of the
// same expression string — e.g. a while loop's condition, re-parsed once
// per iteration otherwise. Expressions are immutable strings, so caching
// tokens (rather than results, which depend on vars) is always safe.
var exprTokenCache = NewTypeSafeCache[[]token]()

func tokenizeCached(expr string) ([]token, error) {
	if toks, ok := exprTokenCache.Load(expr); ok {
		return toks, nil
	}
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	exprTokenCache.Store(expr, toks)
	return toks, nil
}
