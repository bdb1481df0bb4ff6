// Package lru provides an in-memory embedding cache.
package lru

import (
	"context"

	"github.com/fwojciec/spyder"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Compile-time interface verification.
var _ spyder.Embedder = (*CachingEmbedder)(nil)

// CachingEmbedder remembers the vectors of recently embedded texts, keyed by
// the text itself. Only texts missing from the cache are sent to the wrapped
// embedder. It is safe for concurrent use.
type CachingEmbedder struct {
	next  spyder.Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachingEmbedder wraps next with a cache holding up to size vectors.
func NewCachingEmbedder(next spyder.Embedder, size int) (*CachingEmbedder, error) {
	if size <= 0 {
		return nil, spyder.Errorf(spyder.ECONFIG, "embedding cache size must be positive, got %d", size)
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, spyder.WrapError(spyder.ECONFIG, err, "init embedding cache")
	}
	return &CachingEmbedder{next: next, cache: cache}, nil
}

// Model returns the wrapped embedder's model.
func (e *CachingEmbedder) Model() string {
	return e.next.Model()
}

// Load delegates to the wrapped embedder.
func (e *CachingEmbedder) Load(ctx context.Context) error {
	return e.next.Load(ctx)
}

// Embed returns cached vectors where possible and embeds the rest in one
// call, preserving input order.
func (e *CachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := e.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, spyder.Errorf(spyder.EINTERNAL, "embedder returned %d vectors for %d texts", len(vectors), len(missing))
	}

	for j, i := range missingIdx {
		out[i] = vectors[j]
		e.cache.Add(texts[i], vectors[j])
	}
	return out, nil
}
