package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Embedder is the embedding-generation collaborator.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingCache memoizes query embeddings across two tiers: a bounded
// in-process LRU and an optional durable secondary tier. A secondary-tier
// hit is promoted into the LRU; a full miss invokes the embedder and writes
// both tiers, with the secondary write fire-and-forget.
type EmbeddingCache struct {
	lru       *LRU[[]float32]
	secondary Cache // nil when not configured
	ttl       time.Duration
	embedder  Embedder
}

// NewEmbeddingCache creates an embedding cache. secondary may be nil.
func NewEmbeddingCache(capacity int, secondary Cache, ttl time.Duration, embedder Embedder) *EmbeddingCache {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &EmbeddingCache{
		lru:       NewLRU[[]float32](capacity),
		secondary: secondary,
		ttl:       ttl,
		embedder:  embedder,
	}
}

// Get returns the embedding for query and whether it was served from cache.
// The cached flag is for logging/metrics only; callers see no other side
// effect beyond the returned vector.
func (c *EmbeddingCache) Get(ctx context.Context, query string) ([]float32, bool, error) {
	key := NormalizeQuery(query)

	if vec, ok := c.lru.Get(key); ok {
		return vec, true, nil
	}

	if c.secondary != nil {
		if data, ok := c.secondary.Get(Key(key)); ok {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
				c.lru.Set(key, vec)
				return vec, true, nil
			}
		}
	}

	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, false, err
	}

	c.lru.Set(key, vec)
	if c.secondary != nil {
		// Fire-and-forget: a durable-tier write failure must not fail the
		// request.
		if data, err := json.Marshal(vec); err == nil {
			go func() {
				if err := c.secondary.Set(Key(key), data, c.ttl); err != nil {
					slog.Debug("embedding cache secondary write failed", "err", err)
				}
			}()
		}
	}

	return vec, false, nil
}

// NormalizeQuery produces the cache key form of a query: lowercased,
// trimmed, inner whitespace collapsed.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")
}
