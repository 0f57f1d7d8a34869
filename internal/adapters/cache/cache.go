// Package cache memoizes predictions keyed by the encoded feature vector.
package cache

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 10_000

// PredictionCache stores prices by encoded row. Implementations are safe for
// concurrent use.
type PredictionCache interface {
	// Get returns the cached price for key.
	Get(ctx context.Context, key string) (float64, bool)
	// Add stores price under key, evicting the least recently used entry when full.
	Add(ctx context.Context, key string, price float64)
	// Size is the current number of entries.
	Size() int64
	// Stats reports hits and misses since creation.
	Stats() Stats
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Capacity int   `json:"capacity"`
	Entries  int64 `json:"entries"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// Key encodes a feature vector exactly; two vectors share a key only when
// every component has the same bits.
func Key(x []float64) string {
	var b strings.Builder
	b.Grow(len(x) * 17)
	for i, v := range x {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}

// New returns an LRU cache, or a cache that stores nothing when the
// configured size is zero or negative.
func New(opts ...Option) PredictionCache {
	c := &lruCache{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxSize <= 0 {
		return &noopCache{}
	}
	// lru.New only fails for non-positive sizes.
	c.entries, _ = lru.New[string, float64](c.maxSize)
	return c
}

type lruCache struct {
	maxSize int
	entries *lru.Cache[string, float64]
	hits    atomic.Int64
	misses  atomic.Int64
}

func (c *lruCache) Get(_ context.Context, key string) (float64, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *lruCache) Add(_ context.Context, key string, price float64) {
	c.entries.Add(key, price)
}

func (c *lruCache) Size() int64 { return int64(c.entries.Len()) }

func (c *lruCache) Stats() Stats {
	return Stats{
		Capacity: c.maxSize,
		Entries:  c.Size(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}

// noopCache is used when memoization is disabled.
type noopCache struct {
	misses atomic.Int64
}

func (c *noopCache) Get(context.Context, string) (float64, bool) {
	c.misses.Add(1)
	return 0, false
}

func (c *noopCache) Add(context.Context, string, float64) {}

func (c *noopCache) Size() int64 { return 0 }

func (c *noopCache) Stats() Stats { return Stats{Misses: c.misses.Load()} }
