package cache

// Option applies a configuration option to the cache.
type Option func(*lruCache)

// WithMaxSize sets the number of predictions kept in memory.
// If maxSize <= 0 the cache is disabled.
func WithMaxSize(maxSize int) Option {
	return func(c *lruCache) {
		c.maxSize = maxSize
	}
}
