package samples

import (
	"context"
	"sync"
	"time"

	"github.com/chrissnell/oysterdash/internal/types"
)

// Cache holds the most recently loaded sample set. A zero TTL reloads the
// source for every session; a positive TTL reuses a load until it expires.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	samples  []types.Sample
	loadedAt time.Time
}

// NewCache wraps source
func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the current sample set, loading it when the cached copy is
// missing or stale. The returned slice is shared and must not be modified.
func (c *Cache) Get(ctx context.Context) ([]types.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.samples != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return c.samples, nil
	}

	samples, err := c.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.samples = samples
	c.loadedAt = c.now()
	return samples, nil
}

// Invalidate drops the cached copy so the next Get reloads
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.samples = nil
	c.mu.Unlock()
}

// Close closes the underlying source
func (c *Cache) Close() error {
	return c.source.Close()
}
