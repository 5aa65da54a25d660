package cache

import "time"

// LayeredCache stacks a fast tier over a durable tier. Reads promote durable
// hits into the fast tier; writes go to both.
type LayeredCache struct {
	fast    Cache
	durable Cache
}

// NewLayeredCache creates a layered cache from two tiers. durable may be nil
// for a memory-only configuration.
func NewLayeredCache(fast, durable Cache) *LayeredCache {
	return &LayeredCache{fast: fast, durable: durable}
}

// Get checks the fast tier first, then the durable tier.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.fast.Get(key); found {
		return val, true
	}

	if c.durable != nil {
		if val, found := c.durable.Get(key); found {
			_ = c.fast.Set(key, val, 0) // promote with default TTL
			return val, true
		}
	}

	return nil, false
}

// Set stores a value in both tiers.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.fast.Set(key, value, ttl); err != nil {
		return err
	}
	if c.durable != nil {
		return c.durable.Set(key, value, ttl)
	}
	return nil
}

// Delete removes a value from both tiers.
func (c *LayeredCache) Delete(key string) error {
	_ = c.fast.Delete(key)
	if c.durable != nil {
		_ = c.durable.Delete(key)
	}
	return nil
}

// Clear removes all values from both tiers.
func (c *LayeredCache) Clear() error {
	_ = c.fast.Clear()
	if c.durable != nil {
		_ = c.durable.Clear()
	}
	return nil
}
