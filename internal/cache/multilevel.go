package cache

import "time"

const l1BackfillTTL = 5 * time.Minute

// MultiLevelCache layers an in-process L1 over redis. The redis leg sits
// behind a circuit breaker so an outage degrades to L1-or-miss instead
// of stalling every request on a dead connection.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics
}

func NewMultiLevelCache(redisCache *RedisCache) *MultiLevelCache {
	return &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		breaker: NewCircuitBreaker(nil),
		metrics: NewCacheMetrics(),
	}
}

func (c *MultiLevelCache) Set(key string, value interface{}, ttl time.Duration) error {
	c.metrics.RecordSet()
	c.l1.Set(key, value, ttl)

	if c.l2 == nil {
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Set(key, value, ttl)
	})
	if err != nil {
		c.metrics.RecordError()
	}
	return err
}

func (c *MultiLevelCache) Get(key string, dest interface{}) error {
	if err := c.l1.Get(key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	// A miss is a healthy answer, not a redis failure. Report it as
	// success to the breaker so routine misses never trip it; only
	// transport errors count.
	var missed bool
	err := c.breaker.Execute(func() error {
		if err := c.l2.Get(key, dest); err != nil {
			if err == ErrCacheMiss {
				missed = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		c.metrics.RecordMiss()
		c.metrics.RecordError()
		return ErrCacheMiss
	}
	if missed {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	c.l1.Set(key, dest, l1BackfillTTL)
	return nil
}

func (c *MultiLevelCache) Delete(key string) error {
	c.metrics.RecordDelete()
	c.l1.Delete(key)

	if c.l2 == nil {
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Delete(key)
	})
	if err != nil {
		c.metrics.RecordError()
	}
	return err
}

func (c *MultiLevelCache) Exists(key string) (bool, error) {
	if found, _ := c.l1.Exists(key); found {
		return true, nil
	}

	if c.l2 == nil {
		return false, nil
	}

	var found bool
	err := c.breaker.Execute(func() error {
		var innerErr error
		found, innerErr = c.l2.Exists(key)
		return innerErr
	})
	if err != nil {
		return false, nil
	}
	return found, nil
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"breaker": c.breaker.GetStats(),
		"metrics": c.metrics.GetStats(),
	}

	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}

	return stats
}

func (c *MultiLevelCache) Health() error {
	if c.l2 != nil {
		return c.l2.Health()
	}

	return nil
}

func (c *MultiLevelCache) Close() error {
	c.l1.Close()

	if c.l2 != nil {
		return c.l2.Close()
	}

	return nil
}
