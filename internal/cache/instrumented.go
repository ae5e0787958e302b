package cache

// instrumentedCache counts lookups of the wrapped cache under its group label.
type instrumentedCache struct {
	inner Cache
	group string
}

// newInstrumentedCache also registers an entries collector that asks inner.Len() at
// scrape time, since TTL expiry happens behind our back (especially in Redis).
func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return val, ok
}

func (c *instrumentedCache) Set(key string, value []byte) { c.inner.Set(key, value) }

func (c *instrumentedCache) Contains(key string) bool { return c.inner.Contains(key) }

func (c *instrumentedCache) Len() int { return c.inner.Len() }

func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.inner.Close()
}
