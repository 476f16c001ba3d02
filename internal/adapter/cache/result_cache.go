package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/fixora/assetdash/internal/observability"
)

const (
	// DefaultTTL is how long a computed result stays valid
	DefaultTTL = 15 * time.Minute
	// DefaultMaxEntries is the soft cap on stored results
	DefaultMaxEntries = 100

	cacheLabel = "analytics"
)

type entry struct {
	value    interface{}
	storedAt time.Time
}

// ResultCache is a process-wide store of computed analytics results keyed by
// canonical query. Entries expire after the TTL and the oldest-inserted entry
// is evicted once the cap is exceeded. Neither reads nor overwrites change
// eviction order.
type ResultCache struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, *entry]
	ttl     time.Duration
	now     func() time.Time
	metrics *observability.Metrics
}

// Option configures a ResultCache
type Option func(*ResultCache)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		c.now = now
	}
}

// WithMetrics reports hits, misses and evictions to Prometheus
func WithMetrics(m *observability.Metrics) Option {
	return func(c *ResultCache) {
		c.metrics = m
	}
}

// NewResultCache creates a cache holding at most maxEntries results for ttl each
func NewResultCache(maxEntries int, ttl time.Duration, opts ...Option) (*ResultCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	entries, err := simplelru.NewLRU[string, *entry](maxEntries, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	c := &ResultCache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the stored result for key. Missing and expired keys are both
// reported as absent; expired entries are dropped.
func (c *ResultCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		c.record(c.metricMiss)
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.entries.Remove(key)
		c.record(c.metricMiss)
		c.record(func(m *observability.Metrics) {
			m.CacheEvictionsTotal.WithLabelValues(cacheLabel, "expired").Inc()
		})
		c.record(c.metricSize)
		return nil, false
	}

	c.record(c.metricHit)
	return e.value, true
}

// Put stores value under key. Replacing an entry refreshes its timestamp but
// keeps its original insertion position.
func (c *ResultCache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries.Peek(key); ok {
		e.value = value
		e.storedAt = c.now()
		return
	}
	if evicted := c.entries.Add(key, &entry{value: value, storedAt: c.now()}); evicted {
		c.record(func(m *observability.Metrics) {
			m.CacheEvictionsTotal.WithLabelValues(cacheLabel, "capacity").Inc()
		})
	}
	c.record(c.metricSize)
}

// Len returns the number of stored entries, including ones that have expired but not been read
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Contains reports whether key is stored without touching metrics or expiry
func (c *ResultCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Contains(key)
}

func (c *ResultCache) record(fn func(m *observability.Metrics)) {
	if c.metrics != nil {
		fn(c.metrics)
	}
}

func (c *ResultCache) metricHit(m *observability.Metrics) {
	m.CacheHitsTotal.WithLabelValues(cacheLabel).Inc()
}

func (c *ResultCache) metricMiss(m *observability.Metrics) {
	m.CacheMissesTotal.WithLabelValues(cacheLabel).Inc()
}

func (c *ResultCache) metricSize(m *observability.Metrics) {
	m.CacheEntries.WithLabelValues(cacheLabel).Set(float64(c.entries.Len()))
}
