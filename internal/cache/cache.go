// Package cache is an in-process key/value store with per-entry expiry.
//
// Expiry is lazy: Get treats an entry older than its TTL as absent and
// drops it. Start runs an optional janitor that sweeps expired entries to
// bound memory; correctness never depends on it.
package cache

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultTTL = 24 * time.Hour

	// checkPeriodFactor scales the TTL into the janitor interval.
	checkPeriodFactor = 0.2
	minCheckPeriod    = time.Second
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

func (e entry[V]) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.insertedAt) > e.ttl
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Keys   int    `json:"keys"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

type Options struct {
	TTL         time.Duration
	CheckPeriod time.Duration
	Now         func() time.Time
}

// Cache is safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	items   map[string]entry[V]
	ttl     time.Duration
	period  time.Duration
	now     func() time.Time
	hits    uint64
	misses  uint64
	stop    context.CancelFunc
	stopped chan struct{}
}

func New[V any](opts Options) *Cache[V] {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	period := opts.CheckPeriod
	if period <= 0 {
		period = max(time.Duration(float64(ttl)*checkPeriodFactor), minCheckPeriod)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		items:  make(map[string]entry[V]),
		ttl:    ttl,
		period: period,
		now:    now,
	}
}

// TTL is the default time-to-live applied by Set.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if it is present and unexpired. Every call
// counts as a hit or a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok && e.expired(c.now()) {
		delete(c.items, key)
		ok = false
	}
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key with the default TTL, overwriting any entry.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an explicit TTL. A non-positive
// ttl falls back to the default.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, insertedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Has reports whether key holds an unexpired entry. It does not touch the
// hit/miss counters.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	return ok && !e.expired(c.now())
}

// Delete removes key and returns the number of entries removed (0 or 1).
func (c *Cache[V]) Delete(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return 0
	}
	delete(c.items, key)
	if e.expired(c.now()) {
		return 0
	}
	return 1
}

// Clear drops every entry and resets the counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := 0
	now := c.now()
	for _, e := range c.items {
		if !e.expired(now) {
			keys++
		}
	}
	return Stats{Keys: keys, Hits: c.hits, Misses: c.misses}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Start launches the janitor. It stops when ctx is done or Close is called.
func (c *Cache[V]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.stop = cancel
	c.stopped = make(chan struct{})
	done := c.stopped
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Close stops the janitor, if running, and waits for it to exit.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	stop, done := c.stop, c.stopped
	c.stop, c.stopped = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
}
