package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tabstore/tabstore/lib/binding"
	"github.com/tabstore/tabstore/lib/manager"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

const (
	// DefaultStaleTime is the age after which cached data is considered
	// stale but still shown.
	DefaultStaleTime = 5 * time.Minute
	// DefaultCacheTime is the underlying TTL after which the record is
	// purged entirely.
	DefaultCacheTime = 30 * time.Minute
)

// FetchFunc produces a fresh value, typically from the network.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Config tunes a cache instance. Use DefaultConfig as the starting point;
// a zero StaleTime or CacheTime falls back to the defaults.
type Config struct {
	StaleTime          time.Duration
	CacheTime          time.Duration
	RefetchOnMount     bool
	RefetchOnReconnect bool
	RefetchOnFocus     bool
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		StaleTime:          DefaultStaleTime,
		CacheTime:          DefaultCacheTime,
		RefetchOnReconnect: true,
		RefetchOnFocus:     false,
	}
}

func (c Config) withDefaults() Config {
	if c.StaleTime <= 0 {
		c.StaleTime = DefaultStaleTime
	}
	if c.CacheTime <= 0 {
		c.CacheTime = DefaultCacheTime
	}
	return c
}

// --------------------------------------------------------------------------
// Cache Type
// --------------------------------------------------------------------------

// Cache composes a value binding with an asynchronous fetch function,
// staleness tracking, loading/error state and revalidation triggers.
//
// At most one fetch is in flight per instance: a fetch request arriving
// while one is pending is dropped, not queued. Completions carry a
// generation token; a completion whose generation is no longer current
// (after Invalidate, Rebind or Close) is discarded instead of being applied
// to the wrong key.
type Cache[T any] struct {
	b     *binding.Binding[T]
	fetch FetchFunc[T]
	cfg   Config

	inFlight atomic.Bool
	gen      atomic.Uint64
	closed   atomic.Bool

	mu         sync.Mutex
	loading    bool
	err        error
	forceStale bool

	// fetchDone is signaled after each fetch attempt settles; tests use it
	// to wait deterministically.
	fetchDone chan struct{}
}

// New creates a cache over key backed by fetch. The cached value is
// persisted through mgr with the cache time as TTL. An initial fetch is
// triggered when no cached value exists, or unconditionally when
// RefetchOnMount is set.
func New[T any](mgr *manager.Manager, key string, def T, fetch FetchFunc[T], cfg Config) *Cache[T] {
	cfg = cfg.withDefaults()
	c := &Cache[T]{
		fetch:     fetch,
		cfg:       cfg,
		fetchDone: make(chan struct{}, 1),
	}
	c.b = binding.New(mgr, key, def, manager.Options{TTL: cfg.CacheTime})

	if cfg.RefetchOnMount || !c.b.Loaded() {
		c.fetchData()
	}
	return c
}

// --------------------------------------------------------------------------
// State Accessors
// --------------------------------------------------------------------------

// Value returns the currently cached value (possibly stale).
func (c *Cache[T]) Value() T {
	return c.b.Value()
}

// Loading reports whether a fetch is currently in flight.
func (c *Cache[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the most recent fetch error. A failed fetch leaves the
// previously cached value untouched and visible (stale-while-error).
func (c *Cache[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Stale reports whether the cached data is past its freshness window:
// stale = (now - createdAt) > staleTime when a value and its creation time
// are both known, false otherwise. Invalidate forces staleness until the
// next successful fetch.
func (c *Cache[T]) Stale() bool {
	c.mu.Lock()
	forced := c.forceStale
	c.mu.Unlock()
	if forced {
		return true
	}

	if !c.b.Loaded() {
		return false
	}
	created, ok := c.b.CreatedAt()
	if !ok {
		return false
	}
	return c.b.Manager().Now().Sub(created) > c.cfg.StaleTime
}

// OnChange registers a callback for cached value updates.
func (c *Cache[T]) OnChange(fn func(T)) (cancel func()) {
	return c.b.OnChange(fn)
}

// --------------------------------------------------------------------------
// Fetching
// --------------------------------------------------------------------------

// fetchData starts a fetch unless one is already pending.
func (c *Cache[T]) fetchData() {
	if c.closed.Load() {
		return
	}
	// dedup: at most one in-flight fetch, concurrent requests are dropped
	if !c.inFlight.CompareAndSwap(false, true) {
		return
	}

	gen := c.gen.Load()

	c.mu.Lock()
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	go func() {
		v, err := c.fetch(context.Background())

		defer func() {
			c.inFlight.Store(false)
			select {
			case c.fetchDone <- struct{}{}:
			default:
			}
		}()

		// discard completions from a previous generation or a torn-down
		// instance instead of applying them to the wrong binding state
		if c.closed.Load() || c.gen.Load() != gen {
			c.mu.Lock()
			c.loading = false
			c.mu.Unlock()
			return
		}

		if err != nil {
			c.mu.Lock()
			c.loading = false
			c.err = err
			c.mu.Unlock()
			return
		}

		c.b.Set(v)
		c.mu.Lock()
		c.loading = false
		c.err = nil
		c.forceStale = false
		c.mu.Unlock()
	}()
}

// Refetch forces a fetch regardless of staleness.
func (c *Cache[T]) Refetch() {
	c.fetchData()
}

// Invalidate removes the persisted value and marks the state stale without
// triggering an immediate fetch. A pending fetch's result is discarded.
func (c *Cache[T]) Invalidate() {
	c.gen.Add(1)
	c.b.Remove()
	c.mu.Lock()
	c.forceStale = true
	c.mu.Unlock()
}

// --------------------------------------------------------------------------
// Revalidation Triggers
// --------------------------------------------------------------------------

// OnReconnect handles a network-online signal: fetch only if the data is
// currently stale or absent.
func (c *Cache[T]) OnReconnect() {
	if !c.cfg.RefetchOnReconnect {
		return
	}
	if c.Stale() || !c.b.Loaded() {
		c.fetchData()
	}
}

// OnFocus handles a window-focus signal: fetch only if the data is
// currently stale.
func (c *Cache[T]) OnFocus() {
	if !c.cfg.RefetchOnFocus {
		return
	}
	if c.Stale() {
		c.fetchData()
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Rebind switches the cache to a new key. A pending fetch for the old key
// is discarded rather than applied to the new one.
func (c *Cache[T]) Rebind(key string) {
	c.gen.Add(1)
	c.b.Rebind(key)
	c.mu.Lock()
	c.forceStale = false
	c.mu.Unlock()
	if c.cfg.RefetchOnMount || !c.b.Loaded() {
		c.fetchData()
	}
}

// Close tears down the cache and its binding. Pending fetch results are
// discarded.
func (c *Cache[T]) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.gen.Add(1)
	c.b.Close()
}

// waitFetch blocks until the next fetch attempt settles. Test helper.
func (c *Cache[T]) waitFetch(timeout time.Duration) bool {
	select {
	case <-c.fetchDone:
		return true
	case <-time.After(timeout):
		return false
	}
}
