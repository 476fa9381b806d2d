package assure

import (
	"context"
	"sync"
)

// Cache keys used by the client.
const (
	KeyConnections  = "connections"
	KeyApplications = "applications"
)

// KeyApplication returns the cache key for a single application.
func KeyApplication(id string) string {
	return "application:" + id
}

// View is the presentation-ready state of a cache key.
type View struct {
	Data    any
	Loading bool
	Err     error
}

// FetchFunc loads the authoritative value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is a keyed view-model cache. Per key it guarantees:
//
//   - at most one outstanding fetch; concurrent readers attach to it
//   - responses issued before the most recent invalidation are discarded
//   - a fresh cached value is served without touching the network
//
// Invalidation bumps the key's generation counter. Every fetch is tagged
// with the generation it was issued against, and its result is only stored
// if that generation is still current when it completes.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	gen     uint64 // bumped by Invalidate; data older than this is stale
	data    any
	dataGen uint64
	hasData bool
	err     error
	flight  *flight
}

// flight is one outstanding fetch shared by all attached waiters.
type flight struct {
	gen  uint64
	done chan struct{}
	data any
	err  error
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

func (c *Cache) entry(key string) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the cached value for key, or loads it with fn. Concurrent
// calls for the same key share a single underlying fn call. Cancelling ctx
// detaches the caller; the shared fetch keeps running so other waiters and
// the cache still get the result.
func (c *Cache) Fetch(ctx context.Context, key string, fn FetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entry(key)

	if e.hasData && e.dataGen == e.gen {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	fl := e.flight
	if fl == nil || fl.gen != e.gen {
		fl = &flight{gen: e.gen, done: make(chan struct{})}
		e.flight = fl
		// The fetch owns a detached context: a single caller giving up
		// must not fail every attached waiter.
		go c.run(key, fl, context.WithoutCancel(ctx), fn)
	}
	c.mu.Unlock()

	select {
	case <-fl.done:
		return fl.data, fl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes one fetch and applies its result, unless the key was
// invalidated while the fetch was in flight.
func (c *Cache) run(key string, fl *flight, ctx context.Context, fn FetchFunc) {
	data, err := fn(ctx)

	c.mu.Lock()
	fl.data, fl.err = data, err

	e, ok := c.entries[key]
	if ok {
		if e.flight == fl {
			e.flight = nil
		}
		if fl.gen == e.gen {
			// Still current: commit.
			if err == nil {
				e.data = data
				e.dataGen = fl.gen
				e.hasData = true
				e.err = nil
			} else {
				e.err = err
			}
		}
		// Superseded results are discarded; waiters attached to this
		// flight still receive them directly.
	}
	c.mu.Unlock()

	close(fl.done)
}

// Invalidate marks key stale. Cached data survives for Snapshot readers
// but the next Fetch refetches, and in-flight responses for the old
// generation are discarded.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(key).gen++
}

// Reset discards every cached value and supersedes every outstanding
// fetch. Used on logout. Entries are kept, with their generation advanced,
// so a fetch completing after the reset cannot repopulate the cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.gen++
		e.data = nil
		e.dataGen = 0
		e.hasData = false
		e.err = nil
		e.flight = nil
	}
}

// Snapshot returns the presentation view of a key without fetching.
func (c *Cache) Snapshot(key string) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return View{}
	}
	return View{
		Data:    e.data,
		Loading: e.flight != nil && e.flight.gen == e.gen,
		Err:     e.err,
	}
}
