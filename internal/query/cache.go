// Package query is the client-side fetch/mutation orchestration: a cache
// keyed by resource + filter with bounded staleness, deduplication of
// concurrent identical fetches, and prefix invalidation after mutations.
//
// No optimistic mutation is applied anywhere: writes go confirm-then-refetch.
package query

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// FetchFunc produces fresh data for one cache key.
type FetchFunc func(ctx context.Context) (any, error)

// Dependientes maps a resource to others that must be invalidated alongside
// it. Completing a stage moves the order's estado server-side, so every
// stage resource causally invalidates the orders resource.
var Dependientes = map[string][]string{
	"trillado":   {"pedidos"},
	"tostion":    {"pedidos"},
	"produccion": {"pedidos"},
	"facturas":   {"pedidos"},
}

type flight struct {
	done chan struct{}
	gen  int // entry generation this flight was started under
	data any
	err  error
}

type entry struct {
	data      any
	fetchedAt time.Time
	valid     bool
	gen       int // bumped by invalidation; stale in-flight results are dropped
	inflight  *flight
}

// Cache holds ephemeral copies of backend data keyed by resource + filter.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	// now is replaceable in tests.
	now func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Key builds the canonical cache key for a resource and its filter
// parameters. url.Values.Encode sorts keys, so equal filters always
// produce equal keys.
func Key(recurso string, filtro url.Values) string {
	if len(filtro) == 0 {
		return recurso
	}
	return recurso + "?" + filtro.Encode()
}

// Fetch returns the value for key, honoring the staleness window:
//   - fresh cached data is returned as-is;
//   - stale cached data is returned immediately while one background
//     refetch is kicked off;
//   - an empty entry blocks on the fetch.
//
// Concurrent callers for the same key share a single in-flight call.
func (c *Cache) Fetch(ctx context.Context, key string, staleFor time.Duration, fn FetchFunc) (any, error) {
	c.mu.Lock()

	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}

	if e.valid && c.now().Sub(e.fetchedAt) < staleFor {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	if e.inflight != nil && e.inflight.gen == e.gen {
		// Someone is already fetching this key; share their result.
		fl := e.inflight
		stale := e.valid
		staleData := e.data
		c.mu.Unlock()
		if stale {
			// Stale-while-revalidate: don't block a reader that has data.
			return staleData, nil
		}
		select {
		case <-fl.done:
			return fl.data, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Either no flight is running, or the running one predates an
	// invalidation and its response would be stale on arrival. Start fresh;
	// the superseded flight fails its gen check when it tries to commit.
	fl := &flight{done: make(chan struct{}), gen: e.gen}
	e.inflight = fl

	if e.valid {
		// Serve the stale value now, refresh in the background.
		staleData := e.data
		c.mu.Unlock()
		go c.runFlight(context.WithoutCancel(ctx), key, fl, fn)
		return staleData, nil
	}

	c.mu.Unlock()
	c.runFlight(ctx, key, fl, fn)
	return fl.data, fl.err
}

// runFlight executes the fetch and commits the result, unless an
// invalidation arrived after the flight started; the most recently
// initiated invalidation always wins over an older in-flight response.
func (c *Cache) runFlight(ctx context.Context, key string, fl *flight, fn FetchFunc) {
	data, err := fn(ctx)
	fl.data, fl.err = data, err

	c.mu.Lock()
	if e := c.entries[key]; e != nil {
		if e.inflight == fl {
			e.inflight = nil
		}
		if err == nil && e.gen == fl.gen {
			e.data = data
			e.fetchedAt = c.now()
			e.valid = true
		}
	}
	c.mu.Unlock()
	close(fl.done)
}

// Invalidate marks every entry whose key starts with any given resource name
// as invalid, plus the resources causally dependent on them. The next read
// of an invalidated key refetches.
func (c *Cache) Invalidate(recursos ...string) {
	seen := make(map[string]bool)
	var all []string
	for _, r := range recursos {
		if !seen[r] {
			seen[r] = true
			all = append(all, r)
		}
		for _, dep := range Dependientes[r] {
			if !seen[dep] {
				seen[dep] = true
				all = append(all, dep)
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		for _, r := range all {
			if strings.HasPrefix(key, r) {
				e.valid = false
				e.gen++
				break
			}
		}
	}
}

// Mutate runs a mutation and, only on success, invalidates the affected
// resource (and its dependents) before returning, so a subsequent read in
// the caller's success path already sees the invalidation. Failed mutations
// leave cached state untouched.
func (c *Cache) Mutate(ctx context.Context, recurso string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	c.Invalidate(recurso)
	return nil
}

// Fetch is the typed wrapper around Cache.Fetch.
func Fetch[T any](ctx context.Context, c *Cache, key string, staleFor time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	data, err := c.Fetch(ctx, key, staleFor, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := data.(T)
	if !ok {
		// Two resources sharing a key prefix with different element types
		// would land here; surfacing it beats returning a zero value.
		var zero T
		return zero, fmt.Errorf("query: la clave %q tiene cacheado %T, no %T", key, data, zero)
	}
	return v, nil
}
