// Package querycache caches backend reads keyed by resource tuples such as
// ["products", "list", query]. Identical concurrent reads share one fetch,
// and Invalidate guarantees that reads issued after it see fresh data.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 30 * time.Second

const sep = "\x1f"

// Key identifies a cached read. Parts are compared by their JSON encoding.
type Key []any

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		if s, ok := p.(string); ok {
			parts[i] = s
			continue
		}
		b, err := json.Marshal(p)
		if err != nil {
			b = []byte(fmt.Sprint(p))
		}
		parts[i] = string(b)
	}
	return strings.Join(parts, sep)
}

type entry struct {
	val     any
	expires time.Time
}

type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	entries   map[string]entry
	gen       uint64
	lastSweep time.Time

	group singleflight.Group
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, now: time.Now, entries: map[string]entry{}}
}

// Get returns the cached value for key or runs fetch. Errors are not cached.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	k := key.String()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		if c.now().Before(e.expires) {
			c.mu.Unlock()
			return e.val.(T), nil
		}
		delete(c.entries, k)
	}
	gen := c.gen
	c.mu.Unlock()

	// The generation is part of the flight key so a read that starts after an
	// invalidation never joins a fetch that started before it.
	v, err, _ := c.group.Do(fmt.Sprintf("%d%s%s", gen, sep, k), func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			now := c.now()
			c.sweep(now)
			c.entries[k] = entry{val: val, expires: now.Add(c.ttl)}
		}
		c.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// sweep drops expired entries at most once per TTL. c.mu must be held.
func (c *Cache) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.ttl {
		return
	}
	c.lastSweep = now
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

// Invalidate drops every entry whose key starts with prefix and stops
// in-flight reads from storing their results.
func (c *Cache) Invalidate(prefix ...any) {
	p := Key(prefix).String()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for k := range c.entries {
		if len(prefix) == 0 || k == p || strings.HasPrefix(k, p+sep) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of stored entries. Expired entries count until
// they are swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
