// Package query tracks the freshness of remote reads and coalesces identical
// reads that are in flight at the same time. Results are not stored here:
// fetch functions write into their own caches, the query client only decides
// whether a fetch needs to run.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies a query. Keys are hierarchical: invalidating a key also
// invalidates every key it prefixes.
type Key []string

// K builds a Key from its parts.
func K(parts ...string) Key { return parts }

func (k Key) String() string { return strings.Join(k, "/") }

func (k Key) id() string { return strings.Join(k, "\x1f") }

// HasPrefix reports whether p is a prefix of k.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Fetch performs the remote read for a key and writes the result wherever it
// belongs. A non-nil error leaves the query stale.
type Fetch func(ctx context.Context) error

type Config struct {
	// StaleTime is how long a successful fetch stays fresh. Zero keeps it fresh
	// until invalidated.
	StaleTime time.Duration
	Logger    *zap.Logger
}

// Client is shared by every store of an application, so invalidations and
// in-flight reads are visible across kinds.
type Client struct {
	cfg     Config
	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*state
	obs     observe.Set[struct{}, Key]
}

type state struct {
	key       Key
	fetchedAt time.Time
	fresh     bool
	// gen is bumped on every invalidation. A fetch only marks its key fresh if
	// no invalidation happened while it was in flight.
	gen uint64
}

func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{cfg: cfg, entries: make(map[string]*state)}
}

// Ensure runs fetch unless key is fresh. Concurrent calls for the same key
// share a single run. If ctx is cancelled Ensure returns early, but the shared
// fetch keeps running for the other callers and still updates its caches.
func (c *Client) Ensure(ctx context.Context, key Key, fetch Fetch) error {
	if c.Fresh(key) {
		return nil
	}
	return c.Refetch(ctx, key, fetch)
}

// Refetch runs fetch regardless of freshness, joining an identical fetch
// already in flight.
func (c *Client) Refetch(ctx context.Context, key Key, fetch Fetch) error {
	ch := c.group.DoChan(key.id(), func() (interface{}, error) {
		gen := c.generation(key)
		err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			c.cfg.Logger.Debug("query failed", zap.Stringer("key", key), zap.Error(err))
			return nil, err
		}
		c.markFresh(key, gen)
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// Fresh reports whether key has a successful fetch that has not been
// invalidated or aged past StaleTime.
func (c *Client) Fresh(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key.id()]
	if !ok || !s.fresh {
		return false
	}
	if c.cfg.StaleTime > 0 && time.Since(s.fetchedAt) > c.cfg.StaleTime {
		s.fresh = false
	}
	return s.fresh
}

// Invalidate marks every query under prefix stale, including fetches that are
// in flight, and notifies OnInvalidate listeners with each affected key. Keys
// that were never fetched are not reported.
func (c *Client) Invalidate(prefix Key) []Key {
	c.mu.Lock()
	var keys []Key
	for _, s := range c.entries {
		if s.key.HasPrefix(prefix) {
			s.fresh = false
			s.gen++
			keys = append(keys, s.key)
		}
	}
	c.mu.Unlock()
	c.cfg.Logger.Debug("invalidated queries",
		zap.Stringer("prefix", prefix),
		zap.Int("count", len(keys)),
	)
	for _, k := range keys {
		c.obs.Notify(struct{}{}, k)
	}
	return keys
}

// OnInvalidate registers fn to be called with every invalidated key.
func (c *Client) OnInvalidate(fn func(Key)) observe.Disposer {
	return c.obs.Subscribe(struct{}{}, fn)
}

func (c *Client) generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry(key).gen
}

func (c *Client) markFresh(key Key, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.entry(key)
	if s.gen != gen {
		return
	}
	s.fresh = true
	s.fetchedAt = time.Now()
}

func (c *Client) entry(key Key) *state {
	s, ok := c.entries[key.id()]
	if !ok {
		s = &state{key: key}
		c.entries[key.id()] = s
	}
	return s
}
