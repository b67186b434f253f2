package kv

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/cache"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	"go.uber.org/zap"
)

// Config configures a Store.
type Config[V any] struct {
	// Engine is the durable medium values are written to.
	Engine Engine
	// Prefix namespaces every key of the store inside Engine.
	Prefix string
	// Schema validates every value loaded from Engine.
	Schema *schema.Schema
	// Default is returned for missing or invalid keys. It must satisfy Schema.
	Default V
	Logger  *zap.Logger
}

// Store is a keyed, watchable cache whose values survive restarts. Reads are
// served from memory after the first load of a key; writes go to memory and
// then to Engine.
type Store[V any] struct {
	cfg Config[V]
	mem *cache.Memory[string, V]

	mu     sync.Mutex
	loaded map[string]*sync.Once
	// wmu serializes flushes to Engine. It is never held while watchers run.
	wmu sync.Mutex
}

// Open validates cfg and returns a new Store.
func Open[V any](cfg Config[V]) (*Store[V], error) {
	if cfg.Engine == nil {
		return nil, errors.New("[kv] - engine is required")
	}
	if cfg.Schema == nil {
		return nil, errors.New("[kv] - schema is required")
	}
	if err := schema.Check(cfg.Schema, cfg.Default); err != nil {
		return nil, errors.Wrap(err, "[kv] - default does not satisfy schema")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store[V]{
		cfg:    cfg,
		mem:    cache.New[string, V](),
		loaded: make(map[string]*sync.Once),
	}, nil
}

// Get returns the value under key, loading it from Engine on first access.
// Missing or invalid persisted values yield the default.
func (s *Store[V]) Get(ctx context.Context, key string) V {
	s.load(ctx, key)
	return s.mem.Get(key, s.cfg.Default)
}

// Set stores v under key. Memory is updated even if persisting fails.
func (s *Store[V]) Set(ctx context.Context, key string, v V) error {
	_, err := s.Update(ctx, key, func(V) V { return v })
	return err
}

// Update applies fn to the current value under key and stores the result.
func (s *Store[V]) Update(ctx context.Context, key string, fn func(V) V) (V, error) {
	s.load(ctx, key)
	next := s.mem.Update(key, s.cfg.Default, fn)
	return next, s.flush(ctx, key)
}

// Reset removes key, so the next read yields the default.
func (s *Store[V]) Reset(ctx context.Context, key string) error {
	s.once(key).Do(func() {})
	s.mem.Clear(key)
	return s.flush(ctx, key)
}

// Watch loads key and calls fn with every subsequent value until the returned
// Watch is closed. fn may write to the store.
func (s *Store[V]) Watch(ctx context.Context, key string, fn func(V)) *cache.Watch[V] {
	s.load(ctx, key)
	return s.mem.Watch(key, s.cfg.Default, fn)
}

// flush writes the value currently in memory under key to Engine, or deletes
// it when absent. Whichever flush runs last leaves Engine holding the latest
// value, however writes and flushes interleave.
func (s *Store[V]) flush(ctx context.Context, key string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	v, ok := s.mem.Lookup(key)
	if !ok {
		return s.cfg.Engine.Delete(ctx, s.cfg.Prefix+key)
	}
	return s.persist(ctx, key, v)
}

func (s *Store[V]) persist(ctx context.Context, key string, v V) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "[kv] - encoding %s", key)
	}
	if err := s.cfg.Engine.Set(ctx, s.cfg.Prefix+key, raw); err != nil {
		s.cfg.Logger.Error("failed to persist value", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store[V]) once(key string) *sync.Once {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.loaded[key]
	if !ok {
		o = &sync.Once{}
		s.loaded[key] = o
	}
	return o
}

// load reads key from Engine the first time it is accessed. Concurrent callers
// wait for the first load to finish.
func (s *Store[V]) load(ctx context.Context, key string) {
	s.once(key).Do(func() { s.read(ctx, key) })
}

func (s *Store[V]) read(ctx context.Context, key string) {
	raw, err := s.cfg.Engine.Get(ctx, s.cfg.Prefix+key)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		s.cfg.Logger.Warn("failed to load value", zap.String("key", key), zap.Error(err))
		return
	}
	v, err := schema.Parse[V](s.cfg.Schema, raw)
	if err != nil {
		s.cfg.Logger.Warn("discarding invalid persisted value",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	// A concurrent write wins over the persisted value.
	s.mem.Upsert(key, func(prev V, ok bool) V {
		if ok {
			return prev
		}
		return v
	})
}
