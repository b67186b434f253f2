// Package cache implements an in-process keyed cache whose entries can be
// watched. It is the reactive building block for the resource stores: every
// write notifies the listeners registered for that key, reads never do.
package cache

import (
	"sync"

	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
)

// Entry is the payload delivered to listeners on every write. Present is false
// when the key was cleared.
type Entry[V any] struct {
	Value   V
	Present bool
}

// Memory is a keyed cache. The zero value is ready to use.
type Memory[K comparable, V any] struct {
	mu     sync.Mutex
	values map[K]V
	obs    observe.Set[K, Entry[V]]
}

// New opens a new, empty Memory cache.
func New[K comparable, V any]() *Memory[K, V] {
	return &Memory[K, V]{values: make(map[K]V)}
}

// Get returns the value stored under key, or def when the key is absent. def is
// not stored.
func (m *Memory[K, V]) Get(key K, def V) V {
	v, ok := m.Lookup(key)
	if !ok {
		return def
	}
	return v
}

// Lookup returns the value stored under key and whether it was present.
func (m *Memory[K, V]) Lookup(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key and notifies the key's listeners.
func (m *Memory[K, V]) Set(key K, value V) {
	m.Upsert(key, func(V, bool) V { return value })
}

// Update replaces the value under key with fn applied to the current value, or
// to def if the key is absent. fn runs while the cache is locked, so concurrent
// read-modify-write callers never lose updates. fn must not call back into the
// cache.
func (m *Memory[K, V]) Update(key K, def V, fn func(prev V) V) V {
	return m.Upsert(key, func(prev V, ok bool) V {
		if !ok {
			prev = def
		}
		return fn(prev)
	})
}

// Upsert is Update with explicit presence: fn receives the current value and
// whether the key was present.
func (m *Memory[K, V]) Upsert(key K, fn func(prev V, ok bool) V) V {
	v, _ := m.Apply(key, func(prev V, ok bool) (V, bool) { return fn(prev, ok), true })
	return v
}

// Apply is the conditional form of Upsert: the value returned by fn is only
// stored, and listeners only notified, when fn reports a write. Apply returns
// the value held after the call and whether it was written.
func (m *Memory[K, V]) Apply(key K, fn func(prev V, ok bool) (V, bool)) (V, bool) {
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[K]V)
	}
	prev, ok := m.values[key]
	next, write := fn(prev, ok)
	if !write {
		m.mu.Unlock()
		return prev, false
	}
	m.values[key] = next
	m.mu.Unlock()
	m.obs.Notify(key, Entry[V]{Value: next, Present: true})
	return next, true
}

// Clear removes key and notifies its listeners with an absent entry. Clearing
// an absent key still notifies.
func (m *Memory[K, V]) Clear(key K) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	var zero V
	m.obs.Notify(key, Entry[V]{Value: zero})
}

// Keys returns a snapshot of the keys currently stored, in no particular order.
func (m *Memory[K, V]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]K, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

// Subscribe registers fn for every write to key.
func (m *Memory[K, V]) Subscribe(key K, fn func(Entry[V])) observe.Disposer {
	return m.obs.Subscribe(key, fn)
}

// SubscribeAny registers fn for every write to any key.
func (m *Memory[K, V]) SubscribeAny(fn func(K, Entry[V])) observe.Disposer {
	return m.obs.SubscribeAny(fn)
}

// Watch is the hook-style accessor for key: the returned Watch reads the
// current value (or def) on demand, and fn is called with the new value (def
// once cleared) on every Set, Update, or Clear of key until the Watch is
// closed. fn may be nil for consumers that only poll.
func (m *Memory[K, V]) Watch(key K, def V, fn func(V)) *Watch[V] {
	var dispose observe.Disposer = func() {}
	if fn != nil {
		dispose = m.obs.Subscribe(key, func(e Entry[V]) {
			if !e.Present {
				fn(def)
				return
			}
			fn(e.Value)
		})
	}
	return NewWatch(func() V { return m.Get(key, def) }, dispose)
}
