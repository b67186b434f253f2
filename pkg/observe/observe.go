// Package observe implements a keyed publish/subscribe primitive. Listeners are
// registered against a single key or against every key, and fire synchronously
// when a value is published for that key.
package observe

import "sync"

// Disposer removes a listener registered on a Set. Calling a Disposer more than
// once is a no-op.
type Disposer func()

// Set is a keyed set of listeners. The zero value is ready to use. A Set never
// batches or deduplicates: every call to Notify invokes every matching listener
// exactly once, in registration order. Keyed listeners run before wildcard
// listeners.
type Set[K comparable, V any] struct {
	mu     sync.Mutex
	nextID uint64
	keyed  map[K][]listener[func(V)]
	any    []listener[func(K, V)]
}

type listener[F any] struct {
	id uint64
	fn F
}

// Subscribe registers fn to be called whenever a value is published for key.
func (s *Set[K, V]) Subscribe(key K, fn func(V)) Disposer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyed == nil {
		s.keyed = make(map[K][]listener[func(V)])
	}
	id := s.id()
	s.keyed[key] = append(s.keyed[key], listener[func(V)]{id: id, fn: fn})
	return s.dispose(func() {
		ls := s.keyed[key]
		for i, l := range ls {
			if l.id == id {
				ls = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(ls) == 0 {
			delete(s.keyed, key)
		} else {
			s.keyed[key] = ls
		}
	})
}

// SubscribeAny registers fn to be called whenever a value is published for any
// key.
func (s *Set[K, V]) SubscribeAny(fn func(K, V)) Disposer {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.any = append(s.any, listener[func(K, V)]{id: id, fn: fn})
	return s.dispose(func() {
		for i, l := range s.any {
			if l.id == id {
				s.any = append(s.any[:i:i], s.any[i+1:]...)
				return
			}
		}
	})
}

// Notify publishes value for key. Listeners run on the calling goroutine after
// the Set releases its lock, so a listener may subscribe, unsubscribe, or
// publish without deadlocking.
func (s *Set[K, V]) Notify(key K, value V) {
	s.mu.Lock()
	keyed := s.keyed[key]
	anyL := s.any
	s.mu.Unlock()
	for _, l := range keyed {
		l.fn(value)
	}
	for _, l := range anyL {
		l.fn(key, value)
	}
}

// Len returns the number of listeners registered for key, wildcard listeners
// excluded.
func (s *Set[K, V]) Len(key K) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keyed[key])
}

func (s *Set[K, V]) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Set[K, V]) dispose(remove func()) Disposer {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			remove()
		})
	}
}
