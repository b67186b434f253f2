package cache

import (
	"sync"

	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
)

// Watch is a live view over a single value. Value always reads through to the
// source; Close detaches the change listener and any cleanup attached with
// OnClose. A closed Watch still answers Value.
type Watch[V any] struct {
	get     func() V
	mu      sync.Mutex
	closers []observe.Disposer
	closed  bool
}

// NewWatch assembles a Watch from a getter and the disposer of its listener.
func NewWatch[V any](get func() V, dispose observe.Disposer) *Watch[V] {
	return &Watch[V]{get: get, closers: []observe.Disposer{dispose}}
}

// Value returns the current value.
func (w *Watch[V]) Value() V { return w.get() }

// OnClose attaches an extra disposer that runs when the Watch is closed. If the
// Watch is already closed, d runs immediately.
func (w *Watch[V]) OnClose(d observe.Disposer) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		d()
		return
	}
	w.closers = append(w.closers, d)
	w.mu.Unlock()
}

// Close releases the Watch. It is safe to call more than once.
func (w *Watch[V]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	closers := w.closers
	w.closers = nil
	w.mu.Unlock()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
