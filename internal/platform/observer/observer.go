// Package observer provides a small listener registry for state containers
// that publish snapshots to a render layer.
package observer

import (
	"log/slog"
	"slices"
	"sync"
)

// Listeners holds subscribers keyed by registration order.
type Listeners[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is safe.
func (l *Listeners[T]) Subscribe(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

// Notify calls every subscriber with v in registration order.
// Subscribers run outside the registry lock, so they may subscribe or unsubscribe.
// A panicking subscriber is logged and does not stop the others.
func (l *Listeners[T]) Notify(v T) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		call(fn, v)
	}
}

func call[T any](fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Listener panicked", "panic", r)
		}
	}()
	fn(v)
}

// Len returns the number of subscribers.
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
