// Package signal is the explicit signal/slot graph called for by the
// design notes on event-driven parent linkage: rather than couple
// scope and file lifecycle to a global emitter keyed by string event
// names, every publisher owns a typed Signal and every subscriber gets
// back an opaque Handle it is responsible for releasing. Modeled after
// the teacher's method-name-keyed handler maps in server.go, but typed
// and instance-owned instead of global.
package signal

import "sort"

// Handle is an opaque subscription token returned by Subscribe. The
// zero Handle never matches a live subscription, so releasing it twice
// (or releasing an unsubscribed Handle) is a no-op.
type Handle struct {
	id uint64
}

// Signal is a single-threaded publish point for values of type T.
// Program, Scope, and DescriptorFile each hold one or more Signals
// instead of emitting through a shared event bus. Per the engine's
// cooperative concurrency model (spec.md §5) all Emit/Subscribe calls
// happen on the one logical worker, so no internal locking is needed.
type Signal[T any] struct {
	nextID    uint64
	listeners map[uint64]func(T)
}

// New returns a ready-to-use Signal.
func New[T any]() *Signal[T] {
	return &Signal[T]{listeners: map[uint64]func(T){}}
}

// Subscribe registers fn and returns a Handle for later release.
// Listeners added while Emit is iterating (from within a callback) are
// not visited by that in-flight Emit — the listener set is append-only
// during dispatch.
func (s *Signal[T]) Subscribe(fn func(T)) Handle {
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	return Handle{id: id}
}

// Unsubscribe releases a subscription. Subscribers own their Handle
// and must call this on disposal; a dangling subscription keeps its
// owner reachable and keeps firing indefinitely.
func (s *Signal[T]) Unsubscribe(h Handle) {
	delete(s.listeners, h.id)
}

// Emit synchronously invokes every current listener with v, in
// subscription order.
func (s *Signal[T]) Emit(v T) {
	if len(s.listeners) == 0 {
		return
	}
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	// Deterministic order: subscription IDs are monotonically
	// increasing, so an ascending sort reproduces subscribe order.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn(v)
		}
	}
}

// Len reports the number of live subscriptions, mainly for tests.
func (s *Signal[T]) Len() int {
	return len(s.listeners)
}
