// Package observable provides a minimal publish/subscribe value holder used
// to expose controller and store state to consumers.
package observable

import "sync"

// Subject holds a current value and notifies subscribers synchronously on
// every Set. Subscribers run on the goroutine that called Set, outside the
// subject's lock, in subscription order.
type Subject[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   []subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// New creates a subject with an initial value.
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the current value.
func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the current value and notifies every subscriber.
func (s *Subject[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn, immediately calls it with the current value and
// returns a function that removes the subscription.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	v := s.value
	s.mu.Unlock()

	fn(v)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
