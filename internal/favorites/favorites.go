// Package favorites keeps ordered, id-deduplicated favorite collections.
package favorites

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/observable"
	"github.com/spiffcs/ghusers/internal/persist"
)

// Identifiable is implemented by everything that can be a favorite.
type Identifiable interface {
	FavoriteID() int64
}

// Options configures a Store.
type Options struct {
	// Name is the collection name used by the sinks and the notifier.
	Name string
	// Private is the store of record.
	Private persist.Sink
	// Shared optionally mirrors the collection for other processes.
	Shared persist.Sink
	// Notifier is told about every change to a mirrored collection.
	Notifier persist.Notifier
}

// Store is a persisted favorites collection. Every mutation is saved to
// the private sink, mirrored to the shared sink, published to subscribers
// and finally signalled to external consumers.
type Store[T Identifiable] struct {
	name     string
	private  persist.Sink
	shared   persist.Sink
	notifier persist.Notifier

	mu      sync.Mutex
	subject *observable.Subject[[]T]
}

// Open loads the collection, preferring the shared copy over the private
// one. An unreadable collection starts empty.
func Open[T Identifiable](opts Options) (*Store[T], error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("favorites collection name is required")
	}
	if opts.Private == nil {
		return nil, fmt.Errorf("favorites collection %s has no private sink", opts.Name)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = persist.NopNotifier{}
	}

	s := &Store[T]{
		name:     opts.Name,
		private:  opts.Private,
		shared:   opts.Shared,
		notifier: notifier,
	}
	s.subject = observable.New(s.load())
	return s, nil
}

func (s *Store[T]) load() []T {
	for _, sink := range []persist.Sink{s.shared, s.private} {
		if sink == nil {
			continue
		}
		data, ok, err := sink.Load(s.name)
		if err != nil {
			log.Debug("could not read favorites", "collection", s.name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			log.Debug("could not decode favorites, starting fresh", "collection", s.name, "error", err)
			return []T{}
		}
		return items
	}
	return []T{}
}

// All returns the favorites in insertion order.
func (s *Store[T]) All() []T {
	return slices.Clone(s.subject.Value())
}

// Contains reports whether id is a favorite.
func (s *Store[T]) Contains(id int64) bool {
	return slices.ContainsFunc(s.subject.Value(), func(item T) bool {
		return item.FavoriteID() == id
	})
}

// Add appends item unless its id is already present.
func (s *Store[T]) Add(item T) error {
	return s.mutate(func(items []T) ([]T, bool) {
		if slices.ContainsFunc(items, func(existing T) bool { return existing.FavoriteID() == item.FavoriteID() }) {
			return items, false
		}
		return append(slices.Clone(items), item), true
	})
}

// Remove drops the favorite with id. Removing a non-member does nothing.
func (s *Store[T]) Remove(id int64) error {
	return s.mutate(func(items []T) ([]T, bool) {
		next := slices.DeleteFunc(slices.Clone(items), func(item T) bool { return item.FavoriteID() == id })
		return next, len(next) != len(items)
	})
}

// Toggle adds item if absent and removes it otherwise. It reports whether
// item is a favorite afterwards.
func (s *Store[T]) Toggle(item T) (bool, error) {
	var added bool
	err := s.mutate(func(items []T) ([]T, bool) {
		id := item.FavoriteID()
		if slices.ContainsFunc(items, func(existing T) bool { return existing.FavoriteID() == id }) {
			return slices.DeleteFunc(slices.Clone(items), func(existing T) bool { return existing.FavoriteID() == id }), true
		}
		added = true
		return append(slices.Clone(items), item), true
	})
	return added, err
}

// Reload rereads the collection to pick up changes written by other
// processes and publishes the result.
func (s *Store[T]) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject.Set(s.load())
}

// Subscribe calls fn with the current favorites and after every change.
// fn must not mutate the store.
func (s *Store[T]) Subscribe(fn func([]T)) (unsubscribe func()) {
	return s.subject.Subscribe(fn)
}

func (s *Store[T]) mutate(change func([]T) ([]T, bool)) error {
	s.mu.Lock()
	next, changed := change(s.subject.Value())
	if !changed {
		s.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encoding favorites %s: %w", s.name, err)
	}
	if err := s.private.Save(s.name, data); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving favorites %s: %w", s.name, err)
	}
	if s.shared != nil {
		if err := s.shared.Save(s.name, data); err != nil {
			log.Debug("failed to mirror favorites", "collection", s.name, "error", err)
		}
	}
	s.subject.Set(next)
	s.mu.Unlock()

	if s.shared != nil {
		s.notifier.Notify(s.name)
	}
	return nil
}
