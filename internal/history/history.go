// Package history remembers recent search queries.
package history

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/observable"
	"github.com/spiffcs/ghusers/internal/persist"
)

// Store is a most-recent-first list of distinct queries. Queries are
// compared case-insensitively.
type Store struct {
	sink  persist.Sink
	name  string
	limit int

	mu      sync.Mutex
	subject *observable.Subject[[]string]
}

// Option configures a Store.
type Option func(*Store)

// WithLimit overrides the maximum number of remembered queries.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithName overrides the collection name used in the sink.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// Open loads the history from sink. Unreadable history starts empty.
func Open(sink persist.Sink, opts ...Option) *Store {
	s := &Store{
		sink:  sink,
		name:  constants.SearchHistoryName,
		limit: constants.HistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	entries := []string{}
	data, ok, err := sink.Load(s.name)
	switch {
	case err != nil:
		log.Debug("could not read search history", "error", err)
	case ok:
		if err := json.Unmarshal(data, &entries); err != nil {
			log.Debug("could not decode search history, starting fresh", "error", err)
			entries = []string{}
		}
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	s.subject = observable.New(entries)
	return s
}

// All returns the queries, most recent first.
func (s *Store) All() []string {
	return slices.Clone(s.subject.Value())
}

// Add moves query to the front, trimming it and dropping the oldest entry
// beyond the limit. Blank queries are ignored.
func (s *Store) Add(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return s.mutate(func(entries []string) []string {
		next := make([]string, 0, len(entries)+1)
		next = append(next, query)
		for _, e := range entries {
			if !strings.EqualFold(e, query) {
				next = append(next, e)
			}
		}
		if len(next) > s.limit {
			next = next[:s.limit]
		}
		return next
	})
}

// Remove drops query, compared case-insensitively.
func (s *Store) Remove(query string) error {
	query = strings.TrimSpace(query)
	return s.mutate(func(entries []string) []string {
		return slices.DeleteFunc(slices.Clone(entries), func(e string) bool {
			return strings.EqualFold(e, query)
		})
	})
}

// Clear forgets every query.
func (s *Store) Clear() error {
	return s.mutate(func([]string) []string {
		return []string{}
	})
}

// Subscribe calls fn with the current history and after every change.
func (s *Store) Subscribe(fn func([]string)) (unsubscribe func()) {
	return s.subject.Subscribe(fn)
}

func (s *Store) mutate(change func([]string) []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := change(s.subject.Value())
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding search history: %w", err)
	}
	if err := s.sink.Save(s.name, data); err != nil {
		return fmt.Errorf("saving search history: %w", err)
	}
	s.subject.Set(next)
	return nil
}
