package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/listing"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/observable"
)

// HistoryRecorder remembers successful queries. *history.Store implements
// it.
type HistoryRecorder interface {
	Add(query string) error
}

// Option configures a search controller.
type Option func(*options)

type options struct {
	debounce time.Duration
	history  HistoryRecorder
}

// WithDebounce overrides the idle delay before a typed query is searched.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithHistory records successful non-empty searches in h.
func WithHistory(h HistoryRecorder) Option {
	return func(o *options) {
		o.history = h
	}
}

func applyOptions(opts []Option) options {
	o := options{debounce: constants.SearchDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// page is one page of search results.
type page[T any] struct {
	items   []T
	hasMore bool
	total   int
}

type fetchFunc[T any] func(ctx context.Context, query string, page int) (page[T], error)

// session is the search state machine shared by the user and repository
// controllers. At most one search is in flight; starting a new one cancels
// the previous and a superseded search never publishes.
type session[T any] struct {
	items  *observable.Subject[[]T]
	state  *observable.Subject[listing.State]
	cursor *observable.Subject[listing.Cursor]
	total  *observable.Subject[int]

	component string
	fetch     fetchFunc[T]
	history   HistoryRecorder
	debouncer *Debouncer
	parent    context.Context
	wg        sync.WaitGroup

	mu        sync.Mutex
	query     string
	debounced string
	results   []T
	pos       listing.Cursor
	phase     listing.Phase
	gen       uint64
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool

	pubMu sync.Mutex
}

func newSession[T any](ctx context.Context, component string, fetch fetchFunc[T], o options) *session[T] {
	cursor := listing.Cursor{Page: 1}
	return &session[T]{
		items:     observable.New([]T{}),
		state:     observable.New(listing.State{Phase: listing.PhaseIdle}),
		cursor:    observable.New(cursor),
		total:     observable.New(0),
		component: component,
		fetch:     fetch,
		history:   o.history,
		debouncer: NewDebouncer(o.debounce),
		parent:    ctx,
		pos:       cursor,
		ctx:       ctx,
	}
}

// setQuery debounces q. An empty query resets immediately.
func (s *session[T]) setQuery(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		s.debouncer.Stop()
		s.reset()
		return
	}
	s.debouncer.Trigger(func() {
		s.mu.Lock()
		duplicate := q == s.debounced && s.query == q
		s.debounced = q
		s.mu.Unlock()
		if duplicate {
			return
		}
		s.search(q)
	})
}

// reset cancels any search and returns to the idle state.
func (s *session[T]) reset() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.query, s.debounced = "", ""
	s.results = nil
	s.pos = listing.Cursor{Page: 1}
	s.phase = listing.PhaseIdle
	cursor := s.pos

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()
	s.items.Set([]T{})
	s.total.Set(0)
	s.cursor.Set(cursor)
	s.state.Set(listing.State{Phase: listing.PhaseIdle})
}

// search runs q immediately, superseding any search in flight.
func (s *session[T]) search(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		s.reset()
		return
	}
	s.start(q, true)
}

// refresh re-runs the current query without entering the loading state.
func (s *session[T]) refresh() {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()
	if q == "" {
		return
	}
	s.start(q, false)
}

func (s *session[T]) start(q string, showLoading bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.parent)
	s.ctx, s.cancel = ctx, cancel
	s.query = q
	s.pos.Reset()
	if showLoading || s.phase != listing.PhaseLoaded {
		s.phase = listing.PhaseLoading
	}
	phase, cursor := s.phase, s.pos

	s.pubMu.Lock()
	s.mu.Unlock()
	s.cursor.Set(cursor)
	if phase == listing.PhaseLoading {
		s.state.Set(listing.State{Phase: listing.PhaseLoading})
	}
	s.pubMu.Unlock()

	logger := log.With(s.component).With("task", uuid.NewString(), "generation", gen)
	logger.Debug("search started", "query", q)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res, err := s.fetch(ctx, q, 1)
		s.finishFirst(ctx, gen, q, res, err, logger)
	}()
}

func (s *session[T]) finishFirst(ctx context.Context, gen uint64, q string, res page[T], err error, logger *slog.Logger) {
	s.mu.Lock()
	if gen != s.gen || ctx.Err() != nil {
		s.mu.Unlock()
		logger.Debug("search superseded", "query", q)
		return
	}

	if err != nil {
		s.phase = listing.PhaseFailed
		s.results = nil
		s.pubMu.Lock()
		s.mu.Unlock()
		defer s.pubMu.Unlock()
		logger.Debug("search failed", "query", q, "error", err)
		s.items.Set([]T{})
		s.state.Set(listing.State{Phase: listing.PhaseFailed, Err: err})
		return
	}

	s.results = slices.Clone(res.items)
	s.pos.CompleteFirstReported(len(res.items) > 0 && res.hasMore)
	s.phase = listing.PhaseLoaded
	items, cursor := slices.Clone(s.results), s.pos

	s.pubMu.Lock()
	s.mu.Unlock()
	logger.Debug("search complete", "query", q, "results", len(items), "has_more", cursor.HasMore)
	s.items.Set(items)
	s.total.Set(res.total)
	s.cursor.Set(cursor)
	s.state.Set(listing.State{Phase: listing.PhaseLoaded})
	s.pubMu.Unlock()

	if len(items) > 0 && s.history != nil {
		if err := s.history.Add(q); err != nil {
			logger.Debug("failed to record search history", "query", q, "error", err)
		}
	}
}

// loadNextPage appends the next page of the current query. Failures roll
// the cursor back and leave the results untouched.
func (s *session[T]) loadNextPage() {
	s.mu.Lock()
	if s.phase != listing.PhaseLoaded || s.query == "" {
		s.mu.Unlock()
		return
	}
	pageNum, ok := s.pos.BeginNext()
	if !ok {
		s.mu.Unlock()
		return
	}
	gen, ctx, q := s.gen, s.ctx, s.query
	cursor := s.pos

	s.pubMu.Lock()
	s.mu.Unlock()
	s.cursor.Set(cursor)
	s.pubMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res, err := s.fetch(ctx, q, pageNum)
		s.finishNext(ctx, gen, q, pageNum, res, err)
	}()
}

func (s *session[T]) finishNext(ctx context.Context, gen uint64, q string, pageNum int, res page[T], err error) {
	s.mu.Lock()
	if gen != s.gen || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}

	var items []T
	switch {
	case err != nil:
		log.Debug("next page failed", "component", s.component, "query", q, "page", pageNum, "error", err)
		s.pos.FailNext()
	default:
		s.pos.CompleteNextReported(len(res.items), res.hasMore)
		if len(res.items) > 0 {
			s.results = append(slices.Clone(s.results), res.items...)
			items = slices.Clone(s.results)
		}
	}
	cursor := s.pos

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()
	if items != nil {
		s.items.Set(items)
		s.total.Set(res.total)
	}
	s.cursor.Set(cursor)
}

func (s *session[T]) currentQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *session[T]) wait() {
	s.wg.Wait()
}

// close stops the debouncer, cancels any search and waits for it.
func (s *session[T]) close() {
	s.debouncer.Stop()
	s.mu.Lock()
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
