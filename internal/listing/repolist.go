package listing

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/model"
	"github.com/spiffcs/ghusers/internal/observable"
)

// RepositoryLister fetches one page of a user's repositories.
// *store.RepositoryStore implements it.
type RepositoryLister interface {
	GetRepositories(ctx context.Context, username string, sort model.RepositorySort, order model.SortOrder, page int) ([]model.RepositorySummary, error)
}

// RepoList drives the repository list of a single user: it loads pages,
// tracks the cursor and keeps the visible list in sync with the filter.
//
// Subscribers are called synchronously from the goroutine that completed
// the operation and must not call back into the RepoList.
type RepoList struct {
	// Items is the filtered and sorted list.
	Items  *observable.Subject[[]model.RepositorySummary]
	State  *observable.Subject[State]
	Cursor *observable.Subject[Cursor]

	source   RepositoryLister
	username string
	pageSize int
	parent   context.Context
	wg       sync.WaitGroup

	mu     sync.Mutex
	raw    []model.RepositorySummary
	filter Filter
	cursor Cursor
	phase  Phase
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc

	// pubMu keeps publishes of consecutive operations in order.
	pubMu sync.Mutex
}

// NewRepoList creates a controller for username's repositories. Nothing is
// fetched until Load is called. Cancelling ctx stops every load.
func NewRepoList(ctx context.Context, source RepositoryLister, username string) *RepoList {
	return &RepoList{
		Items:    observable.New([]model.RepositorySummary{}),
		State:    observable.New(State{Phase: PhaseIdle}),
		Cursor:   observable.New(NewCursor()),
		source:   source,
		username: strings.TrimSpace(username),
		pageSize: constants.PageSize,
		parent:   ctx,
		filter:   DefaultFilter(),
		cursor:   NewCursor(),
		ctx:      ctx,
	}
}

// Username returns the owner of the listed repositories.
func (r *RepoList) Username() string {
	return r.username
}

// Filter returns the current filter.
func (r *RepoList) Filter() Filter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter
}

// Languages returns the languages present in the fetched repositories.
func (r *RepoList) Languages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Languages(r.raw)
}

// Load resets pagination and fetches the first page, superseding any load
// still in flight.
func (r *RepoList) Load() {
	r.reload(true)
}

// Refresh reloads the first page without entering the loading state, so
// the current list stays visible until the new one arrives.
func (r *RepoList) Refresh() {
	r.reload(false)
}

// SetSort changes the sort field and reloads.
func (r *RepoList) SetSort(sort model.RepositorySort) {
	r.mu.Lock()
	r.filter.Sort = sort
	r.mu.Unlock()
	r.Load()
}

// SetOrder changes the sort direction and reloads.
func (r *RepoList) SetOrder(order model.SortOrder) {
	r.mu.Lock()
	r.filter.Order = order
	r.mu.Unlock()
	r.Load()
}

// SetFilterText narrows the visible list to names or descriptions
// containing text. No request is made.
func (r *RepoList) SetFilterText(text string) {
	r.mu.Lock()
	r.filter.Text = text
	r.recompute()
}

// SetLanguage narrows the visible list to one language; empty clears it.
func (r *RepoList) SetLanguage(language string) {
	r.mu.Lock()
	r.filter.Language = language
	r.recompute()
}

// recompute publishes the visible list. It must be called with r.mu held
// and releases it.
func (r *RepoList) recompute() {
	visible := Apply(r.raw, r.filter)
	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()
	r.Items.Set(visible)
}

func (r *RepoList) reload(showLoading bool) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(r.parent)
	r.ctx, r.cancel = ctx, cancel
	r.cursor.Reset()
	if showLoading || r.phase != PhaseLoaded {
		r.phase = PhaseLoading
	}
	phase, cursor := r.phase, r.cursor
	sort, order := r.filter.Sort, r.filter.Order

	r.pubMu.Lock()
	r.mu.Unlock()
	r.Cursor.Set(cursor)
	if phase == PhaseLoading {
		r.State.Set(State{Phase: PhaseLoading})
	}
	r.pubMu.Unlock()

	log.Trace("loading repositories", "user", r.username, "sort", sort, "order", order, "generation", gen)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		repos, err := r.source.GetRepositories(ctx, r.username, sort, order, 1)
		r.finishFirst(gen, repos, err)
	}()
}

func (r *RepoList) finishFirst(gen uint64, repos []model.RepositorySummary, err error) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		log.Trace("discarding superseded repository load", "user", r.username, "generation", gen)
		return
	}

	if err != nil {
		r.phase = PhaseFailed
		r.pubMu.Lock()
		r.mu.Unlock()
		defer r.pubMu.Unlock()
		log.Debug("repository load failed", "user", r.username, "error", err)
		r.State.Set(State{Phase: PhaseFailed, Err: err})
		return
	}

	r.raw = slices.Clone(repos)
	r.cursor.CompleteFirst(len(repos), r.pageSize)
	r.phase = PhaseLoaded
	visible := Apply(r.raw, r.filter)
	cursor := r.cursor

	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()
	r.Items.Set(visible)
	r.Cursor.Set(cursor)
	r.State.Set(State{Phase: PhaseLoaded})
}

// LoadNextPage appends the next page. It does nothing unless the list is
// loaded, more pages exist and no other next page is loading. A failure
// leaves the list and cursor as they were.
func (r *RepoList) LoadNextPage() {
	r.mu.Lock()
	if r.phase != PhaseLoaded {
		r.mu.Unlock()
		return
	}
	page, ok := r.cursor.BeginNext()
	if !ok {
		r.mu.Unlock()
		return
	}
	gen, ctx := r.gen, r.ctx
	sort, order := r.filter.Sort, r.filter.Order
	cursor := r.cursor

	r.pubMu.Lock()
	r.mu.Unlock()
	r.Cursor.Set(cursor)
	r.pubMu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		repos, err := r.source.GetRepositories(ctx, r.username, sort, order, page)
		r.finishNext(gen, page, repos, err)
	}()
}

func (r *RepoList) finishNext(gen uint64, page int, repos []model.RepositorySummary, err error) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}

	var visible []model.RepositorySummary
	switch {
	case err != nil:
		log.Debug("next page failed", "user", r.username, "page", page, "error", err)
		r.cursor.FailNext()
	case len(repos) == 0:
		r.cursor.CompleteNext(0, r.pageSize)
	default:
		r.raw = append(slices.Clone(r.raw), repos...)
		r.cursor.CompleteNext(len(repos), r.pageSize)
		visible = Apply(r.raw, r.filter)
	}
	cursor := r.cursor

	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()
	if visible != nil {
		r.Items.Set(visible)
	}
	r.Cursor.Set(cursor)
}

// Wait blocks until every started load has finished.
func (r *RepoList) Wait() {
	r.wg.Wait()
}

// Close cancels any load in flight and waits for it to return.
func (r *RepoList) Close() {
	r.mu.Lock()
	r.gen++
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
