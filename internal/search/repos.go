package search

import (
	"context"
	"sync"

	"github.com/spiffcs/ghusers/internal/ghclient"
	"github.com/spiffcs/ghusers/internal/listing"
	"github.com/spiffcs/ghusers/internal/model"
	"github.com/spiffcs/ghusers/internal/observable"
)

// RepositorySearcher returns one page of repositories.
// *store.RepositoryStore implements it.
type RepositorySearcher interface {
	SearchRepositories(ctx context.Context, query string, sort model.RepositorySort, order model.SortOrder, page int) (ghclient.RepositorySearchResult, error)
}

// RepoSearch is the repository search controller. Whether more pages
// exist comes from the total count reported by the API.
type RepoSearch struct {
	Repositories *observable.Subject[[]model.RepositorySummary]
	State        *observable.Subject[listing.State]
	Cursor       *observable.Subject[listing.Cursor]
	TotalCount   *observable.Subject[int]

	s *session[model.RepositorySummary]

	mu    sync.Mutex
	sort  model.RepositorySort
	order model.SortOrder
}

// NewRepoSearch creates a RepoSearch sorted by stars, descending.
func NewRepoSearch(ctx context.Context, source RepositorySearcher, opts ...Option) *RepoSearch {
	r := &RepoSearch{sort: model.SortStars, order: model.OrderDesc}
	fetch := func(ctx context.Context, q string, n int) (page[model.RepositorySummary], error) {
		sort, order := r.Sort()
		res, err := source.SearchRepositories(ctx, q, sort, order, n)
		if err != nil {
			return page[model.RepositorySummary]{}, err
		}
		return page[model.RepositorySummary]{items: res.Repositories, hasMore: res.HasMore, total: res.TotalCount}, nil
	}
	r.s = newSession(ctx, "repo-search", fetch, applyOptions(opts))
	r.Repositories = r.s.items
	r.State = r.s.state
	r.Cursor = r.s.cursor
	r.TotalCount = r.s.total
	return r
}

// Sort returns the current sort field and direction.
func (r *RepoSearch) Sort() (model.RepositorySort, model.SortOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sort, r.order
}

// SetSort changes the sort field and re-runs the current query.
func (r *RepoSearch) SetSort(sort model.RepositorySort) {
	r.mu.Lock()
	r.sort = sort
	r.mu.Unlock()
	r.rerun()
}

// SetOrder changes the sort direction and re-runs the current query.
func (r *RepoSearch) SetOrder(order model.SortOrder) {
	r.mu.Lock()
	r.order = order
	r.mu.Unlock()
	r.rerun()
}

func (r *RepoSearch) rerun() {
	if q := r.s.currentQuery(); q != "" {
		r.s.search(q)
	}
}

// SetQuery is called on every input change; see UserSearch.SetQuery.
func (r *RepoSearch) SetQuery(q string) {
	r.s.setQuery(q)
}

// Search runs q now, cancelling any search in flight.
func (r *RepoSearch) Search(q string) {
	r.s.search(q)
}

// Refresh re-runs the current query.
func (r *RepoSearch) Refresh() {
	r.s.refresh()
}

// LoadNextPage appends the next page of results.
func (r *RepoSearch) LoadNextPage() {
	r.s.loadNextPage()
}

// Query returns the query of the latest search.
func (r *RepoSearch) Query() string {
	return r.s.currentQuery()
}

// Wait blocks until running searches have finished.
func (r *RepoSearch) Wait() {
	r.s.wait()
}

// Close cancels pending and running searches.
func (r *RepoSearch) Close() {
	r.s.close()
}
