package search

import (
	"context"

	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/listing"
	"github.com/spiffcs/ghusers/internal/model"
	"github.com/spiffcs/ghusers/internal/observable"
)

// UserSearcher returns one page of users. *store.UserStore implements it.
type UserSearcher interface {
	SearchUsers(ctx context.Context, query string, page int) ([]model.UserProfile, error)
}

// UserSearch is the user search controller. A page holding fewer than a
// full page of users ends pagination.
type UserSearch struct {
	Users  *observable.Subject[[]model.UserProfile]
	State  *observable.Subject[listing.State]
	Cursor *observable.Subject[listing.Cursor]

	s *session[model.UserProfile]
}

// NewUserSearch creates a UserSearch. Cancelling ctx stops every search.
func NewUserSearch(ctx context.Context, source UserSearcher, opts ...Option) *UserSearch {
	fetch := func(ctx context.Context, q string, n int) (page[model.UserProfile], error) {
		users, err := source.SearchUsers(ctx, q, n)
		if err != nil {
			return page[model.UserProfile]{}, err
		}
		return page[model.UserProfile]{items: users, hasMore: len(users) >= constants.PageSize}, nil
	}
	s := newSession(ctx, "user-search", fetch, applyOptions(opts))
	return &UserSearch{Users: s.items, State: s.state, Cursor: s.cursor, s: s}
}

// SetQuery is called on every input change. The search runs once the
// input has been idle for the debounce delay; an empty query clears the
// results immediately.
func (u *UserSearch) SetQuery(q string) {
	u.s.setQuery(q)
}

// Search runs q now, cancelling any search in flight.
func (u *UserSearch) Search(q string) {
	u.s.search(q)
}

// Refresh re-runs the current query.
func (u *UserSearch) Refresh() {
	u.s.refresh()
}

// LoadNextPage appends the next page of results.
func (u *UserSearch) LoadNextPage() {
	u.s.loadNextPage()
}

// Query returns the query of the latest search.
func (u *UserSearch) Query() string {
	return u.s.currentQuery()
}

// Wait blocks until running searches have finished. It does not wait for
// a pending debounce.
func (u *UserSearch) Wait() {
	u.s.wait()
}

// Close cancels pending and running searches.
func (u *UserSearch) Close() {
	u.s.close()
}
