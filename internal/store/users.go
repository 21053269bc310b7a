package store

import (
	"context"
	"strings"

	"github.com/spiffcs/ghusers/internal/cache"
	"github.com/spiffcs/ghusers/internal/model"
)

// UserSource is the remote side of a UserStore. *ghclient.DataSource
// implements it.
type UserSource interface {
	SearchUsers(ctx context.Context, query string, page int) ([]model.UserProfile, error)
	GetUser(ctx context.Context, username string) (model.UserProfile, error)
}

// UserStore provides cache-aware user lookups.
type UserStore struct {
	source UserSource
	cache  *cache.Store
	reval  *revalidator
}

// NewUserStore creates a UserStore. If c is nil, caching is disabled.
func NewUserStore(source UserSource, c *cache.Store, opts Options) *UserStore {
	return &UserStore{source: source, cache: c, reval: newRevalidator(opts)}
}

// SearchUsers returns one page of users matching query. The first page is
// served from the cache when possible; later pages always go to the network.
func (s *UserStore) SearchUsers(ctx context.Context, query string, page int) ([]model.UserProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" || page > 1 {
		return s.source.SearchUsers(ctx, query, page)
	}
	return cached(ctx, s.reval, s.cache, cache.SearchKey(query), func(ctx context.Context) ([]model.UserProfile, error) {
		return s.source.SearchUsers(ctx, query, 1)
	})
}

// GetUser returns the profile of username.
func (s *UserStore) GetUser(ctx context.Context, username string) (model.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return s.source.GetUser(ctx, username)
	}
	return cached(ctx, s.reval, s.cache, cache.UserKey(username), func(ctx context.Context) (model.UserProfile, error) {
		return s.source.GetUser(ctx, username)
	})
}

// Wait blocks until the background refreshes triggered so far have finished.
func (s *UserStore) Wait() {
	s.reval.wait()
}
