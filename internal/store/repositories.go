package store

import (
	"context"
	"strings"

	"github.com/spiffcs/ghusers/internal/cache"
	"github.com/spiffcs/ghusers/internal/ghclient"
	"github.com/spiffcs/ghusers/internal/model"
)

// RepositorySource is the remote side of a RepositoryStore.
// *ghclient.DataSource implements it.
type RepositorySource interface {
	GetRepositories(ctx context.Context, username string, sort model.RepositorySort, order model.SortOrder, page int) ([]model.RepositorySummary, error)
	GetRepository(ctx context.Context, owner, repo string) (model.RepositoryDetail, error)
	SearchRepositories(ctx context.Context, query string, sort model.RepositorySort, order model.SortOrder, page int) (ghclient.RepositorySearchResult, error)
}

// RepositoryStore provides cache-aware repository lookups.
type RepositoryStore struct {
	source RepositorySource
	cache  *cache.Store
	reval  *revalidator
}

// NewRepositoryStore creates a RepositoryStore. If c is nil, caching is
// disabled.
func NewRepositoryStore(source RepositorySource, c *cache.Store, opts Options) *RepositoryStore {
	return &RepositoryStore{source: source, cache: c, reval: newRevalidator(opts)}
}

// GetRepositories returns one page of username's repositories.
func (s *RepositoryStore) GetRepositories(ctx context.Context, username string, sort model.RepositorySort, order model.SortOrder, page int) ([]model.RepositorySummary, error) {
	username = strings.TrimSpace(username)
	if username == "" || page > 1 {
		return s.source.GetRepositories(ctx, username, sort, order, page)
	}
	return cached(ctx, s.reval, s.cache, cache.ReposKey(username, sort, order), func(ctx context.Context) ([]model.RepositorySummary, error) {
		return s.source.GetRepositories(ctx, username, sort, order, 1)
	})
}

// SearchRepositories returns one page of repositories matching query.
func (s *RepositoryStore) SearchRepositories(ctx context.Context, query string, sort model.RepositorySort, order model.SortOrder, page int) (ghclient.RepositorySearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || page > 1 {
		return s.source.SearchRepositories(ctx, query, sort, order, page)
	}
	return cached(ctx, s.reval, s.cache, cache.RepoSearchKey(query, sort, order), func(ctx context.Context) (ghclient.RepositorySearchResult, error) {
		return s.source.SearchRepositories(ctx, query, sort, order, 1)
	})
}

// GetRepository returns the detail of owner/repo.
func (s *RepositoryStore) GetRepository(ctx context.Context, owner, repo string) (model.RepositoryDetail, error) {
	owner = strings.TrimSpace(owner)
	repo = strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return s.source.GetRepository(ctx, owner, repo)
	}
	return cached(ctx, s.reval, s.cache, cache.RepoKey(owner, repo), func(ctx context.Context) (model.RepositoryDetail, error) {
		return s.source.GetRepository(ctx, owner, repo)
	})
}

// Wait blocks until the background refreshes triggered so far have finished.
func (s *RepositoryStore) Wait() {
	s.reval.wait()
}
