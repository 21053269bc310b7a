package ghclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/model"
)

// Fetcher performs a decoded GET request. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string, v any) error
}

// RepositorySearchResult is one page of repository search results.
type RepositorySearchResult struct {
	Repositories []model.RepositorySummary
	TotalCount   int
	HasMore      bool
}

// DataSource exposes the GitHub operations the application needs.
type DataSource struct {
	fetcher  Fetcher
	pageSize int
}

// NewDataSource creates a DataSource on top of f.
func NewDataSource(f Fetcher) *DataSource {
	return &DataSource{fetcher: f, pageSize: constants.PageSize}
}

// PageSize returns the number of items requested per page.
func (d *DataSource) PageSize() int {
	return d.pageSize
}

type searchOptions struct {
	Query   string `url:"q"`
	Sort    string `url:"sort,omitempty"`
	Order   string `url:"order,omitempty"`
	PerPage int    `url:"per_page"`
	Page    int    `url:"page"`
}

type listOptions struct {
	Sort      string `url:"sort,omitempty"`
	Direction string `url:"direction,omitempty"`
	PerPage   int    `url:"per_page"`
	Page      int    `url:"page"`
}

func withQuery(path string, opts any) (string, error) {
	v, err := query.Values(opts)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Message: "Invalid URL", Err: err}
	}
	return path + "?" + v.Encode(), nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// SearchUsers returns one page of users matching q. A query that looks like
// a login is first tried as a direct lookup on page 1, which returns the
// full profile. Blank queries return nothing without calling the API.
func (d *DataSource) SearchUsers(ctx context.Context, q string, page int) ([]model.UserProfile, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.UserProfile{}, nil
	}
	page = normalizePage(page)

	if page == 1 && ValidUsername(q) {
		user, err := d.GetUser(ctx, q)
		if err == nil {
			return []model.UserProfile{user}, nil
		}
		if ctx.Err() != nil {
			return nil, classify(ctx.Err())
		}
		log.Debug("direct user lookup failed, falling back to search", "query", q, "error", err)
	}

	path, err := withQuery("search/users", searchOptions{
		Query:   q + " type:user",
		PerPage: d.pageSize,
		Page:    page,
	})
	if err != nil {
		return nil, err
	}

	var resp model.UserSearchResponse
	if err := d.fetcher.Fetch(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Profiles(), nil
}

// GetUser returns the full profile of username.
func (d *DataSource) GetUser(ctx context.Context, username string) (model.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.UserProfile{}, networkError("Username cannot be empty", nil)
	}

	var user model.UserProfile
	if err := d.fetcher.Fetch(ctx, "users/"+url.PathEscape(username), &user); err != nil {
		return model.UserProfile{}, err
	}
	return user, nil
}

// GetRepositories returns one page of username's public repositories. Empty
// sort or order leave the API defaults in place.
func (d *DataSource) GetRepositories(ctx context.Context, username string, sort model.RepositorySort, order model.SortOrder, page int) ([]model.RepositorySummary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, networkError("Username cannot be empty", nil)
	}

	path, err := withQuery(fmt.Sprintf("users/%s/repos", url.PathEscape(username)), listOptions{
		Sort:      string(sort),
		Direction: string(order),
		PerPage:   d.pageSize,
		Page:      normalizePage(page),
	})
	if err != nil {
		return nil, err
	}

	var repos model.RepositoryList
	if err := d.fetcher.Fetch(ctx, path, &repos); err != nil {
		return nil, err
	}
	if repos == nil {
		return []model.RepositorySummary{}, nil
	}
	return repos, nil
}

// GetRepository returns the detail of owner/repo.
func (d *DataSource) GetRepository(ctx context.Context, owner, repo string) (model.RepositoryDetail, error) {
	owner = strings.TrimSpace(owner)
	repo = strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return model.RepositoryDetail{}, networkError("Owner and repository name cannot be empty", nil)
	}

	var detail model.RepositoryDetail
	path := fmt.Sprintf("repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := d.fetcher.Fetch(ctx, path, &detail); err != nil {
		return model.RepositoryDetail{}, err
	}
	return detail, nil
}

// SearchRepositories returns one page of repositories matching q.
func (d *DataSource) SearchRepositories(ctx context.Context, q string, sort model.RepositorySort, order model.SortOrder, page int) (RepositorySearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return RepositorySearchResult{Repositories: []model.RepositorySummary{}}, nil
	}
	page = normalizePage(page)

	path, err := withQuery("search/repositories", searchOptions{
		Query:   q,
		Sort:    string(sort),
		Order:   string(order),
		PerPage: d.pageSize,
		Page:    page,
	})
	if err != nil {
		return RepositorySearchResult{}, err
	}

	var resp model.RepositorySearchResponse
	if err := d.fetcher.Fetch(ctx, path, &resp); err != nil {
		return RepositorySearchResult{}, err
	}

	repos := resp.Items
	if repos == nil {
		repos = []model.RepositorySummary{}
	}
	return RepositorySearchResult{
		Repositories: repos,
		TotalCount:   resp.TotalCount,
		HasMore:      page*d.pageSize < resp.TotalCount,
	}, nil
}
