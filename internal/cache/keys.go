package cache

import (
	"strings"

	"github.com/spiffcs/ghusers/internal/model"
)

// Kind identifies the entity a cache entry holds.
type Kind string

const (
	KindUser       Kind = "user"
	KindSearch     Kind = "search"
	KindRepos      Kind = "repos"
	KindRepoSearch Kind = "reposearch"
	KindRepo       Kind = "repo"
)

// Key encodes the logical parameters of a cached response. Two lookups with
// the same parameters produce the same key, and changing any parameter
// produces a different one.
type Key struct {
	Kind      Kind
	Subject   string
	Sort      string
	Order     string
	Paginated bool
}

// unsetPart holds the place of an empty sort or order so that every key of
// a sortable kind has the same number of parts.
const unsetPart = "-"

func (k Kind) sortable() bool {
	return k == KindRepos || k == KindRepoSearch
}

// String returns the storage form of the key, e.g.
// "repos_torvalds_stars_desc_page1". Sortable kinds always carry the sort
// and order positions, so a query containing "_" cannot collide with a
// shorter query plus a sort.
func (k Key) String() string {
	parts := make([]string, 0, 5)
	parts = append(parts, string(k.Kind), k.Subject)
	if k.Kind.sortable() || k.Sort != "" || k.Order != "" {
		parts = append(parts, orUnset(k.Sort), orUnset(k.Order))
	}
	if k.Paginated {
		parts = append(parts, "page1")
	}
	return strings.Join(parts, "_")
}

func orUnset(s string) string {
	if s == "" {
		return unsetPart
	}
	return s
}

// UserKey is the key of a single user profile.
func UserKey(username string) Key {
	return Key{Kind: KindUser, Subject: strings.TrimSpace(username)}
}

// SearchKey is the key of the first page of a user search.
func SearchKey(query string) Key {
	return Key{Kind: KindSearch, Subject: strings.TrimSpace(query), Paginated: true}
}

// ReposKey is the key of the first page of a user's repositories. Unset
// sort and order fall back to the API defaults (updated, desc).
func ReposKey(username string, sort model.RepositorySort, order model.SortOrder) Key {
	if sort == "" {
		sort = model.SortUpdated
	}
	if order == "" {
		order = model.OrderDesc
	}
	return Key{
		Kind:      KindRepos,
		Subject:   strings.TrimSpace(username),
		Sort:      string(sort),
		Order:     string(order),
		Paginated: true,
	}
}

// RepoSearchKey is the key of the first page of a repository search.
func RepoSearchKey(query string, sort model.RepositorySort, order model.SortOrder) Key {
	return Key{
		Kind:      KindRepoSearch,
		Subject:   strings.TrimSpace(query),
		Sort:      string(sort),
		Order:     string(order),
		Paginated: true,
	}
}

// RepoKey is the key of a single repository detail.
func RepoKey(owner, repo string) Key {
	return Key{Kind: KindRepo, Subject: strings.TrimSpace(owner) + "/" + strings.TrimSpace(repo)}
}
