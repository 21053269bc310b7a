package model

import "fmt"

// RepositorySummary is a repository as it appears in list and search results.
type RepositorySummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks"`
	HTMLURL     string `json:"html_url"`
	UpdatedAt   string `json:"updated_at"`
}

// FavoriteID implements the favorites identity.
func (r RepositorySummary) FavoriteID() int64 {
	return r.ID
}

// Validate reports the first required key missing from a decoded summary.
func (r *RepositorySummary) Validate() error {
	return validateRepository("", r.ID, r.Name, r.FullName)
}

// License describes a repository license.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Owner is the owner stub embedded in a repository detail.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// RepositoryDetail is the full repository returned by GET /repos/{owner}/{repo}.
type RepositoryDetail struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description,omitempty"`
	Language        string   `json:"language,omitempty"`
	Stars           int      `json:"stargazers_count"`
	Forks           int      `json:"forks"`
	Watchers        int      `json:"watchers"`
	HTMLURL         string   `json:"html_url"`
	CloneURL        string   `json:"clone_url"`
	DefaultBranch   string   `json:"default_branch"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at,omitempty"`
	Homepage        string   `json:"homepage,omitempty"`
	Topics          []string `json:"topics"`
	License         *License `json:"license,omitempty"`
	Owner           Owner    `json:"owner"`
	Private         bool     `json:"private"`
	Archived        bool     `json:"archived"`
	Fork            bool     `json:"fork"`
	OpenIssuesCount int      `json:"open_issues_count"`
	Size            int      `json:"size"`
}

// Validate reports the first required key missing from a decoded detail.
func (d *RepositoryDetail) Validate() error {
	if err := validateRepository("", d.ID, d.Name, d.FullName); err != nil {
		return err
	}
	if d.Owner.Login == "" {
		return &MissingKeyError{Path: "owner.login"}
	}
	return nil
}

// Summary projects the detail onto the summary shape, e.g. for favorites.
func (d RepositoryDetail) Summary() RepositorySummary {
	return RepositorySummary{
		ID:          d.ID,
		Name:        d.Name,
		FullName:    d.FullName,
		Description: d.Description,
		Language:    d.Language,
		Stars:       d.Stars,
		Forks:       d.Forks,
		HTMLURL:     d.HTMLURL,
		UpdatedAt:   d.UpdatedAt,
	}
}

// RepositoryList is the body of GET /users/{login}/repos.
type RepositoryList []RepositorySummary

// Validate checks every element of the list.
func (l *RepositoryList) Validate() error {
	for i, r := range *l {
		if err := validateRepository(fmt.Sprintf("[%d]", i), r.ID, r.Name, r.FullName); err != nil {
			return err
		}
	}
	return nil
}

// RepositorySearchResponse is the body of GET /search/repositories.
type RepositorySearchResponse struct {
	TotalCount        int                 `json:"total_count"`
	IncompleteResults bool                `json:"incomplete_results"`
	Items             []RepositorySummary `json:"items"`
}

// Validate checks every item in the response.
func (r *RepositorySearchResponse) Validate() error {
	for i, item := range r.Items {
		if err := validateRepository(fmt.Sprintf("items[%d]", i), item.ID, item.Name, item.FullName); err != nil {
			return err
		}
	}
	return nil
}

func validateRepository(prefix string, id int64, name, fullName string) error {
	switch {
	case id == 0:
		return &MissingKeyError{Path: joinPath(prefix, "id")}
	case name == "":
		return &MissingKeyError{Path: joinPath(prefix, "name")}
	case fullName == "":
		return &MissingKeyError{Path: joinPath(prefix, "full_name")}
	}
	return nil
}
