package model

import "fmt"

// RepositorySort is a repository ordering understood by the GitHub API.
// The empty value means "not specified".
type RepositorySort string

const (
	SortCreated  RepositorySort = "created"
	SortUpdated  RepositorySort = "updated"
	SortPushed   RepositorySort = "pushed"
	SortFullName RepositorySort = "full_name"
	SortStars    RepositorySort = "stars"
)

// AllSorts lists the supported sort fields.
func AllSorts() []RepositorySort {
	return []RepositorySort{SortCreated, SortUpdated, SortPushed, SortFullName, SortStars}
}

// ParseSort converts user input into a RepositorySort. An empty string is
// accepted and yields the unset value.
func ParseSort(s string) (RepositorySort, error) {
	if s == "" {
		return "", nil
	}
	for _, sort := range AllSorts() {
		if string(sort) == s {
			return sort, nil
		}
	}
	return "", fmt.Errorf("invalid sort %q (valid: created, updated, pushed, full_name, stars)", s)
}

// SortOrder is the direction of a sort. The empty value means "not specified".
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseOrder converts user input into a SortOrder.
func ParseOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", OrderAsc, OrderDesc:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("invalid order %q (valid: asc, desc)", s)
}
