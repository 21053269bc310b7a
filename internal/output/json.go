package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/ghusers/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// UserOutput is the JSON shape of a user with their repositories.
type UserOutput struct {
	User         model.UserProfile         `json:"user"`
	Repositories []model.RepositorySummary `json:"repositories,omitempty"`
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// Users outputs users as a JSON array
func (f *JSONFormatter) Users(w io.Writer, users []model.UserProfile) error {
	if users == nil {
		users = []model.UserProfile{}
	}
	return f.encode(w, users)
}

// User outputs one user and, when given, their repositories
func (f *JSONFormatter) User(w io.Writer, user model.UserProfile, repos []model.RepositorySummary) error {
	return f.encode(w, UserOutput{User: user, Repositories: repos})
}

// Repositories outputs repositories as a JSON array
func (f *JSONFormatter) Repositories(w io.Writer, repos []model.RepositorySummary) error {
	if repos == nil {
		repos = []model.RepositorySummary{}
	}
	return f.encode(w, repos)
}

// Repository outputs a repository detail
func (f *JSONFormatter) Repository(w io.Writer, repo model.RepositoryDetail) error {
	return f.encode(w, repo)
}

// History outputs search history as a JSON array
func (f *JSONFormatter) History(w io.Writer, entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	return f.encode(w, entries)
}
