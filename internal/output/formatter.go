package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spiffcs/ghusers/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat converts user input into a Format. Empty input selects the table.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: table, json)", s)
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Users(w io.Writer, users []model.UserProfile) error
	User(w io.Writer, user model.UserProfile, repos []model.RepositorySummary) error
	Repositories(w io.Writer, repos []model.RepositorySummary) error
	Repository(w io.Writer, repo model.RepositoryDetail) error
	History(w io.Writer, entries []string) error
}

// FavoriteChecker reports whether an id is a favorite.
type FavoriteChecker interface {
	Contains(id int64) bool
}

// Options tune the table formatter. Every field is optional.
type Options struct {
	FavoriteUsers        FavoriteChecker
	FavoriteRepositories FavoriteChecker
	// Hyperlinks wraps names in OSC 8 terminal links.
	Hyperlinks bool
	Now        func() time.Time
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	default:
		if opts.Now == nil {
			opts.Now = time.Now
		}
		return &TableFormatter{opts: opts}
	}
}
