package listing

import (
	"slices"
	"strings"

	"github.com/spiffcs/ghusers/internal/model"
)

// Filter is the local view over a fetched repository list.
type Filter struct {
	Text     string
	Language string
	Sort     model.RepositorySort
	Order    model.SortOrder
}

// DefaultFilter matches the API defaults for user repositories.
func DefaultFilter() Filter {
	return Filter{Sort: model.SortUpdated, Order: model.OrderDesc}
}

// Apply returns the visible subset of repos for f. It never modifies repos
// and returns the same result for the same inputs.
//
// Stars and updated sort newest or largest first, full name sorts A to Z,
// and ascending order reverses the result. Created and pushed are left in the order the API
// returned them.
func Apply(repos []model.RepositorySummary, f Filter) []model.RepositorySummary {
	text := strings.ToLower(strings.TrimSpace(f.Text))

	visible := make([]model.RepositorySummary, 0, len(repos))
	for _, r := range repos {
		if text != "" && !strings.Contains(strings.ToLower(r.Name), text) &&
			!strings.Contains(strings.ToLower(r.Description), text) {
			continue
		}
		if f.Language != "" && r.Language != f.Language {
			continue
		}
		visible = append(visible, r)
	}

	var cmp func(a, b model.RepositorySummary) int
	switch f.Sort {
	case model.SortStars:
		cmp = func(a, b model.RepositorySummary) int { return b.Stars - a.Stars }
	case model.SortUpdated:
		cmp = func(a, b model.RepositorySummary) int { return strings.Compare(b.UpdatedAt, a.UpdatedAt) }
	case model.SortFullName:
		cmp = func(a, b model.RepositorySummary) int { return strings.Compare(a.FullName, b.FullName) }
	default:
		return visible
	}

	slices.SortStableFunc(visible, cmp)
	if f.Order == model.OrderAsc {
		slices.Reverse(visible)
	}
	return visible
}

// Languages returns the distinct languages of repos in alphabetical order.
func Languages(repos []model.RepositorySummary) []string {
	seen := make(map[string]struct{})
	langs := []string{}
	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		if _, ok := seen[r.Language]; ok {
			continue
		}
		seen[r.Language] = struct{}{}
		langs = append(langs, r.Language)
	}
	slices.Sort(langs)
	return langs
}
