package format

// IconType represents the type of icon to display for a user or repository.
type IconType int

const (
	// IconNone indicates no icon should be displayed.
	IconNone IconType = iota
	// IconFavorite marks an entry the user has favorited.
	IconFavorite
	// IconPopular marks a repository above the popularity threshold.
	IconPopular
)

// IconInput contains the fields needed to determine which icon to display.
type IconInput struct {
	Favorite         bool
	Stars            int
	PopularThreshold int
}

// DetermineIcon decides which icon (if any) should be displayed for a row.
// Favorite takes precedence over popular.
func DetermineIcon(input IconInput) IconType {
	if input.Favorite {
		return IconFavorite
	}
	if input.PopularThreshold > 0 && input.Stars >= input.PopularThreshold {
		return IconPopular
	}
	return IconNone
}

// String returns the emoji for the icon, or an empty string for IconNone.
func (i IconType) String() string {
	switch i {
	case IconFavorite:
		return FavoriteIcon
	case IconPopular:
		return PopularIcon
	default:
		return ""
	}
}

// Icon strings for display (renderers can apply their own styling)
const (
	// FavoriteIcon is the star emoji for favorites.
	FavoriteIcon = "\u2B50" // ⭐

	// PopularIcon is the fire emoji for popular repositories.
	PopularIcon = "\U0001F525" // 🔥

	// PopularStars is the default star count above which a repository is popular.
	PopularStars = 10000

	// IconWidth is the display width reserved for the icon column (emoji=2 + space=1).
	IconWidth = 3
)
