// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the ghusers application.
package constants

import "time"

// GitHub API constants
const (
	// APIBaseURL is the default GitHub REST API endpoint.
	APIBaseURL = "https://api.github.com/"

	// UserAgent is sent with every request. GitHub rejects requests without one.
	UserAgent = "ghusers/1.0"

	// AcceptHeader selects the GitHub JSON media type.
	AcceptHeader = "application/vnd.github+json"

	// APIVersion is the REST API version pinned through X-GitHub-Api-Version.
	APIVersion = "2022-11-28"

	// RequestTimeout bounds every HTTP request.
	RequestTimeout = 30 * time.Second

	// PageSize is the fixed page length used for every paginated call.
	PageSize = 30

	// MaxUsernameLength is the longest login GitHub accepts.
	MaxUsernameLength = 39
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 10

	// DefaultRequestsPerSecond is the proactive client-side throttle.
	DefaultRequestsPerSecond = 10

	// DefaultRequestBurst is the token bucket size of the proactive throttle.
	DefaultRequestBurst = 10
)

// Cache constants
const (
	// MemoryCacheEntries is the maximum number of entries held in memory.
	MemoryCacheEntries = 100

	// MemoryCacheBytes is the total byte budget of the memory tier.
	MemoryCacheBytes = 50 * 1024 * 1024

	// RevalidateInterval is the minimum time between two network refreshes
	// of the same cache key.
	RevalidateInterval = 30 * time.Second
)

// Search and history constants
const (
	// SearchDebounce is how long input must be idle before a search fires.
	SearchDebounce = 500 * time.Millisecond

	// HistoryLimit is the maximum number of remembered search queries.
	HistoryLimit = 20
)

// Collection names used by the persistent stores.
const (
	FavoriteUsersName        = "favorite_users"
	FavoriteRepositoriesName = "favorite_repositories"
	SearchHistoryName        = "search_history"
)
