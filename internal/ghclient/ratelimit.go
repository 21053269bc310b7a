package ghclient

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"golang.org/x/time/rate"
)

// RateLimitState tracks the rate limit reported by the API for one client.
type RateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
}

// RateLimitStatus is a snapshot of RateLimitState.
type RateLimitStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
	Limited   bool
}

func newRateLimitState() *RateLimitState {
	return &RateLimitState{remaining: -1, limit: -1}
}

// IsLimited returns true while the API has refused requests and the reset
// time has not yet passed.
func (s *RateLimitState) IsLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limited && time.Now().Before(s.resetAt)
}

// SetLimited marks the state as limited until resetAt.
func (s *RateLimitState) SetLimited(limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = limited
	s.resetAt = resetAt
}

// Update records the values of the X-RateLimit-* headers.
func (s *RateLimitState) Update(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt
	s.limited = remaining == 0
}

// Status returns a snapshot of the state.
func (s *RateLimitState) Status() RateLimitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RateLimitStatus{
		Remaining: s.remaining,
		Limit:     s.limit,
		ResetAt:   s.resetAt,
		Limited:   s.limited && time.Now().Before(s.resetAt),
	}
}

// rateLimitTransport throttles outgoing requests and records the rate limit
// headers of every response.
type rateLimitTransport struct {
	base    http.RoundTripper
	state   *RateLimitState
	limiter *rate.Limiter
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = constants.DefaultRequestBurst
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.state.IsLimited() {
		return nil, ErrRateLimited
	}
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.Update(remaining, limit, resetAt)
	}

	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		reset := resetAt
		if reset.IsZero() {
			reset = time.Now().Add(retryAfter(resp))
		}
		t.state.SetLimited(true, reset)
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			resetAt = time.Unix(n, 0)
		}
	}
	return remaining, limit, resetAt
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Minute
}
