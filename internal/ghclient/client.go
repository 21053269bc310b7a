package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/metrics"
	"github.com/spiffcs/ghusers/internal/model"
	"golang.org/x/oauth2"
)

// Options configures a Client. The zero value talks to api.github.com
// without authentication.
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Metrics           metrics.Recorder
	// HTTPClient overrides the transport below the rate limiter. Tests use it.
	HTTPClient *http.Client
}

// Client performs GET requests against the GitHub REST API and decodes the
// JSON responses.
type Client struct {
	client  *gh.Client
	limits  *RateLimitState
	metrics metrics.Recorder
	// token is intentionally unexported. NEVER add String(), MarshalJSON(),
	// or any method that could expose this value in logs or serialized output.
	token string
}

// NewClient creates a new GitHub client. A token is optional.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.RequestTimeout
	}

	var base http.RoundTripper = http.DefaultTransport
	if opts.HTTPClient != nil && opts.HTTPClient.Transport != nil {
		base = opts.HTTPClient.Transport
	}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		base = &oauth2.Transport{Source: ts, Base: base}
	}

	limits := newRateLimitState()
	hc := &http.Client{
		Timeout: timeout,
		Transport: &rateLimitTransport{
			base:    base,
			state:   limits,
			limiter: newLimiter(opts.RequestsPerSecond, opts.Burst),
		},
	}

	client := gh.NewClient(hc)
	client.UserAgent = constants.UserAgent

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = constants.APIBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := client.BaseURL.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	client.BaseURL = u

	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	log.Trace("github client created", "base_url", u.String(), "authenticated", opts.Token != "", "timeout", timeout)

	return &Client{
		client:  client,
		limits:  limits,
		metrics: rec,
		token:   opts.Token,
	}, nil
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Fetch performs a GET of path (relative to the base URL, query included)
// and decodes the JSON body into v. If v implements model.Validator the
// decoded value is validated. Every failure is returned as an *Error.
func (c *Client) Fetch(ctx context.Context, path string, v any) error {
	req, err := c.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: "Invalid URL", Err: err}
	}
	req.Header.Set("Accept", constants.AcceptHeader)
	req.Header.Set("X-GitHub-Api-Version", constants.APIVersion)

	var body bytes.Buffer
	start := time.Now()
	resp, err := c.client.Do(ctx, req, &body)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.RecordRequest(endpointLabel(path), status, time.Since(start))

	if err != nil {
		classified := classify(err)
		log.Debug("github request failed", "path", path, "status", status, "error", classified)
		return classified
	}

	log.Trace("github request", "path", path, "status", status, "bytes", body.Len(), "duration", time.Since(start))

	if err := decode(body.Bytes(), v); err != nil {
		return classify(err)
	}
	return nil
}

func decode(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if val, ok := v.(model.Validator); ok {
		return val.Validate()
	}
	return nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return limits, nil
}

// RateLimitStatus returns what the most recent responses reported.
func (c *Client) RateLimitStatus() RateLimitStatus {
	return c.limits.Status()
}

// endpointLabel collapses a request path to a low-cardinality metrics label.
func endpointLabel(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) >= 2 && parts[0] == "search":
		return "search/" + parts[1]
	case len(parts) == 3 && parts[0] == "users" && parts[2] == "repos":
		return "users/repos"
	case len(parts) == 2 && parts[0] == "users":
		return "users"
	case len(parts) == 3 && parts[0] == "repos":
		return "repos"
	default:
		return "other"
	}
}
