package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spiffcs/ghusers/internal/model"
)

// recorder serves canned responses keyed by request path and remembers
// every request it saw.
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.requests = append(rec.requests, r)
	handler, ok := rec.routes[r.URL.Path]
	rec.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
		return
	}
	handler(w, r)
}

func (rec *recorder) paths() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]string, 0, len(rec.requests))
	for _, r := range rec.requests {
		out = append(out, r.URL.Path)
	}
	return out
}

func (rec *recorder) last() *http.Request {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.requests) == 0 {
		return nil
	}
	return rec.requests[len(rec.requests)-1]
}

func newTestDataSource(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) (*DataSource, *recorder) {
	t.Helper()
	rec := &recorder{routes: routes}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewDataSource(c), rec
}

func body(s string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, s)
	}
}

func TestSearchUsersDirectLookup(t *testing.T) {
	ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/users/octocat": body(`{"id":583231,"login":"octocat","name":"The Octocat","followers":100}`),
	})

	users, err := ds.SearchUsers(context.Background(), "octocat", 1)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].Login != "octocat" || users[0].Name != "The Octocat" {
		t.Fatalf("SearchUsers() = %+v", users)
	}
	if users[0].Followers != 100 {
		t.Errorf("Followers = %d, want full profile", users[0].Followers)
	}

	paths := rec.paths()
	if len(paths) != 1 || paths[0] != "/users/octocat" {
		t.Errorf("requests = %v, want only /users/octocat", paths)
	}
}

func TestSearchUsersFallsBackToSearch(t *testing.T) {
	ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/users": body(`{"total_count":1,"items":[{"id":7,"login":"octocat-fan","avatar_url":"a","html_url":"h"}]}`),
	})

	users, err := ds.SearchUsers(context.Background(), "octocat-fan", 1)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].Login != "octocat-fan" || users[0].Followers != 0 {
		t.Errorf("SearchUsers() = %+v", users)
	}

	paths := rec.paths()
	if len(paths) != 2 || paths[0] != "/users/octocat-fan" || paths[1] != "/search/users" {
		t.Errorf("requests = %v, want lookup then search", paths)
	}
}

func TestSearchUsersQueryParameters(t *testing.T) {
	ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/users": body(`{"total_count":0,"items":[]}`),
	})

	users, err := ds.SearchUsers(context.Background(), "  john doe  ", 1)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("SearchUsers() = %+v, want empty", users)
	}

	paths := rec.paths()
	if len(paths) != 1 {
		t.Fatalf("requests = %v, want a single search", paths)
	}
	q := rec.last().URL.Query()
	if got := q.Get("q"); got != "john doe type:user" {
		t.Errorf("q = %q, want %q", got, "john doe type:user")
	}
	if got := q.Get("per_page"); got != "30" {
		t.Errorf("per_page = %q, want 30", got)
	}
	if got := q.Get("page"); got != "1" {
		t.Errorf("page = %q, want 1", got)
	}
}

func TestSearchUsersLaterPagesSkipLookup(t *testing.T) {
	ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/users/octocat": body(`{"id":1,"login":"octocat"}`),
		"/search/users":  body(`{"total_count":0,"items":[]}`),
	})

	if _, err := ds.SearchUsers(context.Background(), "octocat", 2); err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	paths := rec.paths()
	if len(paths) != 1 || paths[0] != "/search/users" {
		t.Errorf("requests = %v, want only /search/users", paths)
	}
	if got := rec.last().URL.Query().Get("page"); got != "2" {
		t.Errorf("page = %q, want 2", got)
	}
}

func TestEmptyInputsMakeNoRequests(t *testing.T) {
	ds, rec := newTestDataSource(t, nil)
	ctx := context.Background()

	users, err := ds.SearchUsers(ctx, "   ", 1)
	if err != nil || len(users) != 0 {
		t.Errorf("SearchUsers(blank) = %v, %v", users, err)
	}

	result, err := ds.SearchRepositories(ctx, "", "", "", 1)
	if err != nil || len(result.Repositories) != 0 || result.HasMore {
		t.Errorf("SearchRepositories(blank) = %+v, %v", result, err)
	}

	if _, err := ds.GetUser(ctx, ""); !IsNetwork(err) {
		t.Errorf("GetUser(\"\") error = %v, want network error", err)
	}
	if _, err := ds.GetRepositories(ctx, " ", "", "", 1); !IsNetwork(err) {
		t.Errorf("GetRepositories(\"\") error = %v, want network error", err)
	}
	if _, err := ds.GetRepository(ctx, "octocat", ""); !IsNetwork(err) {
		t.Errorf("GetRepository(owner, \"\") error = %v, want network error", err)
	}

	if paths := rec.paths(); len(paths) != 0 {
		t.Errorf("requests = %v, want none", paths)
	}
}

func TestGetRepositoriesParameters(t *testing.T) {
	ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/users/torvalds/repos": body(`[{"id":1,"name":"linux","full_name":"torvalds/linux","stargazers_count":170000}]`),
	})

	repos, err := ds.GetRepositories(context.Background(), "torvalds", model.SortUpdated, model.OrderDesc, 3)
	if err != nil {
		t.Fatalf("GetRepositories() error = %v", err)
	}
	if len(repos) != 1 || repos[0].FullName != "torvalds/linux" || repos[0].Stars != 170000 {
		t.Errorf("GetRepositories() = %+v", repos)
	}

	q := rec.last().URL.Query()
	want := map[string]string{"sort": "updated", "direction": "desc", "per_page": "30", "page": "3"}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestGetRepositoriesOmitsEmptySort(t *testing.T) {
	ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/users/torvalds/repos": body(`[]`),
	})

	repos, err := ds.GetRepositories(context.Background(), "torvalds", "", "", 1)
	if err != nil {
		t.Fatalf("GetRepositories() error = %v", err)
	}
	if repos == nil || len(repos) != 0 {
		t.Errorf("GetRepositories() = %#v, want empty non-nil slice", repos)
	}

	q := rec.last().URL.Query()
	if q.Has("sort") || q.Has("direction") {
		t.Errorf("query = %v, want no sort or direction", q)
	}
}

func TestGetRepository(t *testing.T) {
	ds, _ := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
		"/repos/octocat/hello-world": body(`{"id":1,"name":"hello-world","full_name":"octocat/hello-world","owner":{"id":2,"login":"octocat"},"license":{"key":"mit","name":"MIT License"}}`),
	})

	detail, err := ds.GetRepository(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("GetRepository() error = %v", err)
	}
	if detail.Owner.Login != "octocat" || detail.License == nil || detail.License.Key != "mit" {
		t.Errorf("GetRepository() = %+v", detail)
	}
}

func TestGetRepositoryNotFound(t *testing.T) {
	ds, _ := newTestDataSource(t, nil)

	_, err := ds.GetRepository(context.Background(), "octocat", "missing")
	if !IsNotFound(err) {
		t.Errorf("GetRepository() error = %v, want not found", err)
	}
}

func TestSearchRepositoriesHasMore(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int
		want  bool
	}{
		{name: "more pages", page: 1, total: 31, want: true},
		{name: "exact fit", page: 1, total: 30, want: false},
		{name: "last page", page: 2, total: 45, want: false},
		{name: "middle page", page: 2, total: 61, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, rec := newTestDataSource(t, map[string]func(http.ResponseWriter, *http.Request){
				"/search/repositories": body(fmt.Sprintf(`{"total_count":%d,"items":[{"id":1,"name":"go","full_name":"golang/go"}]}`, tt.total)),
			})

			result, err := ds.SearchRepositories(context.Background(), "language:go", model.SortStars, model.OrderDesc, tt.page)
			if err != nil {
				t.Fatalf("SearchRepositories() error = %v", err)
			}
			if result.HasMore != tt.want {
				t.Errorf("HasMore = %v, want %v", result.HasMore, tt.want)
			}
			if result.TotalCount != tt.total {
				t.Errorf("TotalCount = %d, want %d", result.TotalCount, tt.total)
			}

			q := rec.last().URL.Query()
			if q.Get("q") != "language:go" || q.Get("sort") != "stars" || q.Get("order") != "desc" {
				t.Errorf("query = %v", q)
			}
		})
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "octocat", want: true},
		{in: "  octocat  ", want: true},
		{in: "octo-cat", want: true},
		{in: "a", want: true},
		{in: "A1-b2", want: true},
		{in: "", want: false},
		{in: "   ", want: false},
		{in: "-octocat", want: false},
		{in: "octocat-", want: false},
		{in: "john doe", want: false},
		{in: "octo_cat", want: false},
		{in: "octocät", want: false},
		{in: "abcdefghijklmnopqrstuvwxyzabcdefghijklm", want: true},
		{in: "abcdefghijklmnopqrstuvwxyzabcdefghijklmn", want: false},
	}

	for _, tt := range tests {
		if got := ValidUsername(tt.in); got != tt.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
