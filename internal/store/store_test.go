package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spiffcs/ghusers/internal/cache"
	"github.com/spiffcs/ghusers/internal/ghclient"
	"github.com/spiffcs/ghusers/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   map[string]int
	repos   []model.RepositorySummary
	users   []model.UserProfile
	err     error
	block   chan struct{}
	ctxErrs []error
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: map[string]int{}}
}

func (f *fakeSource) record(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	block := f.block
	err := f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) set(repos []model.RepositorySummary, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos = repos
	f.err = err
}

func (f *fakeSource) SearchUsers(ctx context.Context, query string, page int) ([]model.UserProfile, error) {
	if err := f.record(ctx, fmt.Sprintf("search:%s:%d", query, page)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, nil
}

func (f *fakeSource) GetUser(ctx context.Context, username string) (model.UserProfile, error) {
	if err := f.record(ctx, "user:"+username); err != nil {
		return model.UserProfile{}, err
	}
	return model.UserProfile{ID: 1, Login: username}, nil
}

func (f *fakeSource) GetRepositories(ctx context.Context, username string, sort model.RepositorySort, order model.SortOrder, page int) ([]model.RepositorySummary, error) {
	if err := f.record(ctx, fmt.Sprintf("repos:%s:%d", username, page)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repos, nil
}

func (f *fakeSource) GetRepository(ctx context.Context, owner, repo string) (model.RepositoryDetail, error) {
	if err := f.record(ctx, "repo:"+owner+"/"+repo); err != nil {
		return model.RepositoryDetail{}, err
	}
	return model.RepositoryDetail{ID: 1, Name: repo, FullName: owner + "/" + repo, Owner: model.Owner{Login: owner}}, nil
}

func (f *fakeSource) SearchRepositories(ctx context.Context, query string, sort model.RepositorySort, order model.SortOrder, page int) (ghclient.RepositorySearchResult, error) {
	if err := f.record(ctx, fmt.Sprintf("reposearch:%s:%d", query, page)); err != nil {
		return ghclient.RepositorySearchResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return ghclient.RepositorySearchResult{Repositories: f.repos, TotalCount: 100, HasMore: true}, nil
}

func makeRepos(n int, prefix string) []model.RepositorySummary {
	repos := make([]model.RepositorySummary, n)
	for i := range repos {
		name := fmt.Sprintf("%s-%d", prefix, i)
		repos[i] = model.RepositorySummary{ID: int64(i + 1), Name: name, FullName: "torvalds/" + name}
	}
	return repos
}

func newTestCache(t *testing.T) *cache.Store {
	t.Helper()
	c, err := cache.New(cache.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	return c
}

func TestRepositoriesServedFromCacheWithoutNetwork(t *testing.T) {
	src := newFakeSource()
	src.set(makeRepos(30, "repo"), nil)
	c := newTestCache(t)
	s := NewRepositoryStore(src, c, DefaultOptions())
	ctx := context.Background()

	first, err := s.GetRepositories(ctx, "torvalds", model.SortStars, model.OrderDesc, 1)
	require.NoError(t, err)
	require.Len(t, first, 30)

	_, ok := c.Get("repos_torvalds_stars_desc_page1")
	assert.True(t, ok, "page 1 was not written to the cache")

	second, err := s.GetRepositories(ctx, "torvalds", model.SortStars, model.OrderDesc, 1)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.count("repos:torvalds:1"))
}

func TestColdCacheEntryTriggersOneBackgroundFetch(t *testing.T) {
	src := newFakeSource()
	src.set(makeRepos(3, "fresh"), nil)
	src.block = make(chan struct{})
	c := newTestCache(t)
	key := cache.ReposKey("torvalds", "", "").String()
	require.NoError(t, cache.Save(c, key, makeRepos(2, "stale")))

	s := NewRepositoryStore(src, c, DefaultOptions())

	got, err := s.GetRepositories(context.Background(), "torvalds", "", "", 1)
	require.NoError(t, err)
	assert.Equal(t, makeRepos(2, "stale"), got, "cached value must be returned before the refresh completes")

	// a second hit while the refresh is running joins it
	_, err = s.GetRepositories(context.Background(), "torvalds", "", "", 1)
	require.NoError(t, err)

	close(src.block)
	s.Wait()

	assert.Equal(t, 1, src.count("repos:torvalds:1"))
	refreshed, ok := cache.Load[[]model.RepositorySummary](c, key)
	require.True(t, ok)
	assert.Equal(t, makeRepos(3, "fresh"), refreshed)
}

func TestLaterPagesAreNeverCached(t *testing.T) {
	src := newFakeSource()
	src.set(makeRepos(30, "page2"), nil)
	c := newTestCache(t)
	s := NewRepositoryStore(src, c, DefaultOptions())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.GetRepositories(ctx, "torvalds", model.SortStars, model.OrderDesc, 2)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, src.count("repos:torvalds:2"))
	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.DiskEntries)
}

func TestBackgroundErrorsAreSwallowed(t *testing.T) {
	src := newFakeSource()
	src.set(nil, errors.New("boom"))
	c := newTestCache(t)
	key := cache.RepoSearchKey("cli", model.SortStars, model.OrderDesc).String()
	cachedResult := ghclient.RepositorySearchResult{Repositories: makeRepos(1, "cached"), TotalCount: 1}
	require.NoError(t, cache.Save(c, key, cachedResult))

	s := NewRepositoryStore(src, c, DefaultOptions())
	got, err := s.SearchRepositories(context.Background(), "cli", model.SortStars, model.OrderDesc, 1)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, cachedResult, got)
	assert.Equal(t, 1, src.count("reposearch:cli:1"))

	kept, ok := cache.Load[ghclient.RepositorySearchResult](c, key)
	require.True(t, ok)
	assert.Equal(t, cachedResult, kept)
}

func TestFailedRefreshIsRetried(t *testing.T) {
	src := newFakeSource()
	src.set(nil, errors.New("boom"))
	c := newTestCache(t)
	require.NoError(t, cache.Save(c, cache.UserKey("octocat").String(), model.UserProfile{ID: 1, Login: "octocat"}))

	s := NewUserStore(src, c, DefaultOptions())
	for i := 0; i < 2; i++ {
		_, err := s.GetUser(context.Background(), "octocat")
		require.NoError(t, err)
		s.Wait()
	}

	assert.Equal(t, 2, src.count("user:octocat"), "a failed refresh must not stamp the key")
}

func TestZeroIntervalRefreshesEveryHit(t *testing.T) {
	src := newFakeSource()
	c := newTestCache(t)
	s := NewUserStore(src, c, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.GetUser(ctx, "octocat")
		require.NoError(t, err)
		s.Wait()
	}

	// one live fetch, then one refresh per hit
	assert.Equal(t, 3, src.count("user:octocat"))
}

func TestIntervalExpires(t *testing.T) {
	src := newFakeSource()
	c := newTestCache(t)
	s := NewUserStore(src, c, Options{RevalidateInterval: time.Minute})
	now := time.Now()
	s.reval.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := s.GetUser(ctx, "octocat")
	require.NoError(t, err)
	_, err = s.GetUser(ctx, "octocat")
	require.NoError(t, err)
	s.Wait()
	assert.Equal(t, 1, src.count("user:octocat"))

	now = now.Add(2 * time.Minute)
	_, err = s.GetUser(ctx, "octocat")
	require.NoError(t, err)
	s.Wait()
	assert.Equal(t, 2, src.count("user:octocat"))
}

func TestRefreshOutlivesCallerCancellation(t *testing.T) {
	src := newFakeSource()
	c := newTestCache(t)
	require.NoError(t, cache.Save(c, cache.RepoKey("octocat", "hello").String(),
		model.RepositoryDetail{ID: 1, Name: "hello", FullName: "octocat/hello", Owner: model.Owner{Login: "octocat"}}))

	s := NewRepositoryStore(src, c, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := s.GetRepository(ctx, "octocat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "octocat/hello", got.FullName)
	s.Wait()

	src.mu.Lock()
	defer src.mu.Unlock()
	require.Len(t, src.ctxErrs, 1)
	assert.NoError(t, src.ctxErrs[0])
}

func TestMissErrorIsReturnedAndNotCached(t *testing.T) {
	src := newFakeSource()
	src.set(nil, errors.New("offline"))
	c := newTestCache(t)
	s := NewRepositoryStore(src, c, DefaultOptions())

	_, err := s.GetRepositories(context.Background(), "torvalds", "", "", 1)
	require.Error(t, err)

	_, ok := c.Get(cache.ReposKey("torvalds", "", "").String())
	assert.False(t, ok)
}

func TestSearchUsersCachesFirstPageOnly(t *testing.T) {
	src := newFakeSource()
	src.users = []model.UserProfile{{ID: 1, Login: "john"}}
	c := newTestCache(t)
	s := NewUserStore(src, c, DefaultOptions())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		users, err := s.SearchUsers(ctx, " john doe ", 1)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	}
	_, err := s.SearchUsers(ctx, "john doe", 2)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, 1, src.count("search:john doe:1"))
	assert.Equal(t, 1, src.count("search:john doe:2"))
	_, ok := c.Get("search_john doe_page1")
	assert.True(t, ok)
}

func TestNilCacheDisablesCaching(t *testing.T) {
	src := newFakeSource()
	s := NewUserStore(src, nil, DefaultOptions())

	for i := 0; i < 2; i++ {
		_, err := s.GetUser(context.Background(), "octocat")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.count("user:octocat"))
}

func TestWaitCoversEveryTriggeredRefresh(t *testing.T) {
	r := newRevalidator(Options{Timeout: time.Second})

	var mu sync.Mutex
	done := 0
	for i := 0; i < 20; i++ {
		r.trigger(context.Background(), fmt.Sprintf("key-%d", i), func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	r.wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20, done)
}
