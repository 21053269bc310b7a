package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiffcs/ghusers/config"
	"github.com/spiffcs/ghusers/internal/model"
)

func newTestApp(t *testing.T, backend string, handler http.HandlerFunc) (*App, string) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	root := t.TempDir()
	cfg := &config.Config{
		BaseURL:      server.URL + "/",
		CacheDir:     filepath.Join(root, "cache"),
		DataDir:      filepath.Join(root, "data"),
		SharedDir:    filepath.Join(root, "shared"),
		StateBackend: backend,
	}

	a, err := New(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, root
}

func TestNewWiresPersistedState(t *testing.T) {
	for _, backend := range []string{config.BackendBolt, config.BackendFile} {
		t.Run(backend, func(t *testing.T) {
			a, root := newTestApp(t, backend, func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			})

			require.NoError(t, a.FavoriteUsers.Add(model.UserProfile{ID: 1, Login: "octocat"}))
			require.NoError(t, a.History.Add("octocat"))

			assert.FileExists(t, filepath.Join(root, "shared", "shared.db"))
			assert.FileExists(t, filepath.Join(root, "shared", "favorite_users.signal"))
			require.NoError(t, a.Close())

			reopened, err := New(context.Background(), Options{Config: a.Config})
			require.NoError(t, err)
			defer reopened.Close()

			assert.True(t, reopened.FavoriteUsers.Contains(1))
			assert.Equal(t, []string{"octocat"}, reopened.History.All())
		})
	}
}

func TestAppsShareDataDir(t *testing.T) {
	for _, backend := range []string{config.BackendBolt, config.BackendFile} {
		t.Run(backend, func(t *testing.T) {
			watcher, _ := newTestApp(t, backend, func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			})

			editor, err := New(context.Background(), Options{Config: watcher.Config})
			require.NoError(t, err)
			defer editor.Close()

			require.NoError(t, editor.FavoriteUsers.Add(model.UserProfile{ID: 7, Login: "octocat"}))
			require.NoError(t, editor.History.Add("octocat"))

			watcher.FavoriteUsers.Reload()
			assert.True(t, watcher.FavoriteUsers.Contains(7))
			require.NoError(t, watcher.History.Add("torvalds"))
		})
	}
}

func TestStoresUseConfiguredEndpoint(t *testing.T) {
	a, _ := newTestApp(t, config.BackendFile, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"login":"octocat","avatar_url":"a","html_url":"h","created_at":"2011-01-25T18:44:36Z","public_repos":8,"followers":1,"following":0}`))
	})

	user, err := a.Users.GetUser(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	cached, err := a.Users.GetUser(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, user, cached)
}

func TestWriteMetrics(t *testing.T) {
	a, root := newTestApp(t, config.BackendFile, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := a.Users.GetUser(context.Background(), "ghost")
	require.Error(t, err)

	path := filepath.Join(root, "metrics.prom")
	require.NoError(t, a.WriteMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ghusers_api_requests_total")
	assert.Contains(t, string(data), `status_code="404"`)
}
