package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sinkRoundTrip(t *testing.T, s Sink) {
	t.Helper()

	_, ok, err := s.Load("favorite_users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save("favorite_users", []byte(`[{"id":1}]`)))
	data, ok, err := s.Load("favorite_users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	require.NoError(t, s.Save("favorite_users", []byte(`[]`)))
	data, _, err = s.Load("favorite_users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	_, ok, err = s.Load("search_history")
	require.NoError(t, err)
	assert.False(t, ok, "collections are independent")
}

func TestBoltSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.db")
	s, err := NewBoltSink(path)
	require.NoError(t, err)
	sinkRoundTrip(t, s)

	reopened, err := NewBoltSink(path)
	require.NoError(t, err)

	data, ok, err := reopened.Load("favorite_users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(data))
}

func TestBoltSinkSharedBetweenOwners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	first, err := NewBoltSink(path)
	require.NoError(t, err)
	second, err := NewBoltSink(path)
	require.NoError(t, err)

	require.NoError(t, first.Save("search_history", []byte(`["go"]`)))
	data, ok, err := second.Load("search_history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["go"]`, string(data))

	require.NoError(t, second.Save("search_history", []byte(`["rust","go"]`)))
	data, _, err = first.Load("search_history")
	require.NoError(t, err)
	assert.Equal(t, `["rust","go"]`, string(data))
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	require.NoError(t, err)
	sinkRoundTrip(t, s)

	assert.FileExists(t, filepath.Join(dir, "favorite_users.json"))
}

func TestSharedSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	s, err := NewSharedSink(path)
	require.NoError(t, err)
	sinkRoundTrip(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewSharedSink(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok, err := reopened.Load("favorite_users")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignalNotifierAndWatch(t *testing.T) {
	dir := t.TempDir()
	n, err := NewSignalNotifier(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	names := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(name string) { names <- name })
	}()

	// the watcher may not be registered yet, so signal until it is seen
	require.Eventually(t, func() bool {
		n.Notify("favorite_repositories")
		select {
		case name := <-names:
			return name == "favorite_repositories"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.FileExists(t, filepath.Join(dir, "favorite_repositories.signal"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = NopNotifier{}
	n.Notify("anything")
}
