// Package app builds the long-lived components of a ghusers process from
// the loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spiffcs/ghusers/config"
	"github.com/spiffcs/ghusers/internal/cache"
	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/favorites"
	"github.com/spiffcs/ghusers/internal/ghclient"
	"github.com/spiffcs/ghusers/internal/history"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/metrics"
	"github.com/spiffcs/ghusers/internal/model"
	"github.com/spiffcs/ghusers/internal/persist"
	"github.com/spiffcs/ghusers/internal/store"
)

const (
	stateFile  = "state.db"
	sharedFile = "shared.db"
)

// Options configures New.
type Options struct {
	Config *config.Config
	// HTTPClient replaces the network transport. Tests use it.
	HTTPClient *http.Client
}

// App holds the process-wide components. Close releases them.
type App struct {
	Config       *config.Config
	Client       *ghclient.Client
	Source       *ghclient.DataSource
	Cache        *cache.Store
	Users        *store.UserStore
	Repositories *store.RepositoryStore

	FavoriteUsers        *favorites.Store[model.UserProfile]
	FavoriteRepositories *favorites.Store[model.RepositorySummary]
	History              *history.Store

	// SharedDir holds the shared database and the change signal files.
	SharedDir string

	registry *prometheus.Registry
	closers  []io.Closer
}

// New wires the client, cache, stores and persisted state.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	client, err := ghclient.NewClient(ctx, ghclient.Options{
		BaseURL:           cfg.GetBaseURL(),
		Token:             cfg.GetGitHubToken(),
		RequestsPerSecond: cfg.GetRequestsPerSecond(),
		Burst:             constants.DefaultRequestBurst,
		Metrics:           collector,
		HTTPClient:        opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	source := ghclient.NewDataSource(client)

	c, err := cache.New(cache.Options{
		Dir:        cfg.CacheDir,
		MaxEntries: cfg.GetMemoryCacheEntries(),
		MaxBytes:   cfg.GetMemoryCacheBytes(),
		Metrics:    collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	storeOpts := store.DefaultOptions()
	storeOpts.RevalidateInterval = cfg.GetRevalidateInterval()
	storeOpts.Metrics = collector

	a := &App{
		Config:       cfg,
		Client:       client,
		Source:       source,
		Cache:        c,
		Users:        store.NewUserStore(source, c, storeOpts),
		Repositories: store.NewRepositoryStore(source, c, storeOpts),
		registry:     registry,
	}

	if err := a.openState(cfg); err != nil {
		_ = a.Close()
		return nil, err
	}

	log.Debug("app initialized", "cache_dir", c.Dir(), "shared_dir", a.SharedDir, "backend", cfg.GetStateBackend())
	return a, nil
}

func (a *App) openState(cfg *config.Config) error {
	dataDir, err := dirOrDefault(cfg.DataDir, persist.DefaultDataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}
	sharedDir, err := dirOrDefault(cfg.SharedDir, persist.DefaultSharedDir)
	if err != nil {
		return fmt.Errorf("failed to resolve shared directory: %w", err)
	}
	a.SharedDir = sharedDir

	private, err := a.openPrivate(cfg.GetStateBackend(), dataDir)
	if err != nil {
		return err
	}

	// Favorites still work without the mirror.
	var shared persist.Sink
	var notifier persist.Notifier = persist.NopNotifier{}
	if s, err := persist.NewSharedSink(filepath.Join(sharedDir, sharedFile)); err != nil {
		log.Warn("shared favorites unavailable", "error", err)
	} else {
		shared = s
		a.closers = append(a.closers, s)
		if n, err := persist.NewSignalNotifier(sharedDir); err != nil {
			log.Warn("change signals unavailable", "error", err)
		} else {
			notifier = n
		}
	}

	a.FavoriteUsers, err = favorites.Open[model.UserProfile](favorites.Options{
		Name:     constants.FavoriteUsersName,
		Private:  private,
		Shared:   shared,
		Notifier: notifier,
	})
	if err != nil {
		return err
	}
	a.FavoriteRepositories, err = favorites.Open[model.RepositorySummary](favorites.Options{
		Name:     constants.FavoriteRepositoriesName,
		Private:  private,
		Shared:   shared,
		Notifier: notifier,
	})
	if err != nil {
		return err
	}
	a.History = history.Open(private)
	return nil
}

func (a *App) openPrivate(backend, dataDir string) (persist.Sink, error) {
	switch backend {
	case config.BackendFile:
		sink, err := persist.NewFileSink(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open state directory: %w", err)
		}
		return sink, nil
	default:
		sink, err := persist.NewBoltSink(filepath.Join(dataDir, stateFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open state database: %w", err)
		}
		return sink, nil
	}
}

func dirOrDefault(configured string, fallback func() (string, error)) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return fallback()
}

// WriteMetrics writes the collected metrics to path in the Prometheus text
// format.
func (a *App) WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Wait blocks until background cache refreshes finish.
func (a *App) Wait() {
	if a.Users != nil {
		a.Users.Wait()
	}
	if a.Repositories != nil {
		a.Repositories.Wait()
	}
}

// Close waits for background work and releases the state databases.
func (a *App) Close() error {
	a.Wait()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
