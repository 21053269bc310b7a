// Package store serves GitHub data from the cache first and refreshes it in
// the background (stale-while-revalidate).
package store

import (
	"context"
	"sync"
	"time"

	"github.com/spiffcs/ghusers/internal/cache"
	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Options configures the stores.
type Options struct {
	// RevalidateInterval is the minimum time between two network fetches
	// of the same key. Zero refreshes on every cache hit.
	RevalidateInterval time.Duration
	// Timeout bounds a background refresh.
	Timeout time.Duration
	Metrics metrics.Recorder
}

// DefaultOptions returns the options used by the application.
func DefaultOptions() Options {
	return Options{
		RevalidateInterval: constants.RevalidateInterval,
		Timeout:            constants.RequestTimeout,
	}
}

// revalidator runs deduplicated background refreshes and remembers when
// each key was last fetched from the network.
type revalidator struct {
	group    singleflight.Group
	wg       sync.WaitGroup
	interval time.Duration
	timeout  time.Duration
	metrics  metrics.Recorder
	now      func() time.Time

	mu     sync.Mutex
	stamps map[string]time.Time
}

func newRevalidator(opts Options) *revalidator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.RequestTimeout
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &revalidator{
		interval: opts.RevalidateInterval,
		timeout:  timeout,
		metrics:  rec,
		now:      time.Now,
		stamps:   make(map[string]time.Time),
	}
}

// stamp records a successful network fetch of key.
func (r *revalidator) stamp(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamps[key] = r.now()
}

func (r *revalidator) fresh(key string) bool {
	if r.interval <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.stamps[key]
	return ok && r.now().Sub(last) < r.interval
}

// trigger refreshes key in the background unless it was fetched recently
// or a refresh is already running. The refresh outlives ctx's cancellation
// and its errors are only logged.
func (r *revalidator) trigger(ctx context.Context, key string, refresh func(ctx context.Context) error) {
	if r.fresh(key) {
		return
	}

	// Counted before the refresh can start so wait never misses it.
	r.wg.Add(1)
	ch := r.group.DoChan(key, func() (any, error) {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		err := refresh(bg)
		r.metrics.RecordRevalidation(err == nil)
		if err != nil {
			log.Debug("background refresh failed", "key", key, "error", err)
			return nil, err
		}
		r.stamp(key)
		log.Trace("background refresh complete", "key", key)
		return nil, nil
	})

	go func() {
		defer r.wg.Done()
		<-ch
	}()
}

// wait blocks until every refresh triggered before the call has finished.
// Callers stop reading through the stores first; a trigger racing with wait
// is not covered.
func (r *revalidator) wait() {
	r.wg.Wait()
}

// cached serves key from c and refreshes it in the background, or fetches
// it live on a miss and writes the result through. A nil cache disables
// caching.
func cached[T any](ctx context.Context, r *revalidator, c *cache.Store, key cache.Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}

	k := key.String()
	if v, ok := cache.Load[T](c, k); ok {
		log.Trace("cache hit", "key", k)
		r.trigger(ctx, k, func(ctx context.Context) error {
			fresh, err := fetch(ctx)
			if err != nil {
				return err
			}
			return cache.Save(c, k, fresh)
		})
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := cache.Save(c, k, v); err != nil {
		log.Debug("failed to cache response", "key", k, "error", err)
	}
	r.stamp(k)
	return v, nil
}
