package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spiffcs/ghusers/internal/log"
)

const signalSuffix = ".signal"

// SignalNotifier rewrites a per-collection signal file in dir on every
// change. Consumers watch the directory with Watch.
type SignalNotifier struct {
	dir string
}

// NewSignalNotifier creates the signal directory if needed.
func NewSignalNotifier(dir string) (*SignalNotifier, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating signal directory: %w", err)
	}
	return &SignalNotifier{dir: dir}, nil
}

// Notify implements Notifier.
func (n *SignalNotifier) Notify(name string) {
	path := filepath.Join(n.dir, name+signalSuffix)
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := os.WriteFile(path, stamp, 0600); err != nil {
		log.Debug("failed to signal collection change", "collection", name, "error", err)
	}
}

// Watch calls fn with the collection name each time a signal file in dir
// is written, until ctx is done.
func Watch(ctx context.Context, dir string, fn func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating signal directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			base := filepath.Base(event.Name)
			if !strings.HasSuffix(base, signalSuffix) {
				continue
			}
			fn(strings.TrimSuffix(base, signalSuffix))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("watch error", "dir", dir, "error", err)
		}
	}
}
