// Package persist stores named collections for the favorites and history
// stores and tells other processes when a shared collection changes.
package persist

import (
	"os"
	"path/filepath"
)

// Sink loads and saves the encoded form of a named collection.
type Sink interface {
	// Load returns the stored bytes for name. ok is false when nothing has
	// been saved yet.
	Load(name string) (data []byte, ok bool, err error)
	Save(name string, data []byte) error
}

// Notifier tells external consumers that a collection changed. It is fire
// and forget: failures are logged, never returned.
type Notifier interface {
	Notify(name string)
}

// NopNotifier notifies nobody.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// DefaultDataDir returns the directory for private application state.
func DefaultDataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ghusers"), nil
}

// DefaultSharedDir returns the directory shared with external consumers
// such as a desktop widget.
func DefaultSharedDir() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shared"), nil
}
