// Package cache provides a two-tier (memory and disk) cache for GitHub API
// responses.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/metrics"
)

// Version should be incremented when the format of cached values changes so
// old entries are treated as misses.
const Version = 1

// entry is the envelope written by Save.
type entry struct {
	Version  int             `json:"version"`
	CachedAt time.Time       `json:"cachedAt"`
	Data     json.RawMessage `json:"data"`
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Dir        string
	MaxEntries int
	MaxBytes   int64
	Metrics    metrics.Recorder
}

// Stats describes the current cache contents.
type Stats struct {
	Dir           string
	MemoryEntries int
	MemoryBytes   int64
	DiskEntries   int
	DiskBytes     int64
}

// Store is safe for concurrent use. Writes are serialized and the last
// write to a key wins.
type Store struct {
	mu      sync.Mutex
	mem     *memoryTier
	disk    *diskTier
	metrics metrics.Recorder
}

// DefaultDir returns the cache directory used when none is configured.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ghusers", "cache"), nil
}

// New creates a Store, creating the cache directory if needed.
func New(opts Options) (*Store, error) {
	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = constants.MemoryCacheEntries
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = constants.MemoryCacheBytes
	}

	mem, err := newMemoryTier(maxEntries, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	disk, err := newDiskTier(dir)
	if err != nil {
		return nil, err
	}

	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Store{mem: mem, disk: disk, metrics: rec}, nil
}

// Dir returns the directory backing the disk tier.
func (s *Store) Dir() string {
	return s.disk.dir
}

// Put stores data under key in both tiers. Disk failures are logged and
// otherwise ignored. Callers must not modify data afterwards.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.add(key, data)
	if err := s.disk.write(key, data); err != nil {
		log.Debug("failed to write cache entry", "key", key, "error", err)
	}
}

// Get returns the bytes stored under key. A disk hit is promoted to memory.
func (s *Store) Get(key string) ([]byte, bool) {
	data, tier, ok := s.lookup(key)
	if !ok {
		s.metrics.RecordCacheMiss()
		return nil, false
	}
	s.metrics.RecordCacheHit(tier)
	return data, true
}

func (s *Store) lookup(key string) ([]byte, string, bool) {
	if data, ok := s.mem.get(key); ok {
		return data, metrics.TierMemory, true
	}

	// Promotion holds the write lock so a concurrent Put is never
	// overwritten by the older bytes read from disk.
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.mem.get(key); ok {
		return data, metrics.TierMemory, true
	}
	data, err := s.disk.read(key)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("failed to read cache entry", "key", key, "error", err)
		}
		return nil, "", false
	}
	s.mem.add(key, data)
	return data, metrics.TierDisk, true
}

// discard drops key only while it still holds stale, so an entry written
// after the bad one was read survives.
func (s *Store) discard(key string, stale []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.mem.get(key); ok && !bytes.Equal(current, stale) {
		return
	}
	if current, err := s.disk.read(key); err == nil && !bytes.Equal(current, stale) {
		return
	}

	s.mem.remove(key)
	if err := s.disk.remove(key); err != nil {
		log.Debug("failed to remove cache entry", "key", key, "error", err)
	}
}

// Clear empties the memory tier and deletes every file on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.purge()
	return s.disk.clear()
}

// Stats returns entry counts and sizes for both tiers.
func (s *Store) Stats() (Stats, error) {
	memEntries, memBytes := s.mem.stats()
	diskEntries, diskBytes, err := s.disk.stats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Dir:           s.disk.dir,
		MemoryEntries: memEntries,
		MemoryBytes:   memBytes,
		DiskEntries:   diskEntries,
		DiskBytes:     diskBytes,
	}, nil
}

// Save encodes v as JSON and stores it under key.
func Save[T any](s *Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	raw, err := json.Marshal(entry{Version: Version, CachedAt: time.Now(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	s.Put(key, raw)
	return nil
}

// Load decodes the value stored under key. An entry that cannot be decoded,
// or was written by another format version, is dropped and reported as a
// miss.
func Load[T any](s *Store, key string) (T, bool) {
	var zero T

	raw, tier, ok := s.lookup(key)
	if !ok {
		s.metrics.RecordCacheMiss()
		return zero, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Version != Version {
		log.Debug("discarding unreadable cache entry", "key", key, "version", e.Version, "error", err)
		s.discard(key, raw)
		s.metrics.RecordCacheMiss()
		return zero, false
	}

	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		log.Debug("discarding undecodable cache entry", "key", key, "error", err)
		s.discard(key, raw)
		s.metrics.RecordCacheMiss()
		return zero, false
	}

	s.metrics.RecordCacheHit(tier)
	return v, true
}
