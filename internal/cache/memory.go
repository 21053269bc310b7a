package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryTier is an LRU bounded both by entry count and by total bytes.
type memoryTier struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, []byte]
	bytes    int64
	maxBytes int64
}

func newMemoryTier(maxEntries int, maxBytes int64) (*memoryTier, error) {
	m := &memoryTier{maxBytes: maxBytes}
	c, err := lru.NewWithEvict[string, []byte](maxEntries, func(_ string, v []byte) {
		// invoked synchronously by the lru while m.mu is held
		m.bytes -= int64(len(v))
	})
	if err != nil {
		return nil, err
	}
	m.lru = c
	return m, nil
}

func (m *memoryTier) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Get(key)
}

func (m *memoryTier) add(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := int64(len(data))
	if m.maxBytes > 0 && size > m.maxBytes {
		m.lru.Remove(key)
		return
	}

	if old, ok := m.lru.Peek(key); ok {
		// overwrites do not fire the eviction callback
		m.bytes -= int64(len(old))
	}
	m.lru.Add(key, data)
	m.bytes += size

	for m.maxBytes > 0 && m.bytes > m.maxBytes {
		if _, _, ok := m.lru.RemoveOldest(); !ok {
			break
		}
	}
}

func (m *memoryTier) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Remove(key)
}

func (m *memoryTier) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Purge()
	m.bytes = 0
}

func (m *memoryTier) stats() (entries int, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len(), m.bytes
}
