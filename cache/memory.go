package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache. Entries expire lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*Entry)}
}

func entryKey(fingerprint, identifier string) string {
	return fingerprint + "." + identifier
}

// Get returns the cached snapshot, or a miss if absent or expired.
func (m *Memory) Get(_ context.Context, fingerprint, identifier string) ([]byte, bool) {
	key := entryKey(fingerprint, identifier)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if e.Expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.Items, true
}

// Put stores a snapshot, replacing any existing entry.
func (m *Memory) Put(_ context.Context, fingerprint, identifier string, items []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entryKey(fingerprint, identifier)] = newEntry(fingerprint, identifier, items, ttl)
	return nil
}

// Forget removes a single entry.
func (m *Memory) Forget(_ context.Context, fingerprint, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, entryKey(fingerprint, identifier))
	return nil
}

// Flush removes all entries.
func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry)
	return nil
}
