// internal/app/system/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val     []byte
	expires time.Time
}

// Memory is an in-process TTL cache. Expired entries are dropped lazily on
// read and during periodic sweeps triggered by writes.
type Memory struct {
	mu        sync.Mutex
	items     map[string]memEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, k Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[k.String()]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.items, k.String())
		return nil, ErrMiss
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, nil
}

// Set stores v under k. A ttl of zero or less keeps the entry until deleted.
func (m *Memory) Set(_ context.Context, k Key, v []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e := memEntry{val: append([]byte(nil), v...)}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.items[k.String()] = e
	if now.Sub(m.lastSweep) > time.Minute {
		m.sweep(now)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, k Key) error {
	m.mu.Lock()
	delete(m.items, k.String())
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) sweep(now time.Time) {
	for key, e := range m.items {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.items, key)
		}
	}
	m.lastSweep = now
}
