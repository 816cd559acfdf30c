package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	counter   int64
	expiresAt time.Time // zero = never
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-memory Cache for tests and single-process deployments.
// Values round-trip through JSON so behavior matches the Redis cache.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || entry.expired(time.Now()) {
		return false
	}

	return json.Unmarshal(entry.payload, dest) == nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &memoryEntry{payload: raw}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.entries[key] = entry

	return true
}

func (m *Memory) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return true
}

func (m *Memory) Increment(_ context.Context, key string, window time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	entry, ok := m.entries[key]
	if !ok || entry.expired(now) {
		entry = &memoryEntry{expiresAt: now.Add(window)}
		m.entries[key] = entry
	}

	entry.counter++

	return entry.counter
}

// Contains reports whether a key is present and unexpired. Test helper.
func (m *Memory) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]

	return ok && !entry.expired(time.Now())
}

// Compile-time check.
var _ Cache = (*Memory)(nil)
