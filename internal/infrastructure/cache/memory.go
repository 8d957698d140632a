package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and single-instance
// deployments. Expired entries are dropped lazily on access and by a
// periodic sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once

	// now is swappable so tests can control window boundaries
	now func() time.Time
}

type memoryEntry struct {
	value     string
	counter   int64
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryStore creates a new in-memory cache store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go s.sweep()
	return s
}

// sweep periodically removes expired entries
func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, entry := range s.entries {
				if entry.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expired(s.now()) {
		delete(s.entries, key)
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

// Set implements Store
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// DeletePattern implements Store with glob-style matching
func (s *MemoryStore) DeletePattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			delete(s.entries, key)
		}
	}
	return nil
}

// Increment implements Store
func (s *MemoryStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || entry.expired(now) {
		entry = memoryEntry{}
		if ttl > 0 {
			entry.expiresAt = now.Add(ttl)
		}
	}
	entry.counter++
	s.entries[key] = entry
	return entry.counter, nil
}

// Close stops the background sweep
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// SetClock replaces the store's clock. Test helper only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
