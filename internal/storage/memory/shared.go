package memory

import (
	"sync"
	"time"
)

// Shared guards a single Store with one coarse mutex. The lock is never
// held across network I/O; every method is one Store operation.
type Shared struct {
	mu    sync.Mutex
	store *Store
}

// NewShared wraps store. The caller must not use store directly afterwards.
func NewShared(store *Store) *Shared {
	return &Shared{store: store}
}

// Set inserts or overwrites key and clears any expiry.
func (s *Shared) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Set(key, value)
}

// SetWithExpiry inserts or overwrites key with a deadline of now + ttl.
func (s *Shared) SetWithExpiry(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetWithExpiry(key, value, ttl)
}

// Restore inserts key with an absolute deadline.
func (s *Shared) Restore(key, value string, expiresAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Restore(key, value, expiresAt)
}

// Get returns the value for key, applying lazy expiry.
func (s *Shared) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(key)
}

// Delete removes key and reports whether it was present.
func (s *Shared) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(key)
}

// Len returns the number of entries held.
func (s *Shared) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// PurgeExpired removes every expired entry.
func (s *Shared) PurgeExpired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.PurgeExpired()
}

// Snapshot returns a copy of every live entry.
func (s *Shared) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}
