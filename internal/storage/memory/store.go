package memory

import (
	"time"

	"github.com/samber/lo"
)

// Expiry paths reported to the expire observer.
const (
	ExpireLazy  = "lazy"
	ExpireSweep = "sweep"
)

// Entry is a stored value with an optional absolute deadline.
type Entry struct {
	Value     string
	ExpiresAt time.Time
	HasExpiry bool
}

// expired reports whether the entry is dead at now. The entry is still
// live at exactly its deadline and expires once now is past it.
func (e Entry) expired(now time.Time) bool {
	return e.HasExpiry && now.After(e.ExpiresAt)
}

// Item is a live entry paired with its key, as returned by Snapshot.
type Item struct {
	Key string
	Entry
}

// Store maps keys to entries. It is not safe for concurrent use.
type Store struct {
	data     map[string]Entry
	now      func() time.Time
	onExpire func(path string, n int)
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithExpireObserver registers a callback invoked whenever expired
// entries are removed.
func WithExpireObserver(fn func(path string, n int)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]Entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set inserts or overwrites key and clears any expiry.
func (s *Store) Set(key, value string) {
	s.data[key] = Entry{Value: value}
}

// SetWithExpiry inserts or overwrites key with a deadline of now + ttl.
func (s *Store) SetWithExpiry(key, value string, ttl time.Duration) {
	s.data[key] = Entry{
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
		HasExpiry: true,
	}
}

// Restore inserts key with an absolute deadline. A zero expiresAt means
// no expiry. Entries already past their deadline are not inserted.
func (s *Store) Restore(key, value string, expiresAt time.Time) bool {
	e := Entry{Value: value, ExpiresAt: expiresAt, HasExpiry: !expiresAt.IsZero()}
	if e.expired(s.now()) {
		return false
	}
	s.data[key] = e
	return true
}

// Get returns the value for key. An expired entry is removed and
// reported as absent.
func (s *Store) Get(key string) (string, bool) {
	e, ok := s.data[key]
	if !ok {
		return "", false
	}
	if e.expired(s.now()) {
		delete(s.data, key)
		s.observe(ExpireLazy, 1)
		return "", false
	}
	return e.Value, true
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

// Len returns the number of entries held, including expired entries
// that have not been read or purged yet.
func (s *Store) Len() int {
	return len(s.data)
}

// PurgeExpired removes every expired entry and returns the removed keys.
func (s *Store) PurgeExpired() []string {
	now := s.now()
	expired := lo.Keys(lo.PickBy(s.data, func(_ string, e Entry) bool {
		return e.expired(now)
	}))
	for _, key := range expired {
		delete(s.data, key)
	}
	s.observe(ExpireSweep, len(expired))
	return expired
}

// Snapshot returns a copy of every live entry.
func (s *Store) Snapshot() []Item {
	now := s.now()
	items := lo.FilterMap(lo.Entries(s.data), func(kv lo.Entry[string, Entry], _ int) (Item, bool) {
		return Item{Key: kv.Key, Entry: kv.Value}, !kv.Value.expired(now)
	})
	return items
}

func (s *Store) observe(path string, n int) {
	if s.onExpire != nil && n > 0 {
		s.onExpire(path, n)
	}
}
