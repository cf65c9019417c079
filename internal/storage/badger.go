package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// ErrCorruptEntry is returned by Load when a stored value is too short to
// hold the expiry header.
var ErrCorruptEntry = errors.New("snapshot: corrupt entry")

// ErrClosed is returned by Save and Load once the Snapshotter is closed.
var ErrClosed = errors.New("snapshot: closed")

const (
	expiryHeaderLen = 8
	headLen         = 16
)

// Entries live under g/<generation>/. The head key names the committed
// generation, so a save becomes visible in the single transaction that
// moves the head.
var (
	generationPrefix = []byte("g/")
	headKey          = []byte("m/head")
)

// Snapshotter saves and restores the keyspace using Badger v3. Saves are
// serialized.
type Snapshotter struct {
	mu      sync.Mutex
	closed  bool
	db      *badger.DB
	cfg     SnapshotConfig
	logger  logger.Logger
	metrics *metric.Registry
	now     func() time.Time
}

type head struct {
	gen     uint64
	savedAt time.Time
}

// SnapshotOption configures a Snapshotter.
type SnapshotOption func(*Snapshotter)

// WithSnapshotMetrics records snapshot size and duration.
func WithSnapshotMetrics(r *metric.Registry) SnapshotOption {
	return func(s *Snapshotter) {
		s.metrics = r
	}
}

// WithSnapshotClock sets the clock used to compute remaining TTLs.
func WithSnapshotClock(now func() time.Time) SnapshotOption {
	return func(s *Snapshotter) {
		s.now = now
	}
}

// OpenSnapshotter opens or creates the Badger database in cfg.Dir.
func OpenSnapshotter(cfg SnapshotConfig, log logger.Logger, opts ...SnapshotOption) (*Snapshotter, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	bopts := badger.DefaultOptions(cfg.Dir).
		WithLogger(&badgerLogger{logger: log}).
		WithSyncWrites(cfg.SyncWrites)
	if cfg.CacheSize > 0 {
		bopts = bopts.WithBlockCacheSize(cfg.CacheSize)
	}
	if cfg.ValueLogFileSize > 0 {
		bopts = bopts.WithValueLogFileSize(cfg.ValueLogFileSize)
	}
	if cfg.NumMemtables > 0 {
		bopts = bopts.WithNumMemtables(cfg.NumMemtables)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &Snapshotter{
		db:     db,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Info("snapshot store opened", "dir", cfg.Dir)
	return s, nil
}

// Save replaces the stored snapshot with items. Items already past their
// deadline are skipped. The previous snapshot stays loadable until the new
// one is committed. It returns the number of entries written.
func (s *Snapshotter) Save(ctx context.Context, items []memory.Item) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	start := time.Now()

	cur, _, err := s.readHead()
	if err != nil {
		return 0, fmt.Errorf("badger: read head: %w", err)
	}
	// An interrupted save may have left keys under the next generation.
	if err := s.dropStale(cur.gen); err != nil {
		return 0, err
	}

	next := head{gen: cur.gen + 1, savedAt: s.now()}
	prefix := genPrefix(next.gen)

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	written := 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		e := badger.NewEntry(entryKey(prefix, it.Key), encodeValue(it.Entry))
		if it.HasExpiry {
			if next.savedAt.After(it.ExpiresAt) {
				continue
			}
			e = e.WithTTL(badgerTTL(it.ExpiresAt.Sub(next.savedAt)))
		}
		if err := wb.SetEntry(e); err != nil {
			return 0, fmt.Errorf("badger: write %q: %w", it.Key, err)
		}
		written++
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("badger: flush: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(headKey, encodeHead(next))
	}); err != nil {
		return 0, fmt.Errorf("badger: commit generation %d: %w", next.gen, err)
	}

	if err := s.dropStale(next.gen); err != nil {
		s.logger.Warn("snapshot cleanup failed", "generation", next.gen, "error", err)
	}
	s.gc()

	elapsed := time.Since(start)
	s.metrics.RecordSnapshot(written, elapsed)
	s.logger.Info("snapshot saved", "keys", written, "generation", next.gen, "elapsed", elapsed)
	return written, nil
}

// Load calls restore for every entry of the committed snapshot, in key
// order. restore reports whether the entry was accepted. Load returns the
// number accepted.
func (s *Snapshotter) Load(ctx context.Context, restore func(key, value string, expiresAt time.Time) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	h, ok, err := s.readHead()
	if err != nil {
		return 0, fmt.Errorf("badger: read head: %w", err)
	}
	if !ok {
		s.logger.Info("no snapshot to load")
		return 0, nil
	}

	prefix := genPrefix(h.gen)
	restored := 0
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			key := string(item.Key()[len(prefix):])
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %q: %w", key, err)
			}
			value, expiresAt, err := decodeValue(raw)
			if err != nil {
				return fmt.Errorf("decode %q: %w", key, err)
			}
			if restore(key, value, expiresAt) {
				restored++
			}
		}
		return nil
	})
	if err != nil {
		return restored, fmt.Errorf("badger: load: %w", err)
	}

	s.logger.Info("snapshot loaded", "keys", restored, "generation", h.gen)
	return restored, nil
}

// SavedAt returns when the committed snapshot was written. ok is false
// when no snapshot has been saved.
func (s *Snapshotter) SavedAt() (t time.Time, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return time.Time{}, false, ErrClosed
	}

	h, ok, err := s.readHead()
	return h.savedAt, ok, err
}

// Run saves a snapshot of source every interval until ctx is done.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration, source func() []memory.Item) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Save(ctx, source()); err != nil && ctx.Err() == nil {
				s.logger.Error("periodic snapshot failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close waits for an in-flight save and closes the Badger database.
// Further calls are no-ops.
func (s *Snapshotter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	return nil
}

func (s *Snapshotter) readHead() (h head, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(headKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			h, err = decodeHead(v)
			ok = err == nil
			return err
		})
	})
	return h, ok, err
}

// dropStale deletes every entry outside generation keep.
func (s *Snapshotter) dropStale(keep uint64) error {
	keepPrefix := genPrefix(keep)

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = generationPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if !bytes.HasPrefix(it.Item().Key(), keepPrefix) {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: scan stale entries: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range stale {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("badger: delete stale entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("badger: delete stale entries: %w", err)
	}
	return nil
}

// gc reclaims value log space left by the previous snapshot.
func (s *Snapshotter) gc() {
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
			s.logger.Warn("value log gc failed", "error", err)
		}
		return
	}
}

// badgerTTL rounds ttl up to whole seconds plus one. Badger stores
// deadlines at second granularity; the exact deadline travels in the value
// header and is enforced on restore.
func badgerTTL(ttl time.Duration) time.Duration {
	return ttl.Truncate(time.Second) + time.Second
}

func genPrefix(gen uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x/", generationPrefix, gen))
}

func entryKey(prefix []byte, key string) []byte {
	k := make([]byte, 0, len(prefix)+len(key))
	k = append(k, prefix...)
	return append(k, key...)
}

func encodeHead(h head) []byte {
	buf := make([]byte, headLen)
	binary.BigEndian.PutUint64(buf, h.gen)
	binary.BigEndian.PutUint64(buf[8:], uint64(h.savedAt.UnixMilli()))
	return buf
}

func decodeHead(raw []byte) (head, error) {
	if len(raw) != headLen {
		return head{}, ErrCorruptEntry
	}
	return head{
		gen:     binary.BigEndian.Uint64(raw),
		savedAt: time.UnixMilli(int64(binary.BigEndian.Uint64(raw[8:]))),
	}, nil
}

func encodeValue(e memory.Entry) []byte {
	buf := make([]byte, expiryHeaderLen+len(e.Value))
	if e.HasExpiry {
		binary.BigEndian.PutUint64(buf, uint64(e.ExpiresAt.UnixMilli()))
	}
	copy(buf[expiryHeaderLen:], e.Value)
	return buf
}

func decodeValue(raw []byte) (value string, expiresAt time.Time, err error) {
	if len(raw) < expiryHeaderLen {
		return "", time.Time{}, ErrCorruptEntry
	}
	if ms := binary.BigEndian.Uint64(raw); ms != 0 {
		expiresAt = time.UnixMilli(int64(ms))
	}
	return string(raw[expiryHeaderLen:]), expiresAt, nil
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
