package memory

import (
	"context"
	"time"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Sweeper periodically purges expired entries from a Shared store.
type Sweeper struct {
	store    *Shared
	interval time.Duration
	logger   logger.Logger
}

// NewSweeper creates a sweeper. An interval <= 0 disables it.
func NewSweeper(store *Shared, interval time.Duration, log logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Default()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   log,
	}
}

// Enabled reports whether Run does any work.
func (w *Sweeper) Enabled() bool {
	return w.interval > 0
}

// Run purges on every tick until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	if !w.Enabled() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := w.store.PurgeExpired(); len(removed) > 0 {
				w.logger.Debug("expired keys purged", "count", len(removed))
			}
		}
	}
}
