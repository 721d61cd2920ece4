package cleaner

import (
	"context"
	"time"

	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/owner"
	"github.com/javi11/filecache/internal/tempstore"
)

// Temp sweeps a single named cache's temp directory on a timer,
// unlinking any file whose owner is no longer alive.
type Temp struct {
	cache    string
	interval time.Duration
	store    *tempstore.Store
	liveness *owner.Registry
	log      *logging.Logger
	verbose  bool
}

// NewTemp builds a Temp cleaner for store, ticking every interval.
func NewTemp(cache string, interval time.Duration, store *tempstore.Store, liveness *owner.Registry, log *logging.Logger, verbose bool) *Temp {
	return &Temp{
		cache:    cache,
		interval: interval,
		store:    store,
		liveness: liveness,
		log:      log,
		verbose:  verbose,
	}
}

// Run drives the sweep loop until ctx is cancelled. It is meant to be
// launched by internal/supervisor, which restarts it one-for-one if
// it ever returns via panic recovery.
func (c *Temp) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Temp) sweep() {
	if c.verbose {
		c.log.Info("Starting temp cleanup for " + c.cache)
	}

	entries, unknown, err := c.store.List()
	if err != nil {
		c.log.Error("temp cleanup listing failed", "error", err)
		return
	}

	for _, path := range unknown {
		c.store.ApplyUnknownPolicy(path)
	}

	for _, entry := range entries {
		if c.liveness.IsAlive(entry.Owner) {
			continue
		}
		if err := c.store.Remove(entry.Path); err != nil {
			c.log.Error("temp cleanup removal failed", "path", entry.Path, "error", err)
		}
	}
}
