// Package cleaner implements the two background sweepers every named
// cache runs: the Stale Cleaner (expired/superseded permanent files)
// and the Temp Cleaner (orphaned temp files). Both follow the same
// shape as the teacher's internal/health.HealthWorker: a blocking
// Run(ctx) loop owning a time.Ticker, stopped by cancelling ctx (the
// goroutine itself is owned by internal/supervisor). The ticker keeps
// its fixed period independently of how long a sweep takes.
package cleaner

import (
	"context"
	"time"

	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/permstore"
)

// jobQueueSize bounds the Stale Cleaner's mailbox. Overflow drops the
// oldest queued job — writers' hints are fire-and-forget and already
// tolerate loss (a missed hint just means the next periodic sweep, or
// the next get, cleans the file instead).
const jobQueueSize = 256

type staleJob struct {
	id    string   // non-empty: find_all(id, syncClean=true)
	paths []string // non-empty: unlink each
}

// Stale sweeps a single named cache's permanent directory on a timer
// and also drains a best-effort mailbox of id hints sent by writers
// (preclean/postclean) and of paths handed over through
// permstore.RemovalSink.
type Stale struct {
	cache    string
	interval time.Duration
	store    *permstore.Store
	log      *logging.Logger
	verbose  bool

	jobs chan staleJob
}

// NewStale builds a Stale cleaner for store, ticking every interval.
func NewStale(cache string, interval time.Duration, store *permstore.Store, log *logging.Logger, verbose bool) *Stale {
	return &Stale{
		cache:    cache,
		interval: interval,
		store:    store,
		log:      log,
		verbose:  verbose,
		jobs: make(chan staleJob, jobQueueSize),
	}
}

// Hint asynchronously requests a sweep of one id. Fire-and-forget: if
// the mailbox is full, the oldest pending job is dropped to make room.
func (c *Stale) Hint(id string) {
	c.enqueue(staleJob{id: id})
}

// ScheduleRemoval implements permstore.RemovalSink: queues paths for
// best-effort unlinking by this cleaner's own goroutine.
func (c *Stale) ScheduleRemoval(paths []string) {
	if len(paths) == 0 {
		return
	}
	c.enqueue(staleJob{paths: paths})
}

func (c *Stale) enqueue(job staleJob) {
	select {
	case c.jobs <- job:
		return
	default:
	}
	// Mailbox full: drop the oldest job, then retry once.
	select {
	case <-c.jobs:
	default:
	}
	select {
	case c.jobs <- job:
	default:
	}
}

// Run drives the sweep loop until ctx is cancelled. It is meant to be
// launched by internal/supervisor, which restarts it one-for-one if
// it ever returns via panic recovery.
func (c *Stale) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-c.jobs:
			c.runJob(job)
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Stale) sweep() {
	if c.verbose {
		c.log.Info("Starting stale cleanup for " + c.cache)
	}
	if _, err := c.store.FindAll("", true); err != nil {
		c.log.Error("stale cleanup sweep failed", "error", err)
	}
}

func (c *Stale) runJob(job staleJob) {
	if job.id != "" {
		if _, err := c.store.FindAll(job.id, true); err != nil {
			c.log.Error("stale cleanup hint failed", "id", job.id, "error", err)
		}
		return
	}
	for _, p := range job.paths {
		if err := c.store.RemoveFile(p, true); err != nil {
			c.log.Error("stale cleanup removal failed", "path", p, "error", err)
		}
	}
}
