// Package supervisor starts and stops one named cache: it validates
// configuration, publishes it to the registry, creates the cache's
// directories, and runs its two cleaners as one-for-one supervised
// children — a cleaner goroutine panic is recovered and the cleaner
// restarted, the process itself is never brought down by it.
package supervisor

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/javi11/filecache/internal/ccfg"
	"github.com/javi11/filecache/internal/cleaner"
	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/namespace"
	"github.com/javi11/filecache/internal/owner"
	"github.com/javi11/filecache/internal/permstore"
	"github.com/javi11/filecache/internal/registry"
	"github.com/javi11/filecache/internal/tempstore"
	"github.com/javi11/filecache/internal/vfs"
)

// restartBackoff is the pause between a cleaner crash and its
// restart, so a tight panic loop doesn't spin the CPU.
const restartBackoff = time.Second

// Handle is a running named cache: its stores, its owner-liveness
// registry, and the supervised cleaner goroutines.
type Handle struct {
	Config ccfg.Config

	Perm  *permstore.Store
	Temp  *tempstore.Store
	Owner *owner.Registry
	Stale *cleaner.Stale

	log    *logging.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start validates opts, publishes the resulting config, creates the
// cache's directories, and launches its two supervised cleaners. If
// either directory cannot be created the cache fails to start and no
// cleaner is launched.
func Start(opts ccfg.Options, fsys vfs.FS, baseLogger *slog.Logger) (*Handle, error) {
	cfg, err := ccfg.Validate(opts)
	if err != nil {
		return nil, err
	}

	permNS, err := namespace.Resolve(cfg.Namespace)
	if err != nil {
		return nil, err
	}
	tempNS, err := namespace.Resolve(cfg.TempNamespace)
	if err != nil {
		return nil, err
	}

	permDir := joinNonEmpty(cfg.Dir, permNS, cfg.Cache)
	tempDir := joinNonEmpty(cfg.TempDir, tempNS, cfg.Cache)

	log := logging.New(baseLogger, cfg.Cache)

	permStore := permstore.New(fsys, permDir, cfg.TTL, cfg.UnknownFiles, log)
	tempStore := tempstore.New(fsys, tempDir, cfg.UnknownFiles, log)

	if err := tempStore.Setup(); err != nil {
		return nil, err
	}
	if err := permStore.Setup(); err != nil {
		return nil, err
	}

	registry.Put(cfg)

	ownerRegistry := owner.NewRegistry()

	staleCleaner := cleaner.NewStale(cfg.Cache, cfg.StaleCleanInterval, permStore, log, cfg.Verbose)
	tempCleaner := cleaner.NewTemp(cfg.Cache, cfg.TempCleanInterval, tempStore, ownerRegistry, log, cfg.Verbose)
	permStore.SetSink(staleCleaner)

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		Config: cfg,
		Perm:   permStore,
		Temp:   tempStore,
		Owner:  ownerRegistry,
		Stale:  staleCleaner,
		log:    log,
		cancel: cancel,
	}

	h.superviseChild(ctx, "stale", staleCleaner.Run)
	h.superviseChild(ctx, "temp", tempCleaner.Run)

	return h, nil
}

// Stop cancels both cleaners' timers and waits for their goroutines to
// exit, then clears the owner registry and the published config.
// In-flight writers are not interrupted.
func (h *Handle) Stop() {
	h.cancel()
	h.wg.Wait()
	h.Owner.Clear()
	registry.Delete(h.Config.Cache)
}

// superviseChild runs fn(ctx) in a goroutine, restarting it if it ever
// panics, until ctx is cancelled. fn returning normally (without
// panicking) also ends the supervision loop: both cleaners only
// return when ctx is done, so a clean return is treated as shutdown,
// not a crash.
func (h *Handle) superviseChild(ctx context.Context, name string, fn func(context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			crashed := h.runOnce(name, fn, ctx)
			if ctx.Err() != nil {
				return
			}
			if !crashed {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartBackoff):
			}
		}
	}()
}

func (h *Handle) runOnce(name string, fn func(context.Context), ctx context.Context) (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("cleaner crashed, restarting", "cleaner", name, "panic", r)
			crashed = true
		}
	}()
	fn(ctx)
	return false
}

func joinNonEmpty(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return filepath.Join(nonEmpty...)
}
