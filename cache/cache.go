// Package cache is the public API of a filesystem-backed, TTL-indexed
// content cache: callers ask it to produce a named artifact by
// supplying bytes or a producer, it stages the write under a temp
// name, commits it atomically into a permanent, expiration-encoded
// name, and serves it back as a lazily-opened read stream. Expired or
// orphaned files are reclaimed by two background cleaners per cache;
// see internal/cleaner.
//
// Multiple independent named caches can coexist in one process; each
// Start call creates one, with its own directories, TTL default,
// namespacing rule and cleaner schedule.
//
// Ids may contain the path encoder's reserved separator ('$') because
// parsing uses a bounded split that keeps the trailing part whole. The
// lookup glob for an id also matches the files of any longer id that
// ends in '$' followed by that id (for "b": "a$b"). Get, Delete and
// the other per-id operations filter on the parsed id, so they return
// or delete only id's own files, but the sweep a lookup performs can
// also unlink expired or superseded generations of such a longer id.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/javi11/filecache/internal/ccfg"
	"github.com/javi11/filecache/internal/namespace"
	"github.com/javi11/filecache/internal/registry"
	"github.com/javi11/filecache/internal/supervisor"
	"github.com/javi11/filecache/internal/vfs"
)

// Options configure a named cache at Start. It is an alias of
// ccfg.Options; ccfg.Validate lists the required fields and applies
// the defaults. The option table is in spec §4.3.
type Options = ccfg.Options

// Config is a named cache's validated, published configuration.
type Config = ccfg.Config

// UnknownFilesPolicy controls what a cleaner does with a file whose
// name does not parse.
type UnknownFilesPolicy = ccfg.UnknownFilesPolicy

const (
	UnknownFilesKeep   = ccfg.UnknownFilesKeep
	UnknownFilesRemove = ccfg.UnknownFilesRemove
)

// NamespacePart is one element of a namespace spec.
type NamespacePart = namespace.Part

// NSHost resolves to the local hostname.
var NSHost = namespace.Host

// NSLiteral resolves to s verbatim.
func NSLiteral(s string) NamespacePart { return namespace.Literal(s) }

// NSFunc resolves by calling fn.
func NSFunc(fn func() (string, error)) NamespacePart { return namespace.Func(fn) }

// NSCall resolves by calling fn with args bound, mirroring the
// source's (module, function, arguments) triple.
func NSCall(module string, fn func(args ...any) (string, error), args ...any) NamespacePart {
	return namespace.Call(module, fn, args...)
}

// Record is the result of GetRecord: a found entry plus its metadata.
type Record struct {
	ID           string
	Path         string
	ExpiresAt    time.Time
	TTLRemaining time.Duration
	Stream       *stream
}

// Stats summarizes one cache's on-disk state.
type Stats struct {
	// Current counts permanent files whose name parses, regardless of
	// expiration (matches the source's stats semantics).
	Current int
	// InProgress counts temp files currently staged.
	InProgress int
}

// Cache is a running named cache: a handle returned by Start.
type Cache struct {
	handle *supervisor.Handle
	fs     vfs.FS
}

// Start creates (or re-creates) a named cache backed by the real
// filesystem: it validates opts, publishes the config, creates its
// directories, and launches its two supervised cleaners.
func Start(opts Options) (*Cache, error) {
	return StartWithFS(opts, vfs.OS(), nil)
}

// StartWithFS is Start with an injectable filesystem and logger,
// primarily for tests (vfs.Mem()) and for callers that want their own
// slog.Logger wired into the cache's "FileCache (<cache>): ..."
// output.
func StartWithFS(opts Options, fs vfs.FS, logger *slog.Logger) (*Cache, error) {
	h, err := supervisor.Start(opts, fs, logger)
	if err != nil {
		return nil, fmt.Errorf("filecache: start %q: %w", opts.Cache, err)
	}
	return &Cache{handle: h, fs: fs}, nil
}

// Stop cancels this cache's cleaners and unpublishes its config.
// In-flight writers are not interrupted.
func (c *Cache) Stop(_ context.Context) error {
	c.handle.Stop()
	return nil
}

// Config returns this cache's current published configuration.
func (c *Cache) Config() (Config, error) {
	return registry.Get(c.handle.Config.Cache)
}

// Name returns the cache's name.
func (c *Cache) Name() string {
	return c.handle.Config.Cache
}
