package cache

import (
	"io"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/javi11/filecache/internal/cerrors"
	"github.com/javi11/filecache/internal/pathenc"
	"github.com/javi11/filecache/internal/vfs"
)

// CallOption customizes a single Put or Execute call. Get and
// GetRecord accept CallOptions but do not use them.
type CallOption func(*callOptions)

type callOptions struct {
	ttl time.Duration
}

// WithTTL overrides the cache's default TTL for one call.
func WithTTL(d time.Duration) CallOption {
	return func(o *callOptions) { o.ttl = d }
}

func resolveCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, f := range opts {
		f(&o)
	}
	return o
}

// Put unconditionally writes producer's content under id, replacing
// any existing generation once the write commits.
func (c *Cache) Put(id string, producer any, opts ...CallOption) (io.ReadCloser, error) {
	return c.put(id, producer, true, opts)
}

// Execute is a read-through put: if a valid entry already exists for
// id, its stream is returned without invoking producer; otherwise it
// behaves like Put.
func (c *Cache) Execute(id string, producer any, opts ...CallOption) (io.ReadCloser, error) {
	if err := pathenc.ValidateID(id); err != nil {
		return nil, err
	}
	entry, ok, err := c.handle.Perm.Find(id, true)
	if err != nil {
		return nil, err
	}
	if ok {
		return newStream(c.fs, entry.Path), nil
	}
	return c.put(id, producer, false, opts)
}

// Get looks up id without invoking a producer, returning nil if no
// valid entry exists.
func (c *Cache) Get(id string, opts ...CallOption) (io.ReadCloser, error) {
	if err := pathenc.ValidateID(id); err != nil {
		return nil, err
	}
	entry, ok, err := c.handle.Perm.Find(id, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return newStream(c.fs, entry.Path), nil
}

// GetRecord is Get plus the entry's metadata; returns nil if no valid
// entry exists.
func (c *Cache) GetRecord(id string, opts ...CallOption) (*Record, error) {
	if err := pathenc.ValidateID(id); err != nil {
		return nil, err
	}
	entry, ok, err := c.handle.Perm.Find(id, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	expiresAt := entry.ExpiresAt()
	return &Record{
		ID:           entry.ID,
		Path:         entry.Path,
		ExpiresAt:    expiresAt,
		TTLRemaining: time.Until(expiresAt),
		Stream:       newStream(c.fs, entry.Path),
	}, nil
}

// Exists reports whether a valid entry exists for id.
func (c *Cache) Exists(id string) (bool, error) {
	if err := pathenc.ValidateID(id); err != nil {
		return false, err
	}
	_, ok, err := c.handle.Perm.Find(id, true)
	return ok, err
}

// Delete synchronously removes every generation of id. It does not
// interrupt an in-flight producer for the same id: a write that
// commits after Delete returns will republish the id.
func (c *Cache) Delete(id string) error {
	if err := pathenc.ValidateID(id); err != nil {
		return err
	}
	return c.handle.Perm.Delete(id)
}

// Clean forces a full sweep, unconditionally unlinking every
// permanent file in the cache.
func (c *Cache) Clean() error {
	return c.handle.Perm.Clean()
}

// Stats summarizes the cache's on-disk state.
func (c *Cache) Stats() (Stats, error) {
	current, err := c.handle.Perm.CountParseable()
	if err != nil {
		return Stats{}, err
	}
	inProgress, err := c.handle.Temp.Count()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Current: current, InProgress: inProgress}, nil
}

// put is the shared implementation of the atomic write/commit
// protocol (spec §4.6): stage into a temp file, rename it into its
// permanent, expiration-encoded name, and hint the Stale Cleaner
// before and (always) after the commit.
func (c *Cache) put(id string, producer any, preclean bool, opts []CallOption) (io.ReadCloser, error) {
	if err := pathenc.ValidateID(id); err != nil {
		return nil, err
	}
	src, err := toSource(producer)
	if err != nil {
		return nil, err
	}
	call := resolveCallOptions(opts)

	if preclean {
		c.handle.Stale.Hint(id)
	}

	token := c.handle.Owner.Mint()
	defer c.handle.Owner.Release(token)

	tempPath := c.handle.Temp.FilePath(id, token.String())
	permPath, _ := c.handle.Perm.FilePath(id, call.ttl)

	resolved, err := src.resolve()
	if err != nil {
		return nil, err
	}

	if err := writeTemp(c.fs, tempPath, resolved); err != nil {
		_ = c.fs.RemoveIfExists(tempPath)
		return nil, err
	}

	if err := c.fs.Rename(tempPath, permPath); err != nil {
		_ = c.fs.RemoveIfExists(tempPath)
		return nil, err
	}

	c.handle.Stale.Hint(id)

	return newStream(c.fs, permPath), nil
}

// writeTemp stages a resolved source into a fresh file at path. A
// transient filesystem failure (create/write/remove) is retried with
// avast/retry-go/v4, the same backoff shape the teacher uses for
// transient database contention in
// internal/importer/queue/claimer.go, but only when src is replayable
// — retrying after a partial write with a reader that can't be
// rewound would commit a truncated file, silently violating "get(id)
// after a successful put(bytes,id) returns exactly those bytes."
// retry.RetryIf is gated on cerrors.IsTransientIO so a producer's own
// read error, which is never retryable, ends the attempt immediately
// regardless of src's kind.
func writeTemp(fs vfs.FS, path string, src Source) error {
	if !src.replayable() {
		r, err := src.reader()
		if err != nil {
			return err
		}
		return writeOnce(fs, path, r)
	}

	return retry.Do(
		func() error {
			r, err := src.reader()
			if err != nil {
				return err
			}
			return writeOnce(fs, path, r)
		},
		retry.Attempts(3),
		retry.Delay(20*time.Millisecond),
		retry.MaxDelay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(cerrors.IsTransientIO),
		retry.LastErrorOnly(true),
	)
}

// writeOnce drains r into a freshly (re)created file at path, one
// attempt. Filesystem failures are wrapped as *cerrors.IOError so the
// caller's retry.RetryIf can recognize them; a producer's Read error
// is returned unwrapped and is therefore never retried.
func writeOnce(fs vfs.FS, path string, r io.Reader) error {
	if err := fs.RemoveIfExists(path); err != nil {
		return err
	}
	f, err := fs.WriteNew(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return cerrors.NewIOError("write", path, werr)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
