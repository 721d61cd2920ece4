// Package permstore implements the permanent file store: writing a
// fresh target path, resolving the freshest valid entry for an id (or
// all ids), and deleting every generation of an id. No in-process
// index is kept — the resolution algorithm below is the filename
// index described in spec §4.4.
package permstore

import (
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/javi11/filecache/internal/ccfg"
	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/pathenc"
	"github.com/javi11/filecache/internal/vfs"
)

// removalConcurrency bounds how many unlinks run at once during a
// synchronous sweep, the same pattern the teacher uses to cap
// concurrent downloads in internal/usenet via sourcegraph/conc/pool.
const removalConcurrency = 8

// Entry is the freshest known permanent file for one id.
type Entry struct {
	ID          string
	Path        string
	ExpiresAtMs int64
}

// ExpiresAt returns the entry's expiration as a time.Time.
func (e Entry) ExpiresAt() time.Time {
	return time.UnixMilli(e.ExpiresAtMs)
}

// RemovalSink receives best-effort deletion work. The Stale Cleaner
// implements it; FindAll (syncClean=false) and RemoveFile (sync=false)
// hand paths to it instead of unlinking them in the caller. Calls made
// with syncClean/sync true unlink in the caller and never use it.
type RemovalSink interface {
	ScheduleRemoval(paths []string)
}

// Store is one named cache's permanent file store.
type Store struct {
	fs      vfs.FS
	baseDir string
	ttl     time.Duration
	policy  ccfg.UnknownFilesPolicy
	log     *logging.Logger
	sink    RemovalSink

	// Now is the wall clock; overridable in tests.
	Now func() time.Time
}

// New builds a Store rooted at baseDir (dir + namespace + cache,
// already resolved by the caller).
func New(fs vfs.FS, baseDir string, ttl time.Duration, policy ccfg.UnknownFilesPolicy, log *logging.Logger) *Store {
	return &Store{
		fs:      fs,
		baseDir: baseDir,
		ttl:     ttl,
		policy:  policy,
		log:     log,
		Now:     time.Now,
	}
}

// SetSink installs the Stale Cleaner as the destination for
// asynchronous removal work. Must be called before any FindAll(...,
// syncClean=false) is invoked.
func (s *Store) SetSink(sink RemovalSink) {
	s.sink = sink
}

// Setup ensures the permanent directory exists.
func (s *Store) Setup() error {
	return s.fs.EnsureDir(s.baseDir)
}

// FilePath composes a fresh target path for id, with expiration fixed
// at now + ttl (ttlOverride if positive). The expiration is computed
// once here, at the start of a write, not at commit time.
func (s *Store) FilePath(id string, ttlOverride time.Duration) (path string, expiresAtMs int64) {
	ttl := s.ttl
	if ttlOverride > 0 {
		ttl = ttlOverride
	}
	expiresAtMs = s.Now().Add(ttl).UnixMilli()
	return pathenc.PermPath(s.baseDir, id, expiresAtMs), expiresAtMs
}

// Find resolves the freshest non-expired permanent file for id,
// opportunistically removing superseded or expired siblings. Returns
// ok=false if no valid entry exists.
func (s *Store) Find(id string, syncClean bool) (entry Entry, ok bool, err error) {
	all, err := s.FindAll(id, syncClean)
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := all[id]
	return e, ok, nil
}

// FindAll enumerates every permanent file matching id (or every
// permanent file in the cache, if id is empty), returning the
// freshest entry per id. Superseded and expired files are scheduled
// for removal as a side effect: synchronously if syncClean, otherwise
// handed to the configured RemovalSink.
func (s *Store) FindAll(id string, syncClean bool) (map[string]Entry, error) {
	pattern := pathenc.PermWildcard(s.baseDir, id)
	matches, err := s.fs.Glob(pattern)
	if err != nil {
		return nil, err
	}

	now := s.Now().UnixMilli()
	acc := make(map[string]Entry)
	var toRemove []string

	for _, path := range matches {
		parsed, perr := pathenc.ParsePerm(filepath.Base(path))
		if perr != nil {
			s.handleUnknown(path, perr)
			continue
		}

		if parsed.ExpiresAtMs <= now {
			toRemove = append(toRemove, path)
			continue
		}

		prev, exists := acc[parsed.ID]
		if !exists || prev.ExpiresAtMs < parsed.ExpiresAtMs {
			if exists {
				toRemove = append(toRemove, prev.Path)
			}
			acc[parsed.ID] = Entry{ID: parsed.ID, Path: path, ExpiresAtMs: parsed.ExpiresAtMs}
		} else {
			toRemove = append(toRemove, path)
		}
	}

	s.removeAll(toRemove, syncClean)
	return acc, nil
}

// Delete synchronously removes every permanent file whose parsed id
// equals id, regardless of expiration.
func (s *Store) Delete(id string) error {
	pattern := pathenc.PermWildcard(s.baseDir, id)
	matches, err := s.fs.Glob(pattern)
	if err != nil {
		return err
	}
	for _, path := range matches {
		parsed, perr := pathenc.ParsePerm(filepath.Base(path))
		if perr != nil {
			s.handleUnknown(path, perr)
			continue
		}
		if parsed.ID != id {
			continue
		}
		if err := s.fs.RemoveIfExists(path); err != nil {
			return err
		}
	}
	return nil
}

// Clean unconditionally removes every permanent file in the cache,
// regardless of expiration or generation — the forced full sweep
// backing the Writer Pipeline's clean() operation, distinct from the
// supersession-aware sweep FindAll performs.
func (s *Store) Clean() error {
	matches, err := s.fs.Glob(pathenc.PermWildcard(s.baseDir, ""))
	if err != nil {
		return err
	}
	s.removeAll(matches, true)
	return nil
}

// CountParseable returns the number of permanent files whose basename
// parses, regardless of expiration — matching the source's stats
// semantics (spec §9 Open Question).
func (s *Store) CountParseable() (int, error) {
	matches, err := s.fs.Glob(pathenc.PermWildcard(s.baseDir, ""))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, path := range matches {
		if _, perr := pathenc.ParsePerm(filepath.Base(path)); perr == nil {
			count++
		}
	}
	return count, nil
}

// RemoveFile unlinks path, either immediately (sync) or by handing it
// to the Stale Cleaner's removal queue (async, fire-and-forget).
func (s *Store) RemoveFile(path string, sync bool) error {
	if sync {
		return s.fs.RemoveIfExists(path)
	}
	s.removeAll([]string{path}, false)
	return nil
}

func (s *Store) removeAll(paths []string, syncClean bool) {
	if len(paths) == 0 {
		return
	}
	if syncClean || s.sink == nil {
		p := pool.New().WithMaxGoroutines(removalConcurrency)
		for _, path := range paths {
			path := path
			p.Go(func() {
				if err := s.fs.RemoveIfExists(path); err != nil && s.log != nil {
					s.log.Error("failed to remove stale permanent file", "path", path, "error", err)
				}
			})
		}
		p.Wait()
		return
	}
	s.sink.ScheduleRemoval(paths)
}

func (s *Store) handleUnknown(path string, parseErr error) {
	if s.log != nil {
		s.log.Error("failed to parse permanent file name", "path", path, "error", parseErr)
	}
	if s.policy == ccfg.UnknownFilesRemove {
		if err := s.fs.RemoveIfExists(path); err != nil && s.log != nil {
			s.log.Error("failed to remove unknown file", "path", path, "error", err)
		}
	}
}
