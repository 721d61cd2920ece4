// Package tempstore implements the temp file staging area: unique
// paths for in-flight producers, and enumeration for the Temp Cleaner.
package tempstore

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/javi11/filecache/internal/ccfg"
	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/pathenc"
	"github.com/javi11/filecache/internal/vfs"
)

// Entry is one temp file discovered during a sweep.
type Entry struct {
	Owner string
	ID    string
	Path  string
}

// Store is one named cache's temp file store.
type Store struct {
	fs      vfs.FS
	baseDir string
	policy  ccfg.UnknownFilesPolicy
	log     *logging.Logger
}

// New builds a Store rooted at baseDir (temp_dir + temp_namespace +
// cache, already resolved by the caller).
func New(fs vfs.FS, baseDir string, policy ccfg.UnknownFilesPolicy, log *logging.Logger) *Store {
	return &Store{fs: fs, baseDir: baseDir, policy: policy, log: log}
}

// Setup ensures the temp directory exists.
func (s *Store) Setup() error {
	return s.fs.EnsureDir(s.baseDir)
}

// FilePath allocates a fresh staging path for id, owned by ownerToken.
// The unique token is a fresh UUID scoped to this one allocation.
func (s *Store) FilePath(id, ownerToken string) string {
	unique := uuid.NewString()
	return pathenc.TempPath(s.baseDir, id, ownerToken, unique)
}

// Wildcard returns a glob matching every temp file for this cache.
func (s *Store) Wildcard() string {
	return pathenc.TempWildcard(s.baseDir)
}

// List enumerates every temp file currently staged, parsing each
// basename. Files that fail to parse are reported separately so the
// caller (the Temp Cleaner) can apply the unknown_files policy.
func (s *Store) List() (entries []Entry, unknown []string, err error) {
	matches, err := s.fs.Glob(s.Wildcard())
	if err != nil {
		return nil, nil, err
	}
	for _, path := range matches {
		parsed, perr := pathenc.ParseTemp(filepath.Base(path))
		if perr != nil {
			unknown = append(unknown, path)
			continue
		}
		entries = append(entries, Entry{Owner: parsed.Owner, ID: parsed.ID, Path: path})
	}
	return entries, unknown, nil
}

// Count returns the number of temp files currently staged, matching
// the Writer Pipeline's stats().in_progress.
func (s *Store) Count() (int, error) {
	matches, err := s.fs.Glob(s.Wildcard())
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// ParseFilepath parses a single temp file's basename, for callers that
// already have a path in hand (e.g. rollback after a producer
// failure).
func (s *Store) ParseFilepath(path string) (owner, id string, err error) {
	parsed, err := pathenc.ParseTemp(filepath.Base(path))
	if err != nil {
		return "", "", err
	}
	return parsed.Owner, parsed.ID, nil
}

// Remove unlinks a temp file directly, used by the Temp Cleaner once
// it has decided an owner is no longer alive.
func (s *Store) Remove(path string) error {
	return s.fs.RemoveIfExists(path)
}

// ApplyUnknownPolicy removes path if the store's unknown_files policy
// is "remove"; otherwise it is left alone.
func (s *Store) ApplyUnknownPolicy(path string) {
	if s.log != nil {
		s.log.Error("failed to parse temp file name", "path", path)
	}
	if s.policy == ccfg.UnknownFilesRemove {
		if err := s.fs.RemoveIfExists(path); err != nil && s.log != nil {
			s.log.Error("failed to remove unknown file", "path", path, "error", err)
		}
	}
}
