// Package vfs is the filesystem seam the permanent and temp stores
// write through. It wraps afero.Fs — the same abstraction the teacher
// uses in internal/virtualfs and internal/webdav — so tests can swap
// in afero.NewMemMapFs() while production caches use afero.NewOsFs().
package vfs

import (
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/javi11/filecache/internal/cerrors"
)

// FS is the minimal filesystem surface the stores need.
type FS struct {
	afero.Fs
}

// New wraps an afero.Fs.
func New(fs afero.Fs) FS {
	return FS{Fs: fs}
}

// OS returns a FS backed by the real operating system filesystem.
func OS() FS {
	return FS{Fs: afero.NewOsFs()}
}

// Mem returns a FS backed by an in-memory filesystem, for tests.
func Mem() FS {
	return FS{Fs: afero.NewMemMapFs()}
}

// EnsureDir creates dir (and any parents) if it does not already
// exist.
func (f FS) EnsureDir(dir string) error {
	if err := f.MkdirAll(dir, 0o755); err != nil {
		return cerrors.NewIOError("mkdir", dir, err)
	}
	return nil
}

// Glob returns every path under the filesystem matching pattern.
func (f FS) Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(f.Fs, pattern)
	if err != nil {
		return nil, cerrors.NewIOError("glob", pattern, err)
	}
	return matches, nil
}

// WriteNew creates path for exclusive writing, failing if it already
// exists (temp filenames are unique per allocation, so a collision
// indicates a caller bug). Every failure, a collision included, is
// returned as a *cerrors.IOError, which cerrors.IsTransientIO treats
// as retryable.
func (f FS) WriteNew(path string) (afero.File, error) {
	file, err := f.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, cerrors.NewIOError("create", path, err)
	}
	return file, nil
}

// OpenRead opens path for reading. Callers are expected to defer
// opening until the first read (see stream in the cache package) so a
// cleaner sweep between lookup and read surfaces as a read error
// rather than silently returning stale content.
func (f FS) OpenRead(path string) (io.ReadCloser, error) {
	file, err := f.Open(path)
	if err != nil {
		return nil, cerrors.NewIOError("open", path, err)
	}
	return file, nil
}

// Rename performs the atomic commit: temp file to permanent name. Any
// failure is wrapped as a non-retryable rename error.
func (f FS) Rename(oldpath, newpath string) error {
	if err := f.Fs.Rename(oldpath, newpath); err != nil {
		return cerrors.NewRenameError(newpath, err)
	}
	return nil
}

// RemoveIfExists unlinks path, mapping "already gone" to success (an
// ENOENT-class error is not a failure: the goal state is already
// reached).
func (f FS) RemoveIfExists(path string) error {
	err := f.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return cerrors.NewIOError("remove", path, err)
}
