package cache

import (
	"io"
	"sync"

	"github.com/javi11/filecache/internal/vfs"
)

// stream is the read_stream returned by get/put/execute: it defers
// opening path until the first Read, so a cleaner sweep that races
// between lookup and read surfaces as a read error rather than
// silently returning stale content (see the "Streams" design note).
type stream struct {
	fs   vfs.FS
	path string

	once sync.Once
	file io.ReadCloser
	err  error
}

func newStream(fs vfs.FS, path string) *stream {
	return &stream{fs: fs, path: path}
}

func (s *stream) open() {
	s.once.Do(func() {
		s.file, s.err = s.fs.OpenRead(s.path)
	})
}

// Read implements io.Reader, opening the underlying file lazily.
func (s *stream) Read(p []byte) (int, error) {
	s.open()
	if s.err != nil {
		return 0, s.err
	}
	return s.file.Read(p)
}

// Close implements io.Closer. Closing a stream that was never read is
// a no-op.
func (s *stream) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// ReadAll drains the stream fully, opening it if necessary.
func (s *stream) ReadAll() ([]byte, error) {
	defer s.Close()
	return io.ReadAll(s)
}
