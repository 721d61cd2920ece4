package cache

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/filecache/internal/vfs"
)

// flakyFs wraps an afero.Fs and fails the first n calls to OpenFile
// with a plain (non-IOError) error, simulating a transient create
// failure on the underlying filesystem.
type flakyFs struct {
	afero.Fs
	failuresLeft int
}

func (f *flakyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, errors.New("injected transient create failure")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func startFlakyTestCache(t *testing.T, name string, failures int) (*Cache, *flakyFs) {
	t.Helper()
	ffs := &flakyFs{Fs: afero.NewMemMapFs(), failuresLeft: failures}
	c, err := StartWithFS(Options{
		Cache:              name,
		Dir:                "/caches",
		TempDir:            "/caches/tmp",
		TTL:                time.Hour,
		StaleCleanInterval: time.Hour,
		TempCleanInterval:  time.Hour,
	}, vfs.New(ffs), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop(nil) })
	return c, ffs
}

// A bytes producer is replayable: writeTemp must retry past a
// transient create failure and still commit the exact original bytes,
// never a truncated file.
func TestPutWithBytesSourceSurvivesTransientWriteFailure(t *testing.T) {
	c, ffs := startFlakyTestCache(t, "flaky-bytes", 2)
	assert.Equal(t, 2, ffs.failuresLeft)

	_, err := c.Put("movie-1", []byte("the quick brown fox"))
	require.NoError(t, err)
	assert.Equal(t, 0, ffs.failuresLeft, "writeTemp must have retried past both injected failures")

	r, err := c.Get("movie-1")
	require.NoError(t, err)
	require.NotNil(t, r)
	b, err := readAllClose(r)
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(b), "a retried write must never commit a truncated file")
}

// A raw io.Reader producer is not replayable: writeTemp must not
// retry at all, so a transient failure surfaces immediately and the
// temp file is cleaned up rather than risking a truncated commit.
func TestPutWithReaderSourceDoesNotRetryTransientWriteFailure(t *testing.T) {
	c, ffs := startFlakyTestCache(t, "flaky-reader", 1)

	_, err := c.Put("movie-1", io.NopCloser(newStaticReader("payload")))
	require.Error(t, err, "a non-replayable source must fail rather than retry")
	assert.Equal(t, 0, ffs.failuresLeft, "the single injected failure must have been consumed by the one attempt")

	ok, err := c.Exists("movie-1")
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.InProgress, "the failed temp file must have been unlinked")
}

func newStaticReader(s string) io.Reader {
	return &staticReader{s: s}
}

// staticReader is a minimal io.Reader (deliberately not a
// bytes.Reader) standing in for an externally-supplied, non-rewindable
// stream producer.
type staticReader struct {
	s   string
	pos int
}

func (r *staticReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.pos:])
	r.pos += n
	return n, nil
}
