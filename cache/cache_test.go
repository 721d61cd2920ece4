package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/filecache/internal/vfs"
)

// blockingReader yields nothing until block is closed, then returns EOF.
// It lets a test observe a write while it is still in progress.
type blockingReader struct {
	block <-chan struct{}
}

func (r blockingReader) Read(p []byte) (int, error) {
	<-r.block
	return 0, io.EOF
}

func readAllClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

func startTestCache(t *testing.T, name string) *Cache {
	t.Helper()
	c, err := StartWithFS(Options{
		Cache:              name,
		Dir:                "/caches",
		TempDir:            "/caches/tmp",
		TTL:                time.Hour,
		StaleCleanInterval: time.Hour,
		TempCleanInterval:  time.Hour,
	}, vfs.Mem(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c := startTestCache(t, "videos-put-get")

	_, err := c.Put("movie-1", []byte("reel one"))
	require.NoError(t, err)

	r, err := c.Get("movie-1")
	require.NoError(t, err)
	require.NotNil(t, r)
	b, err := readAllClose(r)
	require.NoError(t, err)
	assert.Equal(t, "reel one", string(b))
}

func TestGetMissReturnsNilWithoutError(t *testing.T) {
	c := startTestCache(t, "videos-get-miss")

	r, err := c.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestExecuteSkipsProducerOnExistingEntry(t *testing.T) {
	c := startTestCache(t, "videos-execute")

	_, err := c.Put("movie-1", []byte("first"))
	require.NoError(t, err)

	producerCalled := false
	r, err := c.Execute("movie-1", func() (any, error) {
		producerCalled = true
		return []byte("second"), nil
	})
	require.NoError(t, err)
	b, err := readAllClose(r)
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))
	assert.False(t, producerCalled, "execute must not invoke the producer when a valid entry exists")
}

func TestExecuteInvokesProducerOnMiss(t *testing.T) {
	c := startTestCache(t, "videos-execute-miss")

	producerCalled := false
	r, err := c.Execute("movie-1", func() (any, error) {
		producerCalled = true
		return []byte("produced"), nil
	})
	require.NoError(t, err)
	b, err := readAllClose(r)
	require.NoError(t, err)
	assert.Equal(t, "produced", string(b))
	assert.True(t, producerCalled)
}

func TestPutReplacesExistingGeneration(t *testing.T) {
	c := startTestCache(t, "videos-put-replace")

	_, err := c.Put("movie-1", []byte("v1"))
	require.NoError(t, err)
	_, err = c.Put("movie-1", []byte("v2"))
	require.NoError(t, err)

	r, err := c.Get("movie-1")
	require.NoError(t, err)
	b, err := readAllClose(r)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(b))

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Current, "the superseded generation must have been swept")
}

func TestExistsReflectsCurrentState(t *testing.T) {
	c := startTestCache(t, "videos-exists")

	ok, err := c.Exists("movie-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Put("movie-1", []byte("payload"))
	require.NoError(t, err)

	ok, err = c.Exists("movie-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteRemovesEntry(t *testing.T) {
	c := startTestCache(t, "videos-delete")

	_, err := c.Put("movie-1", []byte("payload"))
	require.NoError(t, err)
	require.NoError(t, c.Delete("movie-1"))

	ok, err := c.Exists("movie-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanRemovesEveryEntry(t *testing.T) {
	c := startTestCache(t, "videos-clean")

	_, err := c.Put("movie-1", []byte("a"))
	require.NoError(t, err)
	_, err = c.Put("movie-2", []byte("b"))
	require.NoError(t, err)

	require.NoError(t, c.Clean())

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Current)
}

func TestGetRecordReportsTTLRemaining(t *testing.T) {
	c := startTestCache(t, "videos-record")

	_, err := c.Put("movie-1", []byte("payload"), WithTTL(30*time.Minute))
	require.NoError(t, err)

	rec, err := c.GetRecord("movie-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.InDelta(t, 30*time.Minute, rec.TTLRemaining, float64(time.Minute))
}

func TestPutRejectsEmptyID(t *testing.T) {
	c := startTestCache(t, "videos-bad-id")
	_, err := c.Put("", []byte("payload"))
	require.Error(t, err)
}

func TestPutRejectsUnrecognizedProducer(t *testing.T) {
	c := startTestCache(t, "videos-bad-producer")
	_, err := c.Put("movie-1", 42)
	require.Error(t, err)
}

func TestStatsCountsInProgressWrites(t *testing.T) {
	c := startTestCache(t, "videos-stats-inprogress")

	block := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_, _ = c.Put("movie-1", blockingReader{block: block})
		close(done)
	}()

	require.Eventually(t, func() bool {
		stats, err := c.Stats()
		return err == nil && stats.InProgress == 1
	}, time.Second, 5*time.Millisecond)

	close(block)
	<-done
}
