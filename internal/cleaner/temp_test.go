package cleaner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/filecache/internal/ccfg"
	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/owner"
	"github.com/javi11/filecache/internal/tempstore"
	"github.com/javi11/filecache/internal/vfs"
)

func TestTempSweepRemovesOrphanedFileOnly(t *testing.T) {
	fs := vfs.Mem()
	store := tempstore.New(fs, "/caches/videos/tmp", ccfg.UnknownFilesKeep, logging.New(nil, "videos"))
	require.NoError(t, store.Setup())

	registry := owner.NewRegistry()
	liveToken := registry.Mint()

	livePath := store.FilePath("movie-1", liveToken.String())
	f1, err := fs.WriteNew(livePath)
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	orphanToken := owner.Token{PID: liveToken.PID, StartEpoch: liveToken.StartEpoch, Seq: liveToken.Seq + 1000}
	orphanPath := store.FilePath("movie-2", orphanToken.String())
	f2, err := fs.WriteNew(orphanPath)
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	c := NewTemp("videos", time.Hour, store, registry, logging.New(nil, "videos"), false)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	defer cancel()

	c.sweep()

	entries, _, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "movie-1", entries[0].ID)
}

func TestTempSweepAppliesUnknownPolicy(t *testing.T) {
	fs := vfs.Mem()
	store := tempstore.New(fs, "/caches/videos/tmp", ccfg.UnknownFilesRemove, logging.New(nil, "videos"))
	require.NoError(t, store.Setup())

	junk := "/caches/videos/tmp/temp-file-cache$onlyonepart"
	f, err := fs.WriteNew(junk)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	registry := owner.NewRegistry()
	c := NewTemp("videos", time.Hour, store, registry, logging.New(nil, "videos"), false)
	c.sweep()

	entries, unknown, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, unknown)
}
