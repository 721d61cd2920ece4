package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/filecache/internal/vfs"
)

func TestStreamOpensLazilyOnFirstRead(t *testing.T) {
	fs := vfs.Mem()
	f, err := fs.WriteNew("/x")
	require.NoError(t, err)
	_, err = f.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s := newStream(fs, "/x")
	assert.Nil(t, s.file, "file must not be opened until the first Read")

	b, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
}

func TestStreamCloseBeforeReadIsNoop(t *testing.T) {
	s := newStream(vfs.Mem(), "/never-opened")
	assert.NoError(t, s.Close())
}

func TestStreamSurfacesMissingFileAsReadError(t *testing.T) {
	s := newStream(vfs.Mem(), "/missing")
	_, err := s.ReadAll()
	require.Error(t, err)
}
