package cache

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/filecache/internal/cerrors"
)

func TestToSourceAcceptsBytes(t *testing.T) {
	src, err := toSource([]byte("hello"))
	require.NoError(t, err)
	r, err := src.reader()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestToSourceAcceptsString(t *testing.T) {
	src, err := toSource("hello")
	require.NoError(t, err)
	r, err := src.reader()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestToSourceAcceptsChunksConcatenatedInOrder(t *testing.T) {
	src, err := toSource([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	require.NoError(t, err)
	r, err := src.reader()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
}

func TestToSourceAcceptsReader(t *testing.T) {
	src, err := toSource(bytes.NewBufferString("hello"))
	require.NoError(t, err)
	r, err := src.reader()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestToSourceAcceptsFuncResolvedOnce(t *testing.T) {
	calls := 0
	src, err := toSource(func() (any, error) {
		calls++
		return []byte("hello"), nil
	})
	require.NoError(t, err)

	r, err := src.reader()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, 1, calls)
}

func TestToSourcePropagatesThunkError(t *testing.T) {
	boom := errors.New("producer boom")
	src, err := toSource(func() (any, error) {
		return nil, boom
	})
	require.NoError(t, err)

	_, err = src.reader()
	require.ErrorIs(t, err, boom)
}

func TestToSourceRejectsUnknownProducerShape(t *testing.T) {
	_, err := toSource(42)
	require.ErrorIs(t, err, cerrors.ErrBadProducer)
}

func TestToSourceAcceptsAlreadyBuiltSource(t *testing.T) {
	built := BytesSource([]byte("hi"))
	src, err := toSource(built)
	require.NoError(t, err)
	r, err := src.reader()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(b))
}
