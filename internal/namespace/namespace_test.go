package namespace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmptySpec(t *testing.T) {
	got, err := Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestResolveLiteral(t *testing.T) {
	got, err := Resolve([]Part{Literal("videos")})
	require.NoError(t, err)
	assert.Equal(t, "videos", got)
}

func TestResolveJoinsMultipleParts(t *testing.T) {
	got, err := Resolve([]Part{Literal("a"), Literal("b"), Literal("c")})
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", got)
}

func TestResolveSkipsEmptyParts(t *testing.T) {
	got, err := Resolve([]Part{Literal("a"), Literal(""), Literal("b")})
	require.NoError(t, err)
	assert.Equal(t, "a/b", got)
}

func TestResolveFunc(t *testing.T) {
	got, err := Resolve([]Part{Func(func() (string, error) { return "shard-3", nil })})
	require.NoError(t, err)
	assert.Equal(t, "shard-3", got)
}

func TestResolveCallBindsArgs(t *testing.T) {
	part := Call("sharder", func(args ...any) (string, error) {
		return args[0].(string) + "-" + args[1].(string), nil
	}, "tenant", "east")
	got, err := Resolve([]Part{part})
	require.NoError(t, err)
	assert.Equal(t, "tenant-east", got)
}

func TestResolvePropagatesPartError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Resolve([]Part{Func(func() (string, error) { return "", boom })})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestResolveRejectsSlashInResolvedPart(t *testing.T) {
	_, err := Resolve([]Part{Literal("a/b")})
	require.Error(t, err)
}

func TestHostResolvesNonEmpty(t *testing.T) {
	got, err := Resolve([]Part{Host})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
