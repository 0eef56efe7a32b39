package asset

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsset_EmptyContent(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/empty.js", "js")
	ctx := context.Background()

	code, err := a.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", code)

	buffer, err := a.GetBuffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, buffer)

	stream, err := a.GetStream(ctx)
	require.NoError(t, err)
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestAsset_CoercionBetweenRepresentations(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	ctx := context.Background()

	a.SetCode("héllo")

	buffer, err := a.GetBuffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("héllo"), buffer)

	code, err := a.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "héllo", code)
}

func TestAsset_BufferedContentStreamsRepeatedly(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	ctx := context.Background()
	a.SetBuffer([]byte("abc"))

	for i := 0; i < 2; i++ {
		stream, err := a.GetStream(ctx)
		require.NoError(t, err)
		data, err := io.ReadAll(stream)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(data))
	}
}

func TestAsset_StreamIsBufferedOnFirstRead(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	ctx := context.Background()
	a.SetStream(strings.NewReader("data"))

	code, err := a.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "data", code)

	code, err = a.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "data", code)
}

func TestAsset_ConsumedStreamCannotBeRead(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	ctx := context.Background()
	a.SetStream(strings.NewReader("data"))

	stream, err := a.GetStream(ctx)
	require.NoError(t, err)
	_, err = io.ReadAll(stream)
	require.NoError(t, err)

	_, err = a.GetCode(ctx)
	assert.ErrorIs(t, err, ErrStreamAlreadyConsumed)
}

func TestAsset_SetCodeDropsTree(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	ctx := context.Background()

	a.SetAST(testTree("a", "b"))
	a.SetCode("direct")

	tree, err := a.GetAST(ctx)
	require.NoError(t, err)
	assert.Nil(t, tree)
	assert.Nil(t, a.Record().ASTGenerator)

	code, err := a.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "direct", code)
	assert.Zero(t, f.plugin.calls)
}

func TestAsset_SetASTDropsContent(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	ctx := context.Background()

	a.SetCode("stale")
	a.SetAST(testTree("fresh", "tree"))

	assert.True(t, a.IsASTDirty())
	assert.Equal(t, "words", a.Record().ASTGenerator.Type)

	code, err := a.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh tree", code)
	assert.Equal(t, 1, f.plugin.calls)
}

func TestAsset_ComputeHashChangesCacheKeys(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "src/index.js", "js")
	a.SetCode("v1")

	before := a.GetCacheKey("content")
	require.NoError(t, a.ComputeHash(context.Background()))

	assert.Equal(t, HashContent([]byte("v1")), a.Record().Hash)
	assert.NotEqual(t, before, a.GetCacheKey("content"))
}
