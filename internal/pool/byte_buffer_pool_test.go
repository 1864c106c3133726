package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferWriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)
	require.Zero(t, bb.Len())
	require.Equal(t, 16, bb.Cap())

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 5, bb.Len())
	require.Equal(t, []byte("hello"), bb.Bytes())

	bb.Reset()
	require.Zero(t, bb.Len())
	require.GreaterOrEqual(t, bb.Cap(), 16)
}

func TestByteBufferGrow(t *testing.T) {
	bb := NewByteBuffer(8)

	bb.Grow(4)
	require.GreaterOrEqual(t, bb.Cap(), 4)

	// Growing past the capacity preserves content.
	_, err := bb.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	bb.Grow(FeedBufferDefaultSize * 2)
	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())
	require.GreaterOrEqual(t, bb.Cap(), FeedBufferDefaultSize*2)
}

func TestByteBufferWriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, err := bb.Write([]byte("abc"))
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, "abc", out.String())
}

func TestPoolReuse(t *testing.T) {
	p := NewByteBufferPool(32, 1024)

	bb := p.Get()
	require.NotNil(t, bb)
	_, err := bb.Write([]byte("data"))
	require.NoError(t, err)

	p.Put(bb)

	// A recycled buffer comes back empty.
	bb2 := p.Get()
	require.Zero(t, bb2.Len())
}

func TestPoolDiscardsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	bb := p.Get()
	bb.Grow(64)
	p.Put(bb) // over threshold, dropped

	bb2 := p.Get()
	require.Zero(t, bb2.Len())

	// Put(nil) is safe.
	p.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	feed := GetFeedBuffer()
	require.NotNil(t, feed)
	require.Zero(t, feed.Len())
	PutFeedBuffer(feed)

	scratch := GetScratchBuffer()
	require.NotNil(t, scratch)
	require.Zero(t, scratch.Len())
	PutScratchBuffer(scratch)
}
