package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIntegerDomains(t *testing.T) {
	pos := NewUint(42)
	require.False(t, pos.IsNeg())
	u, ok := pos.Uint64()
	require.True(t, ok)
	require.Equal(t, uint64(42), u)
	i, ok := pos.Int64()
	require.True(t, ok)
	require.Equal(t, int64(42), i)

	neg := NewInt(-7)
	require.True(t, neg.IsNeg())
	_, ok = neg.Uint64()
	require.False(t, ok)
	i, ok = neg.Int64()
	require.True(t, ok)
	require.Equal(t, int64(-7), i)

	// A non-negative int lands in the positive domain.
	require.False(t, NewInt(7).IsNeg())

	// A value above MaxInt64 stays unsigned-only.
	big := NewUint(1 << 63)
	_, ok = big.Int64()
	require.False(t, ok)
}

func TestFloatWidth(t *testing.T) {
	narrow := NewFloat32(1.5)
	require.False(t, narrow.Is64())
	f32, ok := narrow.Float32()
	require.True(t, ok)
	require.Equal(t, float32(1.5), f32)
	require.Equal(t, 1.5, narrow.Float64())

	wide := NewFloat64(2.5)
	require.True(t, wide.Is64())
	_, ok = wide.Float32()
	require.False(t, ok)
	require.Equal(t, 2.5, wide.Float64())
}

func TestUtf8StringValid(t *testing.T) {
	s := NewUtf8String("hello")
	require.True(t, s.IsValid())
	require.NoError(t, s.Err())

	got, ok := s.Str()
	require.True(t, ok)
	require.Equal(t, "hello", got)
	require.Equal(t, []byte("hello"), s.Bytes())
}

func TestUtf8StringInvalid(t *testing.T) {
	raw := []byte{0x68, 0xc3, 0x28} // 'h' + truncated two-byte sequence
	s := Utf8StringFromBytes(raw)
	require.False(t, s.IsValid())
	require.Error(t, s.Err())

	_, ok := s.Str()
	require.False(t, ok)
	require.Equal(t, raw, s.Bytes())
}

func TestUtf8StringFromValidBytes(t *testing.T) {
	s := Utf8StringFromBytes([]byte("héllo"))
	require.True(t, s.IsValid())
	require.Equal(t, NewUtf8String("héllo"), s)
}

func TestOwnedDetaches(t *testing.T) {
	backing := []byte{1, 2, 3, 4}
	tree := Array{
		Binary(backing[:2]),
		String{Utf8StringFromBytes(backing[2:3])},
		Extension{Type: 5, Data: backing[3:]},
	}

	owned := tree.Owned().(Array)

	// Mutating the backing array must not affect the owned tree.
	backing[0] = 0xff
	backing[3] = 0xff
	require.Equal(t, Binary{1, 2}, owned[0])
	require.Equal(t, Extension{Type: 5, Data: []byte{4}}, owned[2])
}

func TestMapPreservesOrderAndDuplicates(t *testing.T) {
	m := Map{
		{Key: FromString("k"), Val: FromUint(uint8(1))},
		{Key: FromString("k"), Val: FromUint(uint8(2))},
		{Key: FromInt(int8(-1)), Val: Nil{}},
	}
	require.Len(t, m, 3)
	require.Equal(t, m[0].Key, m[1].Key)
	require.Equal(t, FromUint(uint8(2)), m[1].Val)
}

func TestTimestampTime(t *testing.T) {
	ts := Timestamp{Sec: 1, Nsec: 500}
	require.Equal(t, time.Unix(1, 500).UTC(), ts.Time())

	round := FromTime(time.Unix(123, 456)).(Timestamp)
	require.Equal(t, Timestamp{Sec: 123, Nsec: 456}, round)
}
