package unpack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/pack"
	"github.com/arloliu/mpack/value"
)

func TestUnpackerPullMode(t *testing.T) {
	var buf bytes.Buffer
	p := pack.NewPacker(&buf)
	require.NoError(t, p.PackUint(300))
	require.NoError(t, p.PackStr("hi"))
	require.NoError(t, p.PackBool(true))

	u := NewUnpacker(&buf)

	v, err := u.UnpackUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(300), v)

	s, err := u.UnpackStr()
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	b, err := u.UnpackBool()
	require.NoError(t, err)
	require.True(t, b)
}

func TestUnpackerTypedSuite(t *testing.T) {
	var buf bytes.Buffer
	p := pack.NewPacker(&buf)
	require.NoError(t, p.PackUint8(1))
	require.NoError(t, p.PackInt8(-1))
	require.NoError(t, p.PackFloat64(0.5))
	require.NoError(t, p.PackNil())
	require.NoError(t, p.PackArrayHeader(0))
	require.NoError(t, p.PackMapHeader(0))
	require.NoError(t, p.PackExtHeader(3, 2))
	require.NoError(t, p.WritePayload([]byte{8, 9}))

	u := NewUnpacker(&buf)

	u8, err := u.UnpackUint8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), u8)

	i8, err := u.UnpackInt8()
	require.NoError(t, err)
	require.Equal(t, int8(-1), i8)

	f, err := u.UnpackFloat64()
	require.NoError(t, err)
	require.Equal(t, 0.5, f)

	require.NoError(t, u.UnpackNil())

	n, err := u.UnpackArrayHeader()
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = u.UnpackMapHeader()
	require.NoError(t, err)
	require.Zero(t, n)

	ty, data, err := u.UnpackFixExt2()
	require.NoError(t, err)
	require.Equal(t, int8(3), ty)
	require.Equal(t, [2]byte{8, 9}, data)
}

// TestFeedModeWholeValues verifies writing N complete values and iterating
// yields them in order.
func TestFeedModeWholeValues(t *testing.T) {
	u := NewFeedUnpacker()
	defer u.Close()

	var buf bytes.Buffer
	p := pack.NewPacker(&buf)
	require.NoError(t, p.PackUint(1))
	require.NoError(t, p.PackStr("two"))
	require.NoError(t, p.PackArrayHeader(1))
	require.NoError(t, p.PackUint(3))

	_, err := u.Write(buf.Bytes())
	require.NoError(t, err)

	var got []value.Value
	for v := range u.Values() {
		got = append(got, v)
	}

	require.Equal(t, []value.Value{
		value.FromUint(uint8(1)),
		value.FromString("two"),
		value.Array{value.FromUint(uint8(3))},
	}, got)
}

// TestFeedModeSplitWrites verifies a value split across arbitrary write
// boundaries decodes exactly once, once its last byte arrives, with no
// duplicate or lost output.
func TestFeedModeSplitWrites(t *testing.T) {
	encoded := []byte{0x92, 0xa3, 0x61, 0x62, 0x63, 0xcd, 0x01, 0x00} // ["abc", 256]
	want := value.Array{value.FromString("abc"), value.FromUint(uint16(256))}

	for split := 1; split < len(encoded); split++ {
		u := NewFeedUnpacker()

		_, err := u.Write(encoded[:split])
		require.NoError(t, err)

		var got []value.Value
		for v := range u.Values() {
			got = append(got, v)
		}
		require.Empty(t, got, "split %d yielded before data was complete", split)

		_, err = u.Write(encoded[split:])
		require.NoError(t, err)

		for v := range u.Values() {
			got = append(got, v)
		}
		require.Equal(t, []value.Value{want}, got, "split %d", split)

		// Nothing further to yield.
		for range u.Values() {
			t.Fatalf("split %d produced duplicate output", split)
		}

		require.NoError(t, u.Close())
	}
}

// TestFeedModeInterruptedThenMore verifies an interrupted decode does not
// corrupt subsequent decodes as more values stream in.
func TestFeedModeInterruptedThenMore(t *testing.T) {
	u := NewFeedUnpacker()
	defer u.Close()

	first := []byte{0x01}
	partial := []byte{0x92, 0x01} // array of 2 with one element so far

	_, err := u.Write(first)
	require.NoError(t, err)
	_, err = u.Write(partial)
	require.NoError(t, err)

	var got []value.Value
	for v := range u.Values() {
		got = append(got, v)
	}
	require.Equal(t, []value.Value{value.FromUint(uint8(1))}, got)

	// Complete the array and append one more value.
	_, err = u.Write([]byte{0x02, 0xc3})
	require.NoError(t, err)

	got = got[:0]
	for v := range u.Values() {
		got = append(got, v)
	}
	require.Equal(t, []value.Value{
		value.Array{value.FromUint(uint8(1)), value.FromUint(uint8(2))},
		value.Boolean(true),
	}, got)
}

func TestFeedModeEarlyBreakKeepsPosition(t *testing.T) {
	u := NewFeedUnpacker()
	defer u.Close()

	_, err := u.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	for range u.Values() {
		break // consume exactly one value
	}

	var rest []value.Value
	for v := range u.Values() {
		rest = append(rest, v)
	}
	require.Equal(t, []value.Value{
		value.FromUint(uint8(2)),
		value.FromUint(uint8(3)),
	}, rest)
}

func TestPullModeWriteRejected(t *testing.T) {
	u := NewUnpacker(bytes.NewReader(nil))
	_, err := u.Write([]byte{0x01})
	require.Error(t, err)
}

func TestUnpackerValueRefOverFeedBuffer(t *testing.T) {
	u := NewFeedUnpacker()
	defer u.Close()

	_, err := u.Write([]byte{0xc4, 0x02, 0xab, 0xcd})
	require.NoError(t, err)

	v, err := u.UnpackValueRef()
	require.NoError(t, err)
	require.Equal(t, value.Binary{0xab, 0xcd}, v)
}

func TestUnpackerPullValue(t *testing.T) {
	u := NewUnpacker(bytes.NewReader([]byte{0x81, 0xa1, 0x6b, 0xc2}))
	v, err := u.UnpackValue()
	require.NoError(t, err)
	require.Equal(t, value.Map{{Key: value.FromString("k"), Val: value.Boolean(false)}}, v)

	_, err = u.UnpackValue()
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestPullModeValuesIterator(t *testing.T) {
	u := NewUnpacker(bytes.NewReader([]byte{0x01, 0xc3, 0xa1, 0x78}))

	var got []value.Value
	for v := range u.Values() {
		got = append(got, v)
	}
	require.Equal(t, []value.Value{
		value.FromUint(uint8(1)),
		value.Boolean(true),
		value.FromString("x"),
	}, got)
}
