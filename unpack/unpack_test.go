package unpack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mpack/errs"
)

func TestUnpackUint8AcceptSet(t *testing.T) {
	// Value carried in the code itself.
	v, err := UnpackUint8(bytes.NewReader([]byte{0x07}))
	require.NoError(t, err)
	require.Equal(t, uint8(7), v)

	// Explicit uint8 code.
	v, err = UnpackUint8(bytes.NewReader([]byte{0xcc, 0xff}))
	require.NoError(t, err)
	require.Equal(t, uint8(255), v)

	// A uint16 encoding is not widened down.
	_, err = UnpackUint8(bytes.NewReader([]byte{0xcd, 0x00, 0x01}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	var tm *errs.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	require.Equal(t, byte(0xcd), tm.Code)
	require.Equal(t, "uint8", tm.Expected)
}

func TestUnpackInt8AcceptSet(t *testing.T) {
	v, err := UnpackInt8(bytes.NewReader([]byte{0xff}))
	require.NoError(t, err)
	require.Equal(t, int8(-1), v)

	v, err = UnpackInt8(bytes.NewReader([]byte{0xd0, 0x80}))
	require.NoError(t, err)
	require.Equal(t, int8(-128), v)

	// Positive fixint is not in the int8 accept set.
	_, err = UnpackInt8(bytes.NewReader([]byte{0x01}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

// TestUnpackNoWidening verifies each explicit-width decoder accepts exactly
// its own code.
func TestUnpackNoWidening(t *testing.T) {
	_, err := UnpackUint16(bytes.NewReader([]byte{0xcc, 0x01}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = UnpackUint32(bytes.NewReader([]byte{0xcd, 0x00, 0x01}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = UnpackUint64(bytes.NewReader([]byte{0xce, 0, 0, 0, 1}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = UnpackInt16(bytes.NewReader([]byte{0xd0, 0xff}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = UnpackInt64(bytes.NewReader([]byte{0xd2, 0xff, 0xff, 0xff, 0xff}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestUnpackScalars(t *testing.T) {
	u16, err := UnpackUint16(bytes.NewReader([]byte{0xcd, 0xab, 0xcd}))
	require.NoError(t, err)
	require.Equal(t, uint16(0xabcd), u16)

	u64, err := UnpackUint64(bytes.NewReader([]byte{0xcf, 0, 0, 0, 1, 0, 0, 0, 0}))
	require.NoError(t, err)
	require.Equal(t, uint64(1)<<32, u64)

	i32, err := UnpackInt32(bytes.NewReader([]byte{0xd2, 0xff, 0xff, 0x7f, 0xff}))
	require.NoError(t, err)
	require.Equal(t, int32(-32769), i32)

	f32, err := UnpackFloat32(bytes.NewReader([]byte{0xca, 0x3f, 0xc0, 0x00, 0x00}))
	require.NoError(t, err)
	require.Equal(t, float32(1.5), f32)

	f64, err := UnpackFloat64(bytes.NewReader([]byte{0xcb, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0}))
	require.NoError(t, err)
	require.Equal(t, 1.5, f64)

	// Floats do not decode through integer codes.
	_, err = UnpackFloat32(bytes.NewReader([]byte{0xd2, 0, 0, 0, 0}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestUnpackBoolNil(t *testing.T) {
	v, err := UnpackBool(bytes.NewReader([]byte{0xc3}))
	require.NoError(t, err)
	require.True(t, v)

	v, err = UnpackBool(bytes.NewReader([]byte{0xc2}))
	require.NoError(t, err)
	require.False(t, v)

	_, err = UnpackBool(bytes.NewReader([]byte{0xc0}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	require.NoError(t, UnpackNil(bytes.NewReader([]byte{0xc0})))
	require.ErrorIs(t, UnpackNil(bytes.NewReader([]byte{0xc2})), errs.ErrTypeMismatch)
}

// TestUnpackReservedCode verifies 0xC1 fails as invalid data, never panics.
func TestUnpackReservedCode(t *testing.T) {
	_, err := UnpackUint8(bytes.NewReader([]byte{0xc1}))
	require.ErrorIs(t, err, errs.ErrReservedCode)
	require.ErrorIs(t, err, errs.ErrInvalidData)

	_, err = UnpackValue(bytes.NewReader([]byte{0xc1}))
	require.ErrorIs(t, err, errs.ErrInvalidData)
}

func TestUnpackHeaders(t *testing.T) {
	n, err := UnpackStrHeader(bytes.NewReader([]byte{0xa5}))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = UnpackStrHeader(bytes.NewReader([]byte{0xd9, 0x20}))
	require.NoError(t, err)
	require.Equal(t, 32, n)

	n, err = UnpackBinHeader(bytes.NewReader([]byte{0xc5, 0x01, 0x00}))
	require.NoError(t, err)
	require.Equal(t, 256, n)

	n, err = UnpackArrayHeader(bytes.NewReader([]byte{0x9f}))
	require.NoError(t, err)
	require.Equal(t, 15, n)

	// array32 and map32 carry full 32-bit counts.
	n, err = UnpackArrayHeader(bytes.NewReader([]byte{0xdd, 0x00, 0x01, 0x00, 0x00}))
	require.NoError(t, err)
	require.Equal(t, 65536, n)

	n, err = UnpackMapHeader(bytes.NewReader([]byte{0xdf, 0x00, 0x01, 0x00, 0x02}))
	require.NoError(t, err)
	require.Equal(t, 65538, n)

	_, err = UnpackStrHeader(bytes.NewReader([]byte{0xc4, 0x01}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestUnpackStr(t *testing.T) {
	s, err := UnpackStr(bytes.NewReader([]byte{0xa5, 0x68, 0x65, 0x6c, 0x6c, 0x6f}))
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	// Invalid UTF-8 under a string header fails typed text decode.
	_, err = UnpackStr(bytes.NewReader([]byte{0xa2, 0xff, 0xfe}))
	require.ErrorIs(t, err, errs.ErrInvalidUtf8)
}

func TestUnpackBin(t *testing.T) {
	b, err := UnpackBin(bytes.NewReader([]byte{0xc4, 0x03, 0x61, 0x61, 0x61}))
	require.NoError(t, err)
	require.Equal(t, []byte("aaa"), b)
}

func TestUnpackTruncated(t *testing.T) {
	_, err := UnpackStr(bytes.NewReader([]byte{0xa5, 0x68}))
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)

	_, err = UnpackUint32(bytes.NewReader([]byte{0xce, 0x01}))
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)

	_, err = UnpackValue(bytes.NewReader([]byte{0x92, 0x01}))
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestUnpackExtHeader(t *testing.T) {
	length, ty, err := UnpackExtHeader(bytes.NewReader([]byte{0xd6, 0x2a}))
	require.NoError(t, err)
	require.Equal(t, 4, length)
	require.Equal(t, int8(42), ty)

	length, ty, err = UnpackExtHeader(bytes.NewReader([]byte{0xc7, 0x0c, 0xff}))
	require.NoError(t, err)
	require.Equal(t, 12, length)
	require.Equal(t, int8(-1), ty)

	length, ty, err = UnpackExtHeader(bytes.NewReader([]byte{0xc8, 0x01, 0x00, 0x05}))
	require.NoError(t, err)
	require.Equal(t, 256, length)
	require.Equal(t, int8(5), ty)

	_, _, err = UnpackExtHeader(bytes.NewReader([]byte{0xa1, 0x61}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestUnpackFixExt(t *testing.T) {
	ty, b1, err := UnpackFixExt1(bytes.NewReader([]byte{0xd4, 0x05, 0xaa}))
	require.NoError(t, err)
	require.Equal(t, int8(5), ty)
	require.Equal(t, uint8(0xaa), b1)

	ty, b4, err := UnpackFixExt4(bytes.NewReader([]byte{0xd6, 0x07, 1, 2, 3, 4}))
	require.NoError(t, err)
	require.Equal(t, int8(7), ty)
	require.Equal(t, [4]byte{1, 2, 3, 4}, b4)

	ty, b16, err := UnpackFixExt16(bytes.NewReader(append([]byte{0xd8, 0x01},
		bytes.Repeat([]byte{0x11}, 16)...)))
	require.NoError(t, err)
	require.Equal(t, int8(1), ty)
	require.Equal(t, [16]byte{0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11,
		0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11}, b16)

	_, _, err = UnpackFixExt2(bytes.NewReader([]byte{0xd4, 0x01, 0xaa}))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestUnpackTimestamps(t *testing.T) {
	sec32, err := UnpackTimestamp32(bytes.NewReader([]byte{0xd6, 0xff, 0x00, 0x00, 0x00, 0x01}))
	require.NoError(t, err)
	require.Equal(t, uint32(1), sec32)

	sec, nsec, err := UnpackTimestamp64(bytes.NewReader(
		[]byte{0xd7, 0xff, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01}))
	require.NoError(t, err)
	require.Equal(t, uint64(1), sec)
	require.Equal(t, uint32(1), nsec)

	sec96, nsec96, err := UnpackTimestamp96(bytes.NewReader(
		[]byte{0xc7, 0x0c, 0xff, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00}))
	require.NoError(t, err)
	require.Equal(t, int64(1)<<35, sec96)
	require.Equal(t, uint32(1), nsec96)

	// Wrong type tag under a timestamp shape.
	_, err = UnpackTimestamp32(bytes.NewReader([]byte{0xd6, 0x01, 0, 0, 0, 1}))
	require.ErrorIs(t, err, errs.ErrInvalidData)

	// Ext8 with a non-12 length is not a timestamp96.
	_, _, err = UnpackTimestamp96(bytes.NewReader([]byte{0xc7, 0x04, 0xff, 0, 0, 0, 1}))
	require.ErrorIs(t, err, errs.ErrInvalidData)
}

func TestUnpackBinRefZeroCopy(t *testing.T) {
	backing := []byte{0xc4, 0x03, 0x61, 0x62, 0x63, 0x01}
	r := NewSliceReader(backing)

	b, err := UnpackBinRef(r)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), b)

	// The decoded slice aliases the backing array.
	backing[2] = 'z'
	require.Equal(t, []byte("zbc"), b)

	// The cursor advanced exactly past the payload.
	v, err := UnpackUint8(r)
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)
}

func TestUnpackStrRefZeroCopy(t *testing.T) {
	backing := []byte{0xa5, 0x68, 0x65, 0x6c, 0x6c, 0x6f}
	r := NewCursorReader(backing)

	s, err := UnpackStrRef(r)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
	require.Equal(t, len(backing), r.Pos())

	// Truncated payload reports unexpected EOF without advancing past it.
	short := NewSliceReader([]byte{0xa5, 0x68})
	_, err = UnpackStrRef(short)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestSliceReaderConsume(t *testing.T) {
	r := NewSliceReader([]byte{1, 2, 3})
	buf, err := r.FillBuf()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, buf)

	r.Consume(2)
	buf, err = r.FillBuf()
	require.NoError(t, err)
	require.Equal(t, []byte{3}, buf)

	r.Consume(5)
	buf, err = r.FillBuf()
	require.NoError(t, err)
	require.Empty(t, buf)
}
