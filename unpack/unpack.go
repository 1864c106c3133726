// Package unpack decodes MessagePack elements from a byte stream.
//
// The typed functions (UnpackUint8, UnpackBool, ...) read the next type byte
// and fail with errs.ErrTypeMismatch when it is not in the accepted set for
// the requested type. The accept sets deliberately mirror the emission rules
// of the pack package: a narrow scalar is widened only from a fixint code,
// never from a smaller explicit-width code, so a decoder that knows the
// expected width rejects oversized encodings a correctly-minimised encoder
// would never produce.
//
// Header decoders (UnpackStrHeader, UnpackArrayHeader, ...) return the
// announced payload length or element count; the caller consumes exactly
// that much.
//
// Readers with the BufferedRead capability additionally support the
// zero-copy variants (UnpackBinRef, UnpackStrRef, UnpackValueRef), whose
// results alias the reader's backing slice.
//
// A failed decode leaves the reader at an undefined offset inside the failed
// value; callers needing resynchronisation must frame externally.
package unpack

import (
	"io"
	"unicode/utf8"
	"unsafe"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
)

// readCode reads the next type byte. The reserved byte 0xC1 fails here with
// errs.ErrReservedCode; every other byte is returned for dispatch.
func readCode(r io.Reader) (byte, error) {
	c, err := wire.ReadUint8(r)
	if err != nil {
		return 0, err
	}
	if c == code.Reserved {
		return 0, errs.ErrReservedCode
	}

	return c, nil
}

// UnpackUint8 accepts a positive fixint or the uint8 code.
func UnpackUint8(r io.Reader) (uint8, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}

	switch code.Classify(c) {
	case code.KindPosFixInt:
		return code.FixPayload(c), nil
	case code.KindUint8:
		return wire.ReadUint8(r)
	default:
		return 0, errs.NewTypeMismatch(c, "uint8")
	}
}

// UnpackUint16 accepts only the uint16 code; narrower encodings are not
// widened.
func UnpackUint16(r io.Reader) (uint16, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindUint16 {
		return 0, errs.NewTypeMismatch(c, "uint16")
	}

	return wire.ReadUint16(r)
}

// UnpackUint32 accepts only the uint32 code.
func UnpackUint32(r io.Reader) (uint32, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindUint32 {
		return 0, errs.NewTypeMismatch(c, "uint32")
	}

	return wire.ReadUint32(r)
}

// UnpackUint64 accepts only the uint64 code.
func UnpackUint64(r io.Reader) (uint64, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindUint64 {
		return 0, errs.NewTypeMismatch(c, "uint64")
	}

	return wire.ReadUint64(r)
}

// UnpackInt8 accepts a negative fixint or the int8 code.
func UnpackInt8(r io.Reader) (int8, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}

	switch code.Classify(c) {
	case code.KindNegFixInt:
		return int8(c), nil
	case code.KindInt8:
		return wire.ReadInt8(r)
	default:
		return 0, errs.NewTypeMismatch(c, "int8")
	}
}

// UnpackInt16 accepts only the int16 code.
func UnpackInt16(r io.Reader) (int16, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindInt16 {
		return 0, errs.NewTypeMismatch(c, "int16")
	}

	return wire.ReadInt16(r)
}

// UnpackInt32 accepts only the int32 code.
func UnpackInt32(r io.Reader) (int32, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindInt32 {
		return 0, errs.NewTypeMismatch(c, "int32")
	}

	return wire.ReadInt32(r)
}

// UnpackInt64 accepts only the int64 code.
func UnpackInt64(r io.Reader) (int64, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindInt64 {
		return 0, errs.NewTypeMismatch(c, "int64")
	}

	return wire.ReadInt64(r)
}

// UnpackFloat32 accepts only the float32 code.
func UnpackFloat32(r io.Reader) (float32, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindFloat32 {
		return 0, errs.NewTypeMismatch(c, "float32")
	}

	return wire.ReadFloat32(r)
}

// UnpackFloat64 accepts only the float64 code.
func UnpackFloat64(r io.Reader) (float64, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if code.Classify(c) != code.KindFloat64 {
		return 0, errs.NewTypeMismatch(c, "float64")
	}

	return wire.ReadFloat64(r)
}

// UnpackBool accepts the true or false code.
func UnpackBool(r io.Reader) (bool, error) {
	c, err := readCode(r)
	if err != nil {
		return false, err
	}

	switch code.Classify(c) {
	case code.KindTrue:
		return true, nil
	case code.KindFalse:
		return false, nil
	default:
		return false, errs.NewTypeMismatch(c, "bool")
	}
}

// UnpackNil accepts the nil code; any other code is a type mismatch.
func UnpackNil(r io.Reader) error {
	c, err := readCode(r)
	if err != nil {
		return err
	}
	if code.Classify(c) != code.KindNil {
		return errs.NewTypeMismatch(c, "nil")
	}

	return nil
}

// UnpackStrHeader accepts fixstr, str8, str16 or str32 and returns the
// payload byte length.
func UnpackStrHeader(r io.Reader) (int, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}

	switch code.Classify(c) {
	case code.KindFixStr:
		return int(code.FixPayload(c)), nil
	case code.KindStr8:
		n, err := wire.ReadUint8(r)

		return int(n), err
	case code.KindStr16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	case code.KindStr32:
		n, err := wire.ReadUint32(r)

		return int(n), err
	default:
		return 0, errs.NewTypeMismatch(c, "str header")
	}
}

// UnpackBinHeader accepts bin8, bin16 or bin32 and returns the payload byte
// length.
func UnpackBinHeader(r io.Reader) (int, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}

	switch code.Classify(c) {
	case code.KindBin8:
		n, err := wire.ReadUint8(r)

		return int(n), err
	case code.KindBin16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	case code.KindBin32:
		n, err := wire.ReadUint32(r)

		return int(n), err
	default:
		return 0, errs.NewTypeMismatch(c, "bin header")
	}
}

// UnpackArrayHeader accepts fixarray, array16 or array32 and returns the
// element count. The array32 count is a full 32-bit length.
func UnpackArrayHeader(r io.Reader) (int, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}

	switch code.Classify(c) {
	case code.KindFixArray:
		return int(code.FixPayload(c)), nil
	case code.KindArray16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	case code.KindArray32:
		n, err := wire.ReadUint32(r)

		return int(n), err
	default:
		return 0, errs.NewTypeMismatch(c, "array header")
	}
}

// UnpackMapHeader accepts fixmap, map16 or map32 and returns the entry
// count. The map32 count is a full 32-bit length.
func UnpackMapHeader(r io.Reader) (int, error) {
	c, err := readCode(r)
	if err != nil {
		return 0, err
	}

	switch code.Classify(c) {
	case code.KindFixMap:
		return int(code.FixPayload(c)), nil
	case code.KindMap16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	case code.KindMap32:
		n, err := wire.ReadUint32(r)

		return int(n), err
	default:
		return 0, errs.NewTypeMismatch(c, "map header")
	}
}

// UnpackExtHeader accepts any fixext or ext code and returns the payload
// length and the extension type tag. For fixext codes the length is implicit
// in the code.
func UnpackExtHeader(r io.Reader) (length int, extType int8, err error) {
	c, err := readCode(r)
	if err != nil {
		return 0, 0, err
	}

	switch code.Classify(c) {
	case code.KindFixExt1:
		length = 1
	case code.KindFixExt2:
		length = 2
	case code.KindFixExt4:
		length = 4
	case code.KindFixExt8:
		length = 8
	case code.KindFixExt16:
		length = 16
	case code.KindExt8:
		n, err := wire.ReadUint8(r)
		if err != nil {
			return 0, 0, err
		}
		length = int(n)
	case code.KindExt16:
		n, err := wire.ReadUint16(r)
		if err != nil {
			return 0, 0, err
		}
		length = int(n)
	case code.KindExt32:
		n, err := wire.ReadUint32(r)
		if err != nil {
			return 0, 0, err
		}
		length = int(n)
	default:
		return 0, 0, errs.NewTypeMismatch(c, "ext header")
	}

	extType, err = wire.ReadInt8(r)
	if err != nil {
		return 0, 0, err
	}

	return length, extType, nil
}

// UnpackData reads exactly length payload bytes into a fresh buffer.
func UnpackData(r io.Reader, length int) ([]byte, error) {
	return wire.ReadFull(r, length)
}

// UnpackDataRef borrows exactly length payload bytes from the reader's
// backing slice, advancing the cursor without a copy.
func UnpackDataRef(r BufferedRead, length int) ([]byte, error) {
	buf, err := r.FillBuf()
	if err != nil {
		return nil, errs.ErrInvalidData
	}
	if length > len(buf) {
		return nil, errs.ErrUnexpectedEOF
	}

	buf = buf[:length:length]
	r.Consume(length)

	return buf, nil
}

// UnpackBin decodes a binary payload into a fresh buffer.
func UnpackBin(r io.Reader) ([]byte, error) {
	length, err := UnpackBinHeader(r)
	if err != nil {
		return nil, err
	}

	return UnpackData(r, length)
}

// UnpackBinRef decodes a binary payload as a borrowed slice of the reader's
// backing array.
func UnpackBinRef(r BufferedRead) ([]byte, error) {
	length, err := UnpackBinHeader(r)
	if err != nil {
		return nil, err
	}

	return UnpackDataRef(r, length)
}

// UnpackStr decodes a string payload, requiring valid UTF-8. Invalid bytes
// fail with errs.ErrInvalidData; use UnpackValue to keep such payloads.
func UnpackStr(r io.Reader) (string, error) {
	length, err := UnpackStrHeader(r)
	if err != nil {
		return "", err
	}

	buf, err := UnpackData(r, length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errs.ErrInvalidUtf8
	}

	return string(buf), nil
}

// UnpackStrRef decodes a string payload as a borrowed string over the
// reader's backing array, requiring valid UTF-8. No copy is made; the
// string is valid for the lifetime of the backing array.
func UnpackStrRef(r BufferedRead) (string, error) {
	length, err := UnpackStrHeader(r)
	if err != nil {
		return "", err
	}

	buf, err := UnpackDataRef(r, length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errs.ErrInvalidUtf8
	}
	if len(buf) == 0 {
		return "", nil
	}

	return unsafe.String(unsafe.SliceData(buf), len(buf)), nil
}

// UnpackFixExt1 accepts the fixext1 code and returns the type tag and the
// single payload byte.
func UnpackFixExt1(r io.Reader) (int8, uint8, error) {
	if err := expectCode(r, code.KindFixExt1, "fixext1"); err != nil {
		return 0, 0, err
	}

	ty, err := wire.ReadInt8(r)
	if err != nil {
		return 0, 0, err
	}

	v, err := wire.ReadUint8(r)
	if err != nil {
		return 0, 0, err
	}

	return ty, v, nil
}

// UnpackFixExt2 accepts the fixext2 code.
func UnpackFixExt2(r io.Reader) (int8, [2]byte, error) {
	var buf [2]byte
	ty, err := unpackFixExt(r, code.KindFixExt2, "fixext2", buf[:])

	return ty, buf, err
}

// UnpackFixExt4 accepts the fixext4 code.
func UnpackFixExt4(r io.Reader) (int8, [4]byte, error) {
	var buf [4]byte
	ty, err := unpackFixExt(r, code.KindFixExt4, "fixext4", buf[:])

	return ty, buf, err
}

// UnpackFixExt8 accepts the fixext8 code.
func UnpackFixExt8(r io.Reader) (int8, [8]byte, error) {
	var buf [8]byte
	ty, err := unpackFixExt(r, code.KindFixExt8, "fixext8", buf[:])

	return ty, buf, err
}

// UnpackFixExt16 accepts the fixext16 code.
func UnpackFixExt16(r io.Reader) (int8, [16]byte, error) {
	var buf [16]byte
	ty, err := unpackFixExt(r, code.KindFixExt16, "fixext16", buf[:])

	return ty, buf, err
}

func expectCode(r io.Reader, want code.Kind, name string) error {
	c, err := readCode(r)
	if err != nil {
		return err
	}
	if code.Classify(c) != want {
		return errs.NewTypeMismatch(c, name)
	}

	return nil
}

func unpackFixExt(r io.Reader, want code.Kind, name string, buf []byte) (int8, error) {
	if err := expectCode(r, want, name); err != nil {
		return 0, err
	}

	ty, err := wire.ReadInt8(r)
	if err != nil {
		return 0, err
	}

	return ty, wire.ReadInto(r, buf)
}
