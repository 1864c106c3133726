package unpack

import (
	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
	"github.com/arloliu/mpack/value"
)

// UnpackValueRef is the borrowed twin of UnpackValue: string, binary and
// extension payloads are windows into the reader's backing slice, so the
// returned tree is valid only while that slice is. Timestamps are
// materialised by value, and the standard timestamp shapes (type tag -1,
// length 4, 8 or 12) decode as Timestamp rather than Extension.
func UnpackValueRef(r BufferedRead) (value.RefValue, error) {
	c, err := readCode(r)
	if err != nil {
		return nil, err
	}

	switch code.Classify(c) {
	case code.KindFixStr, code.KindStr8, code.KindStr16, code.KindStr32:
		length, err := strLen(r, c)
		if err != nil {
			return nil, err
		}

		buf, err := UnpackDataRef(r, length)
		if err != nil {
			return nil, err
		}

		return value.FromStringBytes(buf), nil
	case code.KindBin8, code.KindBin16, code.KindBin32:
		length, err := binLen(r, c)
		if err != nil {
			return nil, err
		}

		buf, err := UnpackDataRef(r, length)

		return value.Binary(buf), err
	case code.KindFixArray, code.KindArray16, code.KindArray32:
		length, err := arrayLen(r, c)
		if err != nil {
			return nil, err
		}

		return unpackArrayRef(r, length)
	case code.KindFixMap, code.KindMap16, code.KindMap32:
		length, err := mapLen(r, c)
		if err != nil {
			return nil, err
		}

		return unpackMapRef(r, length)
	case code.KindFixExt1, code.KindFixExt2, code.KindFixExt4, code.KindFixExt8,
		code.KindFixExt16, code.KindExt8, code.KindExt16, code.KindExt32:
		length, err := extLen(r, c)
		if err != nil {
			return nil, err
		}

		ty, err := wire.ReadInt8(r)
		if err != nil {
			return nil, err
		}

		buf, err := UnpackDataRef(r, length)
		if err != nil {
			return nil, err
		}

		if ts, ok := TimestampFromExt(ty, buf); ok {
			return ts, nil
		}

		return value.Extension{Type: ty, Data: buf}, nil
	case code.KindReserved:
		return nil, errs.ErrReservedCode
	default:
		// Scalars hold no payload bytes; the owned path is already
		// borrow-free.
		return unpackScalar(r, c)
	}
}

// unpackScalar decodes the scalar kinds for the borrowed walker; c has
// already been consumed.
func unpackScalar(r BufferedRead, c byte) (value.Value, error) {
	switch code.Classify(c) {
	case code.KindNil:
		return value.Nil{}, nil
	case code.KindTrue:
		return value.Boolean(true), nil
	case code.KindFalse:
		return value.Boolean(false), nil
	case code.KindPosFixInt:
		return value.NewUint(uint64(code.FixPayload(c))), nil
	case code.KindNegFixInt:
		return value.NewInt(int64(int8(c))), nil
	case code.KindUint8:
		v, err := wire.ReadUint8(r)

		return value.NewUint(uint64(v)), err
	case code.KindUint16:
		v, err := wire.ReadUint16(r)

		return value.NewUint(uint64(v)), err
	case code.KindUint32:
		v, err := wire.ReadUint32(r)

		return value.NewUint(uint64(v)), err
	case code.KindUint64:
		v, err := wire.ReadUint64(r)

		return value.NewUint(v), err
	case code.KindInt8:
		v, err := wire.ReadInt8(r)

		return value.NewInt(int64(v)), err
	case code.KindInt16:
		v, err := wire.ReadInt16(r)

		return value.NewInt(int64(v)), err
	case code.KindInt32:
		v, err := wire.ReadInt32(r)

		return value.NewInt(int64(v)), err
	case code.KindInt64:
		v, err := wire.ReadInt64(r)

		return value.NewInt(v), err
	case code.KindFloat32:
		v, err := wire.ReadFloat32(r)

		return value.NewFloat32(v), err
	case code.KindFloat64:
		v, err := wire.ReadFloat64(r)

		return value.NewFloat64(v), err
	default:
		return nil, errs.NewTypeMismatch(c, "scalar")
	}
}

func unpackArrayRef(r BufferedRead, length int) (value.RefValue, error) {
	arr := make(value.Array, 0, length)
	for range length {
		elem, err := UnpackValueRef(r)
		if err != nil {
			return nil, err
		}
		arr = append(arr, elem)
	}

	return arr, nil
}

func unpackMapRef(r BufferedRead, length int) (value.RefValue, error) {
	m := make(value.Map, 0, length)
	for range length {
		k, err := UnpackValueRef(r)
		if err != nil {
			return nil, err
		}
		v, err := UnpackValueRef(r)
		if err != nil {
			return nil, err
		}
		m = append(m, value.Pair{Key: k, Val: v})
	}

	return m, nil
}

// UnpackArray decodes a complete array of borrowed values.
func UnpackArray(r BufferedRead) (value.Array, error) {
	length, err := UnpackArrayHeader(r)
	if err != nil {
		return nil, err
	}

	arr, err := unpackArrayRef(r, length)
	if err != nil {
		return nil, err
	}

	return arr.(value.Array), nil
}

// UnpackMap decodes a complete map of borrowed key/value pairs.
func UnpackMap(r BufferedRead) (value.Map, error) {
	length, err := UnpackMapHeader(r)
	if err != nil {
		return nil, err
	}

	m, err := unpackMapRef(r, length)
	if err != nil {
		return nil, err
	}

	return m.(value.Map), nil
}
