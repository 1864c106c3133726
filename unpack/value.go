package unpack

import (
	"io"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/endian"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
	"github.com/arloliu/mpack/value"
)

// UnpackValue decodes the next complete element into an owned value tree.
// Arrays and maps recurse for exactly the announced number of elements.
// String payloads are validated as UTF-8; invalid payloads keep their raw
// bytes so the tree round-trips bit-identically. Extension payloads with
// type tag -1 and length 4, 8 or 12 materialise as Timestamp; detection is
// local and never fails, any other shape stays Extension.
func UnpackValue(r io.Reader) (value.Value, error) {
	c, err := readCode(r)
	if err != nil {
		return nil, err
	}

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
	case code.KindFixStr, code.KindStr8, code.KindStr16, code.KindStr32:
		length, err := strLen(r, c)
		if err != nil {
			return nil, err
		}

		return unpackStrValue(r, length)
	case code.KindBin8, code.KindBin16, code.KindBin32:
		length, err := binLen(r, c)
		if err != nil {
			return nil, err
		}

		buf, err := UnpackData(r, length)

		return value.Binary(buf), err
	case code.KindFixArray, code.KindArray16, code.KindArray32:
		length, err := arrayLen(r, c)
		if err != nil {
			return nil, err
		}

		return unpackArrayValue(r, length)
	case code.KindFixMap, code.KindMap16, code.KindMap32:
		length, err := mapLen(r, c)
		if err != nil {
			return nil, err
		}

		return unpackMapValue(r, length)
	case code.KindFixExt1, code.KindFixExt2, code.KindFixExt4, code.KindFixExt8,
		code.KindFixExt16, code.KindExt8, code.KindExt16, code.KindExt32:
		length, err := extLen(r, c)
		if err != nil {
			return nil, err
		}

		return unpackExtValue(r, length)
	default:
		return nil, errs.ErrReservedCode
	}
}

// strLen resolves the payload length for an already-consumed string code.
func strLen(r io.Reader, c byte) (int, error) {
	switch code.Classify(c) {
	case code.KindFixStr:
		return int(code.FixPayload(c)), nil
	case code.KindStr8:
		n, err := wire.ReadUint8(r)

		return int(n), err
	case code.KindStr16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	default:
		n, err := wire.ReadUint32(r)

		return int(n), err
	}
}

func binLen(r io.Reader, c byte) (int, error) {
	switch code.Classify(c) {
	case code.KindBin8:
		n, err := wire.ReadUint8(r)

		return int(n), err
	case code.KindBin16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	default:
		n, err := wire.ReadUint32(r)

		return int(n), err
	}
}

func arrayLen(r io.Reader, c byte) (int, error) {
	switch code.Classify(c) {
	case code.KindFixArray:
		return int(code.FixPayload(c)), nil
	case code.KindArray16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	default:
		n, err := wire.ReadUint32(r)

		return int(n), err
	}
}

func mapLen(r io.Reader, c byte) (int, error) {
	switch code.Classify(c) {
	case code.KindFixMap:
		return int(code.FixPayload(c)), nil
	case code.KindMap16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	default:
		n, err := wire.ReadUint32(r)

		return int(n), err
	}
}

func extLen(r io.Reader, c byte) (int, error) {
	switch code.Classify(c) {
	case code.KindFixExt1:
		return 1, nil
	case code.KindFixExt2:
		return 2, nil
	case code.KindFixExt4:
		return 4, nil
	case code.KindFixExt8:
		return 8, nil
	case code.KindFixExt16:
		return 16, nil
	case code.KindExt8:
		n, err := wire.ReadUint8(r)

		return int(n), err
	case code.KindExt16:
		n, err := wire.ReadUint16(r)

		return int(n), err
	default:
		n, err := wire.ReadUint32(r)

		return int(n), err
	}
}

func unpackStrValue(r io.Reader, length int) (value.Value, error) {
	buf, err := UnpackData(r, length)
	if err != nil {
		return nil, err
	}

	return value.FromStringBytes(buf), nil
}

func unpackArrayValue(r io.Reader, length int) (value.Value, error) {
	arr := make(value.Array, 0, length)
	for range length {
		elem, err := UnpackValue(r)
		if err != nil {
			return nil, err
		}
		arr = append(arr, elem)
	}

	return arr, nil
}

func unpackMapValue(r io.Reader, length int) (value.Value, error) {
	m := make(value.Map, 0, length)
	for range length {
		k, err := UnpackValue(r)
		if err != nil {
			return nil, err
		}
		v, err := UnpackValue(r)
		if err != nil {
			return nil, err
		}
		m = append(m, value.Pair{Key: k, Val: v})
	}

	return m, nil
}

// unpackExtValue reads the type tag and payload after the length is known,
// turning the standard timestamp shapes into Timestamp values.
func unpackExtValue(r io.Reader, length int) (value.Value, error) {
	ty, err := wire.ReadInt8(r)
	if err != nil {
		return nil, err
	}

	buf, err := UnpackData(r, length)
	if err != nil {
		return nil, err
	}

	if ts, ok := TimestampFromExt(ty, buf); ok {
		return ts, nil
	}

	return value.Extension{Type: ty, Data: buf}, nil
}

// TimestampFromExt recognises the three standard timestamp payload shapes:
// type tag -1 with a 4, 8 or 12 byte payload. Non-matching payloads are
// reported as not-a-timestamp, never as an error.
func TimestampFromExt(ty int8, payload []byte) (value.Timestamp, bool) {
	if ty != -1 {
		return value.Timestamp{}, false
	}

	engine := endian.GetBigEndianEngine()
	switch len(payload) {
	case 4:
		return value.Timestamp{Sec: int64(engine.Uint32(payload))}, true
	case 8:
		raw := engine.Uint64(payload)
		sec := raw & (1<<34 - 1)
		nsec := uint32(raw>>34) & (1<<30 - 1)

		return value.Timestamp{Sec: int64(sec), Nsec: nsec}, true
	case 12:
		nsec := engine.Uint32(payload[:4])
		sec := int64(engine.Uint64(payload[4:]))

		return value.Timestamp{Sec: sec, Nsec: nsec}, true
	default:
		return value.Timestamp{}, false
	}
}
