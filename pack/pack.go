// Package pack encodes typed values into the MessagePack wire format.
//
// Two families of integer encoders are exposed. The explicit-width functions
// (PackUint16, PackInt32, ...) always emit the named code even when a
// narrower one would fit, so a schema-bound producer controls its exact wire
// shape. The fit functions (PackFromUint16, PackUint, PackInt, ...) select
// the narrowest code whose range covers the value, which is what the Value
// encoder and the reflection bridge use.
//
// Composite types are emitted as a header followed by payload writes:
//
//	pack.PackExtHeader(w, 42, len(payload))
//	pack.WritePayload(w, payload)
//
// The split lets callers stream large payloads without an intermediate copy.
//
// All functions surface i/o failures from the underlying writer wrapped with
// %w, plus domain errors reported as errs.ErrOutOfRange: a negative extension
// type tag, a timestamp out of range for a fixed-width helper, a fixint value
// outside its range, and a length too large for its header.
package pack

import (
	"io"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
)

// Width-selection boundaries. Each fit packer takes the narrowest encoding
// whose range contains the value; boundaries are inclusive on the lower edge.
const (
	uint8Min  = 1 << 7  // smallest value needing the uint8 code
	uint16Min = 1 << 8  // smallest value needing the uint16 code
	uint32Min = 1 << 16 // smallest value needing the uint32 code
	uint64Min = 1 << 32 // smallest value needing the uint64 code

	negFixIntMin = -32 // most negative value still fitting a negative fixint
	int8Min      = -128
	int16Min     = -32768
	int32Min     = -2147483648

	fixStrLimit = 1 << 5
	str8Limit   = 1 << 8
	str16Limit  = 1 << 16
	str32Limit  = 1 << 32

	bin8Limit  = 1 << 8
	bin16Limit = 1 << 16
	bin32Limit = 1 << 32

	fixArrayLimit = 1 << 4
	array16Limit  = 1 << 16
	array32Limit  = 1 << 32

	fixMapLimit = 1 << 4
	map16Limit  = 1 << 16
	map32Limit  = 1 << 32

	fixExtMax  = 16
	ext8Limit  = 1 << 8
	ext16Limit = 1 << 16
	ext32Limit = 1 << 32
)

// PackNil emits the nil code.
func PackNil(w io.Writer) error {
	return wire.WriteUint8(w, code.Nil)
}

// PackBool emits the true or false code.
func PackBool(w io.Writer, v bool) error {
	if v {
		return wire.WriteUint8(w, code.True)
	}

	return wire.WriteUint8(w, code.False)
}

// PackPosFixInt emits a positive fixint. Values >= 128 do not fit and fail
// with errs.ErrOutOfRange.
func PackPosFixInt(w io.Writer, v uint8) error {
	if v >= uint8Min {
		return errs.NewOutOfRange("positive fixint", v)
	}

	return wire.WriteUint8(w, code.PosFixInt(v))
}

// PackNegFixInt emits a negative fixint. Values outside -32..-1 fail with
// errs.ErrOutOfRange.
func PackNegFixInt(w io.Writer, v int8) error {
	if v < negFixIntMin || v > -1 {
		return errs.NewOutOfRange("negative fixint", v)
	}

	return wire.WriteUint8(w, code.NegFixInt(v))
}

// PackUint8 emits the uint8 code and v, regardless of magnitude.
func PackUint8(w io.Writer, v uint8) error {
	if err := wire.WriteUint8(w, code.Uint8); err != nil {
		return err
	}

	return wire.WriteUint8(w, v)
}

// PackUint16 emits the uint16 code and v.
func PackUint16(w io.Writer, v uint16) error {
	if err := wire.WriteUint8(w, code.Uint16); err != nil {
		return err
	}

	return wire.WriteUint16(w, v)
}

// PackUint32 emits the uint32 code and v.
func PackUint32(w io.Writer, v uint32) error {
	if err := wire.WriteUint8(w, code.Uint32); err != nil {
		return err
	}

	return wire.WriteUint32(w, v)
}

// PackUint64 emits the uint64 code and v.
func PackUint64(w io.Writer, v uint64) error {
	if err := wire.WriteUint8(w, code.Uint64); err != nil {
		return err
	}

	return wire.WriteUint64(w, v)
}

// PackFromUint8 emits v in its narrowest encoding: positive fixint below
// 128, uint8 otherwise.
func PackFromUint8(w io.Writer, v uint8) error {
	if v >= uint8Min {
		return PackUint8(w, v)
	}

	return PackPosFixInt(w, v)
}

// PackFromUint16 emits v in its narrowest encoding.
func PackFromUint16(w io.Writer, v uint16) error {
	if v >= uint16Min {
		return PackUint16(w, v)
	}

	return PackFromUint8(w, uint8(v))
}

// PackFromUint32 emits v in its narrowest encoding.
func PackFromUint32(w io.Writer, v uint32) error {
	if v >= uint32Min {
		return PackUint32(w, v)
	}

	return PackFromUint16(w, uint16(v))
}

// PackFromUint64 emits v in its narrowest encoding.
func PackFromUint64(w io.Writer, v uint64) error {
	if v >= uint64Min {
		return PackUint64(w, v)
	}

	return PackFromUint32(w, uint32(v))
}

// PackUint is PackFromUint64 under its conventional name.
func PackUint(w io.Writer, v uint64) error {
	return PackFromUint64(w, v)
}

// PackInt8 emits the int8 code and v.
func PackInt8(w io.Writer, v int8) error {
	if err := wire.WriteUint8(w, code.Int8); err != nil {
		return err
	}

	return wire.WriteInt8(w, v)
}

// PackInt16 emits the int16 code and v.
func PackInt16(w io.Writer, v int16) error {
	if err := wire.WriteUint8(w, code.Int16); err != nil {
		return err
	}

	return wire.WriteInt16(w, v)
}

// PackInt32 emits the int32 code and v.
func PackInt32(w io.Writer, v int32) error {
	if err := wire.WriteUint8(w, code.Int32); err != nil {
		return err
	}

	return wire.WriteInt32(w, v)
}

// PackInt64 emits the int64 code and v.
func PackInt64(w io.Writer, v int64) error {
	if err := wire.WriteUint8(w, code.Int64); err != nil {
		return err
	}

	return wire.WriteInt64(w, v)
}

// PackFromInt8 emits v in its narrowest encoding. Non-negative values are
// treated as unsigned of the same magnitude.
func PackFromInt8(w io.Writer, v int8) error {
	switch {
	case v >= 0:
		return wire.WriteUint8(w, uint8(v))
	case v >= negFixIntMin:
		return PackNegFixInt(w, v)
	default:
		return PackInt8(w, v)
	}
}

// PackFromInt16 emits v in its narrowest encoding.
func PackFromInt16(w io.Writer, v int16) error {
	switch {
	case v >= 0:
		return PackFromUint16(w, uint16(v))
	case v >= int8Min:
		return PackFromInt8(w, int8(v))
	default:
		return PackInt16(w, v)
	}
}

// PackFromInt32 emits v in its narrowest encoding.
func PackFromInt32(w io.Writer, v int32) error {
	switch {
	case v >= 0:
		return PackFromUint32(w, uint32(v))
	case v >= int16Min:
		return PackFromInt16(w, int16(v))
	default:
		return PackInt32(w, v)
	}
}

// PackFromInt64 emits v in its narrowest encoding.
func PackFromInt64(w io.Writer, v int64) error {
	switch {
	case v >= 0:
		return PackFromUint64(w, uint64(v))
	case v >= int32Min:
		return PackFromInt32(w, int32(v))
	default:
		return PackInt64(w, v)
	}
}

// PackInt is PackFromInt64 under its conventional name.
func PackInt(w io.Writer, v int64) error {
	return PackFromInt64(w, v)
}

// PackFloat32 emits the float32 code and v. No width promotion takes place.
func PackFloat32(w io.Writer, v float32) error {
	if err := wire.WriteUint8(w, code.Float32); err != nil {
		return err
	}

	return wire.WriteFloat32(w, v)
}

// PackFloat64 emits the float64 code and v.
func PackFloat64(w io.Writer, v float64) error {
	if err := wire.WriteUint8(w, code.Float64); err != nil {
		return err
	}

	return wire.WriteFloat64(w, v)
}

// PackStr emits v with the narrowest string header: fixstr below 32 bytes,
// then str8/str16/str32.
func PackStr(w io.Writer, v string) error {
	if err := packStrHeader(w, len(v)); err != nil {
		return err
	}

	return wire.WriteAll(w, []byte(v))
}

// PackStrFromBytes emits raw payload bytes under a string header. This is
// the re-encode path for string payloads that failed UTF-8 validation; the
// bytes emit exactly as they were received.
func PackStrFromBytes(w io.Writer, v []byte) error {
	if err := packStrHeader(w, len(v)); err != nil {
		return err
	}

	return wire.WriteAll(w, v)
}

func packStrHeader(w io.Writer, n int) error {
	switch {
	case n < fixStrLimit:
		return wire.WriteUint8(w, code.FixStr(n))
	case n < str8Limit:
		if err := wire.WriteUint8(w, code.Str8); err != nil {
			return err
		}

		return wire.WriteUint8(w, uint8(n))
	case n < str16Limit:
		if err := wire.WriteUint8(w, code.Str16); err != nil {
			return err
		}

		return wire.WriteUint16(w, uint16(n))
	case uint64(n) < str32Limit:
		if err := wire.WriteUint8(w, code.Str32); err != nil {
			return err
		}

		return wire.WriteUint32(w, uint32(n))
	default:
		return errs.NewOutOfRange("string length", n)
	}
}

// PackBin emits v with the narrowest binary header. There is no fix-range
// binary code; the minimum is bin8.
func PackBin(w io.Writer, v []byte) error {
	n := len(v)
	switch {
	case n < bin8Limit:
		if err := wire.WriteUint8(w, code.Bin8); err != nil {
			return err
		}
		if err := wire.WriteUint8(w, uint8(n)); err != nil {
			return err
		}
	case n < bin16Limit:
		if err := wire.WriteUint8(w, code.Bin16); err != nil {
			return err
		}
		if err := wire.WriteUint16(w, uint16(n)); err != nil {
			return err
		}
	case uint64(n) < bin32Limit:
		if err := wire.WriteUint8(w, code.Bin32); err != nil {
			return err
		}
		if err := wire.WriteUint32(w, uint32(n)); err != nil {
			return err
		}
	default:
		return errs.NewOutOfRange("binary length", n)
	}

	return wire.WriteAll(w, v)
}

// PackArrayHeader announces an array of length elements. The caller must
// follow with exactly that many packed values.
func PackArrayHeader(w io.Writer, length int) error {
	switch {
	case length < fixArrayLimit:
		return wire.WriteUint8(w, code.FixArray(length))
	case length < array16Limit:
		if err := wire.WriteUint8(w, code.Array16); err != nil {
			return err
		}

		return wire.WriteUint16(w, uint16(length))
	case uint64(length) < array32Limit:
		if err := wire.WriteUint8(w, code.Array32); err != nil {
			return err
		}

		return wire.WriteUint32(w, uint32(length))
	default:
		return errs.NewOutOfRange("array length", length)
	}
}

// PackMapHeader announces a map of length entries. The caller must follow
// with exactly 2*length packed values, alternating key and value.
func PackMapHeader(w io.Writer, length int) error {
	switch {
	case length < fixMapLimit:
		return wire.WriteUint8(w, code.FixMap(length))
	case length < map16Limit:
		if err := wire.WriteUint8(w, code.Map16); err != nil {
			return err
		}

		return wire.WriteUint16(w, uint16(length))
	case uint64(length) < map32Limit:
		if err := wire.WriteUint8(w, code.Map32); err != nil {
			return err
		}

		return wire.WriteUint32(w, uint32(length))
	default:
		return errs.NewOutOfRange("map length", length)
	}
}

// PackExtHeader announces an extension payload of length bytes with the
// given application type tag. Lengths 1, 2, 4, 8 and 16 use the fixext
// codes, whose length is implicit and not re-emitted; other lengths use
// ext8/ext16/ext32 with an explicit length field.
//
// Negative type tags are reserved by the format (-1 belongs to the standard
// timestamp encoder) and fail with errs.ErrOutOfRange.
//
// The caller must follow with exactly length payload bytes via WritePayload.
func PackExtHeader(w io.Writer, extType int8, length int) error {
	if extType < 0 {
		return errs.NewOutOfRange("ext type tag", extType)
	}

	switch {
	case length < 0:
		return errs.NewOutOfRange("ext length", length)
	case length == 1:
		if err := wire.WriteUint8(w, code.FixExt1); err != nil {
			return err
		}
	case length == 2:
		if err := wire.WriteUint8(w, code.FixExt2); err != nil {
			return err
		}
	case length == 4:
		if err := wire.WriteUint8(w, code.FixExt4); err != nil {
			return err
		}
	case length == 8:
		if err := wire.WriteUint8(w, code.FixExt8); err != nil {
			return err
		}
	case length == 16:
		if err := wire.WriteUint8(w, code.FixExt16); err != nil {
			return err
		}
	case length < ext8Limit:
		if err := wire.WriteUint8(w, code.Ext8); err != nil {
			return err
		}
		if err := wire.WriteUint8(w, uint8(length)); err != nil {
			return err
		}
	case length < ext16Limit:
		if err := wire.WriteUint8(w, code.Ext16); err != nil {
			return err
		}
		if err := wire.WriteUint16(w, uint16(length)); err != nil {
			return err
		}
	case uint64(length) < ext32Limit:
		if err := wire.WriteUint8(w, code.Ext32); err != nil {
			return err
		}
		if err := wire.WriteUint32(w, uint32(length)); err != nil {
			return err
		}
	default:
		return errs.NewOutOfRange("ext length", length)
	}

	return wire.WriteInt8(w, extType)
}

// WritePayload writes raw payload bytes after a header emitted separately.
func WritePayload(w io.Writer, v []byte) error {
	return wire.WriteAll(w, v)
}
