// Package codec bridges Go values and the MessagePack wire format.
//
// Marshal walks a Go value with reflection and emits the corresponding
// encoding; Unmarshal drives the reverse direction through a peeking reader
// that looks at the next type byte before deciding how to decode it.
//
// # Data-model mapping
//
//	bool, integers, floats, string  scalar packs (integers use fit packers)
//	[]byte                          bin
//	nil pointer / nil interface     nil
//	pointer                         the pointed-to value
//	slice, array                    array header + elements
//	map                             map header + key/value pairs
//	struct                          map header + "field name": value pairs
//	value.Value                     the tree as-is
//	time.Time                       timestamp extension
//	codec.Ext                       ext header + payload
//	codec.Variant                   single-entry map from name to contents
//
// Struct fields honor the `msgpack` tag: `msgpack:"name"` renames a field
// and `msgpack:"-"` skips it; unexported fields are always skipped.
//
// Types implementing Marshaler or Unmarshaler take over their own encoding.
package codec

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"time"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/pool"
	"github.com/arloliu/mpack/internal/wire"
	"github.com/arloliu/mpack/pack"
	"github.com/arloliu/mpack/value"
)

// Marshaler lets a type drive its own encoding through the Encoder.
type Marshaler interface {
	MarshalMsgpack(enc *Encoder) error
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v any) ([]byte, error) {
	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	if err := NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Encoder emits the MessagePack encoding of Go values onto a writer.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used
// by a single goroutine at a time.
type Encoder struct {
	p *Packer
	w io.Writer
}

// Packer is re-exported so Marshaler implementations see the full pack
// method suite without importing the pack package.
type Packer = pack.Packer

// NewEncoder creates an Encoder over the given writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{p: pack.NewPacker(w), w: w}
}

// Packer exposes the underlying stream packer for manual emission.
func (e *Encoder) Packer() *Packer {
	return e.p
}

// Encode emits one value.
func (e *Encoder) Encode(v any) error {
	if v == nil {
		return e.p.PackNil()
	}

	// Sentinel and data-model types take their dedicated routes before
	// generic reflection.
	switch t := v.(type) {
	case Marshaler:
		return t.MarshalMsgpack(e)
	case value.Value:
		return e.p.PackValue(t)
	case Ext:
		return e.encodeExt(t)
	case Variant:
		return e.encodeVariant(t)
	case time.Time:
		return e.p.PackTimestamp(t.Unix(), uint32(t.Nanosecond()))
	case []byte:
		return e.p.PackBin(t)
	}

	return e.encodeReflect(reflect.ValueOf(v))
}

func (e *Encoder) encodeReflect(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Bool:
		return e.p.PackBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.p.PackInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.p.PackUint(rv.Uint())
	case reflect.Float32:
		return e.p.PackFloat32(float32(rv.Float()))
	case reflect.Float64:
		return e.p.PackFloat64(rv.Float())
	case reflect.String:
		return e.p.PackStr(rv.String())
	case reflect.Slice, reflect.Array:
		return e.encodeSequence(rv)
	case reflect.Map:
		return e.encodeMap(rv)
	case reflect.Struct:
		return e.encodeStruct(rv)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return e.p.PackNil()
		}

		return e.Encode(rv.Elem().Interface())
	case reflect.Chan:
		// A channel is a sequence of unknown length; headers must announce
		// their count up front.
		return errs.ErrMustHaveLength
	default:
		return fmt.Errorf("msgpack: unsupported type %s", rv.Type())
	}
}

func (e *Encoder) encodeSequence(rv reflect.Value) error {
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return e.p.PackBin(rv.Bytes())
	}

	n := rv.Len()
	if err := e.p.PackArrayHeader(n); err != nil {
		return err
	}
	for i := range n {
		if err := e.Encode(rv.Index(i).Interface()); err != nil {
			return err
		}
	}

	return nil
}

func (e *Encoder) encodeMap(rv reflect.Value) error {
	if rv.IsNil() {
		return e.p.PackNil()
	}

	if err := e.p.PackMapHeader(rv.Len()); err != nil {
		return err
	}

	iter := rv.MapRange()
	for iter.Next() {
		if err := e.Encode(iter.Key().Interface()); err != nil {
			return err
		}
		if err := e.Encode(iter.Value().Interface()); err != nil {
			return err
		}
	}

	return nil
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	fields := cachedFields(rv.Type())

	// A fieldless struct is the unit value and emits an empty array.
	if len(fields) == 0 {
		return e.p.PackArrayHeader(0)
	}

	if err := e.p.PackMapHeader(len(fields)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := e.p.PackStr(f.name); err != nil {
			return err
		}
		if err := e.Encode(rv.Field(f.index).Interface()); err != nil {
			return err
		}
	}

	return nil
}

// encodeVariant emits the enum shapes: a single-entry map from the variant
// name to its contents.
func (e *Encoder) encodeVariant(v Variant) error {
	if err := e.p.PackMapHeader(1); err != nil {
		return err
	}
	if err := e.p.PackStr(v.Name); err != nil {
		return err
	}

	switch contents := v.Value.(type) {
	case nil:
		// Unit variant.
		return e.p.PackNil()
	case []any:
		// Tuple variant.
		if err := e.p.PackArrayHeader(len(contents)); err != nil {
			return err
		}
		for _, elem := range contents {
			if err := e.Encode(elem); err != nil {
				return err
			}
		}

		return nil
	default:
		// Struct variants arrive as structs or maps and encode as maps via
		// the regular mapping; everything else is a newtype variant.
		return e.Encode(v.Value)
	}
}

// encodeExt emits the ext header and payload. A pinned width emits exactly
// that header shape; auto width selects the narrowest like pack.PackExtHeader.
func (e *Encoder) encodeExt(x Ext) error {
	if x.width == extWidthAuto {
		if err := e.p.PackExtHeader(x.Type, len(x.Data)); err != nil {
			return err
		}

		return e.p.WritePayload(x.Data)
	}

	if want, ok := extWidthLens[x.width]; ok {
		if len(x.Data) != want {
			return errs.ErrInvalidSerializeMethod
		}
	}

	switch x.width {
	case extWidthFix1:
		if err := wire.WriteUint8(e.w, code.FixExt1); err != nil {
			return err
		}
	case extWidthFix2:
		if err := wire.WriteUint8(e.w, code.FixExt2); err != nil {
			return err
		}
	case extWidthFix4:
		if err := wire.WriteUint8(e.w, code.FixExt4); err != nil {
			return err
		}
	case extWidthFix8:
		if err := wire.WriteUint8(e.w, code.FixExt8); err != nil {
			return err
		}
	case extWidthFix16:
		if err := wire.WriteUint8(e.w, code.FixExt16); err != nil {
			return err
		}
	case extWidth8:
		if len(x.Data) > math.MaxUint8 {
			return errs.ErrInvalidSerializeMethod
		}
		if err := wire.WriteUint8(e.w, code.Ext8); err != nil {
			return err
		}
		if err := wire.WriteUint8(e.w, uint8(len(x.Data))); err != nil {
			return err
		}
	case extWidth16:
		if len(x.Data) > math.MaxUint16 {
			return errs.ErrInvalidSerializeMethod
		}
		if err := wire.WriteUint8(e.w, code.Ext16); err != nil {
			return err
		}
		if err := wire.WriteUint16(e.w, uint16(len(x.Data))); err != nil {
			return err
		}
	case extWidth32:
		if err := wire.WriteUint8(e.w, code.Ext32); err != nil {
			return err
		}
		if err := wire.WriteUint32(e.w, uint32(len(x.Data))); err != nil {
			return err
		}
	default:
		return errs.ErrInvalidSerializeMethod
	}

	if err := wire.WriteInt8(e.w, x.Type); err != nil {
		return err
	}

	return e.p.WritePayload(x.Data)
}
