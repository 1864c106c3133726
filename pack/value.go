package pack

import (
	"fmt"
	"io"

	"github.com/arloliu/mpack/value"
)

// PackValue encodes a value tree. Integers use the fit packers in their own
// sign domain, floats keep their stored width, and string payloads that
// carry invalid UTF-8 emit their raw bytes unchanged, so a decoded tree
// re-encodes bit-identically.
func PackValue(w io.Writer, val value.Value) error {
	switch v := val.(type) {
	case value.Nil:
		return PackNil(w)
	case value.Boolean:
		return PackBool(w, bool(v))
	case value.Integer:
		if u, ok := v.Uint64(); ok {
			return PackFromUint64(w, u)
		}
		i, _ := v.Int64()

		return PackFromInt64(w, i)
	case value.Float:
		if f32, ok := v.Float32(); ok {
			return PackFloat32(w, f32)
		}

		return PackFloat64(w, v.Float64())
	case value.Binary:
		return PackBin(w, v)
	case value.String:
		if s, ok := v.Str(); ok {
			return PackStr(w, s)
		}

		return PackStrFromBytes(w, v.Bytes())
	case value.Array:
		if err := PackArrayHeader(w, len(v)); err != nil {
			return err
		}
		for _, elem := range v {
			if err := PackValue(w, elem); err != nil {
				return err
			}
		}

		return nil
	case value.Map:
		if err := PackMapHeader(w, len(v)); err != nil {
			return err
		}
		for _, p := range v {
			if err := PackValue(w, p.Key); err != nil {
				return err
			}
			if err := PackValue(w, p.Val); err != nil {
				return err
			}
		}

		return nil
	case value.Extension:
		if err := PackExtHeader(w, v.Type, len(v.Data)); err != nil {
			return err
		}

		return WritePayload(w, v.Data)
	case value.Timestamp:
		return PackTimestamp(w, v.Sec, v.Nsec)
	default:
		return fmt.Errorf("unsupported value type %T", val)
	}
}
