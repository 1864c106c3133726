package codec

import (
	"github.com/arloliu/mpack/errs"
)

// Ext is the sentinel type that routes a value through the extension
// encoding instead of the regular data-model mapping. Encoding emits an ext
// header with the type tag followed by the payload; decoding accepts any
// fixext or ext shape.
//
// The zero width means "narrowest": the header is chosen from len(Data) the
// same way pack.PackExtHeader chooses it. The constructors pin an explicit
// wire shape and validate the payload length against it.
type Ext struct {
	Type int8
	Data []byte

	// width pins the header shape; 0 selects by payload length.
	width extWidth
}

type extWidth uint8

const (
	extWidthAuto extWidth = iota
	extWidthFix1
	extWidthFix2
	extWidthFix4
	extWidthFix8
	extWidthFix16
	extWidth8
	extWidth16
	extWidth32
)

var extWidthLens = map[extWidth]int{
	extWidthFix1:  1,
	extWidthFix2:  2,
	extWidthFix4:  4,
	extWidthFix8:  8,
	extWidthFix16: 16,
}

// NewExt creates an Ext whose wire shape is chosen from the payload length.
func NewExt(typ int8, data []byte) Ext {
	return Ext{Type: typ, Data: data}
}

func fixExt(w extWidth, typ int8, data []byte) (Ext, error) {
	if len(data) != extWidthLens[w] {
		return Ext{}, errs.ErrInvalidSerializeMethod
	}

	return Ext{Type: typ, Data: data, width: w}, nil
}

// FixExt1 creates a fixext1 Ext; the payload must be exactly 1 byte.
func FixExt1(typ int8, data []byte) (Ext, error) { return fixExt(extWidthFix1, typ, data) }

// FixExt2 creates a fixext2 Ext; the payload must be exactly 2 bytes.
func FixExt2(typ int8, data []byte) (Ext, error) { return fixExt(extWidthFix2, typ, data) }

// FixExt4 creates a fixext4 Ext; the payload must be exactly 4 bytes.
func FixExt4(typ int8, data []byte) (Ext, error) { return fixExt(extWidthFix4, typ, data) }

// FixExt8 creates a fixext8 Ext; the payload must be exactly 8 bytes.
func FixExt8(typ int8, data []byte) (Ext, error) { return fixExt(extWidthFix8, typ, data) }

// FixExt16 creates a fixext16 Ext; the payload must be exactly 16 bytes.
func FixExt16(typ int8, data []byte) (Ext, error) { return fixExt(extWidthFix16, typ, data) }

// Ext8 creates an ext8 Ext; the payload must fit an 8-bit length.
func Ext8(typ int8, data []byte) (Ext, error) {
	if len(data) > 0xff {
		return Ext{}, errs.ErrInvalidSerializeMethod
	}

	return Ext{Type: typ, Data: data, width: extWidth8}, nil
}

// Ext16 creates an ext16 Ext; the payload must fit a 16-bit length.
func Ext16(typ int8, data []byte) (Ext, error) {
	if len(data) > 0xffff {
		return Ext{}, errs.ErrInvalidSerializeMethod
	}

	return Ext{Type: typ, Data: data, width: extWidth16}, nil
}

// Ext32 creates an ext32 Ext.
func Ext32(typ int8, data []byte) (Ext, error) {
	return Ext{Type: typ, Data: data, width: extWidth32}, nil
}

// Variant expresses a named alternative, the enum shape of the data model.
// It encodes as a single-entry map from the variant name to its contents:
//
//   - nil contents: unit variant, the name maps to Nil
//   - []any contents: tuple variant, the name maps to an array
//   - struct or map contents: struct variant, the name maps to a map
//   - anything else: newtype variant, the name maps to the value itself
type Variant struct {
	Name  string
	Value any
}
