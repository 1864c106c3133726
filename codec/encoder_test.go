package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/value"
)

type testUnit struct{}

type testPoint struct {
	H uint8  `msgpack:"h"`
	O string `msgpack:"o"`
}

type testTagged struct {
	Keep    int `msgpack:"kept"`
	Skipped int `msgpack:"-"`
	Plain   int
	hidden  int //nolint:unused
}

func TestMarshalScalars(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want []byte
	}{
		{"nil", nil, []byte{0xc0}},
		{"true", true, []byte{0xc3}},
		{"false", false, []byte{0xc2}},
		{"small int", 1, []byte{0x01}},
		{"boundary int", 127, []byte{0x7f}},
		{"uint8 range", 128, []byte{0xcc, 0x80}},
		{"uint8 max", uint8(255), []byte{0xcc, 0xff}},
		{"negative", -1, []byte{0xff}},
		{"int8 range", -33, []byte{0xd0, 0xdf}},
		{"float32", float32(1.5), []byte{0xca, 0x3f, 0xc0, 0x00, 0x00}},
		{"float64", 1.5, []byte{0xcb, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0}},
		{"string", "aaa", []byte{0xa3, 0x61, 0x61, 0x61}},
		{"bytes", []byte{1, 2}, []byte{0xc4, 0x02, 0x01, 0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.v)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMarshalOptional(t *testing.T) {
	var none *uint8
	got, err := Marshal(none)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc0}, got)

	one := uint8(1)
	got, err = Marshal(&one)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, got)
}

func TestMarshalSequences(t *testing.T) {
	got, err := Marshal([]int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte{0x93, 0x01, 0x02, 0x03}, got)

	got, err = Marshal([3]int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte{0x93, 0x01, 0x02, 0x03}, got)
}

// TestMarshalStruct covers the named-field mapping: a map from field names
// to values, in declaration order.
func TestMarshalStruct(t *testing.T) {
	got, err := Marshal(testPoint{H: 1, O: "o"})
	require.NoError(t, err)
	require.Equal(t, []byte{0x82, 0xa1, 0x68, 0x01, 0xa1, 0x6f, 0xa1, 0x6f}, got)
}

func TestMarshalUnitStruct(t *testing.T) {
	got, err := Marshal(testUnit{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x90}, got)
}

func TestMarshalTagHandling(t *testing.T) {
	got, err := Marshal(testTagged{Keep: 1, Skipped: 2, Plain: 3})
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x82,
		0xa4, 'k', 'e', 'p', 't', 0x01,
		0xa5, 'P', 'l', 'a', 'i', 'n', 0x03,
	}, got)
}

func TestMarshalMap(t *testing.T) {
	got, err := Marshal(map[string]uint8{"a": 1})
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0xa1, 0x61, 0x01}, got)

	var nilMap map[string]int
	got, err = Marshal(nilMap)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc0}, got)
}

func TestMarshalVariants(t *testing.T) {
	// Unit variant.
	got, err := Marshal(Variant{Name: "A"})
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0xa1, 0x41, 0xc0}, got)

	// Newtype variant.
	got, err = Marshal(Variant{Name: "A", Value: 10})
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0xa1, 0x41, 0x0a}, got)

	// Tuple variant A(1,2) of the enum.
	got, err = Marshal(Variant{Name: "A", Value: []any{1, 2}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0xa1, 0x41, 0x92, 0x01, 0x02}, got)

	// Struct variant.
	got, err = Marshal(Variant{Name: "A", Value: struct {
		A uint8 `msgpack:"a"`
	}{A: 1}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0xa1, 0x41, 0x81, 0xa1, 0x61, 0x01}, got)
}

func TestMarshalExt(t *testing.T) {
	// Auto width picks the narrowest shape.
	got, err := Marshal(NewExt(5, []byte{1, 2, 3, 4}))
	require.NoError(t, err)
	require.Equal(t, []byte{0xd6, 0x05, 1, 2, 3, 4}, got)

	// A pinned shape emits exactly that header.
	x, err := Ext8(5, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	got, err = Marshal(x)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc7, 0x04, 0x05, 1, 2, 3, 4}, got)

	// Fixed-width constructors validate the payload length.
	_, err = FixExt4(5, []byte{1, 2})
	require.ErrorIs(t, err, errs.ErrInvalidSerializeMethod)
}

func TestMarshalTime(t *testing.T) {
	got, err := Marshal(time.Unix(1, 0))
	require.NoError(t, err)
	require.Equal(t, []byte{0xd6, 0xff, 0x00, 0x00, 0x00, 0x01}, got)
}

func TestMarshalValueTree(t *testing.T) {
	got, err := Marshal(value.Array{value.FromUint(uint8(1)), value.Nil{}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x92, 0x01, 0xc0}, got)
}

// TestMarshalUnsizedSequence verifies a channel, the one Go sequence with no
// knowable length, is rejected.
func TestMarshalUnsizedSequence(t *testing.T) {
	_, err := Marshal(make(chan int))
	require.ErrorIs(t, err, errs.ErrMustHaveLength)
}

func TestMarshalUnsupported(t *testing.T) {
	_, err := Marshal(complex(1, 2))
	require.Error(t, err)
}

type selfMarshaler struct {
	n uint8
}

func (s selfMarshaler) MarshalMsgpack(enc *Encoder) error {
	return enc.Packer().PackUint8(s.n)
}

func TestMarshalerInterface(t *testing.T) {
	got, err := Marshal(selfMarshaler{n: 9})
	require.NoError(t, err)
	require.Equal(t, []byte{0xcc, 0x09}, got)
}
