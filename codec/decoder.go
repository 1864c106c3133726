package codec

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
	"github.com/arloliu/mpack/unpack"
	"github.com/arloliu/mpack/value"
)

// Unmarshaler lets a type drive its own decoding through the Decoder.
type Unmarshaler interface {
	UnmarshalMsgpack(dec *Decoder) error
}

// Unmarshal decodes one value from data into v, which must be a non-nil
// pointer. Byte-slice destinations may alias data; copy them if they must
// outlive it.
func Unmarshal(data []byte, v any) error {
	return NewDecoder(unpack.NewSliceReader(data)).Decode(v)
}

// Decoder decodes MessagePack elements into Go values.
//
// The decoder reads through a peeking reader: the first examination of an
// element fetches its type byte and holds it, so the generic any path can
// route on the code before anything is consumed. Typed decodes then replay
// the held byte transparently. When the underlying reader has the
// BufferedRead capability, byte-slice decodes borrow from its backing array
// instead of copying.
//
// Note: The Decoder is NOT thread-safe. Each decoder instance should be used
// by a single goroutine at a time.
type Decoder struct {
	pr       *peekReader
	zeroCopy bool
}

// NewDecoder creates a Decoder over the given reader.
func NewDecoder(r io.Reader) *Decoder {
	_, buffered := r.(unpack.BufferedRead)

	return &Decoder{
		pr:       &peekReader{r: r},
		zeroCopy: buffered,
	}
}

// peekReader remembers one lookahead type byte. Peeks are idempotent; a
// consume clears the held byte; reads with no held byte forward unmodified.
type peekReader struct {
	r    io.Reader
	code byte
	held bool
}

// peekCode fetches the next type byte without consuming it.
func (p *peekReader) peekCode() (byte, error) {
	if p.held {
		return p.code, nil
	}

	c, err := wire.ReadUint8(p.r)
	if err != nil {
		return 0, err
	}
	p.code = c
	p.held = true

	return c, nil
}

// consumeCode drops the held type byte.
func (p *peekReader) consumeCode() {
	p.held = false
}

// Read replays the held type byte first, then forwards to the reader.
func (p *peekReader) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if !p.held {
		return p.r.Read(buf)
	}

	buf[0] = p.code
	p.held = false
	if len(buf) == 1 {
		return 1, nil
	}

	n, err := p.r.Read(buf[1:])
	if err == io.EOF {
		err = nil
	}

	return n + 1, err
}

// FillBuf forwards to the underlying BufferedRead. Only called after the
// held byte, if any, has been replayed.
func (p *peekReader) FillBuf() ([]byte, error) {
	if br, ok := p.r.(unpack.BufferedRead); ok {
		return br.FillBuf()
	}

	return nil, errs.ErrInvalidData
}

// Consume forwards to the underlying BufferedRead.
func (p *peekReader) Consume(n int) {
	if br, ok := p.r.(unpack.BufferedRead); ok {
		br.Consume(n)
	}
}

func (d *Decoder) peekKind() (code.Kind, byte, error) {
	c, err := d.pr.peekCode()
	if err != nil {
		return 0, 0, err
	}
	if c == code.Reserved {
		d.pr.consumeCode()

		return 0, 0, errs.ErrReservedCode
	}

	return code.Classify(c), c, nil
}

// Decode decodes the next element into v, which must be a non-nil pointer.
func (d *Decoder) Decode(v any) error {
	if u, ok := v.(Unmarshaler); ok {
		return u.UnmarshalMsgpack(d)
	}

	switch t := v.(type) {
	case *[]byte:
		b, err := d.decodeBytes()
		if err != nil {
			return err
		}
		*t = b

		return nil
	case *string:
		s, err := unpack.UnpackStr(d.pr)
		if err != nil {
			return err
		}
		*t = s

		return nil
	case *time.Time:
		ts, err := d.decodeTimestamp()
		if err != nil {
			return err
		}
		*t = ts.Time()

		return nil
	case *Ext:
		x, err := d.DecodeExt()
		if err != nil {
			return err
		}
		*t = x

		return nil
	case *Variant:
		va, err := d.DecodeVariant()
		if err != nil {
			return err
		}
		*t = va

		return nil
	case *value.Value:
		val, err := unpack.UnpackValue(d.pr)
		if err != nil {
			return err
		}
		*t = val

		return nil
	case *any:
		val, err := d.DecodeAny()
		if err != nil {
			return err
		}
		*t = val

		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("msgpack: decode target must be a non-nil pointer, got %T", v)
	}

	return d.decodeReflect(rv.Elem())
}

var (
	typeTime    = reflect.TypeOf(time.Time{})
	typeExt     = reflect.TypeOf(Ext{})
	typeVariant = reflect.TypeOf(Variant{})
	typeValue   = reflect.TypeOf((*value.Value)(nil)).Elem()
)

func (d *Decoder) decodeReflect(rv reflect.Value) error {
	// Addressable destinations that decode themselves, and the data-model
	// types, take their dedicated routes before generic reflection.
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalMsgpack(d)
		}
	}

	switch rv.Type() {
	case typeTime:
		ts, err := d.decodeTimestamp()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(ts.Time()))

		return nil
	case typeExt:
		x, err := d.DecodeExt()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(x))

		return nil
	case typeVariant:
		va, err := d.DecodeVariant()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(va))

		return nil
	case typeValue:
		val, err := unpack.UnpackValue(d.pr)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(val))

		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		v, err := unpack.UnpackBool(d.pr)
		if err != nil {
			return err
		}
		rv.SetBool(v)

		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := d.decodeInt64()
		if err != nil {
			return err
		}
		if rv.OverflowInt(v) {
			return errs.NewOutOfRange(rv.Type().String(), v)
		}
		rv.SetInt(v)

		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err := d.decodeUint64()
		if err != nil {
			return err
		}
		if rv.OverflowUint(v) {
			return errs.NewOutOfRange(rv.Type().String(), v)
		}
		rv.SetUint(v)

		return nil
	case reflect.Float32, reflect.Float64:
		v, err := d.decodeFloat64()
		if err != nil {
			return err
		}
		rv.SetFloat(v)

		return nil
	case reflect.String:
		s, err := unpack.UnpackStr(d.pr)
		if err != nil {
			return err
		}
		rv.SetString(s)

		return nil
	case reflect.Slice:
		return d.decodeSlice(rv)
	case reflect.Array:
		return d.decodeArray(rv)
	case reflect.Map:
		return d.decodeMapReflect(rv)
	case reflect.Struct:
		return d.decodeStruct(rv)
	case reflect.Ptr:
		return d.decodePtr(rv)
	case reflect.Interface:
		val, err := d.DecodeAny()
		if err != nil {
			return err
		}
		if val == nil {
			rv.Set(reflect.Zero(rv.Type()))

			return nil
		}
		rv.Set(reflect.ValueOf(val))

		return nil
	default:
		return fmt.Errorf("msgpack: unsupported decode target %s", rv.Type())
	}
}

// decodeInt64 accepts any integer code and returns the value in the signed
// domain.
func (d *Decoder) decodeInt64() (int64, error) {
	k, c, err := d.peekKind()
	if err != nil {
		return 0, err
	}

	switch k {
	case code.KindPosFixInt, code.KindUint8:
		v, err := unpack.UnpackUint8(d.pr)

		return int64(v), err
	case code.KindUint16:
		v, err := unpack.UnpackUint16(d.pr)

		return int64(v), err
	case code.KindUint32:
		v, err := unpack.UnpackUint32(d.pr)

		return int64(v), err
	case code.KindUint64:
		v, err := unpack.UnpackUint64(d.pr)
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, errs.NewOutOfRange("int64", v)
		}

		return int64(v), nil
	case code.KindNegFixInt, code.KindInt8:
		v, err := unpack.UnpackInt8(d.pr)

		return int64(v), err
	case code.KindInt16:
		v, err := unpack.UnpackInt16(d.pr)

		return int64(v), err
	case code.KindInt32:
		v, err := unpack.UnpackInt32(d.pr)

		return int64(v), err
	case code.KindInt64:
		return unpack.UnpackInt64(d.pr)
	default:
		d.pr.consumeCode()

		return 0, errs.NewTypeMismatch(c, "integer")
	}
}

// decodeUint64 accepts any non-negative integer code.
func (d *Decoder) decodeUint64() (uint64, error) {
	k, c, err := d.peekKind()
	if err != nil {
		return 0, err
	}

	switch k {
	case code.KindPosFixInt, code.KindUint8:
		v, err := unpack.UnpackUint8(d.pr)

		return uint64(v), err
	case code.KindUint16:
		v, err := unpack.UnpackUint16(d.pr)

		return uint64(v), err
	case code.KindUint32:
		v, err := unpack.UnpackUint32(d.pr)

		return uint64(v), err
	case code.KindUint64:
		return unpack.UnpackUint64(d.pr)
	default:
		d.pr.consumeCode()

		return 0, errs.NewTypeMismatch(c, "unsigned integer")
	}
}

func (d *Decoder) decodeFloat64() (float64, error) {
	k, c, err := d.peekKind()
	if err != nil {
		return 0, err
	}

	switch k {
	case code.KindFloat32:
		v, err := unpack.UnpackFloat32(d.pr)

		return float64(v), err
	case code.KindFloat64:
		return unpack.UnpackFloat64(d.pr)
	default:
		d.pr.consumeCode()

		return 0, errs.NewTypeMismatch(c, "float")
	}
}

// decodeBytes accepts a bin payload, borrowing from the backing array when
// the reader supports it.
func (d *Decoder) decodeBytes() ([]byte, error) {
	if d.zeroCopy {
		return unpack.UnpackBinRef(d.pr)
	}

	return unpack.UnpackBin(d.pr)
}

func (d *Decoder) decodeSlice(rv reflect.Value) error {
	if ok, err := d.consumeNil(); ok || err != nil {
		if ok {
			rv.Set(reflect.Zero(rv.Type()))
		}

		return err
	}

	if rv.Type().Elem().Kind() == reflect.Uint8 {
		b, err := d.decodeBytes()
		if err != nil {
			return err
		}
		rv.SetBytes(b)

		return nil
	}

	n, err := unpack.UnpackArrayHeader(d.pr)
	if err != nil {
		return err
	}

	out := reflect.MakeSlice(rv.Type(), n, n)
	for i := range n {
		if err := d.decodeReflect(out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)

	return nil
}

func (d *Decoder) decodeArray(rv reflect.Value) error {
	n, err := unpack.UnpackArrayHeader(d.pr)
	if err != nil {
		return err
	}
	if n != rv.Len() {
		return fmt.Errorf("%w: wire array has %d elements, destination holds %d",
			errs.ErrInvalidSize, n, rv.Len())
	}

	for i := range n {
		if err := d.decodeReflect(rv.Index(i)); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) decodeMapReflect(rv reflect.Value) error {
	if ok, err := d.consumeNil(); ok || err != nil {
		if ok {
			rv.Set(reflect.Zero(rv.Type()))
		}

		return err
	}

	n, err := unpack.UnpackMapHeader(d.pr)
	if err != nil {
		return err
	}

	t := rv.Type()
	out := reflect.MakeMapWithSize(t, n)
	for range n {
		key := reflect.New(t.Key()).Elem()
		if err := d.decodeReflect(key); err != nil {
			return err
		}

		val := reflect.New(t.Elem()).Elem()
		if err := d.decodeReflect(val); err != nil {
			return err
		}

		out.SetMapIndex(key, val)
	}
	rv.Set(out)

	return nil
}

// decodeStruct reads a map and assigns entries to fields by wire name;
// unknown keys are skipped.
func (d *Decoder) decodeStruct(rv reflect.Value) error {
	fields := cachedFields(rv.Type())

	// The unit value round-trips as an empty array.
	if len(fields) == 0 {
		n, err := unpack.UnpackArrayHeader(d.pr)
		if err != nil {
			return err
		}
		if n != 0 {
			return fmt.Errorf("%w: unit value has %d elements", errs.ErrInvalidSize, n)
		}

		return nil
	}

	n, err := unpack.UnpackMapHeader(d.pr)
	if err != nil {
		return err
	}
	for range n {
		key, err := unpack.UnpackStr(d.pr)
		if err != nil {
			return err
		}

		f, ok := fieldByName(fields, key)
		if !ok {
			if err := d.Skip(); err != nil {
				return err
			}

			continue
		}

		if err := d.decodeReflect(rv.Field(f.index)); err != nil {
			return err
		}
	}

	return nil
}

// decodePtr maps nil onto a nil pointer; any other code decodes the inner
// value, which is the optional rule: nil consumes the peek and reports
// absent, everything else leaves the peek for the inner decode.
func (d *Decoder) decodePtr(rv reflect.Value) error {
	k, _, err := d.peekKind()
	if err != nil {
		return err
	}

	if k == code.KindNil {
		d.pr.consumeCode()
		rv.Set(reflect.Zero(rv.Type()))

		return nil
	}

	if rv.IsNil() {
		rv.Set(reflect.New(rv.Type().Elem()))
	}

	return d.decodeReflect(rv.Elem())
}

// consumeNil reports whether the next element is nil, consuming it if so.
func (d *Decoder) consumeNil() (bool, error) {
	k, _, err := d.peekKind()
	if err != nil {
		return false, err
	}
	if k == code.KindNil {
		d.pr.consumeCode()

		return true, nil
	}

	return false, nil
}

// decodeTimestamp accepts the three standard timestamp shapes.
func (d *Decoder) decodeTimestamp() (value.Timestamp, error) {
	length, ty, err := unpack.UnpackExtHeader(d.pr)
	if err != nil {
		return value.Timestamp{}, err
	}

	payload, err := unpack.UnpackData(d.pr, length)
	if err != nil {
		return value.Timestamp{}, err
	}

	ts, ok := unpack.TimestampFromExt(ty, payload)
	if !ok {
		return value.Timestamp{}, fmt.Errorf("%w: ext type %d length %d is not a timestamp",
			errs.ErrInvalidData, ty, length)
	}

	return ts, nil
}

// DecodeExt decodes any fixext or ext element, preserving its wire shape.
func (d *Decoder) DecodeExt() (Ext, error) {
	k, c, err := d.peekKind()
	if err != nil {
		return Ext{}, err
	}

	var width extWidth
	switch k {
	case code.KindFixExt1:
		width = extWidthFix1
	case code.KindFixExt2:
		width = extWidthFix2
	case code.KindFixExt4:
		width = extWidthFix4
	case code.KindFixExt8:
		width = extWidthFix8
	case code.KindFixExt16:
		width = extWidthFix16
	case code.KindExt8:
		width = extWidth8
	case code.KindExt16:
		width = extWidth16
	case code.KindExt32:
		width = extWidth32
	default:
		d.pr.consumeCode()

		return Ext{}, errs.NewTypeMismatch(c, "ext")
	}

	length, ty, err := unpack.UnpackExtHeader(d.pr)
	if err != nil {
		return Ext{}, err
	}

	payload, err := unpack.UnpackData(d.pr, length)
	if err != nil {
		return Ext{}, err
	}

	return Ext{Type: ty, Data: payload, width: width}, nil
}

// DecodeVariant decodes the single-entry map emitted for a Variant. The
// contents map back as nil (unit), []any (tuple), map (struct) or a single
// value (newtype).
func (d *Decoder) DecodeVariant() (Variant, error) {
	n, err := unpack.UnpackMapHeader(d.pr)
	if err != nil {
		return Variant{}, err
	}
	if n != 1 {
		return Variant{}, fmt.Errorf("%w: variant map has %d entries, want 1", errs.ErrInvalidSize, n)
	}

	name, err := unpack.UnpackStr(d.pr)
	if err != nil {
		return Variant{}, err
	}

	k, _, err := d.peekKind()
	if err != nil {
		return Variant{}, err
	}
	if k == code.KindNil {
		d.pr.consumeCode()

		return Variant{Name: name}, nil
	}

	contents, err := d.DecodeAny()
	if err != nil {
		return Variant{}, err
	}

	return Variant{Name: name, Value: contents}, nil
}

// Skip discards the next complete element.
func (d *Decoder) Skip() error {
	_, err := d.DecodeAny()

	return err
}

// DecodeAny decodes the next element into the natural Go shape for its wire
// type: nil, bool, uint64/int64, float32/float64, string (or []byte for a
// string payload that is not valid UTF-8), []byte, []any,
// map[string]any (map[any]any when a key is not a string), time.Time, or
// Ext.
func (d *Decoder) DecodeAny() (any, error) {
	k, c, err := d.peekKind()
	if err != nil {
		return nil, err
	}

	switch k {
	case code.KindNil:
		d.pr.consumeCode()

		return nil, nil
	case code.KindTrue, code.KindFalse:
		return unpack.UnpackBool(d.pr)
	case code.KindPosFixInt, code.KindUint8, code.KindUint16, code.KindUint32, code.KindUint64:
		return d.decodeUint64()
	case code.KindNegFixInt, code.KindInt8, code.KindInt16, code.KindInt32, code.KindInt64:
		return d.decodeInt64()
	case code.KindFloat32:
		return unpack.UnpackFloat32(d.pr)
	case code.KindFloat64:
		return unpack.UnpackFloat64(d.pr)
	case code.KindFixStr, code.KindStr8, code.KindStr16, code.KindStr32:
		return d.decodeAnyStr()
	case code.KindBin8, code.KindBin16, code.KindBin32:
		return d.decodeBytes()
	case code.KindFixArray, code.KindArray16, code.KindArray32:
		return d.decodeAnyArray()
	case code.KindFixMap, code.KindMap16, code.KindMap32:
		return d.decodeAnyMap()
	case code.KindFixExt1, code.KindFixExt2, code.KindFixExt4, code.KindFixExt8,
		code.KindFixExt16, code.KindExt8, code.KindExt16, code.KindExt32:
		return d.decodeAnyExt()
	default:
		d.pr.consumeCode()

		return nil, errs.NewTypeMismatch(c, "any")
	}
}

// decodeAnyStr keeps invalid-UTF-8 string payloads as raw bytes rather than
// failing.
func (d *Decoder) decodeAnyStr() (any, error) {
	length, err := unpack.UnpackStrHeader(d.pr)
	if err != nil {
		return nil, err
	}

	buf, err := unpack.UnpackData(d.pr, length)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(buf) {
		return buf, nil
	}

	return string(buf), nil
}

func (d *Decoder) decodeAnyArray() (any, error) {
	n, err := unpack.UnpackArrayHeader(d.pr)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, n)
	for range n {
		elem, err := d.DecodeAny()
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}

	return out, nil
}

func (d *Decoder) decodeAnyMap() (any, error) {
	n, err := unpack.UnpackMapHeader(d.pr)
	if err != nil {
		return nil, err
	}

	keys := make([]any, 0, n)
	vals := make([]any, 0, n)
	allStr := true
	for range n {
		k, err := d.DecodeAny()
		if err != nil {
			return nil, err
		}
		if _, ok := k.(string); !ok {
			allStr = false
		}

		v, err := d.DecodeAny()
		if err != nil {
			return nil, err
		}

		keys = append(keys, k)
		vals = append(vals, v)
	}

	if allStr {
		out := make(map[string]any, n)
		for i, k := range keys {
			out[k.(string)] = vals[i]
		}

		return out, nil
	}

	out := make(map[any]any, n)
	for i, k := range keys {
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, fmt.Errorf("%w: map key %T is not usable as a Go map key",
				errs.ErrInvalidData, k)
		}
		out[k] = vals[i]
	}

	return out, nil
}

// decodeAnyExt maps the standard timestamp shapes to time.Time and
// everything else to Ext.
func (d *Decoder) decodeAnyExt() (any, error) {
	x, err := d.DecodeExt()
	if err != nil {
		return nil, err
	}

	if ts, ok := unpack.TimestampFromExt(x.Type, x.Data); ok {
		return ts.Time(), nil
	}

	return x, nil
}
