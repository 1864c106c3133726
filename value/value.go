// Package value defines the dynamic MessagePack value tree.
//
// A Value is a tagged sum over the ten MessagePack kinds: Nil, Boolean,
// Integer, Float, Binary, String, Array, Map, Extension and Timestamp.
// Trees are strict: no cycles, no sharing. A Map is an ordered sequence of
// key/value pairs rather than a hash table, because the format permits
// duplicate and unhashable keys; insertion order is preserved and duplicates
// are kept.
//
// # Owned and borrowed trees
//
// Go slices already carry pointer+length, so the owned and borrowed variants
// of the tree share one type. RefValue is an alias for Value: a tree built by
// unpack.UnpackValueRef holds Binary, String and Extension payloads that
// alias the backing array of the reader that produced it, and is only valid
// while that array is. Owned() deep-copies every aliased payload, detaching
// the tree from its backing array.
//
// # Integers and floats
//
// Integer preserves the sign domain of the decoded value (positive values
// live in uint64, negatives in int64) so round-trips never narrow, and
// Float preserves the encoded width (32 vs 64 bit) so re-encoding emits the
// same code.
//
// # Strings
//
// String wraps Utf8String, which carries either a validated UTF-8 string or
// the raw bytes plus the validation error. Payloads declared as string but
// carrying invalid UTF-8 survive decode and re-encode bit-identically.
package value

// Value is one node of a MessagePack value tree.
//
// The concrete types are Nil, Boolean, Integer, Float, Binary, String,
// Array, Map, Extension and Timestamp.
type Value interface {
	// Owned returns a deep copy of the value that shares no bytes with any
	// reader backing array.
	Owned() Value

	isValue()
}

// RefValue is a Value whose Binary, String and Extension payloads are
// borrowed windows into the backing byte slice of the reader that produced
// it. Its lifetime is bounded by that slice; call Owned to detach.
type RefValue = Value

// Nil is the MessagePack nil value.
type Nil struct{}

// Boolean is a MessagePack boolean.
type Boolean bool

// Binary is a MessagePack bin payload.
type Binary []byte

// String is a MessagePack str payload, tolerant of invalid UTF-8.
type String struct {
	Utf8String
}

// Array is an ordered sequence of values.
type Array []Value

// Pair is a single map entry.
type Pair struct {
	Key Value
	Val Value
}

// Map is an ordered sequence of key/value pairs. Duplicate keys are legal
// and preserved.
type Map []Pair

// Extension is an application-defined extension payload. Type tags >= 0 are
// application territory; -1 is the timestamp extension and decodes as
// Timestamp, other negative tags are reserved by the format.
type Extension struct {
	Type int8
	Data []byte
}

// Timestamp is the standardised extension (type tag -1): seconds since the
// epoch plus nanoseconds. It is materialised from the payload, never
// borrowed.
type Timestamp struct {
	Sec  int64
	Nsec uint32
}

func (Nil) isValue()       {}
func (Boolean) isValue()   {}
func (Integer) isValue()   {}
func (Float) isValue()     {}
func (Binary) isValue()    {}
func (String) isValue()    {}
func (Array) isValue()     {}
func (Map) isValue()       {}
func (Extension) isValue() {}
func (Timestamp) isValue() {}

// Owned returns the value itself; Nil holds no bytes.
func (v Nil) Owned() Value { return v }

func (v Boolean) Owned() Value   { return v }
func (v Integer) Owned() Value   { return v }
func (v Float) Owned() Value     { return v }
func (v Timestamp) Owned() Value { return v }

// Owned copies the payload bytes.
func (v Binary) Owned() Value {
	out := make(Binary, len(v))
	copy(out, v)

	return out
}

// Owned copies the raw bytes when the payload was not valid UTF-8; a
// validated Go string is already immutable and owned.
func (v String) Owned() Value {
	return String{v.Utf8String.owned()}
}

// Owned deep-copies every element.
func (v Array) Owned() Value {
	out := make(Array, len(v))
	for i, e := range v {
		out[i] = e.Owned()
	}

	return out
}

// Owned deep-copies every pair.
func (v Map) Owned() Value {
	out := make(Map, len(v))
	for i, p := range v {
		out[i] = Pair{Key: p.Key.Owned(), Val: p.Val.Owned()}
	}

	return out
}

// Owned copies the payload bytes.
func (v Extension) Owned() Value {
	data := make([]byte, len(v.Data))
	copy(data, v.Data)

	return Extension{Type: v.Type, Data: data}
}
