package value

import (
	"fmt"
	"unicode/utf8"
)

// Utf8String holds the payload of a MessagePack str element. Real-world
// streams produced by other languages' encoders do emit string-coded
// payloads that are not valid UTF-8; discarding those bytes would lose data.
// A Utf8String therefore carries either a validated string or the raw bytes
// together with the position where validation failed, and always re-encodes
// to the exact bytes it was decoded from.
type Utf8String struct {
	s         string
	raw       []byte // set instead of s when the payload is not valid UTF-8
	invalidAt int    // byte offset of the first invalid sequence in raw
}

// NewUtf8String wraps a Go string, which is valid UTF-8 by construction in
// well-behaved programs. No validation is performed.
func NewUtf8String(s string) Utf8String {
	return Utf8String{s: s}
}

// Utf8StringFromBytes validates b and wraps it. Valid payloads are converted
// to a string; invalid payloads keep the raw bytes and record the offset of
// the first invalid sequence. The slice is retained, not copied.
func Utf8StringFromBytes(b []byte) Utf8String {
	if utf8.Valid(b) {
		return Utf8String{s: string(b)}
	}

	return Utf8String{raw: b, invalidAt: invalidOffset(b)}
}

// invalidOffset finds the byte offset of the first invalid UTF-8 sequence.
func invalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}

	return 0
}

// IsValid reports whether the payload is valid UTF-8.
func (u Utf8String) IsValid() bool {
	return u.raw == nil
}

// Str returns the validated string, or false for an invalid payload.
func (u Utf8String) Str() (string, bool) {
	if u.raw != nil {
		return "", false
	}

	return u.s, true
}

// Bytes returns the payload bytes regardless of validity. For a valid
// string the returned slice is a fresh copy of its bytes.
func (u Utf8String) Bytes() []byte {
	if u.raw != nil {
		return u.raw
	}

	return []byte(u.s)
}

// Err returns the validation error for an invalid payload, or nil.
func (u Utf8String) Err() error {
	if u.raw == nil {
		return nil
	}

	return fmt.Errorf("invalid UTF-8 sequence at byte %d", u.invalidAt)
}

// String formats the payload for display; invalid payloads render as hex.
func (u Utf8String) String() string {
	if u.raw != nil {
		return fmt.Sprintf("%X", u.raw)
	}

	return u.s
}

// owned returns a copy whose raw bytes, if any, are detached from the
// decode buffer.
func (u Utf8String) owned() Utf8String {
	if u.raw == nil {
		return u
	}

	raw := make([]byte, len(u.raw))
	copy(raw, u.raw)

	return Utf8String{raw: raw, invalidAt: u.invalidAt}
}

// Utf8StringRef is a Utf8String whose raw bytes may alias a reader backing
// array. The distinction is provenance only; see the package comment.
type Utf8StringRef = Utf8String
