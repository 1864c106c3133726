// Package errs defines the shared error values and error types used across
// the mpack packages.
//
// Two error families cover the codec:
//
//   - Pack side: ErrOutOfRange (via OutOfRangeError) for domain violations
//     such as a negative extension type tag, plus plain write errors from the
//     underlying io.Writer.
//   - Unpack side: ErrInvalidData for malformed or truncated input (including
//     the reserved 0xC1 byte and unexpected end of stream), and
//     ErrTypeMismatch (via TypeMismatchError) when the leading type byte is
//     not in the accepted set for the requested type.
//
// The bridge layer adds ErrMustHaveLength, ErrInvalidSize and
// ErrInvalidSerializeMethod.
//
// All typed errors unwrap to their family sentinel, so callers can match
// broadly with errors.Is or extract details with errors.As:
//
//	if errors.Is(err, errs.ErrTypeMismatch) { ... }
//
//	var tm *errs.TypeMismatchError
//	if errors.As(err, &tm) {
//	    fmt.Printf("got code 0x%02X, wanted %s\n", byte(tm.Code), tm.Expected)
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidData indicates malformed or truncated input data.
	ErrInvalidData = errors.New("invalid msgpack data")

	// ErrTypeMismatch indicates the observed type byte is not in the accepted
	// set for the requested type.
	ErrTypeMismatch = errors.New("msgpack type mismatch")

	// ErrReservedCode indicates the reserved type byte 0xC1 was encountered.
	ErrReservedCode = fmt.Errorf("%w: reserved type byte 0xC1", ErrInvalidData)

	// ErrUnexpectedEOF indicates the stream ended inside an encoded value.
	ErrUnexpectedEOF = fmt.Errorf("%w: unexpected end of stream", ErrInvalidData)

	// ErrInvalidUtf8 indicates a string payload carried invalid UTF-8 and the
	// caller requested text. The Value walkers keep such payloads instead.
	ErrInvalidUtf8 = fmt.Errorf("%w: invalid UTF-8 in string", ErrInvalidData)

	// ErrOutOfRange indicates a value cannot be represented in the requested
	// encoding, such as a negative extension type tag or an oversized
	// timestamp for a fixed-width helper.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMustHaveLength indicates a sequence of unknown length was handed to
	// the serializer; MessagePack headers always announce their count up
	// front.
	ErrMustHaveLength = errors.New("sequence must have a known length")

	// ErrInvalidSize indicates a length mismatch between the wire data and a
	// fixed-size destination.
	ErrInvalidSize = errors.New("size does not match")

	// ErrInvalidSerializeMethod indicates the extension sub-serializer
	// received an emission it does not accept.
	ErrInvalidSerializeMethod = errors.New("invalid serialize method for extension")
)

// TypeMismatchError reports the observed type byte together with the name of
// the type the caller asked for. It unwraps to ErrTypeMismatch.
type TypeMismatchError struct {
	Code     byte   // the offending leading byte, already consumed
	Expected string // name of the requested type, e.g. "uint16"
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("msgpack type mismatch: code 0x%02X is not %s", e.Code, e.Expected)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// NewTypeMismatch creates a TypeMismatchError for the given code byte and
// expected type name.
func NewTypeMismatch(code byte, expected string) error {
	return &TypeMismatchError{Code: code, Expected: expected}
}

// OutOfRangeError reports a domain violation on the pack side. It unwraps to
// ErrOutOfRange.
type OutOfRangeError struct {
	Kind  string // what was being packed, e.g. "ext type tag"
	Value any    // the offending value
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value out of range for %s: %v", e.Kind, e.Value)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

// NewOutOfRange creates an OutOfRangeError for the given kind and value.
func NewOutOfRange(kind string, value any) error {
	return &OutOfRangeError{Kind: kind, Value: value}
}
