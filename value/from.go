package value

import "time"

// Convenience constructors mirroring the Go scalar types.

// FromBool wraps a bool.
func FromBool(v bool) Value { return Boolean(v) }

// FromUint wraps any unsigned integer in the positive domain.
func FromUint[T uint | uint8 | uint16 | uint32 | uint64](v T) Value {
	return NewUint(uint64(v))
}

// FromInt wraps any signed integer, choosing the domain by sign.
func FromInt[T int | int8 | int16 | int32 | int64](v T) Value {
	return NewInt(int64(v))
}

// FromFloat32 wraps a float32 at 32-bit width.
func FromFloat32(v float32) Value { return NewFloat32(v) }

// FromFloat64 wraps a float64 at 64-bit width.
func FromFloat64(v float64) Value { return NewFloat64(v) }

// FromString wraps a Go string.
func FromString(v string) Value { return String{NewUtf8String(v)} }

// FromStringBytes wraps raw string payload bytes, validating UTF-8.
func FromStringBytes(b []byte) Value { return String{Utf8StringFromBytes(b)} }

// FromBytes wraps a binary payload. The slice is retained, not copied.
func FromBytes(b []byte) Value { return Binary(b) }

// FromTime converts a time.Time to a Timestamp.
func FromTime(t time.Time) Value {
	return Timestamp{Sec: t.Unix(), Nsec: uint32(t.Nanosecond())}
}

// Time converts the timestamp to a time.Time in UTC.
func (v Timestamp) Time() time.Time {
	return time.Unix(v.Sec, int64(v.Nsec)).UTC()
}
