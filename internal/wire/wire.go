// Package wire provides fixed-width big-endian reads and writes over
// io.Writer and io.Reader.
//
// These functions move raw bytes only; they never interpret MessagePack type
// bytes. All multi-byte widths use network byte order via the endian engine.
package wire

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/mpack/endian"
	"github.com/arloliu/mpack/errs"
)

// engine is the MessagePack wire byte order.
var engine = endian.GetBigEndianEngine()

// WriteUint8 writes a single byte to w.
func WriteUint8(w io.Writer, v uint8) error {
	return WriteAll(w, []byte{v})
}

// WriteUint16 writes v in big-endian order.
func WriteUint16(w io.Writer, v uint16) error {
	return WriteAll(w, engine.AppendUint16(make([]byte, 0, 2), v))
}

// WriteUint32 writes v in big-endian order.
func WriteUint32(w io.Writer, v uint32) error {
	return WriteAll(w, engine.AppendUint32(make([]byte, 0, 4), v))
}

// WriteUint64 writes v in big-endian order.
func WriteUint64(w io.Writer, v uint64) error {
	return WriteAll(w, engine.AppendUint64(make([]byte, 0, 8), v))
}

// WriteInt8 writes v as its two's complement byte.
func WriteInt8(w io.Writer, v int8) error {
	return WriteUint8(w, uint8(v))
}

// WriteInt16 writes v in big-endian two's complement.
func WriteInt16(w io.Writer, v int16) error {
	return WriteUint16(w, uint16(v))
}

// WriteInt32 writes v in big-endian two's complement.
func WriteInt32(w io.Writer, v int32) error {
	return WriteUint32(w, uint32(v))
}

// WriteInt64 writes v in big-endian two's complement.
func WriteInt64(w io.Writer, v int64) error {
	return WriteUint64(w, uint64(v))
}

// WriteFloat32 writes the IEEE 754 bits of v in big-endian order.
func WriteFloat32(w io.Writer, v float32) error {
	return WriteUint32(w, math.Float32bits(v))
}

// WriteFloat64 writes the IEEE 754 bits of v in big-endian order.
func WriteFloat64(w io.Writer, v float64) error {
	return WriteAll(w, engine.AppendUint64(make([]byte, 0, 8), math.Float64bits(v)))
}

// WriteAll writes the whole of data to w, surfacing any write error.
func WriteAll(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	return nil
}

// ReadFull reads exactly n bytes from r into a fresh buffer. A short read
// surfaces as errs.ErrUnexpectedEOF.
func ReadFull(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := ReadInto(r, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// ReadInto fills buf from r. A short read surfaces as errs.ErrUnexpectedEOF.
func ReadInto(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errs.ErrUnexpectedEOF
		}

		return fmt.Errorf("%w: %w", errs.ErrInvalidData, err)
	}

	return nil
}

// ReadUint8 reads a single byte from r.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if err := ReadInto(r, buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// ReadUint16 reads a big-endian uint16 from r.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if err := ReadInto(r, buf[:]); err != nil {
		return 0, err
	}

	return engine.Uint16(buf[:]), nil
}

// ReadUint32 reads a big-endian uint32 from r.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := ReadInto(r, buf[:]); err != nil {
		return 0, err
	}

	return engine.Uint32(buf[:]), nil
}

// ReadUint64 reads a big-endian uint64 from r.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if err := ReadInto(r, buf[:]); err != nil {
		return 0, err
	}

	return engine.Uint64(buf[:]), nil
}

// ReadInt8 reads a two's complement byte from r.
func ReadInt8(r io.Reader) (int8, error) {
	v, err := ReadUint8(r)
	return int8(v), err
}

// ReadInt16 reads a big-endian two's complement int16 from r.
func ReadInt16(r io.Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

// ReadInt32 reads a big-endian two's complement int32 from r.
func ReadInt32(r io.Reader) (int32, error) {
	v, err := ReadUint32(r)
	return int32(v), err
}

// ReadInt64 reads a big-endian two's complement int64 from r.
func ReadInt64(r io.Reader) (int64, error) {
	v, err := ReadUint64(r)
	return int64(v), err
}

// ReadFloat32 reads big-endian IEEE 754 bits from r.
func ReadFloat32(r io.Reader) (float32, error) {
	v, err := ReadUint32(r)
	return math.Float32frombits(v), err
}

// ReadFloat64 reads big-endian IEEE 754 bits from r.
func ReadFloat64(r io.Reader) (float64, error) {
	v, err := ReadUint64(r)
	return math.Float64frombits(v), err
}
