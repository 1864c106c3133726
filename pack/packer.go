package pack

import (
	"io"

	"github.com/arloliu/mpack/value"
)

// Flusher is the optional flush capability of a writer. Packer.Flush
// forwards to it when the wrapped writer provides one.
type Flusher interface {
	Flush() error
}

// Packer wraps a writer and offers the full pack suite as methods. It owns
// the writer for the duration of a call sequence; Release returns it.
//
// Note: The Packer is NOT thread-safe. Each packer instance should be used by
// a single goroutine at a time.
type Packer struct {
	wr io.Writer
}

// NewPacker creates a Packer over the given writer.
func NewPacker(w io.Writer) *Packer {
	return &Packer{wr: w}
}

// Writer exposes the wrapped writer.
func (p *Packer) Writer() io.Writer {
	return p.wr
}

// Release detaches and returns the wrapped writer. The Packer must not be
// used afterwards.
func (p *Packer) Release() io.Writer {
	w := p.wr
	p.wr = nil

	return w
}

// Flush forwards to the writer's Flush when it has one.
func (p *Packer) Flush() error {
	if f, ok := p.wr.(Flusher); ok {
		return f.Flush()
	}

	return nil
}

func (p *Packer) PackNil() error { return PackNil(p.wr) }
func (p *Packer) PackBool(v bool) error { return PackBool(p.wr, v) }
func (p *Packer) PackPosFixInt(v uint8) error { return PackPosFixInt(p.wr, v) }
func (p *Packer) PackNegFixInt(v int8) error { return PackNegFixInt(p.wr, v) }
func (p *Packer) PackUint8(v uint8) error { return PackUint8(p.wr, v) }
func (p *Packer) PackUint16(v uint16) error { return PackUint16(p.wr, v) }
func (p *Packer) PackUint32(v uint32) error { return PackUint32(p.wr, v) }
func (p *Packer) PackUint64(v uint64) error { return PackUint64(p.wr, v) }
func (p *Packer) PackFromUint8(v uint8) error { return PackFromUint8(p.wr, v) }
func (p *Packer) PackFromUint16(v uint16) error { return PackFromUint16(p.wr, v) }
func (p *Packer) PackFromUint32(v uint32) error { return PackFromUint32(p.wr, v) }
func (p *Packer) PackFromUint64(v uint64) error { return PackFromUint64(p.wr, v) }
func (p *Packer) PackUint(v uint64) error { return PackUint(p.wr, v) }
func (p *Packer) PackInt8(v int8) error { return PackInt8(p.wr, v) }
func (p *Packer) PackInt16(v int16) error { return PackInt16(p.wr, v) }
func (p *Packer) PackInt32(v int32) error { return PackInt32(p.wr, v) }
func (p *Packer) PackInt64(v int64) error { return PackInt64(p.wr, v) }
func (p *Packer) PackFromInt8(v int8) error { return PackFromInt8(p.wr, v) }
func (p *Packer) PackFromInt16(v int16) error { return PackFromInt16(p.wr, v) }
func (p *Packer) PackFromInt32(v int32) error { return PackFromInt32(p.wr, v) }
func (p *Packer) PackFromInt64(v int64) error { return PackFromInt64(p.wr, v) }
func (p *Packer) PackInt(v int64) error { return PackInt(p.wr, v) }
func (p *Packer) PackFloat32(v float32) error { return PackFloat32(p.wr, v) }
func (p *Packer) PackFloat64(v float64) error { return PackFloat64(p.wr, v) }
func (p *Packer) PackStr(v string) error { return PackStr(p.wr, v) }
func (p *Packer) PackStrFromBytes(v []byte) error { return PackStrFromBytes(p.wr, v) }
func (p *Packer) PackBin(v []byte) error { return PackBin(p.wr, v) }

func (p *Packer) PackArrayHeader(length int) error { return PackArrayHeader(p.wr, length) }
func (p *Packer) PackMapHeader(length int) error { return PackMapHeader(p.wr, length) }

func (p *Packer) PackExtHeader(extType int8, length int) error {
	return PackExtHeader(p.wr, extType, length)
}

// WritePayload writes raw payload bytes; used after PackExtHeader.
func (p *Packer) WritePayload(v []byte) error { return WritePayload(p.wr, v) }

func (p *Packer) PackTimestamp(sec int64, nsec uint32) error {
	return PackTimestamp(p.wr, sec, nsec)
}

func (p *Packer) PackTimestamp32(sec uint32) error { return PackTimestamp32(p.wr, sec) }

func (p *Packer) PackTimestamp64(sec uint64, nsec uint32) error {
	return PackTimestamp64(p.wr, sec, nsec)
}

func (p *Packer) PackTimestamp96(sec int64, nsec uint32) error {
	return PackTimestamp96(p.wr, sec, nsec)
}

func (p *Packer) PackValue(v value.Value) error { return PackValue(p.wr, v) }
