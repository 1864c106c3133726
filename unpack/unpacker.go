package unpack

import (
	"io"
	"iter"

	"github.com/arloliu/mpack/internal/pool"
	"github.com/arloliu/mpack/value"
)

// Unpacker wraps a reader and offers the full unpack suite as methods.
//
// An Unpacker runs in one of two modes:
//
//   - pull mode (NewUnpacker): it holds a caller-supplied reader and the
//     owner drives reads from it.
//   - feed mode (NewFeedUnpacker): it owns a growable inner buffer; Write
//     appends encoded fragments to the tail and decodes consume from the
//     head, so a stream can arrive in arbitrary pieces.
//
// Note: The Unpacker is NOT thread-safe. Each unpacker instance should be
// used by a single goroutine at a time.
type Unpacker struct {
	rd   io.Reader
	feed *feedBuffer // non-nil in feed mode
}

// NewUnpacker creates a pull-mode Unpacker over the given reader.
func NewUnpacker(r io.Reader) *Unpacker {
	return &Unpacker{rd: r}
}

// NewFeedUnpacker creates a feed-mode Unpacker over a pooled inner buffer.
// Call Close when done to return the buffer to the pool.
func NewFeedUnpacker() *Unpacker {
	feed := &feedBuffer{bb: pool.GetFeedBuffer()}

	return &Unpacker{rd: feed, feed: feed}
}

// Reader exposes the wrapped reader; in feed mode this is the inner buffer.
func (u *Unpacker) Reader() io.Reader {
	return u.rd
}

// Write appends encoded bytes to the inner buffer. It is only available in
// feed mode.
func (u *Unpacker) Write(p []byte) (int, error) {
	if u.feed == nil {
		return 0, io.ErrClosedPipe
	}

	return u.feed.Write(p)
}

// Read consumes raw bytes from the wrapped reader.
func (u *Unpacker) Read(p []byte) (int, error) {
	return u.rd.Read(p)
}

// Close returns the inner buffer to the pool. It is a no-op in pull mode.
func (u *Unpacker) Close() error {
	if u.feed != nil {
		pool.PutFeedBuffer(u.feed.bb)
		u.feed.bb = nil
	}

	return nil
}

// Values returns a lazy, restartable sequence of decoded values.
//
// Each step decodes one complete value. In feed mode a failed decode —
// including one that ran out of buffered bytes partway into a value — rolls
// the read position back to the end of the last complete value and ends the
// sequence; iterating again after more bytes arrive resumes cleanly with no
// duplicated or lost values. In pull mode the sequence simply ends at the
// first decode failure, since a caller-supplied reader cannot be rewound.
func (u *Unpacker) Values() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for {
			if u.feed != nil {
				mark := u.feed.off
				v, err := UnpackValue(u.feed)
				if err != nil {
					u.feed.off = mark

					return
				}
				if !yield(v) {
					return
				}

				continue
			}

			v, err := UnpackValue(u.rd)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

func (u *Unpacker) UnpackUint8() (uint8, error) { return UnpackUint8(u.rd) }
func (u *Unpacker) UnpackUint16() (uint16, error) { return UnpackUint16(u.rd) }
func (u *Unpacker) UnpackUint32() (uint32, error) { return UnpackUint32(u.rd) }
func (u *Unpacker) UnpackUint64() (uint64, error) { return UnpackUint64(u.rd) }
func (u *Unpacker) UnpackInt8() (int8, error) { return UnpackInt8(u.rd) }
func (u *Unpacker) UnpackInt16() (int16, error) { return UnpackInt16(u.rd) }
func (u *Unpacker) UnpackInt32() (int32, error) { return UnpackInt32(u.rd) }
func (u *Unpacker) UnpackInt64() (int64, error) { return UnpackInt64(u.rd) }
func (u *Unpacker) UnpackFloat32() (float32, error) { return UnpackFloat32(u.rd) }
func (u *Unpacker) UnpackFloat64() (float64, error) { return UnpackFloat64(u.rd) }
func (u *Unpacker) UnpackBool() (bool, error) { return UnpackBool(u.rd) }
func (u *Unpacker) UnpackNil() error { return UnpackNil(u.rd) }
func (u *Unpacker) UnpackStr() (string, error) { return UnpackStr(u.rd) }
func (u *Unpacker) UnpackBin() ([]byte, error) { return UnpackBin(u.rd) }

func (u *Unpacker) UnpackStrHeader() (int, error) { return UnpackStrHeader(u.rd) }
func (u *Unpacker) UnpackBinHeader() (int, error) { return UnpackBinHeader(u.rd) }
func (u *Unpacker) UnpackArrayHeader() (int, error) { return UnpackArrayHeader(u.rd) }
func (u *Unpacker) UnpackMapHeader() (int, error) { return UnpackMapHeader(u.rd) }

func (u *Unpacker) UnpackExtHeader() (int, int8, error) { return UnpackExtHeader(u.rd) }

func (u *Unpacker) UnpackFixExt1() (int8, uint8, error) { return UnpackFixExt1(u.rd) }
func (u *Unpacker) UnpackFixExt2() (int8, [2]byte, error) { return UnpackFixExt2(u.rd) }
func (u *Unpacker) UnpackFixExt4() (int8, [4]byte, error) { return UnpackFixExt4(u.rd) }
func (u *Unpacker) UnpackFixExt8() (int8, [8]byte, error) { return UnpackFixExt8(u.rd) }
func (u *Unpacker) UnpackFixExt16() (int8, [16]byte, error) { return UnpackFixExt16(u.rd) }

func (u *Unpacker) UnpackTimestamp32() (uint32, error) { return UnpackTimestamp32(u.rd) }
func (u *Unpacker) UnpackTimestamp64() (uint64, uint32, error) { return UnpackTimestamp64(u.rd) }
func (u *Unpacker) UnpackTimestamp96() (int64, uint32, error) { return UnpackTimestamp96(u.rd) }

func (u *Unpacker) UnpackValue() (value.Value, error) { return UnpackValue(u.rd) }

// UnpackValueRef decodes a borrowed value tree when the wrapped reader has
// the BufferedRead capability; in feed mode the tree borrows from the inner
// buffer and is only valid until the buffer is written to or recycled.
func (u *Unpacker) UnpackValueRef() (value.RefValue, error) {
	br, ok := u.rd.(BufferedRead)
	if !ok {
		return UnpackValue(u.rd)
	}

	return UnpackValueRef(br)
}

// feedBuffer is the feed-mode inner buffer: writes append to the tail of a
// pooled ByteBuffer, reads consume from a head offset. When fully drained it
// rewinds to the start so the backing array is reused.
type feedBuffer struct {
	bb  *pool.ByteBuffer
	off int
}

func (f *feedBuffer) Write(p []byte) (int, error) {
	if f.off == f.bb.Len() && f.off > 0 {
		// Fully drained; reclaim the consumed prefix.
		f.bb.Reset()
		f.off = 0
	}

	return f.bb.Write(p)
}

func (f *feedBuffer) Read(p []byte) (int, error) {
	if f.off >= f.bb.Len() {
		return 0, io.EOF
	}

	n := copy(p, f.bb.B[f.off:])
	f.off += n

	return n, nil
}

func (f *feedBuffer) FillBuf() ([]byte, error) {
	return f.bb.B[f.off:], nil
}

func (f *feedBuffer) Consume(n int) {
	f.off += n
	if f.off > f.bb.Len() {
		f.off = f.bb.Len()
	}
}
