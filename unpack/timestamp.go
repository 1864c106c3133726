package unpack

import (
	"fmt"
	"io"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
)

// Timestamp decode chooses by code, not by size field: fixext4 with type -1
// is timestamp32, fixext8 is timestamp64, ext8 with length 12 is
// timestamp96. Any other shape carrying type -1 is an error here; the Value
// walkers degrade such shapes to plain Extension instead.

// UnpackTimestamp32 decodes a fixext4 timestamp and returns whole seconds.
func UnpackTimestamp32(r io.Reader) (uint32, error) {
	if err := expectCode(r, code.KindFixExt4, "timestamp32"); err != nil {
		return 0, err
	}
	if err := expectTimestampType(r, "timestamp32"); err != nil {
		return 0, err
	}

	return wire.ReadUint32(r)
}

// UnpackTimestamp64 decodes a fixext8 timestamp and returns 34-bit seconds
// and 30-bit nanoseconds.
func UnpackTimestamp64(r io.Reader) (sec uint64, nsec uint32, err error) {
	if err := expectCode(r, code.KindFixExt8, "timestamp64"); err != nil {
		return 0, 0, err
	}
	if err := expectTimestampType(r, "timestamp64"); err != nil {
		return 0, 0, err
	}

	raw, err := wire.ReadUint64(r)
	if err != nil {
		return 0, 0, err
	}

	sec = raw & (1<<34 - 1)
	nsec = uint32(raw>>34) & (1<<30 - 1)

	return sec, nsec, nil
}

// UnpackTimestamp96 decodes an ext8 timestamp with a 12-byte payload and
// returns full-range signed seconds and nanoseconds.
func UnpackTimestamp96(r io.Reader) (sec int64, nsec uint32, err error) {
	if err := expectCode(r, code.KindExt8, "timestamp96"); err != nil {
		return 0, 0, err
	}

	size, err := wire.ReadUint8(r)
	if err != nil {
		return 0, 0, err
	}

	ty, err := wire.ReadInt8(r)
	if err != nil {
		return 0, 0, err
	}

	if size != 12 || ty != -1 {
		return 0, 0, fmt.Errorf("%w: timestamp96 expects length 12 type -1, got length %d type %d",
			errs.ErrInvalidData, size, ty)
	}

	nsec, err = wire.ReadUint32(r)
	if err != nil {
		return 0, 0, err
	}

	sec, err = wire.ReadInt64(r)
	if err != nil {
		return 0, 0, err
	}

	return sec, nsec, nil
}

func expectTimestampType(r io.Reader, name string) error {
	ty, err := wire.ReadInt8(r)
	if err != nil {
		return err
	}
	if ty != -1 {
		return fmt.Errorf("%w: %s expects type -1, got %d", errs.ErrInvalidData, name, ty)
	}

	return nil
}
