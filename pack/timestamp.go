package pack

import (
	"io"

	"github.com/arloliu/mpack/code"
	"github.com/arloliu/mpack/errs"
	"github.com/arloliu/mpack/internal/wire"
)

// Timestamp is the one standardised extension, type tag -1, in three shapes:
// 32-bit seconds, 64-bit packed seconds+nanoseconds, and a 96-bit form for
// the full int64 second range.

const (
	timestamp64NsecMax    = uint32(1) << 30
	timestampExtType      = -1
	timestamp96PayloadLen = 12
)

// PackTimestamp emits sec/nsec in the narrowest timestamp shape:
// timestamp32 when the seconds fit 34 bits and nanoseconds are zero,
// timestamp64 when the seconds fit 34 bits, timestamp96 otherwise. This
// selector never reports an out-of-range error.
func PackTimestamp(w io.Writer, sec int64, nsec uint32) error {
	if sec>>34 == 0 {
		switch {
		case nsec == 0:
			return PackTimestamp32(w, uint32(sec))
		case nsec < timestamp64NsecMax:
			return PackTimestamp64(w, uint64(sec), nsec)
		}
	}

	return PackTimestamp96(w, sec, nsec)
}

// PackTimestamp32 emits a fixext4 timestamp carrying whole seconds only.
func PackTimestamp32(w io.Writer, sec uint32) error {
	if err := wire.WriteUint8(w, code.FixExt4); err != nil {
		return err
	}
	if err := wire.WriteInt8(w, timestampExtType); err != nil {
		return err
	}

	return wire.WriteUint32(w, sec)
}

// PackTimestamp64 emits a fixext8 timestamp packing 30-bit nanoseconds above
// 34-bit seconds. Inputs outside those ranges fail with errs.ErrOutOfRange.
func PackTimestamp64(w io.Writer, sec uint64, nsec uint32) error {
	if sec>>34 != 0 {
		return errs.NewOutOfRange("timestamp64 seconds", sec)
	}
	if nsec >= timestamp64NsecMax {
		return errs.NewOutOfRange("timestamp64 nanoseconds", nsec)
	}

	if err := wire.WriteUint8(w, code.FixExt8); err != nil {
		return err
	}
	if err := wire.WriteInt8(w, timestampExtType); err != nil {
		return err
	}

	return wire.WriteUint64(w, uint64(nsec)<<34|sec)
}

// PackTimestamp96 emits an ext8 timestamp with a 12-byte payload: 4-byte
// nanoseconds followed by 8-byte signed seconds. This shape covers the full
// int64 second range, including times before the epoch.
func PackTimestamp96(w io.Writer, sec int64, nsec uint32) error {
	if err := wire.WriteUint8(w, code.Ext8); err != nil {
		return err
	}
	if err := wire.WriteUint8(w, timestamp96PayloadLen); err != nil {
		return err
	}
	if err := wire.WriteInt8(w, timestampExtType); err != nil {
		return err
	}
	if err := wire.WriteUint32(w, nsec); err != nil {
		return err
	}

	return wire.WriteInt64(w, sec)
}
