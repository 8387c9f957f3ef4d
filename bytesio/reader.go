package bytesio

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
)

// MaxVarBytes bounds the length accepted by ReadVarBytes and ReadVarString.
const MaxVarBytes = 1 << 24

// Reader consumes a payload from front to back.
type Reader struct {
	data   []byte
	offset int
}

// NewReader returns a reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Read implements io.Reader so the btcd var-int helpers can consume from the
// reader directly.
func (r *Reader) Read(p []byte) (int, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}

	n := copy(p, r.data[r.offset:])
	r.offset += n

	return n, nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeOutOfRange,
			"read of %d bytes at offset %d exceeds payload of %d",
			n, r.offset, len(r.data),
		)
	}

	out := r.data[r.offset : r.offset+n]
	r.offset += n

	return out, nil
}

// ReadByte consumes one byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadBytes consumes n bytes and returns a copy of them.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), b...), nil
}

// ReadUntilEnd consumes and returns everything left.
func (r *Reader) ReadUntilEnd() []byte {
	b, _ := r.take(r.Remaining())
	return append([]byte(nil), b...)
}

// ReadBEUint16 consumes a big-endian uint16.
func (r *Reader) ReadBEUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

// ReadBEUint32 consumes a big-endian uint32.
func (r *Reader) ReadBEUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(b), nil
}

// ReadBEUint64 consumes a big-endian uint64.
func (r *Reader) ReadBEUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(b), nil
}

// ReadLEUint16 consumes a little-endian uint16.
func (r *Reader) ReadLEUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// ReadLEUint32 consumes a little-endian uint32.
func (r *Reader) ReadLEUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// ReadLEUint64 consumes a little-endian uint64.
func (r *Reader) ReadLEUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// wireErr maps an error from the btcd helpers onto the error taxonomy. The
// reader is rewound to start so a failed read consumes nothing.
func (r *Reader) wireErr(start int, err error) error {
	r.offset = start

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errorcodes.Wrap(
			errorcodes.ErrCodeOutOfRange, err,
			"short read at offset %d", start,
		)
	}

	return errorcodes.Wrap(
		errorcodes.ErrCodeInvalidFormat, err,
		"malformed field at offset %d", start,
	)
}

// ReadVarInt consumes a Bitcoin compact size integer.
func (r *Reader) ReadVarInt() (uint64, error) {
	start := r.offset

	v, err := wire.ReadVarInt(r, protocolVersion)
	if err != nil {
		return 0, r.wireErr(start, err)
	}

	return v, nil
}

// ReadVarString consumes a var-int length prefixed string.
func (r *Reader) ReadVarString() (string, error) {
	b, err := r.ReadVarBytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ReadVarBytes consumes a var-int length prefixed byte string.
func (r *Reader) ReadVarBytes() ([]byte, error) {
	start := r.offset

	b, err := wire.ReadVarBytes(
		r, protocolVersion, MaxVarBytes, "payload",
	)
	if err != nil {
		return nil, r.wireErr(start, err)
	}

	return b, nil
}

// ReadBigInt consumes a size byte unsigned integer in big or little endian
// order.
func (r *Reader) ReadBigInt(size int, littleEndian bool) (bigint.BigInt,
	error) {

	b, err := r.ReadBytes(size)
	if err != nil {
		return bigint.Zero, err
	}

	if littleEndian {
		reverse(b)
	}

	return bigint.FromBytes(b, false), nil
}
