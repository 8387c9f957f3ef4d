// Package bytesio provides a chainable builder and a forward only reader for
// binary wire payloads.
package bytesio

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/wire"
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
)

// protocolVersion is passed to the btcd var-int helpers, whose encoding does
// not depend on it.
const protocolVersion = 0

// Writer accumulates a payload. Every write returns the writer so calls can
// be chained. The first failing write is remembered and returned by Err; all
// later writes are ignored.
type Writer struct {
	buf bytes.Buffer
	err error
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(b byte) *Writer {
	if w.err == nil {
		w.buf.WriteByte(b)
	}

	return w
}

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) *Writer {
	if w.err == nil {
		w.buf.Write(b)
	}

	return w
}

// WriteString appends the raw bytes of s without a length prefix.
func (w *Writer) WriteString(s string) *Writer {
	if w.err == nil {
		w.buf.WriteString(s)
	}

	return w
}

func (w *Writer) writeFixed(size int, put func([]byte)) *Writer {
	if w.err != nil {
		return w
	}

	var scratch [8]byte
	put(scratch[:size])
	w.buf.Write(scratch[:size])

	return w
}

// WriteBEUint16 appends v in big-endian order.
func (w *Writer) WriteBEUint16(v uint16) *Writer {
	return w.writeFixed(2, func(b []byte) {
		binary.BigEndian.PutUint16(b, v)
	})
}

// WriteBEUint32 appends v in big-endian order.
func (w *Writer) WriteBEUint32(v uint32) *Writer {
	return w.writeFixed(4, func(b []byte) {
		binary.BigEndian.PutUint32(b, v)
	})
}

// WriteBEUint64 appends v in big-endian order.
func (w *Writer) WriteBEUint64(v uint64) *Writer {
	return w.writeFixed(8, func(b []byte) {
		binary.BigEndian.PutUint64(b, v)
	})
}

// WriteLEUint16 appends v in little-endian order.
func (w *Writer) WriteLEUint16(v uint16) *Writer {
	return w.writeFixed(2, func(b []byte) {
		binary.LittleEndian.PutUint16(b, v)
	})
}

// WriteLEUint32 appends v in little-endian order.
func (w *Writer) WriteLEUint32(v uint32) *Writer {
	return w.writeFixed(4, func(b []byte) {
		binary.LittleEndian.PutUint32(b, v)
	})
}

// WriteLEUint64 appends v in little-endian order.
func (w *Writer) WriteLEUint64(v uint64) *Writer {
	return w.writeFixed(8, func(b []byte) {
		binary.LittleEndian.PutUint64(b, v)
	})
}

// WriteVarInt appends v as a Bitcoin compact size integer.
func (w *Writer) WriteVarInt(v uint64) *Writer {
	if w.err == nil {
		w.err = wire.WriteVarInt(&w.buf, protocolVersion, v)
	}

	return w
}

// WriteVarString appends s prefixed with its length as a var-int.
func (w *Writer) WriteVarString(s string) *Writer {
	if w.err == nil {
		w.err = wire.WriteVarString(&w.buf, protocolVersion, s)
	}

	return w
}

// WriteVarBytes appends b prefixed with its length as a var-int.
func (w *Writer) WriteVarBytes(b []byte) *Writer {
	if w.err == nil {
		w.err = wire.WriteVarBytes(&w.buf, protocolVersion, b)
	}

	return w
}

// WriteBigInt appends the magnitude of v as a size byte unsigned integer,
// zero padded, in big or little endian order. A negative value or one that
// does not fit fails with an out-of-range error.
func (w *Writer) WriteBigInt(v bigint.BigInt, size int,
	littleEndian bool) *Writer {

	if w.err != nil {
		return w
	}

	if v.IsNegative() {
		w.err = errorcodes.Newf(
			errorcodes.ErrCodeOutOfRange,
			"cannot write negative integer %v", v,
		)
		return w
	}

	mag := v.ToByteArray()
	if v.IsZero() {
		mag = nil
	}
	if len(mag) > size {
		w.err = errorcodes.Newf(
			errorcodes.ErrCodeOutOfRange,
			"integer of %d bytes does not fit in %d", len(mag),
			size,
		)
		return w
	}

	out := make([]byte, size)
	copy(out[size-len(mag):], mag)
	if littleEndian {
		reverse(out)
	}
	w.buf.Write(out)

	return w
}

// Bytes returns a copy of the accumulated payload.
func (w *Writer) Bytes() []byte {
	return bytes.Clone(w.buf.Bytes())
}

// Len returns the size of the accumulated payload.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Err returns the first error encountered by a write.
func (w *Writer) Err() error {
	return w.err
}

// Reset empties the payload and clears any error.
func (w *Writer) Reset() *Writer {
	w.buf.Reset()
	w.err = nil

	return w
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
