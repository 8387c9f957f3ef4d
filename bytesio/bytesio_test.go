package bytesio

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWriterLayout(t *testing.T) {
	t.Parallel()

	w := NewWriter().
		WriteUint8(0x01).
		WriteBEUint16(0x0203).
		WriteLEUint16(0x0203).
		WriteBEUint32(0x04050607).
		WriteLEUint32(0x04050607).
		WriteString("ab").
		WriteVarInt(0xfd).
		WriteBigInt(bigint.New(0x0102), 4, false).
		WriteBigInt(bigint.New(0x0102), 4, true)
	require.NoError(t, w.Err())

	want := []byte{
		0x01,
		0x02, 0x03,
		0x03, 0x02,
		0x04, 0x05, 0x06, 0x07,
		0x07, 0x06, 0x05, 0x04,
		'a', 'b',
		0xfd, 0xfd, 0x00,
		0x00, 0x00, 0x01, 0x02,
		0x02, 0x01, 0x00, 0x00,
	}
	require.Equal(t, want, w.Bytes())
	require.Equal(t, len(want), w.Len())

	require.Zero(t, w.Reset().Len())
}

func TestWriterStickyError(t *testing.T) {
	t.Parallel()

	w := NewWriter().
		WriteUint8(1).
		WriteBigInt(bigint.New(0x010000), 2, false).
		WriteUint8(2)

	require.True(t, errorcodes.Is(w.Err(), errorcodes.ErrCodeOutOfRange))
	require.Equal(t, []byte{1}, w.Bytes())

	w.Reset().WriteBigInt(bigint.New(-1), 8, false)
	require.True(t, errorcodes.Is(w.Err(), errorcodes.ErrCodeOutOfRange))

	require.NoError(t, w.Reset().Err())
}

func TestVarIntMatchesWire(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint64().Draw(t, "v")

		var want bytes.Buffer
		if err := wire.WriteVarInt(&want, 0, v); err != nil {
			t.Fatalf("wire: %v", err)
		}

		got := NewWriter().WriteVarInt(v).Bytes()
		if !bytes.Equal(got, want.Bytes()) {
			t.Fatalf("varint %d: got %x want %x", v, got,
				want.Bytes())
		}

		back, err := NewReader(got).ReadVarInt()
		if err != nil || back != v {
			t.Fatalf("varint round trip: %d, %v", back, err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		u8 := rapid.Byte().Draw(t, "u8")
		u16 := rapid.Uint16().Draw(t, "u16")
		u32 := rapid.Uint32().Draw(t, "u32")
		u64 := rapid.Uint64().Draw(t, "u64")
		str := rapid.String().Draw(t, "str")
		blob := rapid.SliceOf(rapid.Byte()).Draw(t, "blob")
		mag := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "mag")
		num := bigint.FromBytes(mag, false)

		payload := NewWriter().
			WriteUint8(u8).
			WriteBEUint16(u16).
			WriteLEUint16(u16).
			WriteBEUint32(u32).
			WriteLEUint32(u32).
			WriteBEUint64(u64).
			WriteLEUint64(u64).
			WriteVarString(str).
			WriteVarBytes(blob).
			WriteBigInt(num, 32, true).
			WriteBytes([]byte{0xaa, 0xbb}).
			Bytes()

		r := NewReader(payload)
		check := func(ok bool, what string) {
			if !ok {
				t.Fatalf("%s mismatch", what)
			}
		}

		b, err := r.ReadByte()
		check(err == nil && b == u8, "u8")

		v16, err := r.ReadBEUint16()
		check(err == nil && v16 == u16, "be16")
		v16, err = r.ReadLEUint16()
		check(err == nil && v16 == u16, "le16")

		v32, err := r.ReadBEUint32()
		check(err == nil && v32 == u32, "be32")
		v32, err = r.ReadLEUint32()
		check(err == nil && v32 == u32, "le32")

		v64, err := r.ReadBEUint64()
		check(err == nil && v64 == u64, "be64")
		v64, err = r.ReadLEUint64()
		check(err == nil && v64 == u64, "le64")

		s, err := r.ReadVarString()
		check(err == nil && s == str, "var string")

		bl, err := r.ReadVarBytes()
		check(err == nil && bytes.Equal(bl, blob), "var bytes")

		n, err := r.ReadBigInt(32, true)
		check(err == nil && n.Eq(num), "big int")

		check(r.Remaining() == 2, "remaining")
		check(bytes.Equal(r.ReadUntilEnd(), []byte{0xaa, 0xbb}),
			"tail")
		check(r.Offset() == len(payload), "offset")
	})
}

func TestShortReads(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x01, 0x02, 0x03})

	_, err := r.ReadBEUint32()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeOutOfRange))
	require.Zero(t, r.Offset())

	_, err = r.ReadBytes(4)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeOutOfRange))

	v, err := r.ReadBEUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), v)

	// A var-int announcing more bytes than are left.
	r = NewReader([]byte{0xfe, 0x01})
	_, err = r.ReadVarInt()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeOutOfRange))
	require.Zero(t, r.Offset())

	// A var-bytes field longer than the payload.
	r = NewReader([]byte{0x05, 'a', 'b'})
	_, err = r.ReadVarBytes()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeOutOfRange))

	require.Empty(t, NewReader(nil).ReadUntilEnd())
}

func TestNonCanonicalVarInt(t *testing.T) {
	t.Parallel()

	// 0x10 encoded with the three byte form.
	_, err := NewReader([]byte{0xfd, 0x10, 0x00}).ReadVarInt()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))
}
