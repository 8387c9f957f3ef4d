package preferences

import (
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/bytesio"
	"github.com/coinforge/walletcore/errorcodes"
)

// Kind identifies the type of a stored value. It is the first byte of every
// encoded value.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindLong
	KindBool
	KindStringArray
	KindData
	KindBigInt
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindBool:
		return "bool"
	case KindStringArray:
		return "string-array"
	case KindData:
		return "data"
	case KindBigInt:
		return "bigint"
	default:
		return "unknown"
	}
}

func encodeString(v string) []byte {
	return bytesio.NewWriter().
		WriteUint8(byte(KindString)).
		WriteVarString(v).
		Bytes()
}

func encodeInt(v int32) []byte {
	return bytesio.NewWriter().
		WriteUint8(byte(KindInt)).
		WriteBEUint32(uint32(v)).
		Bytes()
}

func encodeLong(v int64) []byte {
	return bytesio.NewWriter().
		WriteUint8(byte(KindLong)).
		WriteBEUint64(uint64(v)).
		Bytes()
}

func encodeBool(v bool) []byte {
	var b byte
	if v {
		b = 1
	}

	return bytesio.NewWriter().
		WriteUint8(byte(KindBool)).
		WriteUint8(b).
		Bytes()
}

func encodeStringArray(v []string) []byte {
	w := bytesio.NewWriter().
		WriteUint8(byte(KindStringArray)).
		WriteVarInt(uint64(len(v)))
	for _, s := range v {
		w.WriteVarString(s)
	}

	return w.Bytes()
}

func encodeData(v []byte) []byte {
	return bytesio.NewWriter().
		WriteUint8(byte(KindData)).
		WriteVarBytes(v).
		Bytes()
}

func encodeBigInt(v bigint.BigInt) []byte {
	var sign byte
	if v.IsNegative() {
		sign = 1
	}

	return bytesio.NewWriter().
		WriteUint8(byte(KindBigInt)).
		WriteUint8(sign).
		WriteVarBytes(v.ToByteArray()).
		Bytes()
}

// openValue checks the kind tag of raw and returns a reader positioned on the
// payload.
func openValue(key string, raw []byte, want Kind) (*bytesio.Reader, error) {
	r := bytesio.NewReader(raw)

	tag, err := r.ReadByte()
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidFormat, err,
			"empty value for %q", key,
		)
	}

	if Kind(tag) != want {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"%q holds a %v, not a %v", key, Kind(tag), want,
		)
	}

	return r, nil
}

// finish rejects trailing bytes after a decoded payload.
func finish(key string, r *bytesio.Reader) error {
	if r.Remaining() != 0 {
		return errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"%d trailing bytes in %q", r.Remaining(), key,
		)
	}

	return nil
}

func decodeString(key string, raw []byte) (string, error) {
	r, err := openValue(key, raw, KindString)
	if err != nil {
		return "", err
	}

	s, err := r.ReadVarString()
	if err != nil {
		return "", err
	}

	return s, finish(key, r)
}

func decodeInt(key string, raw []byte) (int32, error) {
	r, err := openValue(key, raw, KindInt)
	if err != nil {
		return 0, err
	}

	v, err := r.ReadBEUint32()
	if err != nil {
		return 0, err
	}

	return int32(v), finish(key, r)
}

func decodeLong(key string, raw []byte) (int64, error) {
	r, err := openValue(key, raw, KindLong)
	if err != nil {
		return 0, err
	}

	v, err := r.ReadBEUint64()
	if err != nil {
		return 0, err
	}

	return int64(v), finish(key, r)
}

func decodeBool(key string, raw []byte) (bool, error) {
	r, err := openValue(key, raw, KindBool)
	if err != nil {
		return false, err
	}

	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"invalid bool byte %#x in %q", b, key,
		)
	}

	return b == 1, finish(key, r)
}

func decodeStringArray(key string, raw []byte) ([]string, error) {
	r, err := openValue(key, raw, KindStringArray)
	if err != nil {
		return nil, err
	}

	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}

	// Every element takes at least one byte, which bounds the allocation.
	if n > uint64(r.Remaining()) {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"%q claims %d elements in %d bytes", key, n,
			r.Remaining(),
		)
	}

	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := r.ReadVarString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, finish(key, r)
}

func decodeData(key string, raw []byte) ([]byte, error) {
	r, err := openValue(key, raw, KindData)
	if err != nil {
		return nil, err
	}

	b, err := r.ReadVarBytes()
	if err != nil {
		return nil, err
	}

	return b, finish(key, r)
}

func decodeBigInt(key string, raw []byte) (bigint.BigInt, error) {
	r, err := openValue(key, raw, KindBigInt)
	if err != nil {
		return bigint.BigInt{}, err
	}

	sign, err := r.ReadByte()
	if err != nil {
		return bigint.BigInt{}, err
	}

	mag, err := r.ReadVarBytes()
	if err != nil {
		return bigint.BigInt{}, err
	}

	return bigint.FromBytes(mag, sign == 1), finish(key, r)
}
