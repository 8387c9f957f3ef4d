package baseconv

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRFC4648Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		base32 string
		base64 string
	}{
		{input: "", base32: "", base64: ""},
		{input: "f", base32: "MY======", base64: "Zg=="},
		{input: "fo", base32: "MZXQ====", base64: "Zm8="},
		{input: "foo", base32: "MZXW6===", base64: "Zm9v"},
		{input: "foob", base32: "MZXW6YQ=", base64: "Zm9vYg=="},
		{input: "fooba", base32: "MZXW6YTB", base64: "Zm9vYmE="},
		{input: "foobar", base32: "MZXW6YTBOI======",
			base64: "Zm9vYmFy"},
	}

	for _, test := range tests {
		require.Equal(t, test.base32, Base32.Encode([]byte(test.input)))
		require.Equal(t, test.base64, Base64.Encode([]byte(test.input)))

		require.Equal(
			t, test.input, string(Base32.Decode(test.base32)),
		)
		require.Equal(
			t, test.input, string(Base64.Decode(test.base64)),
		)
	}
}

func TestBlockSize(t *testing.T) {
	t.Parallel()

	bytes, chars := Base32.BlockSize()
	require.Equal(t, 5, bytes)
	require.Equal(t, 8, chars)

	bytes, chars = Base64.BlockSize()
	require.Equal(t, 3, bytes)
	require.Equal(t, 4, chars)

	bytes, chars = Base16.BlockSize()
	require.Equal(t, 1, bytes)
	require.Equal(t, 2, chars)
}

func TestMatchesStdlib(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")

		checks := []struct {
			name string
			conv *Converter
			want string
		}{
			{"base16", Base16, hex.EncodeToString(data)},
			{"base32", Base32, base32.StdEncoding.EncodeToString(data)},
			{"base32hex", Base32Hex,
				base32.HexEncoding.EncodeToString(data)},
			{"base64", Base64, base64.StdEncoding.EncodeToString(data)},
			{"base64url", Base64URL,
				base64.RawURLEncoding.EncodeToString(data)},
		}

		for _, check := range checks {
			got := check.conv.Encode(data)
			if got != check.want {
				t.Fatalf("%s: got %q want %q", check.name, got,
					check.want)
			}
			if len(got) != check.conv.EncodedLen(len(data)) {
				t.Fatalf("%s: encoded len mismatch", check.name)
			}

			back := check.conv.Decode(got)
			if hex.EncodeToString(back) != hex.EncodeToString(data) {
				t.Fatalf("%s: round trip mismatch", check.name)
			}
		}
	})
}

func TestBech32MatchesConvertBits(t *testing.T) {
	t.Parallel()

	const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 40).Draw(t, "data")

		groups, err := bech32.ConvertBits(data, 8, 5, true)
		if err != nil {
			t.Fatalf("convert bits: %v", err)
		}

		var want strings.Builder
		for _, g := range groups {
			want.WriteByte(charset[g])
		}

		if got := Base32Bech32.Encode(data); got != want.String() {
			t.Fatalf("got %q want %q", got, want.String())
		}
	})
}

func TestDecodeStopsAtUnknownCharacter(t *testing.T) {
	t.Parallel()

	// Everything after the first foreign character is ignored.
	require.Equal(t, "foo", string(Base64.Decode("Zm9v!Zm9v")))
	require.Equal(t, "f", string(Base32.Decode("MY======MZXW6===")))
	require.Empty(t, Base16.Decode("zz00"))

	// Trailing partial bits are dropped.
	require.Equal(t, []byte{0xab}, Base16.Decode("abc"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	require.Equal(t, []byte{0xde, 0xad}, Base16.Decode("DEAD"))
	require.Equal(t, "foobar", string(Base32.Decode("mzxw6ytboi======")))
	require.Equal(
		t, Base32Bech32.Decode("qpzry9x8"),
		Base32Bech32.Decode("QPZRY9X8"),
	)
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	out, err := Base64.DecodeStrict("Zm8=")
	require.NoError(t, err)
	require.Equal(t, "fo", string(out))

	_, err = Base64.DecodeStrict("Zm8=x")
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	_, err = Base64URL.DecodeStrict("Zm8=")
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))
}

func TestInvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
	}{
		{
			name:   "zero width",
			params: Params{Dictionary: "01"},
		},
		{
			name: "too wide",
			params: Params{
				Dictionary:  strings.Repeat("a", 128),
				BitsPerChar: 7,
			},
		},
		{
			name:   "short dictionary",
			params: Params{Dictionary: "0123", BitsPerChar: 3},
		},
		{
			name:   "duplicate",
			params: Params{Dictionary: "0120", BitsPerChar: 2},
		},
		{
			name: "pad in dictionary",
			params: Params{
				Dictionary:  "0123",
				BitsPerChar: 2,
				Pad:         '0',
				Padding:     PadToBlock,
			},
		},
	}

	for _, test := range tests {
		_, err := New(test.params)
		require.True(
			t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument),
			test.name,
		)
	}
}

func TestOddWidths(t *testing.T) {
	t.Parallel()

	octal := MustNew(Params{
		Dictionary:  "01234567",
		BitsPerChar: 3,
		Pad:         '=',
		Padding:     PadToBlock,
	})

	bytes, chars := octal.BlockSize()
	require.Equal(t, 3, bytes)
	require.Equal(t, 8, chars)

	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "data")

		encoded := octal.Encode(data)
		if len(encoded)%8 != 0 {
			t.Fatalf("encoding %q not block aligned", encoded)
		}

		back := octal.Decode(encoded)
		if hex.EncodeToString(back) != hex.EncodeToString(data) {
			t.Fatalf("round trip mismatch for %x", data)
		}
	})
}
