package bigint

import (
	"math"
	"math/big"
	"testing"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genBigInt draws BigInt values spanning several machine words in both signs.
func genBigInt() *rapid.Generator[BigInt] {
	return rapid.Custom(func(t *rapid.T) BigInt {
		mag := rapid.SliceOfN(rapid.Byte(), 0, 40).Draw(t, "mag")
		neg := rapid.Bool().Draw(t, "neg")

		return FromBytes(mag, neg)
	})
}

func TestZeroIsNeverNegative(t *testing.T) {
	t.Parallel()

	require.False(t, FromBytes(nil, true).IsNegative())
	require.False(t, FromBytes([]byte{0, 0}, true).IsNegative())
	require.False(t, New(0).Negate().IsNegative())
	require.False(t, BigInt{}.IsNegative())
	require.True(t, BigInt{}.Eq(Zero))

	v, err := FromDecimal("-0")
	require.NoError(t, err)
	require.False(t, v.IsNegative())
	require.Equal(t, "0", v.String())

	rapid.Check(t, func(t *rapid.T) {
		a := genBigInt().Draw(t, "a")
		if a.Eq(Zero) && a.IsNegative() {
			t.Fatalf("zero reported negative")
		}
		if a.Sign() >= 0 && a.IsNegative() {
			t.Fatalf("non-negative value %v reported negative", a)
		}
	})
}

func TestNewBoundaries(t *testing.T) {
	t.Parallel()

	require.Equal(t, "-9223372036854775808", New(math.MinInt64).String())
	require.Equal(t, "9223372036854775807", New(math.MaxInt64).String())
	require.Equal(
		t, "18446744073709551615", NewUnsigned(math.MaxUint64).String(),
	)

	v, ok := New(math.MinInt64).Int64()
	require.True(t, ok)
	require.Equal(t, int64(math.MinInt64), v)

	_, ok = New(-1).Uint64()
	require.False(t, ok)
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		x := genBigInt().Draw(t, "x")

		dec, err := FromDecimal(x.String())
		if err != nil || !dec.Eq(x) {
			t.Fatalf("decimal round trip of %v: %v, %v", x, dec, err)
		}

		hexStr := x.ToHexString()
		digits := hexStr
		if x.IsNegative() {
			digits = hexStr[1:]
		}
		if len(digits)%2 != 0 {
			t.Fatalf("odd length hex %q", hexStr)
		}

		hex, err := FromHex(hexStr)
		if err != nil || !hex.Eq(x) {
			t.Fatalf("hex round trip of %v: %v, %v", x, hex, err)
		}
	})
}

func TestFromStringFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		radix int
	}{
		{name: "empty", input: "", radix: 10},
		{name: "lone minus", input: "-", radix: 10},
		{name: "letters in decimal", input: "12a", radix: 10},
		{name: "underscore", input: "1_000", radix: 10},
		{name: "plus sign", input: "+5", radix: 10},
		{name: "double minus", input: "--5", radix: 10},
		{name: "bad hex digit", input: "0xzz", radix: 16},
		{name: "bare prefix", input: "0x", radix: 16},
		{name: "radix 2", input: "101", radix: 2},
		{name: "radix 58", input: "abc", radix: 58},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := FromString(test.input, test.radix)
			require.Error(t, err)
			require.True(t, errorcodes.Is(
				err, errorcodes.ErrCodeInvalidArgument,
			))
		})
	}
}

func TestHexFormatting(t *testing.T) {
	t.Parallel()

	require.Equal(t, "00", Zero.ToHexString())
	require.Equal(t, "0f", New(15).ToHexString())
	require.Equal(t, "-0100", New(-256).ToHexString())

	v, err := FromHex("0XFF")
	require.NoError(t, err)
	require.Equal(t, "255", v.String())

	v, err = FromHex("-0x10")
	require.NoError(t, err)
	require.Equal(t, "-16", v.String())
}

func TestByteArray(t *testing.T) {
	t.Parallel()

	require.Equal(t, []byte{0}, Zero.ToByteArray())
	require.Equal(t, []byte{0x01, 0x00}, New(256).ToByteArray())

	// The sign is not part of the byte encoding.
	require.Equal(t, New(256).ToByteArray(), New(-256).ToByteArray())

	rapid.Check(t, func(t *rapid.T) {
		x := genBigInt().Draw(t, "x")
		back := FromBytes(x.ToByteArray(), x.IsNegative())
		if !back.Eq(x) {
			t.Fatalf("byte round trip of %v gave %v", x, back)
		}
	})
}

func TestArithmeticIdentities(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := genBigInt().Draw(t, "a")
		b := genBigInt().Draw(t, "b")

		if got := a.Add(b).Sub(b); !got.Eq(a) {
			t.Fatalf("a + b - b: got %v want %v", got, a)
		}
		if got := a.Sub(a.Sub(b)); !got.Eq(b) {
			t.Fatalf("a - (a - b): got %v want %v", got, b)
		}
		if !a.Sub(b).Eq(b.Sub(a).Negate()) {
			t.Fatalf("a - b != -(b - a) for %v, %v", a, b)
		}

		// Every operator must agree with math/big's signed arithmetic.
		bigA, bigB := a.Big(), b.Big()
		if a.Add(b).Big().Cmp(new(big.Int).Add(bigA, bigB)) != 0 {
			t.Fatalf("add mismatch for %v, %v", a, b)
		}
		if a.Mul(b).Big().Cmp(new(big.Int).Mul(bigA, bigB)) != 0 {
			t.Fatalf("mul mismatch for %v, %v", a, b)
		}
		if a.Cmp(b) != bigA.Cmp(bigB) {
			t.Fatalf("cmp mismatch for %v, %v", a, b)
		}

		if b.IsZero() {
			return
		}

		quo, rem, err := a.DivMod(b)
		if err != nil {
			t.Fatalf("divmod: %v", err)
		}
		wantQuo, wantRem := new(big.Int).QuoRem(
			bigA, bigB, new(big.Int),
		)
		if quo.Big().Cmp(wantQuo) != 0 || rem.Big().Cmp(wantRem) != 0 {
			t.Fatalf("divmod mismatch for %v, %v: %v %v", a, b,
				quo, rem)
		}
		if !quo.Mul(b).Add(rem).Eq(a) {
			t.Fatalf("quo * b + rem != a for %v, %v", a, b)
		}
	})
}

func TestDivisionSemantics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b     int64
		quo, rem int64
	}{
		{a: 100, b: 7, quo: 14, rem: 2},
		{a: -100, b: 7, quo: -14, rem: -2},
		{a: 100, b: -7, quo: -14, rem: 2},
		{a: -100, b: -7, quo: 14, rem: -2},
		{a: 6, b: 3, quo: 2, rem: 0},
		{a: -6, b: 3, quo: -2, rem: 0},
	}

	for _, test := range tests {
		quo, err := New(test.a).Div(New(test.b))
		require.NoError(t, err)
		require.Equal(t, New(test.quo).String(), quo.String())

		rem, err := New(test.a).Mod(New(test.b))
		require.NoError(t, err)
		require.Equal(t, New(test.rem).String(), rem.String())
		require.False(t, rem.IsZero() && rem.IsNegative())
	}

	_, err := One.Div(Zero)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))

	_, err = One.Mod(BigInt{})
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))
}

func TestPow(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1", New(-5).Pow(0).String())
	require.Equal(t, "1", Zero.Pow(0).String())
	require.Equal(t, "25", New(-5).Pow(2).String())
	require.Equal(t, "-125", New(-5).Pow(3).String())
	require.Equal(
		t, "1267650600228229401496703205376", New(2).Pow(100).String(),
	)

	rapid.Check(t, func(t *rapid.T) {
		a := genBigInt().Draw(t, "a").Abs()
		neg := a.Negate()

		if !a.Pow(0).Eq(One) || !neg.Pow(0).Eq(One) {
			t.Fatalf("x^0 != 1 for %v", a)
		}
		if !neg.Pow(2).Eq(a.Pow(2)) {
			t.Fatalf("(-a)^2 != a^2 for %v", a)
		}
		if !neg.Pow(3).Eq(a.Pow(3).Negate()) {
			t.Fatalf("(-a)^3 != -(a^3) for %v", a)
		}
	})
}

func TestComparison(t *testing.T) {
	t.Parallel()

	require.True(t, New(-10).Lt(New(1)))
	require.True(t, New(-10).Lt(New(-9)))
	require.True(t, New(-9).Gt(New(-10)))
	require.True(t, New(3).Le(New(3)))
	require.True(t, New(3).Ge(New(-3)))
	require.False(t, New(3).Eq(New(-3)))
	require.Equal(t, "-10", Min(New(-10), New(4)).String())
	require.Equal(t, "4", Max(New(-10), New(4)).String())
}

func TestUint256Bridge(t *testing.T) {
	t.Parallel()

	allOnes := new(uint256.Int).SetAllOne()
	v := FromUint256(allOnes)
	require.Equal(t, 256, v.BitLen())

	back, err := v.ToUint256()
	require.NoError(t, err)
	require.True(t, back.Eq(allOnes))

	_, err = v.Add(One).ToUint256()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeOutOfRange))

	_, err = New(-1).ToUint256()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeOutOfRange))
}

func TestDecimalUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		decimals uint
		units    string
		display  string
	}{
		{input: "1.5", decimals: 8, units: "150000000", display: "1.5"},
		{input: "-0.001", decimals: 8, units: "-100000",
			display: "-0.001"},
		{input: "42", decimals: 0, units: "42", display: "42"},
		{input: "0.000000000000000001", decimals: 18, units: "1",
			display: "0.000000000000000001"},
		{input: ".25", decimals: 2, units: "25", display: "0.25"},
		{input: "10", decimals: 2, units: "1000", display: "10"},
	}

	for _, test := range tests {
		v, err := FromDecimalUnits(test.input, test.decimals)
		require.NoError(t, err, test.input)
		require.Equal(t, test.units, v.String())
		require.Equal(t, test.display, v.ToDecimalUnits(test.decimals))
	}

	_, err := FromDecimalUnits("1.123", 2)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))

	_, err = FromDecimalUnits("1.", 2)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))
}

func TestTextMarshalling(t *testing.T) {
	t.Parallel()

	var v BigInt
	require.NoError(t, v.UnmarshalText([]byte("-12345678901234567890")))

	text, err := v.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "-12345678901234567890", string(text))

	require.Error(t, v.UnmarshalText([]byte("nope")))
}
