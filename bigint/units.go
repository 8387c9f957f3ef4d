package bigint

import (
	"strings"

	"github.com/coinforge/walletcore/errorcodes"
)

// FromDecimalUnits parses a human readable amount such as "1.5" or "-0.001"
// into its smallest-unit integer representation using the given number of
// decimals. With 8 decimals "1.5" becomes 150000000. More fractional digits
// than decimals fail with an invalid-argument error.
func FromDecimalUnits(s string, decimals uint) (BigInt, error) {
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if hasDot && fracPart == "" {
		return BigInt{}, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"invalid decimal amount %q", s,
		)
	}

	if uint(len(fracPart)) > decimals {
		return BigInt{}, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"amount %q has more than %d decimals", s, decimals,
		)
	}

	// A bare sign in front of the dot, as in "-.5", keeps its meaning.
	switch intPart {
	case "", "-":
		if !hasDot {
			break
		}
		intPart += "0"
	}

	fracPart += strings.Repeat("0", int(decimals)-len(fracPart))

	return FromDecimal(intPart + fracPart)
}

// ToDecimalUnits renders b, interpreted as an amount of smallest units, as a
// human readable decimal string with trailing fractional zeros removed.
func (b BigInt) ToDecimalUnits(decimals uint) string {
	digits := b.Abs().String()
	if uint(len(digits)) <= decimals {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) +
			digits
	}

	split := len(digits) - int(decimals)
	intPart := digits[:split]
	fracPart := strings.TrimRight(digits[split:], "0")

	res := intPart
	if fracPart != "" {
		res += "." + fracPart
	}

	if b.IsNegative() {
		return "-" + res
	}

	return res
}
