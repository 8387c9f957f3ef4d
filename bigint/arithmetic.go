package bigint

import (
	"math/big"

	"github.com/coinforge/walletcore/errorcodes"
)

// The helpers below only ever see non-negative magnitudes. The sign-aware
// operators build on top of them.

func magAdd(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// magSub returns |a - b| and whether a < b.
func magSub(a, b *big.Int) (*big.Int, bool) {
	if a.Cmp(b) < 0 {
		return new(big.Int).Sub(b, a), true
	}

	return new(big.Int).Sub(a, b), false
}

// Add returns b + o.
func (b BigInt) Add(o BigInt) BigInt {
	x, y := b.magnitude(), o.magnitude()

	switch {
	// (+a) + (+b) and (-a) + (-b) keep the common sign.
	case b.IsNegative() == o.IsNegative():
		return normalize(magAdd(x, y), b.IsNegative())

	// (+a) + (-b) == a - |b|.
	case o.IsNegative():
		return b.Sub(o.Abs())

	// (-a) + (+b) == b - |a|.
	default:
		return o.Sub(b.Abs())
	}
}

// Sub returns b - o.
func (b BigInt) Sub(o BigInt) BigInt {
	x, y := b.magnitude(), o.magnitude()

	switch {
	// (+a) - (+b): the sign depends on which magnitude is larger.
	case !b.IsNegative() && !o.IsNegative():
		diff, flipped := magSub(x, y)
		return normalize(diff, flipped)

	// (-a) - (-b) == |b| - |a|.
	case b.IsNegative() && o.IsNegative():
		diff, flipped := magSub(y, x)
		return normalize(diff, flipped)

	// (+a) - (-b) == a + |b|.
	case o.IsNegative():
		return normalize(magAdd(x, y), false)

	// (-a) - (+b) == -(|a| + b).
	default:
		return normalize(magAdd(x, y), true)
	}
}

// Mul returns b * o.
func (b BigInt) Mul(o BigInt) BigInt {
	prod := new(big.Int).Mul(b.magnitude(), o.magnitude())

	return normalize(prod, b.IsNegative() != o.IsNegative())
}

// Div returns the quotient b / o truncated towards zero. Dividing by zero
// fails with an invalid-argument error.
func (b BigInt) Div(o BigInt) (BigInt, error) {
	if o.IsZero() {
		return BigInt{}, errorcodes.New(
			errorcodes.ErrCodeInvalidArgument, "division by zero",
		)
	}

	quo := new(big.Int).Quo(b.magnitude(), o.magnitude())

	return normalize(quo, b.IsNegative() != o.IsNegative()), nil
}

// Mod returns the remainder of the truncated division b / o. The result takes
// the sign of the dividend, so New(-100).Mod(New(7)) is -2.
func (b BigInt) Mod(o BigInt) (BigInt, error) {
	if o.IsZero() {
		return BigInt{}, errorcodes.New(
			errorcodes.ErrCodeInvalidArgument, "modulo by zero",
		)
	}

	rem := new(big.Int).Rem(b.magnitude(), o.magnitude())

	return normalize(rem, b.IsNegative()), nil
}

// DivMod returns both the truncated quotient and the remainder.
func (b BigInt) DivMod(o BigInt) (BigInt, BigInt, error) {
	quo, err := b.Div(o)
	if err != nil {
		return BigInt{}, BigInt{}, err
	}

	rem, err := b.Mod(o)
	if err != nil {
		return BigInt{}, BigInt{}, err
	}

	return quo, rem, nil
}

// Pow returns b raised to p. The result is negative only for a negative base
// and an odd exponent. In particular any value raised to 0 is 1, including
// negative values.
func (b BigInt) Pow(p uint) BigInt {
	exp := new(big.Int).SetUint64(uint64(p))
	res := new(big.Int).Exp(b.magnitude(), exp, nil)

	return normalize(res, b.IsNegative() && p%2 == 1)
}

// Cmp compares b and o and returns -1, 0 or +1.
func (b BigInt) Cmp(o BigInt) int {
	switch {
	case b.IsNegative() && !o.IsNegative():
		return -1

	case !b.IsNegative() && o.IsNegative():
		return 1

	// Both negative: the larger magnitude is the smaller value.
	case b.IsNegative():
		return -b.magnitude().Cmp(o.magnitude())

	default:
		return b.magnitude().Cmp(o.magnitude())
	}
}

// Eq reports whether b == o.
func (b BigInt) Eq(o BigInt) bool {
	return b.Cmp(o) == 0
}

// Lt reports whether b < o.
func (b BigInt) Lt(o BigInt) bool {
	return b.Cmp(o) < 0
}

// Le reports whether b <= o.
func (b BigInt) Le(o BigInt) bool {
	return b.Cmp(o) <= 0
}

// Gt reports whether b > o.
func (b BigInt) Gt(o BigInt) bool {
	return b.Cmp(o) > 0
}

// Ge reports whether b >= o.
func (b BigInt) Ge(o BigInt) bool {
	return b.Cmp(o) >= 0
}

// Min returns the smaller of a and b.
func Min(a, b BigInt) BigInt {
	if a.Lt(b) {
		return a
	}

	return b
}

// Max returns the larger of a and b.
func Max(a, b BigInt) BigInt {
	if a.Gt(b) {
		return a
	}

	return b
}
