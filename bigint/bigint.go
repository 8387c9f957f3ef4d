package bigint

import (
	"math/big"
	"strings"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/holiman/uint256"
)

var (
	// Zero is the BigInt value 0.
	Zero = New(0)

	// One is the BigInt value 1.
	One = New(1)

	// Ten is the BigInt value 10.
	Ten = New(10)
)

// BigInt is an arbitrary precision signed integer. The magnitude is always
// kept non-negative and the sign is tracked separately, so every operator is
// a small dispatch over the four sign combinations of its operands.
//
// BigInt values are immutable: no operation modifies its receiver or its
// arguments, so they can be freely copied and shared. The zero value is 0.
type BigInt struct {
	// mag is the unsigned magnitude. A nil pointer stands for zero.
	mag *big.Int

	// neg is the sign flag. It is never set when the magnitude is zero.
	neg bool
}

// New creates a BigInt from a machine integer.
func New(v int64) BigInt {
	if v < 0 {
		// Negating math.MinInt64 overflows, so go through uint64.
		return normalize(
			new(big.Int).SetUint64(uint64(-(v+1))+1), true,
		)
	}

	return normalize(new(big.Int).SetInt64(v), false)
}

// NewUnsigned creates a BigInt from an unsigned machine integer.
func NewUnsigned(v uint64) BigInt {
	return normalize(new(big.Int).SetUint64(v), false)
}

// FromBytes creates a BigInt from a big-endian unsigned magnitude. The sign is
// not part of the byte encoding and has to be supplied out of band.
func FromBytes(b []byte, negative bool) BigInt {
	return normalize(new(big.Int).SetBytes(b), negative)
}

// FromBig creates a BigInt from a math/big integer. The argument is copied.
func FromBig(v *big.Int) BigInt {
	if v == nil {
		return BigInt{}
	}

	return normalize(new(big.Int).Abs(v), v.Sign() < 0)
}

// FromUint256 creates a BigInt from a 256-bit unsigned integer.
func FromUint256(v *uint256.Int) BigInt {
	if v == nil {
		return BigInt{}
	}

	return normalize(v.ToBig(), false)
}

// FromDecimal parses a base 10 string with an optional leading minus sign.
func FromDecimal(s string) (BigInt, error) {
	return FromString(s, 10)
}

// FromHex parses a base 16 string with an optional leading minus sign and an
// optional 0x prefix.
func FromHex(s string) (BigInt, error) {
	return FromString(s, 16)
}

// FromString parses s in the given radix. Only radix 10 and 16 are supported.
func FromString(s string, radix int) (BigInt, error) {
	if radix != 10 && radix != 16 {
		return BigInt{}, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"unsupported radix %d", radix,
		)
	}

	digits := s
	negative := false
	if strings.HasPrefix(digits, "-") {
		negative = true
		digits = digits[1:]
	}

	if radix == 16 {
		if strings.HasPrefix(digits, "0x") ||
			strings.HasPrefix(digits, "0X") {

			digits = digits[2:]
		}
	}

	if digits == "" || !validDigits(digits, radix) {
		return BigInt{}, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"invalid base %d number %q", radix, s,
		)
	}

	mag, ok := new(big.Int).SetString(digits, radix)
	if !ok {
		return BigInt{}, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"invalid base %d number %q", radix, s,
		)
	}

	return normalize(mag, negative), nil
}

// MustFromDecimal is like FromDecimal but panics on malformed input. It is
// meant for constants and tests.
func MustFromDecimal(s string) BigInt {
	v, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}

	return v
}

// validDigits rejects anything math/big would otherwise tolerate, such as
// underscores or a second sign.
func validDigits(s string, radix int) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case radix == 16 && c >= 'a' && c <= 'f':
		case radix == 16 && c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return true
}

// normalize builds a BigInt and enforces the "zero is never negative"
// invariant.
func normalize(mag *big.Int, negative bool) BigInt {
	if mag.Sign() == 0 {
		return BigInt{mag: mag}
	}

	return BigInt{mag: mag, neg: negative}
}

// magnitude returns the magnitude, substituting zero for the nil zero value.
func (b BigInt) magnitude() *big.Int {
	if b.mag == nil {
		return new(big.Int)
	}

	return b.mag
}

// IsNegative reports whether b is strictly less than zero.
func (b BigInt) IsNegative() bool {
	return b.neg && !b.IsZero()
}

// IsZero reports whether b is zero.
func (b BigInt) IsZero() bool {
	return b.mag == nil || b.mag.Sign() == 0
}

// Sign returns -1, 0 or +1 depending on the sign of b.
func (b BigInt) Sign() int {
	switch {
	case b.IsZero():
		return 0
	case b.neg:
		return -1
	default:
		return 1
	}
}

// Negate returns -b.
func (b BigInt) Negate() BigInt {
	return normalize(b.magnitude(), !b.neg)
}

// Abs returns |b|.
func (b BigInt) Abs() BigInt {
	return normalize(b.magnitude(), false)
}

// BitLen returns the bit length of the magnitude.
func (b BigInt) BitLen() int {
	return b.magnitude().BitLen()
}

// Big returns a copy of b as a math/big integer.
func (b BigInt) Big() *big.Int {
	v := new(big.Int).Set(b.magnitude())
	if b.IsNegative() {
		v.Neg(v)
	}

	return v
}

// Int64 returns b as an int64 and whether it fits.
func (b BigInt) Int64() (int64, bool) {
	v := b.Big()
	if !v.IsInt64() {
		return 0, false
	}

	return v.Int64(), true
}

// Uint64 returns b as a uint64 and whether it fits.
func (b BigInt) Uint64() (uint64, bool) {
	if b.IsNegative() || !b.magnitude().IsUint64() {
		return 0, false
	}

	return b.magnitude().Uint64(), true
}

// ToUint256 converts b into a 256-bit unsigned integer. Negative values and
// values wider than 256 bits fail with an out-of-range error.
func (b BigInt) ToUint256() (*uint256.Int, error) {
	if b.IsNegative() {
		return nil, errorcodes.New(
			errorcodes.ErrCodeOutOfRange,
			"negative value does not fit uint256",
		)
	}

	v, overflow := uint256.FromBig(b.magnitude())
	if overflow {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeOutOfRange,
			"%d bit value does not fit uint256", b.BitLen(),
		)
	}

	return v, nil
}

// ToByteArray returns the big-endian unsigned magnitude of b. The sign is not
// encoded. Zero is encoded as a single zero byte.
func (b BigInt) ToByteArray() []byte {
	if b.IsZero() {
		return []byte{0}
	}

	return b.magnitude().Bytes()
}

// String returns the base 10 representation of b.
func (b BigInt) String() string {
	s := b.magnitude().Text(10)
	if b.IsNegative() {
		return "-" + s
	}

	return s
}

// ToHexString returns the lowercase base 16 representation of b, zero padded
// to an even number of digits and without any 0x prefix.
func (b BigInt) ToHexString() string {
	s := b.magnitude().Text(16)
	if len(s)%2 == 1 {
		s = "0" + s
	}

	if b.IsNegative() {
		return "-" + s
	}

	return s
}

// MarshalText encodes b as a decimal string.
func (b BigInt) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a decimal string into b.
func (b *BigInt) UnmarshalText(text []byte) error {
	v, err := FromDecimal(string(text))
	if err != nil {
		return err
	}

	*b = v

	return nil
}
