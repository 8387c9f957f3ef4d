package base58

import (
	"encoding/hex"
	"strings"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/hashalgo"
)

const (
	// AddressSize is the size of a raw Ethereum address.
	AddressSize = 20

	// textAddressSize is the size of the "0x" prefixed hex address.
	textAddressSize = 2 + 2*AddressSize
)

// EncodeWithEIP55 renders an Ethereum address with the EIP-55 mixed case
// checksum. The input is either the 20 raw address bytes or the 42 byte
// textual form "0x" followed by 40 hex digits. Anything else fails with an
// invalid-format error. The result is always 0x prefixed.
func EncodeWithEIP55(addr []byte) (string, error) {
	var lower string
	switch len(addr) {
	case AddressSize:
		lower = hex.EncodeToString(addr)

	case textAddressSize:
		text := string(addr)
		if !strings.HasPrefix(text, "0x") &&
			!strings.HasPrefix(text, "0X") {

			return "", errorcodes.Newf(
				errorcodes.ErrCodeInvalidFormat,
				"address %q lacks 0x prefix", text,
			)
		}

		raw, err := hex.DecodeString(text[2:])
		if err != nil {
			return "", errorcodes.Wrap(
				errorcodes.ErrCodeInvalidFormat, err,
				"invalid hex address %q", text,
			)
		}
		lower = hex.EncodeToString(raw)

	default:
		return "", errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"invalid address length %d", len(addr),
		)
	}

	hash := hashalgo.Keccak256([]byte(lower))

	out := make([]byte, 0, textAddressSize)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		ch := lower[i]

		// Select the high nibble for even positions and the low one
		// for odd positions.
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		nibble &= 0x0f

		if ch >= 'a' && ch <= 'f' && nibble >= 8 {
			ch -= 'a' - 'A'
		}
		out = append(out, ch)
	}

	return string(out), nil
}

// EncodeWithEIP55String is a convenience wrapper accepting the address as a
// hex string, with or without the 0x prefix.
func EncodeWithEIP55String(addr string) (string, error) {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		addr = "0x" + addr
	}

	return EncodeWithEIP55([]byte(addr))
}

// VerifyEIP55 reports whether addr carries a valid EIP-55 checksum. All lower
// case or all upper case addresses carry no checksum and are rejected.
func VerifyEIP55(addr string) bool {
	encoded, err := EncodeWithEIP55String(addr)
	if err != nil {
		return false
	}

	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}

	return encoded == addr
}
