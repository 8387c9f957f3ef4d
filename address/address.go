// Package address renders public keys and scripts as Bitcoin and Ethereum
// addresses.
package address

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/coinforge/walletcore/base58"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/hashalgo"
)

const (
	// hash160Size is the size of the payload of P2PKH and P2SH
	// addresses.
	hash160Size = 20

	// witnessVersion0 is the segwit version of P2WPKH outputs.
	witnessVersion0 = 0
)

// EncodeBase58Check prefixes payload with a version byte and encodes it as
// Base58Check.
func EncodeBase58Check(version byte, payload []byte) string {
	b := make([]byte, 0, 1+len(payload))
	b = append(b, version)
	b = append(b, payload...)

	return base58.EncodeWithChecksum(b)
}

// DecodeBase58Check reverses EncodeBase58Check.
func DecodeBase58Check(addr string) (byte, []byte, error) {
	b, err := base58.CheckAndDecode(addr)
	if err != nil {
		return 0, nil, err
	}

	if len(b) == 0 {
		return 0, nil, errorcodes.New(
			errorcodes.ErrCodeInvalidFormat,
			"address has no version byte",
		)
	}

	return b[0], b[1:], nil
}

// P2PKH returns the pay-to-pubkey-hash address of the compressed public key.
func P2PKH(pub *btcec.PublicKey, net *chaincfg.Params) string {
	return EncodeBase58Check(
		net.PubKeyHashAddrID,
		hashalgo.Hash160(pub.SerializeCompressed()),
	)
}

// P2SH returns the pay-to-script-hash address of a redeem script.
func P2SH(script []byte, net *chaincfg.Params) string {
	return EncodeBase58Check(net.ScriptHashAddrID, hashalgo.Hash160(script))
}

// P2WPKH returns the native segwit v0 address of the compressed public key.
func P2WPKH(pub *btcec.PublicKey, net *chaincfg.Params) (string, error) {
	program, err := bech32.ConvertBits(
		hashalgo.Hash160(pub.SerializeCompressed()), 8, 5, true,
	)
	if err != nil {
		return "", err
	}

	data := append([]byte{witnessVersion0}, program...)

	return bech32.Encode(net.Bech32HRPSegwit, data)
}

// Decoded is a parsed legacy Bitcoin address.
type Decoded struct {
	// ScriptHash is true for P2SH and false for P2PKH.
	ScriptHash bool

	// Hash is the 20-byte HASH160 payload.
	Hash []byte
}

// DecodeLegacy parses a P2PKH or P2SH address for net.
func DecodeLegacy(addr string, net *chaincfg.Params) (*Decoded, error) {
	version, payload, err := DecodeBase58Check(addr)
	if err != nil {
		return nil, err
	}

	if len(payload) != hash160Size {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"address payload is %d bytes, want %d", len(payload),
			hash160Size,
		)
	}

	switch version {
	case net.PubKeyHashAddrID:
		return &Decoded{Hash: payload}, nil

	case net.ScriptHashAddrID:
		return &Decoded{ScriptHash: true, Hash: payload}, nil

	default:
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"version %#x is not a %v address", version, net.Name,
		)
	}
}

// Ethereum returns the EIP-55 checksummed address of the public key: the
// last 20 bytes of the Keccak-256 of the uncompressed point.
func Ethereum(pub *btcec.PublicKey) string {
	// Drop the 0x04 prefix of the uncompressed serialization.
	hash := hashalgo.Keccak256(pub.SerializeUncompressed()[1:])

	addr, err := base58.EncodeWithEIP55(
		hash[len(hash)-base58.AddressSize:],
	)
	if err != nil {
		// A 20-byte input is always accepted.
		panic(err)
	}

	return addr
}

// IsValidEthereum reports whether addr is a 0x-prefixed 20-byte hex address.
// Mixed case addresses must carry a valid EIP-55 checksum.
func IsValidEthereum(addr string) bool {
	if len(addr) != 2+2*base58.AddressSize ||
		!strings.HasPrefix(addr, "0x") {

		return false
	}

	digits := addr[2:]
	if _, err := hex.DecodeString(digits); err != nil {
		return false
	}

	lower := digits == strings.ToLower(digits)
	upper := digits == strings.ToUpper(digits)
	if lower || upper {
		return true
	}

	return base58.VerifyEIP55(addr)
}
