// Package hashalgo exposes the hash primitives the encoding layer treats as
// opaque byte transforms.
package hashalgo

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

// Hasher maps arbitrary input to a fixed size digest.
type Hasher func(data []byte) []byte

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) []byte {
	return chainhash.HashB(data)
}

// DoubleSHA256 returns SHA-256(SHA-256(data)), the checksum hash used by
// Base58Check.
func DoubleSHA256(data []byte) []byte {
	return chainhash.DoubleHashB(data)
}

// RIPEMD160 returns the RIPEMD-160 digest of data.
func RIPEMD160(data []byte) []byte {
	h := ripemd160.New()
	_, _ = h.Write(data)

	return h.Sum(nil)
}

// Hash160 returns RIPEMD-160(SHA-256(data)), the public key hash used by
// P2PKH and P2SH addresses.
func Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// Keccak256 returns the legacy Keccak-256 digest (as used by Ethereum, not
// the final SHA3-256 standard) of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		_, _ = h.Write(d)
	}

	return h.Sum(nil)
}

// Blake2b256 returns the 32 byte BLAKE2b digest of data.
func Blake2b256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Keccak256Hasher adapts Keccak256 to the Hasher signature.
func Keccak256Hasher(data []byte) []byte {
	return Keccak256(data)
}

// DoubleBlake2b256 hashes data twice with BLAKE2b-256.
func DoubleBlake2b256(data []byte) []byte {
	return Blake2b256(Blake2b256(data))
}
