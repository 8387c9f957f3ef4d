// Package base58 implements Base58 encoding over a configurable 58 character
// dictionary, with optional 4 byte checksums, and EIP-55 mixed case address
// checksums.
package base58

import (
	"bytes"

	btcbase58 "github.com/btcsuite/btcd/btcutil/base58"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/hashalgo"
)

const (
	// BitcoinDictionary is the alphabet used by Bitcoin and most of its
	// forks. It is the default dictionary.
	BitcoinDictionary = "123456789ABCDEFGHJKLMNPQRSTUVWXYZ" +
		"abcdefghijkmnopqrstuvwxyz"

	// RippleDictionary is the alphabet used by XRP ledger addresses.
	RippleDictionary = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ" +
		"2bcdeCg65jkm8oFqi1tuvAxyz"

	// ChecksumSize is the number of checksum bytes appended by
	// EncodeWithChecksum.
	ChecksumSize = 4

	radix = 58
)

// bitcoinIndex maps a character of BitcoinDictionary to its digit value.
// Codecs translate through it so btcutil's base58 does the arithmetic for
// every dictionary.
var bitcoinIndex = func() [256]byte {
	var idx [256]byte
	for i := 0; i < len(BitcoinDictionary); i++ {
		idx[BitcoinDictionary[i]] = byte(i)
	}

	return idx
}()

// Codec encodes and decodes Base58 strings over a fixed dictionary.
type Codec struct {
	dictionary string

	// index maps an input byte to its digit value, or -1 if the byte is
	// not part of the dictionary.
	index [256]int16

	checksum hashalgo.Hasher
}

// Option tweaks a Codec at construction time.
type Option func(*Codec)

// WithChecksum overrides the hash used to compute checksums. The first
// ChecksumSize bytes of the digest are used.
func WithChecksum(h hashalgo.Hasher) Option {
	return func(c *Codec) {
		c.checksum = h
	}
}

// Bitcoin is the codec for the Bitcoin dictionary with a double SHA-256
// checksum.
var Bitcoin = MustNewCodec(BitcoinDictionary)

// NewCodec builds a codec over dictionary. The dictionary must contain exactly
// 58 distinct single byte characters.
func NewCodec(dictionary string, opts ...Option) (*Codec, error) {
	if len(dictionary) != radix {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"base58 dictionary must have %d characters, got %d",
			radix, len(dictionary),
		)
	}

	c := &Codec{
		dictionary: dictionary,
		checksum:   hashalgo.DoubleSHA256,
	}
	for i := range c.index {
		c.index[i] = -1
	}

	for i := 0; i < len(dictionary); i++ {
		ch := dictionary[i]
		if c.index[ch] != -1 {
			return nil, errorcodes.Newf(
				errorcodes.ErrCodeInvalidArgument,
				"duplicate character %q in base58 dictionary",
				ch,
			)
		}
		c.index[ch] = int16(i)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustNewCodec is like NewCodec but panics on an invalid dictionary.
func MustNewCodec(dictionary string, opts ...Option) *Codec {
	c, err := NewCodec(dictionary, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Dictionary returns the alphabet of the codec.
func (c *Codec) Dictionary() string {
	return c.dictionary
}

// Encode encodes b. Every leading zero byte is rendered as one leading
// occurrence of the dictionary's zero symbol.
func (c *Codec) Encode(b []byte) string {
	encoded := []byte(btcbase58.Encode(b))
	for i, ch := range encoded {
		encoded[i] = c.dictionary[bitcoinIndex[ch]]
	}

	return string(encoded)
}

// Decode decodes s. Any character outside the dictionary fails with an
// invalid-format error.
func (c *Codec) Decode(s string) ([]byte, error) {
	translated := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		v := c.index[s[i]]
		if v < 0 {
			return nil, errorcodes.Newf(
				errorcodes.ErrCodeInvalidFormat,
				"invalid base58 character %q at offset %d",
				s[i], i,
			)
		}
		translated[i] = BitcoinDictionary[v]
	}

	return btcbase58.Decode(string(translated)), nil
}

// computeChecksum returns the first ChecksumSize bytes of the checksum hash.
func (c *Codec) computeChecksum(b []byte) []byte {
	return c.checksum(b)[:ChecksumSize]
}

// EncodeWithChecksum appends a 4 byte checksum to b and encodes the result.
func (c *Codec) EncodeWithChecksum(b []byte) string {
	payload := make([]byte, 0, len(b)+ChecksumSize)
	payload = append(payload, b...)
	payload = append(payload, c.computeChecksum(b)...)

	return c.Encode(payload)
}

// CheckAndDecode is the inverse of EncodeWithChecksum. It fails with a
// checksum-mismatch error when the trailing checksum does not match the
// payload.
func (c *Codec) CheckAndDecode(s string) ([]byte, error) {
	decoded, err := c.Decode(s)
	if err != nil {
		return nil, err
	}

	if len(decoded) < ChecksumSize {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"base58 payload too short for checksum: %d bytes",
			len(decoded),
		)
	}

	split := len(decoded) - ChecksumSize
	payload, sum := decoded[:split], decoded[split:]
	if !bytes.Equal(sum, c.computeChecksum(payload)) {
		return nil, errorcodes.New(
			errorcodes.ErrCodeChecksumMismatch,
			"base58 checksum mismatch",
		)
	}

	return payload, nil
}

// Encode encodes b with the Bitcoin dictionary.
func Encode(b []byte) string {
	return Bitcoin.Encode(b)
}

// Decode decodes s with the Bitcoin dictionary.
func Decode(s string) ([]byte, error) {
	return Bitcoin.Decode(s)
}

// EncodeWithChecksum encodes b with a double SHA-256 checksum and the Bitcoin
// dictionary.
func EncodeWithChecksum(b []byte) string {
	return Bitcoin.EncodeWithChecksum(b)
}

// CheckAndDecode decodes and verifies a Bitcoin dictionary Base58Check
// string.
func CheckAndDecode(s string) ([]byte, error) {
	return Bitcoin.CheckAndDecode(s)
}
