// Package baseconv converts between bytes and text in any power of two base,
// following the block and padding rules of RFC 4648.
package baseconv

import (
	"strings"
	"unicode"

	"github.com/coinforge/walletcore/errorcodes"
)

// PaddingPolicy selects how a final partial block is rendered.
type PaddingPolicy uint8

const (
	// PadNone emits only the characters that carry data.
	PadNone PaddingPolicy = iota

	// PadToBlock fills the final block with the pad character.
	PadToBlock
)

// Params describes a base-2^k alphabet.
type Params struct {
	// Dictionary holds 2^BitsPerChar distinct characters.
	Dictionary string

	// BitsPerChar is the number of bits encoded by one character, 1 to 6.
	BitsPerChar uint

	// Pad is the padding character used with PadToBlock.
	Pad rune

	// Padding selects the padding policy used when encoding.
	Padding PaddingPolicy

	// Normalize, when set, is applied to every input character before the
	// dictionary lookup.
	Normalize func(rune) rune
}

// Converter is an immutable codec built from Params.
type Converter struct {
	params Params

	dictionary []rune
	index      map[rune]byte

	// blockChars is the number of characters in a full block.
	blockChars int
}

// New validates params and builds a converter.
func New(params Params) (*Converter, error) {
	if params.BitsPerChar == 0 || params.BitsPerChar > 6 {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"bits per character must be in [1, 6], got %d",
			params.BitsPerChar,
		)
	}

	dictionary := []rune(params.Dictionary)
	if len(dictionary) != 1<<params.BitsPerChar {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"dictionary must have %d characters, got %d",
			1<<params.BitsPerChar, len(dictionary),
		)
	}

	index := make(map[rune]byte, len(dictionary))
	for i, r := range dictionary {
		if _, ok := index[r]; ok {
			return nil, errorcodes.Newf(
				errorcodes.ErrCodeInvalidArgument,
				"duplicate character %q in dictionary", r,
			)
		}
		index[r] = byte(i)
	}

	if params.Padding == PadToBlock {
		if _, ok := index[params.Pad]; ok {
			return nil, errorcodes.Newf(
				errorcodes.ErrCodeInvalidArgument,
				"pad character %q is part of the dictionary",
				params.Pad,
			)
		}
	}

	blockBits := lcm(8, params.BitsPerChar)

	return &Converter{
		params:     params,
		dictionary: dictionary,
		index:      index,
		blockChars: int(blockBits / params.BitsPerChar),
	}, nil
}

// MustNew is like New but panics on invalid params.
func MustNew(params Params) *Converter {
	c, err := New(params)
	if err != nil {
		panic(err)
	}

	return c
}

// Params returns the parameters the converter was built from.
func (c *Converter) Params() Params {
	return c.params
}

// BlockSize returns the number of bytes and characters in a full block.
func (c *Converter) BlockSize() (int, int) {
	bits := c.blockChars * int(c.params.BitsPerChar)
	return bits / 8, c.blockChars
}

// EncodedLen returns the length in characters of the encoding of n bytes.
func (c *Converter) EncodedLen(n int) int {
	bits := n * 8
	width := int(c.params.BitsPerChar)
	chars := (bits + width - 1) / width

	if c.params.Padding == PadToBlock && chars%c.blockChars != 0 {
		chars += c.blockChars - chars%c.blockChars
	}

	return chars
}

// Encode renders data as text.
func (c *Converter) Encode(data []byte) string {
	var (
		sb    strings.Builder
		acc   uint
		nbits uint
		width = c.params.BitsPerChar
		mask  = uint(1)<<width - 1
	)
	sb.Grow(c.EncodedLen(len(data)))

	chars := 0
	for _, b := range data {
		acc = acc<<8 | uint(b)
		nbits += 8

		for nbits >= width {
			nbits -= width
			sb.WriteRune(c.dictionary[(acc>>nbits)&mask])
			chars++
		}
		acc &= uint(1)<<nbits - 1
	}

	// Flush the remaining bits, left aligned in one last character.
	if nbits > 0 {
		sb.WriteRune(c.dictionary[(acc<<(width-nbits))&mask])
		chars++
	}

	if c.params.Padding == PadToBlock {
		for chars%c.blockChars != 0 {
			sb.WriteRune(c.params.Pad)
			chars++
		}
	}

	return sb.String()
}

// Decode parses text. Decoding stops at the first character that is not part
// of the dictionary (after normalization), which includes the pad character.
// Bits of a trailing partial byte are discarded.
func (c *Converter) Decode(text string) []byte {
	var (
		acc   uint
		nbits uint
		width = c.params.BitsPerChar
	)

	out := make([]byte, 0, len(text)*int(width)/8)
	for _, r := range text {
		if c.params.Normalize != nil {
			r = c.params.Normalize(r)
		}

		v, ok := c.index[r]
		if !ok {
			break
		}

		acc = acc<<width | uint(v)
		nbits += width
		if nbits >= 8 {
			nbits -= 8
			out = append(out, byte(acc>>nbits))
			acc &= uint(1)<<nbits - 1
		}
	}

	return out
}

// DecodeStrict is like Decode but fails with an invalid-format error when the
// input holds anything after the data characters other than padding.
func (c *Converter) DecodeStrict(text string) ([]byte, error) {
	runes := []rune(text)

	end := 0
	for end < len(runes) {
		r := runes[end]
		if c.params.Normalize != nil {
			r = c.params.Normalize(r)
		}
		if _, ok := c.index[r]; !ok {
			break
		}
		end++
	}

	for i := end; i < len(runes); i++ {
		if c.params.Padding == PadToBlock && runes[i] == c.params.Pad {
			continue
		}

		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"invalid character %q at offset %d", runes[i], i,
		)
	}

	return c.Decode(string(runes[:end])), nil
}

func gcd(a, b uint) uint {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func lcm(a, b uint) uint {
	return a / gcd(a, b) * b
}

var (
	// Base16 is lower case hexadecimal, accepting upper case input.
	Base16 = MustNew(Params{
		Dictionary:  "0123456789abcdef",
		BitsPerChar: 4,
		Normalize:   unicode.ToLower,
	})

	// Base32 is the RFC 4648 base32 alphabet with padding.
	Base32 = MustNew(Params{
		Dictionary:  "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567",
		BitsPerChar: 5,
		Pad:         '=',
		Padding:     PadToBlock,
		Normalize:   unicode.ToUpper,
	})

	// Base32Hex is the RFC 4648 extended hex base32 alphabet with padding.
	Base32Hex = MustNew(Params{
		Dictionary:  "0123456789ABCDEFGHIJKLMNOPQRSTUV",
		BitsPerChar: 5,
		Pad:         '=',
		Padding:     PadToBlock,
		Normalize:   unicode.ToUpper,
	})

	// Base32Bech32 is the bech32 data alphabet without padding.
	Base32Bech32 = MustNew(Params{
		Dictionary:  "qpzry9x8gf2tvdw0s3jn54khce6mua7l",
		BitsPerChar: 5,
		Normalize:   unicode.ToLower,
	})

	// Base64 is the RFC 4648 standard alphabet with padding.
	Base64 = MustNew(Params{
		Dictionary: "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
			"abcdefghijklmnopqrstuvwxyz0123456789+/",
		BitsPerChar: 6,
		Pad:         '=',
		Padding:     PadToBlock,
	})

	// Base64URL is the RFC 4648 URL safe alphabet without padding.
	Base64URL = MustNew(Params{
		Dictionary: "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
			"abcdefghijklmnopqrstuvwxyz0123456789-_",
		BitsPerChar: 6,
	})
)
