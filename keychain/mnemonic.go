package keychain

import (
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/tyler-smith/go-bip39"
)

const (
	// MinEntropyBits is the smallest entropy size a mnemonic may encode,
	// giving 12 words.
	MinEntropyBits = 128

	// MaxEntropyBits is the largest entropy size a mnemonic may encode,
	// giving 24 words.
	MaxEntropyBits = 256
)

// NewMnemonic creates a random BIP-39 mnemonic with the given number of
// entropy bits, which must be a multiple of 32 between MinEntropyBits and
// MaxEntropyBits.
func NewMnemonic(bits int) (string, error) {
	if bits < MinEntropyBits || bits > MaxEntropyBits || bits%32 != 0 {
		return "", errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"entropy must be a multiple of 32 in [%d, %d] bits, "+
				"got %d", MinEntropyBits, MaxEntropyBits, bits,
		)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", errorcodes.Wrap(
			errorcodes.ErrCodeRuntime, err,
			"unable to read entropy",
		)
	}

	return MnemonicFromEntropy(entropy)
}

// MnemonicFromEntropy encodes entropy as a BIP-39 mnemonic.
func MnemonicFromEntropy(entropy []byte) (string, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errorcodes.Wrap(
			errorcodes.ErrCodeInvalidArgument, err,
			"invalid entropy of %d bytes", len(entropy),
		)
	}

	return mnemonic, nil
}

// ValidateMnemonic reports whether mnemonic has valid words and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// EntropyFromMnemonic recovers the entropy encoded by mnemonic.
func EntropyFromMnemonic(mnemonic string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidFormat, err,
			"invalid mnemonic",
		)
	}

	return entropy, nil
}

// SeedFromMnemonic turns mnemonic and an optional passphrase into the 64-byte
// BIP-39 seed. The mnemonic checksum is verified first.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidArgument, err,
			"invalid mnemonic",
		)
	}

	return seed, nil
}
