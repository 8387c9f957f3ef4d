package preferences

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"

	"github.com/coinforge/walletcore/errorcodes"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultKDFIterations is the PBKDF2 work factor used to turn a
	// password into the value encryption key.
	DefaultKDFIterations = 1 << 16

	// saltSize is the size of the random PBKDF2 salt stored with the
	// backend.
	saltSize = 16
)

// verifierPlaintext is sealed under the derived key and stored next to the
// salt, so a wrong password is detected before any value is touched.
var verifierPlaintext = []byte("walletcore preferences v1")

// valueCipher seals preference values with XChaCha20-Poly1305. Each value
// carries its own random nonce, prepended to the ciphertext.
type valueCipher struct {
	key []byte
}

// deriveCipher stretches password with PBKDF2-SHA256 into a cipher key.
func deriveCipher(password, salt []byte, iterations int) *valueCipher {
	key := pbkdf2.Key(
		password, salt, iterations, chacha20poly1305.KeySize,
		sha256.New,
	)

	return &valueCipher{key: key}
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	return salt, nil
}

// seal encrypts plaintext. The associated data binds the ciphertext to the
// slot it is stored in, so values cannot be swapped between keys.
func (c *valueCipher) seal(plaintext, ad []byte) ([]byte, error) {
	// NewX, not New, as we use a 24-byte random nonce.
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}

	nonce := make(
		[]byte, chacha20poly1305.NonceSizeX,
		chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead(),
	)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, ad), nil
}

// open reverses seal.
func (c *valueCipher) open(sealed, ad []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"sealed value too small, must be at least %v bytes",
			chacha20poly1305.NonceSizeX,
		)
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}

	nonce := sealed[:chacha20poly1305.NonceSizeX]
	ciphertext := sealed[chacha20poly1305.NonceSizeX:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeChecksumMismatch, err,
			"cannot authenticate sealed value",
		)
	}

	return plaintext, nil
}

// verifier returns a sealed token that proves knowledge of the key.
func (c *valueCipher) verifier() ([]byte, error) {
	return c.seal(verifierPlaintext, nil)
}

// check reports whether token was produced by verifier with the same key.
func (c *valueCipher) check(token []byte) bool {
	plaintext, err := c.open(token, nil)
	if err != nil {
		return false
	}

	return bytes.Equal(plaintext, verifierPlaintext)
}

// slotAD is the associated data for a value stored under key in namespace.
func slotAD(namespace, key string) []byte {
	ad := make([]byte, 0, len(namespace)+1+len(key))
	ad = append(ad, namespace...)
	ad = append(ad, 0)
	ad = append(ad, key...)

	return ad
}
