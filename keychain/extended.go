package keychain

import (
	"context"
	"crypto/sha256"
	"log/slog"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog/v2"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/lnutils"
)

// ExtendedKey is a BIP-32 extended key, private or public.
type ExtendedKey struct {
	key *hdkeychain.ExtendedKey
}

// NewMaster derives the master key of seed for net.
func NewMaster(seed []byte, net *chaincfg.Params) (*ExtendedKey, error) {
	key, err := hdkeychain.NewMaster(seed, net)
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidArgument, err,
			"unable to create master key",
		)
	}

	return &ExtendedKey{key: key}, nil
}

// FromMnemonic derives the master key of a BIP-39 mnemonic.
func FromMnemonic(mnemonic, passphrase string,
	net *chaincfg.Params) (*ExtendedKey, error) {

	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}

	return NewMaster(seed, net)
}

// FromString parses a serialized xprv or xpub.
func FromString(s string) (*ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(s)
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidFormat, err,
			"invalid extended key",
		)
	}

	return &ExtendedKey{key: key}, nil
}

// String serializes the key as an xprv or xpub.
func (k *ExtendedKey) String() string {
	return k.key.String()
}

// IsPrivate reports whether the key can derive private children.
func (k *ExtendedKey) IsPrivate() bool {
	return k.key.IsPrivate()
}

// Depth returns the number of derivation steps from the master key.
func (k *ExtendedKey) Depth() uint8 {
	return k.key.Depth()
}

// ChildIndex returns the index this key was derived at.
func (k *ExtendedKey) ChildIndex() uint32 {
	return k.key.ChildIndex()
}

// IsForNet reports whether the key was serialized for net.
func (k *ExtendedKey) IsForNet(net *chaincfg.Params) bool {
	return k.key.IsForNet(net)
}

// DeriveChild derives the child at index i.
func (k *ExtendedKey) DeriveChild(i uint32) (*ExtendedKey, error) {
	child, err := k.key.Derive(i)
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidArgument, err,
			"unable to derive child %d", i,
		)
	}

	return &ExtendedKey{key: child}, nil
}

// Derive walks path starting from k. The path is relative to k, so it should
// start at the master key for absolute paths.
func (k *ExtendedKey) Derive(path Path) (*ExtendedKey, error) {
	current := k
	for _, level := range path {
		next, err := current.DeriveChild(level)
		if err != nil {
			return nil, err
		}
		current = next
	}

	if log.Level() <= btclog.LevelDebug {
		if pub, err := current.PublicKey(); err == nil {
			log.DebugS(context.Background(), "Derived key",
				slog.String("path", path.String()),
				lnutils.LogPubKey("pubkey", pub))
		}
	}

	return current, nil
}

// Neuter returns the public version of the key.
func (k *ExtendedKey) Neuter() (*ExtendedKey, error) {
	pub, err := k.key.Neuter()
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeRuntime, err, "unable to neuter key",
		)
	}

	return &ExtendedKey{key: pub}, nil
}

// PublicKey returns the secp256k1 public key.
func (k *ExtendedKey) PublicKey() (*btcec.PublicKey, error) {
	pub, err := k.key.ECPubKey()
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeRuntime, err, "invalid public key",
		)
	}

	return pub, nil
}

// PrivateKey returns the secp256k1 private key. Public keys have none.
func (k *ExtendedKey) PrivateKey() (*btcec.PrivateKey, error) {
	if !k.key.IsPrivate() {
		return nil, errorcodes.New(
			errorcodes.ErrCodeIllegalState,
			"public extended key has no private key",
		)
	}

	priv, err := k.key.ECPrivKey()
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeRuntime, err, "invalid private key",
		)
	}

	return priv, nil
}

// SignHash produces a DER-ready ECDSA signature of a 32-byte digest.
func (k *ExtendedKey) SignHash(hash []byte) (*ecdsa.Signature, error) {
	if len(hash) != sha256.Size {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"digest must be %d bytes, got %d", sha256.Size,
			len(hash),
		)
	}

	priv, err := k.PrivateKey()
	if err != nil {
		return nil, err
	}

	return ecdsa.Sign(priv, hash), nil
}

// VerifyHash checks an ECDSA signature of a digest against the key.
func (k *ExtendedKey) VerifyHash(sig *ecdsa.Signature, hash []byte) bool {
	pub, err := k.PublicKey()
	if err != nil {
		return false
	}

	return sig.Verify(hash, pub)
}

// ECDH performs a scalar multiplication between the key's private key and a
// remote public key. The output is the sha256 of the resulting shared point
// serialized in compressed format:
//
//	sx := k*P
//	s := sha256(sx.SerializeCompressed())
func (k *ExtendedKey) ECDH(remote *btcec.PublicKey) ([32]byte, error) {
	priv, err := k.PrivateKey()
	if err != nil {
		return [32]byte{}, err
	}

	var (
		pubJacobian btcec.JacobianPoint
		s           btcec.JacobianPoint
	)
	remote.AsJacobian(&pubJacobian)

	btcec.ScalarMultNonConst(&priv.Key, &pubJacobian, &s)
	s.ToAffine()
	sPubKey := btcec.NewPublicKey(&s.X, &s.Y)

	return sha256.Sum256(sPubKey.SerializeCompressed()), nil
}
