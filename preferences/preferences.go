package preferences

import (
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/lnutils"
)

// Preferences is a view of a single namespace of a Backend. Getters return
// the supplied default when the key is absent, and an invalid-format error
// when it holds a value of another kind.
type Preferences struct {
	b         *Backend
	namespace string
}

// Namespace returns the name of the namespace.
func (p *Preferences) Namespace() string {
	return p.namespace
}

// get looks up key and decodes it, falling back to def if it is missing.
func get[T any](p *Preferences, key string, def T,
	decode func(string, []byte) (T, error)) (T, error) {

	raw, err := p.b.read(p.namespace, key)
	if err != nil {
		return def, err
	}

	if raw.IsNone() {
		return def, nil
	}

	return decode(key, raw.UnsafeFromSome())
}

// GetString returns the string stored under key.
func (p *Preferences) GetString(key, def string) (string, error) {
	return get(p, key, def, decodeString)
}

// GetInt returns the 32-bit integer stored under key.
func (p *Preferences) GetInt(key string, def int32) (int32, error) {
	return get(p, key, def, decodeInt)
}

// GetLong returns the 64-bit integer stored under key.
func (p *Preferences) GetLong(key string, def int64) (int64, error) {
	return get(p, key, def, decodeLong)
}

// GetBool returns the boolean stored under key.
func (p *Preferences) GetBool(key string, def bool) (bool, error) {
	return get(p, key, def, decodeBool)
}

// GetStringArray returns the string list stored under key.
func (p *Preferences) GetStringArray(key string,
	def []string) ([]string, error) {

	return get(p, key, def, decodeStringArray)
}

// GetData returns the byte string stored under key.
func (p *Preferences) GetData(key string, def []byte) ([]byte, error) {
	return get(p, key, def, decodeData)
}

// GetBigInt returns the integer stored under key.
func (p *Preferences) GetBigInt(key string,
	def bigint.BigInt) (bigint.BigInt, error) {

	return get(p, key, def, decodeBigInt)
}

// Contains reports whether key holds a value.
func (p *Preferences) Contains(key string) (bool, error) {
	raw, err := p.b.read(p.namespace, key)
	if err != nil {
		return false, err
	}

	return raw.IsSome(), nil
}

// Iterate calls visit with every key in the namespace and the kind of its
// value, in key order, until visit returns false.
func (p *Preferences) Iterate(visit func(key string, kind Kind) bool) error {
	var bad error
	err := p.b.iterate(p.namespace, func(key string, raw []byte) bool {
		if len(raw) == 0 {
			bad = errorcodes.Newf(
				errorcodes.ErrCodeInvalidFormat,
				"empty value for %q", key,
			)

			return false
		}

		return visit(key, Kind(raw[0]))
	})
	if err != nil {
		return err
	}

	return bad
}

// Keys returns every key in the namespace in order.
func (p *Preferences) Keys() ([]string, error) {
	var keys []string
	err := p.Iterate(func(key string, _ Kind) bool {
		keys = append(keys, key)
		return true
	})
	if err != nil {
		return nil, err
	}

	log.Tracef("Keys of %v/%v: %v", p.b.name, p.namespace,
		lnutils.SpewLogClosure(keys))

	return keys, nil
}

// Edit starts a batch of changes to the namespace.
func (p *Preferences) Edit() *Editor {
	return &Editor{p: p}
}
