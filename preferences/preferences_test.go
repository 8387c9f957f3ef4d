package preferences

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
	"pgregory.net/rapid"
)

// testIterations keeps key derivation cheap in tests.
const testIterations = 16

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry(
		filepath.Join(t.TempDir(), "prefs"),
		WithKDFIterations(testIterations),
	)
	t.Cleanup(func() {
		require.NoError(t, r.Close())
	})

	return r
}

func openPrefs(t *testing.T, r *Registry, name,
	namespace string) (*Backend, *Preferences) {

	t.Helper()

	b, err := r.Open(name)
	require.NoError(t, err)

	p, err := b.Preferences(namespace)
	require.NoError(t, err)

	return b, p
}

func TestTypedValues(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	_, p := openPrefs(t, r, "wallet", "settings")

	big := bigint.MustFromDecimal("-123456789012345678901234567890")
	err := p.Edit().
		PutString("name", "main").
		PutInt("count", -7).
		PutLong("height", 1<<40).
		PutBool("testnet", true).
		PutStringArray("peers", []string{"a", "", "c"}).
		PutData("blob", []byte{0, 1, 2}).
		PutBigInt("balance", big).
		Commit()
	require.NoError(t, err)

	s, err := p.GetString("name", "")
	require.NoError(t, err)
	require.Equal(t, "main", s)

	i, err := p.GetInt("count", 0)
	require.NoError(t, err)
	require.EqualValues(t, -7, i)

	l, err := p.GetLong("height", 0)
	require.NoError(t, err)
	require.EqualValues(t, 1<<40, l)

	bl, err := p.GetBool("testnet", false)
	require.NoError(t, err)
	require.True(t, bl)

	arr, err := p.GetStringArray("peers", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "", "c"}, arr)

	data, err := p.GetData("blob", nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2}, data)

	got, err := p.GetBigInt("balance", bigint.Zero)
	require.NoError(t, err)
	require.True(t, big.Eq(got))

	// Missing keys fall back to the default.
	s, err = p.GetString("missing", "fallback")
	require.NoError(t, err)
	require.Equal(t, "fallback", s)

	ok, err := p.Contains("missing")
	require.NoError(t, err)
	require.False(t, ok)

	// Reading a value as the wrong kind fails.
	_, err = p.GetInt("name", 0)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	kinds := make(map[string]Kind)
	require.NoError(t, p.Iterate(func(key string, kind Kind) bool {
		kinds[key] = kind
		return true
	}))
	require.Equal(t, map[string]Kind{
		"name":    KindString,
		"count":   KindInt,
		"height":  KindLong,
		"testnet": KindBool,
		"peers":   KindStringArray,
		"blob":    KindData,
		"balance": KindBigInt,
	}, kinds)

	keys, err := p.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{
		"balance", "blob", "count", "height", "name", "peers",
		"testnet",
	}, keys)
}

// TestCodecRoundTrip checks every value encoding against random input.
func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		i := rapid.Int32().Draw(t, "i")
		l := rapid.Int64().Draw(t, "l")
		arr := rapid.SliceOf(rapid.String()).Draw(t, "arr")
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")

		gotS, err := decodeString("k", encodeString(s))
		require.NoError(t, err)
		require.Equal(t, s, gotS)

		gotI, err := decodeInt("k", encodeInt(i))
		require.NoError(t, err)
		require.Equal(t, i, gotI)

		gotL, err := decodeLong("k", encodeLong(l))
		require.NoError(t, err)
		require.Equal(t, l, gotL)

		gotArr, err := decodeStringArray("k", encodeStringArray(arr))
		require.NoError(t, err)
		require.Len(t, gotArr, len(arr))
		for idx := range arr {
			require.Equal(t, arr[idx], gotArr[idx])
		}

		gotData, err := decodeData("k", encodeData(data))
		require.NoError(t, err)
		require.True(t, bytes.Equal(data, gotData))

		n := bigint.New(l)
		gotN, err := decodeBigInt("k", encodeBigInt(n))
		require.NoError(t, err)
		require.True(t, n.Eq(gotN))
	})
}

func TestCodecRejectsCorruption(t *testing.T) {
	t.Parallel()

	_, err := decodeBool("k", []byte{byte(KindBool), 2})
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	_, err = decodeString("k", nil)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	trailing := append(encodeInt(1), 0)
	_, err = decodeInt("k", trailing)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	// An element count larger than the payload is caught before
	// allocating.
	_, err = decodeStringArray("k", []byte{
		byte(KindStringArray), 0xfe, 0xff, 0xff, 0xff, 0x7f,
	})
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	require.Equal(t, "unknown", Kind(0).String())
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	_, p := openPrefs(t, r, "wallet", "ns")

	require.NoError(t, p.Edit().
		PutString("a", "1").
		PutString("b", "2").
		PutString("c", "3").
		Commit())

	require.NoError(t, p.Edit().Remove("a").Commit())
	ok, err := p.Contains("a")
	require.NoError(t, err)
	require.False(t, ok)

	// Clear applies before the puts of the same batch.
	require.NoError(t, p.Edit().PutString("d", "4").Clear().Commit())

	keys, err := p.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"d"}, keys)

	err = p.Edit().PutString("", "x").PutString("e", "5").Commit()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))

	// A rejected batch writes nothing.
	ok, err = p.Contains("e")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNamespacesAreIsolated(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	b, first := openPrefs(t, r, "wallet", "first")

	second, err := b.Preferences("second")
	require.NoError(t, err)

	require.NoError(t, first.Edit().PutInt("k", 1).Commit())
	require.NoError(t, second.Edit().PutInt("k", 2).Commit())

	v, err := first.GetInt("k", 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	v, err = second.GetInt("k", 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	names, err := b.Namespaces()
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, names)

	_, err = b.Preferences("")
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))
	_, err = b.Preferences("\x00meta")
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))
}

func TestRegistryRefCounting(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	b1, err := r.Open("wallet")
	require.NoError(t, err)
	b2, err := r.Open("wallet")
	require.NoError(t, err)
	require.Same(t, b1, b2)
	require.Equal(t, 1, r.OpenCount())
	require.Equal(t, filepath.Join(r.Dir(), "wallet.db"), b1.Path())
	require.Equal(t, "wallet", b1.Name())

	require.NoError(t, b1.Close())
	require.Equal(t, 1, r.OpenCount())

	p, err := b2.Preferences("ns")
	require.NoError(t, err)
	require.NoError(t, p.Edit().PutBool("still-open", true).Commit())

	require.NoError(t, b2.Close())
	require.Zero(t, r.OpenCount())

	err = b2.Close()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

	// A closed backend refuses work.
	err = p.Edit().PutBool("late", true).Commit()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))
	_, err = p.GetBool("still-open", false)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

	for _, name := range []string{"", "../up", "a/b", ".hidden"} {
		_, err := r.Open(name)
		require.True(t, errorcodes.Is(
			err, errorcodes.ErrCodeInvalidArgument,
		), name)
	}
}

// TestPersistence checks that committed values survive reopening the file.
func TestPersistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	r := NewRegistry(dir, WithKDFIterations(testIterations))
	_, p := openPrefs(t, r, "wallet", "ns")
	require.NoError(t, p.Edit().PutString("k", "v").Commit())
	require.NoError(t, r.Close())

	_, err := r.Open("wallet")
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

	r = NewRegistry(dir, WithKDFIterations(testIterations))
	defer func() {
		require.NoError(t, r.Close())
	}()
	_, p = openPrefs(t, r, "wallet", "ns")

	v, err := p.GetString("k", "")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

// TestCommitAsync checks that an asynchronous commit completes on the
// requested context.
func TestCommitAsync(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	_, p := openPrefs(t, r, "wallet", "ns")

	loop := async.NewEventLoop("caller")
	require.NoError(t, loop.Start())
	defer func() {
		require.NoError(t, loop.Stop())
	}()

	fut := p.Edit().PutLong("n", 5).CommitAsync(loop)
	_, err := async.Wait(fut)
	require.NoError(t, err)

	v, err := p.GetLong("n", 0)
	require.NoError(t, err)
	require.EqualValues(t, 5, v)
}

// rawFileContains reports whether needle appears in any stored value of
// the file at path.
func rawFileContains(t *testing.T, path string, needle []byte) bool {
	t.Helper()

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	found := false
	err = db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(_ []byte, bkt *bbolt.Bucket) error {
			return bkt.ForEach(func(_, v []byte) error {
				if bytes.Contains(v, needle) {
					found = true
				}

				return nil
			})
		})
	})
	require.NoError(t, err)

	return found
}

func TestEncryptionLifecycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	secret := []byte("correct horse battery staple")
	path := filepath.Join(dir, "vault.db")

	reopen := func() (*Registry, *Backend, *Preferences) {
		r := NewRegistry(dir, WithKDFIterations(testIterations))
		b, p := openPrefs(t, r, "vault", "keys")

		return r, b, p
	}

	// Plain values are rewritten when encryption is turned on.
	r, b, p := reopen()
	require.NoError(t, p.Edit().PutData("seed", secret).Commit())
	require.False(t, b.IsEncrypted())

	require.NoError(t, b.SetEncryption("pw"))
	require.True(t, b.IsEncrypted())
	require.False(t, b.IsLocked())

	got, err := p.GetData("seed", nil)
	require.NoError(t, err)
	require.Equal(t, secret, got)

	require.NoError(t, p.Edit().PutString("label", "cold").Commit())
	require.NoError(t, r.Close())
	require.False(t, rawFileContains(t, path, secret))
	require.False(t, rawFileContains(t, path, []byte("cold")))

	// After reopening the backend is locked until the password is given.
	r, b, p = reopen()
	require.True(t, b.IsLocked())

	_, err = p.GetData("seed", nil)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))
	err = p.Edit().PutString("x", "y").Commit()
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

	err = b.SetEncryption("wrong")
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))
	require.True(t, b.IsLocked())

	require.NoError(t, b.SetEncryption("pw"))
	label, err := p.GetString("label", "")
	require.NoError(t, err)
	require.Equal(t, "cold", label)

	// Removing encryption leaves plain, readable values behind.
	require.NoError(t, b.UnsetEncryption())
	require.False(t, b.IsEncrypted())
	require.NoError(t, r.Close())
	require.True(t, rawFileContains(t, path, secret))

	r, b, p = reopen()
	defer func() {
		require.NoError(t, r.Close())
	}()
	require.False(t, b.IsLocked())

	got, err = p.GetData("seed", nil)
	require.NoError(t, err)
	require.Equal(t, secret, got)
	require.NoError(t, b.UnsetEncryption())
}

// TestSealedValuesBoundToSlot checks that a sealed value copied to another
// key is rejected.
func TestSealedValuesBoundToSlot(t *testing.T) {
	t.Parallel()

	c := deriveCipher([]byte("pw"), []byte("salt"), testIterations)

	sealed, err := c.seal([]byte("v"), slotAD("ns", "a"))
	require.NoError(t, err)

	_, err = c.open(sealed, slotAD("ns", "b"))
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeChecksumMismatch))

	plain, err := c.open(sealed, slotAD("ns", "a"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), plain)

	_, err = c.open([]byte{1, 2}, nil)
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidFormat))

	token, err := c.verifier()
	require.NoError(t, err)
	require.True(t, c.check(token))
	other := deriveCipher([]byte("other"), []byte("salt"), testIterations)
	require.False(t, other.check(token))
}

func TestResetEncryption(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	b, p := openPrefs(t, r, "vault", "keys")

	require.NoError(t, b.SetEncryption("pw"))
	require.NoError(t, p.Edit().PutString("k", "v").Commit())

	require.NoError(t, b.ResetEncryption())
	require.False(t, b.IsEncrypted())

	ok, err := p.Contains("k")
	require.NoError(t, err)
	require.False(t, ok)

	// The backend is usable again without a password.
	require.NoError(t, p.Edit().PutString("k", "plain").Commit())
	v, err := p.GetString("k", "")
	require.NoError(t, err)
	require.Equal(t, "plain", v)
}

func TestRegistryCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	r := NewRegistry(dir)
	defer func() {
		require.NoError(t, r.Close())
	}()

	_, err := r.Open("wallet")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "wallet.db"))
	require.NoError(t, err)
}
