package walletcore

import (
	"strings"
	"testing"

	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/keychain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const abandonMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

func startTestEngine(t *testing.T, args ...string) *Engine {
	t.Helper()

	cfg, err := loadTestConfig(t, args...)
	require.NoError(t, err)

	e, err := NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	t.Cleanup(func() {
		require.NoError(t, e.Stop())
	})

	return e
}

func TestEngineDerive(t *testing.T) {
	e := startTestEngine(t, "--workers=3")

	base, err := keychain.ParsePath("m/44'/60'/0'/0")
	require.NoError(t, err)

	keys, err := async.Wait(e.Derive(DeriveRequest{
		Mnemonic: abandonMnemonic,
		Path:     base,
		Count:    5,
		Ethereum: true,
	}))
	require.NoError(t, err)
	require.Len(t, keys, 5)

	require.Equal(
		t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", keys[0].Address,
	)
	for i, k := range keys {
		require.Equal(t, base.Child(uint32(i)), k.Path)
		require.True(t, strings.HasPrefix(k.Address, "0x"))
	}

	// The master key is cached after the first request.
	require.Equal(t, 1, e.masters.Len())

	again, err := async.Wait(e.Derive(DeriveRequest{
		Mnemonic: abandonMnemonic,
		Path:     base,
		Start:    2,
		Count:    1,
		Ethereum: true,
	}))
	require.NoError(t, err)
	require.Equal(t, keys[2], again[0])
	require.Equal(t, 1, e.masters.Len())
}

func TestEngineDeriveBitcoin(t *testing.T) {
	e := startTestEngine(t)

	legacy, err := keychain.ParsePath("m/44'/0'/0'/0")
	require.NoError(t, err)
	segwit, err := keychain.ParsePath("m/84'/0'/0'/0")
	require.NoError(t, err)

	keys, err := async.Wait(e.Derive(DeriveRequest{
		Mnemonic: abandonMnemonic, Path: legacy, Count: 1,
	}))
	require.NoError(t, err)
	require.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", keys[0].Address)

	keys, err = async.Wait(e.Derive(DeriveRequest{
		Mnemonic: abandonMnemonic, Path: segwit, Count: 1,
	}))
	require.NoError(t, err)
	require.Equal(
		t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", keys[0].Address,
	)
}

func TestEngineDeriveErrors(t *testing.T) {
	e := startTestEngine(t)

	_, err := async.Wait(e.Derive(DeriveRequest{
		Mnemonic: abandonMnemonic, Count: 0,
	}))
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeInvalidArgument))

	_, err = async.Wait(e.Derive(DeriveRequest{
		Mnemonic: "abandon abandon", Count: 1,
	}))
	require.Error(t, err)

	// Failed loads are not cached.
	require.Zero(t, e.masters.Len())
}

func TestEngineMetrics(t *testing.T) {
	e := startTestEngine(t, "--workers=2")

	_, err := async.Wait(e.Derive(DeriveRequest{
		Mnemonic: abandonMnemonic, Count: 4,
	}))
	require.NoError(t, err)

	// Only the engine pool ran tasks, so there is a single series.
	n, err := testutil.GatherAndCount(
		e.Gatherer(), "walletcore_executor_tasks_submitted_total",
	)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestEnginePreferences(t *testing.T) {
	e := startTestEngine(t,
		"--prefs.encrypt", "--prefs.password=hunter2",
	)

	b, err := e.OpenPreferences("wallet")
	require.NoError(t, err)
	require.True(t, b.IsEncrypted())
	require.False(t, b.IsLocked())

	p, err := b.Preferences("main")
	require.NoError(t, err)
	require.NoError(t, p.Edit().PutString("k", "v").Commit())

	got, err := p.GetString("k", "")
	require.NoError(t, err)
	require.Equal(t, "v", got)

	// Opening again shares the backend.
	b2, err := e.OpenPreferences("wallet")
	require.NoError(t, err)
	require.Same(t, b, b2)
	require.NoError(t, b2.Close())
	require.NoError(t, b.Close())
}
