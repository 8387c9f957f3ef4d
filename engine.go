package walletcore

import (
	"encoding/hex"
	"errors"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/coinforge/walletcore/address"
	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/hashalgo"
	"github.com/coinforge/walletcore/keychain"
	"github.com/coinforge/walletcore/monitoring"
	"github.com/coinforge/walletcore/preferences"
	"github.com/coinforge/walletcore/ttlcache"
	"github.com/prometheus/client_golang/prometheus"
)

// MaxDeriveCount bounds the number of keys a single Derive call produces.
const MaxDeriveCount = 1000

// Engine ties the execution contexts, the preference stores, the key cache
// and the metrics together.
type Engine struct {
	cfg *Config

	started sync.Once
	stopped sync.Once

	pool     *async.ThreadPool
	metrics  *monitoring.ContextMetrics
	promReg  *prometheus.Registry
	exporter *monitoring.Exporter
	registry *preferences.Registry

	// masters caches master keys by a hash of the mnemonic, passphrase and
	// network.
	masters *ttlcache.Cache[string, *keychain.ExtendedKey]
}

// NewEngine creates an engine from a validated config.
func NewEngine(cfg *Config) (*Engine, error) {
	promReg := prometheus.NewRegistry()
	metrics, err := monitoring.NewContextMetrics(promReg)
	if err != nil {
		return nil, err
	}

	pool, err := async.NewThreadPool(
		"engine", cfg.Workers, async.WithObserver(metrics),
	)
	if err != nil {
		return nil, err
	}

	registry := preferences.NewRegistry(
		cfg.PrefsDir(), preferences.WithTaskObserver(metrics),
	)

	return &Engine{
		cfg:      cfg,
		pool:     pool,
		metrics:  metrics,
		promReg:  promReg,
		registry: registry,
		masters: ttlcache.New[string, *keychain.ExtendedKey](
			cfg.Cache.TTL,
		),
	}, nil
}

// Start launches the thread pool and, if enabled, the metrics exporter.
func (e *Engine) Start() error {
	var err error
	e.started.Do(func() {
		log.Infof("Starting engine with %d workers", e.cfg.Workers)

		if err = e.pool.Start(); err != nil {
			return
		}

		if !e.cfg.Prometheus.Enable {
			return
		}

		e.exporter, err = monitoring.ExportPrometheusMetrics(
			*e.cfg.Prometheus, e.promReg,
		)
	})

	return err
}

// Stop shuts down the exporter, the thread pool and every open preference
// store.
func (e *Engine) Stop() error {
	var errs []error
	e.stopped.Do(func() {
		log.Info("Stopping engine")

		if e.exporter != nil {
			errs = append(errs, e.exporter.Stop())
		}
		if e.pool.IsRunning() {
			errs = append(errs, e.pool.Stop())
		}
		errs = append(errs, e.registry.Close())

		e.masters.Purge()
	})

	return errors.Join(errs...)
}

// Context returns the engine's thread pool.
func (e *Engine) Context() async.ExecutionContext {
	return e.pool
}

// Gatherer returns the registry holding the engine's metrics.
func (e *Engine) Gatherer() prometheus.Gatherer {
	return e.promReg
}

// OpenPreferences opens the named preference store. If the config asks for
// encryption the store is encrypted, or unlocked, with the configured
// password.
func (e *Engine) OpenPreferences(name string) (*preferences.Backend, error) {
	b, err := e.registry.Open(name)
	if err != nil {
		return nil, err
	}

	if !e.cfg.Prefs.Encrypt || (b.IsEncrypted() && !b.IsLocked()) {
		return b, nil
	}

	if err := b.SetEncryption(e.cfg.Prefs.Password); err != nil {
		_ = b.Close()
		return nil, err
	}

	return b, nil
}

// DeriveRequest describes a run of consecutive child keys.
type DeriveRequest struct {
	Mnemonic   string
	Passphrase string

	// Path is the parent of the derived keys. Child i of the run is
	// Path.Child(Start + i).
	Path  keychain.Path
	Start uint32
	Count int

	// Ethereum selects ethereum addresses instead of bitcoin ones.
	Ethereum bool
}

// DerivedKey is one derived child with its address.
type DerivedKey struct {
	Path      keychain.Path
	PublicKey string
	Address   string
}

// Derive derives the keys described by req on the thread pool. The master
// key is cached, so repeated requests for the same wallet only pay for the
// seed stretching once.
func (e *Engine) Derive(req DeriveRequest) async.Future[[]DerivedKey] {
	if req.Count <= 0 || req.Count > MaxDeriveCount {
		return async.Failed[[]DerivedKey](errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"count must be in [1, %d], got %d", MaxDeriveCount,
			req.Count,
		))
	}

	net := e.cfg.ActiveNetParams
	if net == nil {
		net = &chaincfg.MainNetParams
	}

	master := e.masters.GetOrLoad(e.pool, masterCacheKey(req, net),
		func(string) (*keychain.ExtendedKey, error) {
			return keychain.FromMnemonic(
				req.Mnemonic, req.Passphrase, net,
			)
		},
	)

	return async.FlatMap(master, e.pool,
		func(m *keychain.ExtendedKey) async.Future[[]DerivedKey] {
			return e.deriveChildren(m, req, net)
		},
	)
}

// deriveChildren fans the derivation of each requested child out over the
// pool and joins the results in index order.
func (e *Engine) deriveChildren(master *keychain.ExtendedKey,
	req DeriveRequest, net *chaincfg.Params) async.Future[[]DerivedKey] {

	children := make([]async.Future[DerivedKey], req.Count)
	for i := range children {
		path := req.Path.Child(req.Start + uint32(i))
		children[i] = async.Async(e.pool, func() (DerivedKey, error) {
			return deriveOne(master, path, req.Ethereum, net)
		})
	}

	return async.ExecuteAll(e.pool, children...)
}

func deriveOne(master *keychain.ExtendedKey, path keychain.Path,
	ethereum bool, net *chaincfg.Params) (DerivedKey, error) {

	key, err := master.Derive(path)
	if err != nil {
		return DerivedKey{}, err
	}

	pub, err := key.PublicKey()
	if err != nil {
		return DerivedKey{}, err
	}

	var addr string
	switch {
	case ethereum:
		addr = address.Ethereum(pub)

	case len(path) > 0 &&
		path[0] == keychain.Hardened(keychain.BIP0084Purpose):

		addr, err = address.P2WPKH(pub, net)
		if err != nil {
			return DerivedKey{}, err
		}

	default:
		addr = address.P2PKH(pub, net)
	}

	return DerivedKey{
		Path:      path,
		PublicKey: hex.EncodeToString(pub.SerializeCompressed()),
		Address:   addr,
	}, nil
}

// masterCacheKey hashes the secrets of req so they are not kept as map keys.
func masterCacheKey(req DeriveRequest, net *chaincfg.Params) string {
	h := hashalgo.SHA256([]byte(
		req.Mnemonic + "\x00" + req.Passphrase + "\x00" + net.Name,
	))

	return hex.EncodeToString(h)
}
