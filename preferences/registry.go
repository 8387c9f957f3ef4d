// Package preferences is a persistent, namespaced key/value store for wallet
// settings. Values are typed, optionally encrypted at rest, and written in
// batches through an Editor.
package preferences

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/lnutils"
	"github.com/coinforge/walletcore/multimutex"
	"go.etcd.io/bbolt"
)

const (
	// dbFileExt is appended to a backend's name to form its file name.
	dbFileExt = ".db"

	// openTimeout bounds how long opening a backend waits for the file
	// lock held by another process.
	openTimeout = time.Second
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithKDFIterations overrides the PBKDF2 work factor used by SetEncryption.
func WithKDFIterations(n int) RegistryOption {
	return func(r *Registry) {
		r.kdfIterations = n
	}
}

// WithTaskObserver attaches an observer to every backend's write loop.
func WithTaskObserver(o async.TaskObserver) RegistryOption {
	return func(r *Registry) {
		r.observer = o
	}
}

// Registry owns the set of open backends below one directory. Opening the
// same name twice returns the same Backend; it is closed once every opener
// has closed it, or when the registry shuts down.
type Registry struct {
	dir           string
	kdfIterations int
	observer      async.TaskObserver

	// opening serializes the slow open path per file without blocking
	// lookups of other backends.
	opening *multimutex.Mutex[string]

	mu       sync.Mutex
	backends map[string]*Backend
	closed   bool
}

// NewRegistry creates a registry for backends stored in dir. The directory is
// created on first use.
func NewRegistry(dir string, opts ...RegistryOption) *Registry {
	r := &Registry{
		dir:           filepath.Clean(dir),
		kdfIterations: DefaultKDFIterations,
		opening:       multimutex.NewMutex[string](),
		backends:      make(map[string]*Backend),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Dir returns the directory holding the backend files.
func (r *Registry) Dir() string {
	return r.dir
}

// path validates name and returns the cleaned path of its file.
func (r *Registry) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) ||
		strings.HasPrefix(name, ".") {

		return "", errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"invalid preferences name %q", name,
		)
	}

	return filepath.Clean(filepath.Join(r.dir, name+dbFileExt)), nil
}

func errRegistryClosed() error {
	return errorcodes.New(
		errorcodes.ErrCodeIllegalState, "preferences registry closed",
	)
}

// lookup returns an already open backend and takes a reference on it.
func (r *Registry) lookup(path string) (*Backend, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, errRegistryClosed()
	}

	b, ok := r.backends[path]
	if ok {
		b.refs++
	}

	return b, ok, nil
}

// Open returns the backend called name, opening its file if needed. Every
// successful Open must be paired with a Close on the returned backend.
func (r *Registry) Open(name string) (*Backend, error) {
	path, err := r.path(name)
	if err != nil {
		return nil, err
	}

	if b, ok, err := r.lookup(path); err != nil || ok {
		return b, err
	}

	r.opening.Lock(path)
	defer r.opening.Unlock(path)

	// Somebody else may have finished opening it while we waited.
	if b, ok, err := r.lookup(path); err != nil || ok {
		return b, err
	}

	if err := lnutils.CreateDir(r.dir, 0700); err != nil {
		return nil, err
	}

	b, err := openBackend(r, name, path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		if err := b.shutdown(); err != nil {
			log.Errorf("Unable to close %v: %v", path, err)
		}

		return nil, errRegistryClosed()
	}
	b.refs = 1
	r.backends[path] = b
	r.mu.Unlock()

	log.Infof("Opened preferences %v", path)

	return b, nil
}

// OpenCount returns the number of backends currently open.
func (r *Registry) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.backends)
}

// release drops one reference on b and shuts it down with the last one.
func (r *Registry) release(b *Backend) error {
	r.mu.Lock()
	if b.refs == 0 {
		r.mu.Unlock()

		return errorcodes.Newf(
			errorcodes.ErrCodeIllegalState,
			"preferences %v already closed", b.name,
		)
	}

	b.refs--
	last := b.refs == 0
	if last {
		delete(r.backends, b.path)
	}
	r.mu.Unlock()

	if !last {
		return nil
	}

	log.Infof("Closing preferences %v", b.path)

	return b.shutdown()
}

// Close shuts down every backend regardless of outstanding references. The
// registry cannot be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true

	backends := make([]*Backend, 0, len(r.backends))
	for _, b := range r.backends {
		b.refs = 0
		backends = append(backends, b)
	}
	r.backends = make(map[string]*Backend)
	r.mu.Unlock()

	log.Debugf("Shutting down preferences registry with %d open "+
		"backend(s)", len(backends))

	var errs []error
	for _, b := range backends {
		if err := b.shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func openDB(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: openTimeout,
	})
	if err != nil {
		return nil, errorcodes.Wrap(
			errorcodes.ErrCodeRuntime, err,
			"unable to open %v", path,
		)
	}

	return db, nil
}
