package preferences

import (
	"bytes"
	"strings"
	"sync"

	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
	"go.etcd.io/bbolt"
)

var (
	// metaBucket holds the encryption salt and verifier. The leading zero
	// byte keeps it out of the namespace key space.
	metaBucket = []byte("\x00meta")

	saltKey     = []byte("salt")
	verifierKey = []byte("verifier")
)

// Backend is one preferences file. All writes go through a dedicated event
// loop, which serializes them; reads are served directly from the file.
type Backend struct {
	name       string
	path       string
	registry   *Registry
	db         *bbolt.DB
	writer     *async.EventLoop
	iterations int

	// refs is guarded by registry.mu.
	refs int

	mu        sync.RWMutex
	closed    bool
	encrypted bool

	// cipher is nil when the backend is plain, or encrypted but not yet
	// unlocked with SetEncryption.
	cipher *valueCipher
}

func openBackend(r *Registry, name, path string) (*Backend, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	var encrypted bool
	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		encrypted = meta.Get(saltKey) != nil

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var opts []async.ContextOption
	if r.observer != nil {
		opts = append(opts, async.WithObserver(r.observer))
	}

	b := &Backend{
		name:       name,
		path:       path,
		registry:   r,
		db:         db,
		writer:     async.NewEventLoop("prefs-"+name, opts...),
		iterations: r.kdfIterations,
		encrypted:  encrypted,
	}
	if err := b.writer.Start(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if encrypted {
		log.Infof("Preferences %v are encrypted and locked", path)
	}

	return b, nil
}

// Name returns the name the backend was opened with.
func (b *Backend) Name() string {
	return b.name
}

// Path returns the file backing the preferences.
func (b *Backend) Path() string {
	return b.path
}

// Close releases the caller's reference. The file is closed once the last
// reference is gone.
func (b *Backend) Close() error {
	return b.registry.release(b)
}

// shutdown stops the write loop, letting queued commits finish, then closes
// the file.
func (b *Backend) shutdown() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if err := b.writer.Stop(); err != nil {
		log.Warnf("Stopping writer of %v: %v", b.path, err)
	}

	return b.db.Close()
}

func errClosed(name string) error {
	return errorcodes.Newf(
		errorcodes.ErrCodeIllegalState, "preferences %v closed", name,
	)
}

func errLocked(name string) error {
	return errorcodes.Newf(
		errorcodes.ErrCodeIllegalState,
		"preferences %v are encrypted and locked", name,
	)
}

// readCipher returns the cipher values must be opened with, or an error if
// values cannot be read at all.
func (b *Backend) readCipher() (*valueCipher, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	switch {
	case b.closed:
		return nil, errClosed(b.name)

	case b.encrypted && b.cipher == nil:
		return nil, errLocked(b.name)
	}

	return b.cipher, nil
}

// submit runs task on the write loop. The returned future fails right away
// if the backend is already closed.
func (b *Backend) submit(task func() error) async.Future[fn.Unit] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return async.Failed[fn.Unit](errClosed(b.name))
	}

	return async.Async(b.writer, func() (fn.Unit, error) {
		return fn.UnitValue, task()
	})
}

// IsEncrypted reports whether values are encrypted at rest.
func (b *Backend) IsEncrypted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.encrypted
}

// IsLocked reports whether the backend is encrypted and no password has been
// supplied yet.
func (b *Backend) IsLocked() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.encrypted && b.cipher == nil
}

// Preferences returns the view of one namespace.
func (b *Backend) Preferences(namespace string) (*Preferences, error) {
	if namespace == "" || strings.HasPrefix(namespace, "\x00") {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"invalid namespace %q", namespace,
		)
	}

	return &Preferences{b: b, namespace: namespace}, nil
}

// Namespaces returns the namespaces that hold at least one value.
func (b *Backend) Namespaces() ([]string, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return nil, errClosed(b.name)
	}

	var names []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, bkt *bbolt.Bucket) error {
			if bytes.Equal(name, metaBucket) {
				return nil
			}
			if k, _ := bkt.Cursor().First(); k != nil {
				names = append(names, string(name))
			}

			return nil
		})
	})

	return names, err
}

// read returns the decoded-ready value stored under key, if any.
func (b *Backend) read(namespace, key string) (fn.Option[[]byte], error) {
	c, err := b.readCipher()
	if err != nil {
		return fn.None[[]byte](), err
	}

	var raw []byte
	err = b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(namespace))
		if bkt == nil {
			return nil
		}

		// Values are only valid for the life of the transaction.
		if v := bkt.Get([]byte(key)); v != nil {
			raw = bytes.Clone(v)
		}

		return nil
	})
	if err != nil || raw == nil {
		return fn.None[[]byte](), err
	}

	if c != nil {
		raw, err = c.open(raw, slotAD(namespace, key))
		if err != nil {
			return fn.None[[]byte](), err
		}
	}

	return fn.Some(raw), nil
}

// iterate calls visit with every key of namespace and its opened value.
func (b *Backend) iterate(namespace string,
	visit func(key string, raw []byte) bool) error {

	c, err := b.readCipher()
	if err != nil {
		return err
	}

	type kv struct {
		key string
		raw []byte
	}

	var entries []kv
	err = b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(namespace))
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(k, v []byte) error {
			entries = append(entries, kv{string(k), bytes.Clone(v)})
			return nil
		})
	})
	if err != nil {
		return err
	}

	for _, e := range entries {
		raw := e.raw
		if c != nil {
			raw, err = c.open(raw, slotAD(namespace, e.key))
			if err != nil {
				return err
			}
		}

		if !visit(e.key, raw) {
			return nil
		}
	}

	return nil
}

// write applies a batch to namespace. It must run on the write loop.
func (b *Backend) write(namespace string, clear bool, ops []op) error {
	c, err := b.readCipher()
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		name := []byte(namespace)
		if clear && tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}

		bkt, err := tx.CreateBucketIfNotExists(name)
		if err != nil {
			return err
		}

		for _, o := range ops {
			if o.value == nil {
				err := bkt.Delete([]byte(o.key))
				if err != nil {
					return err
				}

				continue
			}

			value := o.value
			if c != nil {
				value, err = c.seal(
					value, slotAD(namespace, o.key),
				)
				if err != nil {
					return err
				}
			}

			if err := bkt.Put([]byte(o.key), value); err != nil {
				return err
			}
		}

		return nil
	})
}

// rewriteAll replaces every stored value with transform(value) in a single
// transaction.
func rewriteAll(tx *bbolt.Tx,
	transform func(namespace, key string, v []byte) ([]byte, error)) error {

	var namespaces [][]byte
	err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
		if !bytes.Equal(name, metaBucket) {
			namespaces = append(namespaces, bytes.Clone(name))
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range namespaces {
		bkt := tx.Bucket(name)

		// Collect first, the bucket must not be modified while it is
		// being iterated.
		updates := make(map[string][]byte)
		err := bkt.ForEach(func(k, v []byte) error {
			nv, err := transform(string(name), string(k), v)
			if err != nil {
				return err
			}
			updates[string(k)] = nv

			return nil
		})
		if err != nil {
			return err
		}

		for k, v := range updates {
			if err := bkt.Put([]byte(k), v); err != nil {
				return err
			}
		}
	}

	return nil
}

// SetEncryption unlocks an encrypted backend with password, or encrypts a
// plain one, rewriting every stored value. A wrong password for an encrypted
// backend is an invalid-argument error.
func (b *Backend) SetEncryption(password string) error {
	_, err := async.Wait(b.submit(func() error {
		return b.setEncryption([]byte(password))
	}))

	return err
}

func (b *Backend) setEncryption(password []byte) error {
	var salt, token []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		salt = bytes.Clone(meta.Get(saltKey))
		token = bytes.Clone(meta.Get(verifierKey))

		return nil
	})
	if err != nil {
		return err
	}

	if salt != nil {
		c := deriveCipher(password, salt, b.iterations)
		if !c.check(token) {
			return errorcodes.Newf(
				errorcodes.ErrCodeInvalidArgument,
				"wrong password for preferences %v", b.name,
			)
		}

		b.mu.Lock()
		b.cipher = c
		b.mu.Unlock()

		log.Infof("Unlocked preferences %v", b.path)

		return nil
	}

	salt, err = newSalt()
	if err != nil {
		return err
	}
	c := deriveCipher(password, salt, b.iterations)
	token, err = c.verifier()
	if err != nil {
		return err
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		err := rewriteAll(tx, func(ns, key string, v []byte) ([]byte,
			error) {

			return c.seal(v, slotAD(ns, key))
		})
		if err != nil {
			return err
		}

		meta := tx.Bucket(metaBucket)
		if err := meta.Put(saltKey, salt); err != nil {
			return err
		}

		return meta.Put(verifierKey, token)
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.cipher = c
	b.encrypted = true
	b.mu.Unlock()

	log.Infof("Encrypted preferences %v", b.path)

	return nil
}

// UnsetEncryption decrypts every stored value and removes the password. The
// backend must be unlocked. It is a no-op on a plain backend.
func (b *Backend) UnsetEncryption() error {
	_, err := async.Wait(b.submit(b.unsetEncryption))

	return err
}

func (b *Backend) unsetEncryption() error {
	b.mu.RLock()
	encrypted, c := b.encrypted, b.cipher
	b.mu.RUnlock()

	if !encrypted {
		return nil
	}
	if c == nil {
		return errLocked(b.name)
	}

	err := b.db.Update(func(tx *bbolt.Tx) error {
		err := rewriteAll(tx, func(ns, key string, v []byte) ([]byte,
			error) {

			return c.open(v, slotAD(ns, key))
		})
		if err != nil {
			return err
		}

		meta := tx.Bucket(metaBucket)
		if err := meta.Delete(saltKey); err != nil {
			return err
		}

		return meta.Delete(verifierKey)
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.cipher = nil
	b.encrypted = false
	b.mu.Unlock()

	log.Infof("Removed encryption from preferences %v", b.path)

	return nil
}

// ResetEncryption drops every stored value along with the password. It is
// the way out when the password is lost.
func (b *Backend) ResetEncryption() error {
	_, err := async.Wait(b.submit(b.resetEncryption))

	return err
}

func (b *Backend) resetEncryption() error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		var namespaces [][]byte
		err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if !bytes.Equal(name, metaBucket) {
				namespaces = append(
					namespaces, bytes.Clone(name),
				)
			}

			return nil
		})
		if err != nil {
			return err
		}

		for _, name := range namespaces {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}

		meta := tx.Bucket(metaBucket)
		if err := meta.Delete(saltKey); err != nil {
			return err
		}

		return meta.Delete(verifierKey)
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.cipher = nil
	b.encrypted = false
	b.mu.Unlock()

	log.Warnf("Reset preferences %v, all values were dropped", b.path)

	return nil
}
