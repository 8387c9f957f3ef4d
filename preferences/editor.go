package preferences

import (
	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
)

// op is a pending change. A nil value removes the key.
type op struct {
	key   string
	value []byte
}

// Editor batches changes to one namespace. Nothing is written until Commit
// or CommitAsync, which apply the whole batch in one transaction: a Clear
// first, then every put and remove in call order. An Editor is not safe for
// concurrent use.
type Editor struct {
	p     *Preferences
	ops   []op
	clear bool
	err   error
}

func (e *Editor) put(key string, value []byte) *Editor {
	if e.err != nil {
		return e
	}

	if key == "" {
		e.err = errorcodes.New(
			errorcodes.ErrCodeInvalidArgument,
			"empty preference key",
		)

		return e
	}

	e.ops = append(e.ops, op{key: key, value: value})

	return e
}

// PutString stores a string.
func (e *Editor) PutString(key, value string) *Editor {
	return e.put(key, encodeString(value))
}

// PutInt stores a 32-bit integer.
func (e *Editor) PutInt(key string, value int32) *Editor {
	return e.put(key, encodeInt(value))
}

// PutLong stores a 64-bit integer.
func (e *Editor) PutLong(key string, value int64) *Editor {
	return e.put(key, encodeLong(value))
}

// PutBool stores a boolean.
func (e *Editor) PutBool(key string, value bool) *Editor {
	return e.put(key, encodeBool(value))
}

// PutStringArray stores a list of strings.
func (e *Editor) PutStringArray(key string, value []string) *Editor {
	return e.put(key, encodeStringArray(value))
}

// PutData stores a byte string.
func (e *Editor) PutData(key string, value []byte) *Editor {
	return e.put(key, encodeData(value))
}

// PutBigInt stores an arbitrary precision integer.
func (e *Editor) PutBigInt(key string, value bigint.BigInt) *Editor {
	return e.put(key, encodeBigInt(value))
}

// Remove deletes key.
func (e *Editor) Remove(key string) *Editor {
	return e.put(key, nil)
}

// Clear deletes every key in the namespace before the other changes of the
// batch are applied.
func (e *Editor) Clear() *Editor {
	e.clear = true
	return e
}

// Commit applies the batch and waits for it to be written.
func (e *Editor) Commit() error {
	_, err := async.Wait(e.CommitAsync(async.ImmediateContext))
	return err
}

// CommitAsync hands the batch to the backend's write loop. The returned
// future completes on ctx once the batch is written. The editor is reset and
// may be reused.
func (e *Editor) CommitAsync(ctx async.ExecutionContext) async.Future[fn.Unit] {
	if e.err != nil {
		err := e.err
		e.reset()

		return async.Failed[fn.Unit](err)
	}

	var (
		ns    = e.p.namespace
		ops   = e.ops
		clear = e.clear
		b     = e.p.b
	)
	e.reset()

	log.Debugf("Committing %d change(s) to %v/%v (clear=%v)", len(ops),
		b.name, ns, clear)

	written := b.submit(func() error {
		return b.write(ns, clear, ops)
	})

	return async.Map(written, ctx, func(u fn.Unit) (fn.Unit, error) {
		return u, nil
	})
}

func (e *Editor) reset() {
	e.ops = nil
	e.clear = false
	e.err = nil
}
