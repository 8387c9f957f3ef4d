package async

import (
	"sync"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
)

// callback is a continuation together with the context it must run on.
type callback[T any] struct {
	ctx ExecutionContext
	fn  func(fn.Try[T])
}

// deferred is the shared write-once cell behind a Promise and its Future.
// It moves from pending to completed exactly once.
type deferred[T any] struct {
	mu sync.Mutex

	result    fn.Option[fn.Try[T]]
	callbacks []callback[T]

	// dispatching is set while one goroutine is handing callbacks to their
	// contexts, so that callbacks added concurrently keep registration
	// order.
	dispatching bool

	done chan struct{}
}

func newDeferred[T any]() *deferred[T] {
	return &deferred[T]{
		result: fn.None[fn.Try[T]](),
		done:   make(chan struct{}),
	}
}

// complete stores the result and dispatches every pending callback. It
// returns an illegal-state error if the cell is already completed or the
// result is incomplete.
func (d *deferred[T]) complete(result fn.Try[T]) error {
	if !result.IsComplete() {
		return errorcodes.New(
			errorcodes.ErrCodeIllegalState,
			"cannot complete with an incomplete result",
		)
	}

	d.mu.Lock()
	if d.result.IsSome() {
		d.mu.Unlock()

		return errorcodes.New(
			errorcodes.ErrCodeIllegalState, "already completed",
		)
	}
	d.result = fn.Some(result)
	close(d.done)
	d.mu.Unlock()

	d.trigger()

	return nil
}

// addCallback registers cb to run on ctx once the cell completes. If it is
// already completed the callback is dispatched right away.
func (d *deferred[T]) addCallback(ctx ExecutionContext,
	cb func(fn.Try[T])) {

	if ctx == nil {
		ctx = ImmediateContext
	}

	d.mu.Lock()
	d.callbacks = append(d.callbacks, callback[T]{ctx: ctx, fn: cb})
	completed := d.result.IsSome()
	d.mu.Unlock()

	if completed {
		d.trigger()
	}
}

// trigger hands every queued callback to its context. The lock is held only
// while taking callbacks off the queue, never while running them.
func (d *deferred[T]) trigger() {
	d.mu.Lock()
	if d.dispatching || d.result.IsNone() {
		d.mu.Unlock()
		return
	}
	d.dispatching = true

	for len(d.callbacks) > 0 {
		pending := d.callbacks
		d.callbacks = nil
		result := d.result.UnsafeFromSome()
		d.mu.Unlock()

		for _, cb := range pending {
			cb := cb
			cb.ctx.Execute(func() {
				cb.fn(result)
			})
		}

		d.mu.Lock()
	}

	d.dispatching = false
	d.mu.Unlock()
}

// poll returns the result if the cell has completed.
func (d *deferred[T]) poll() fn.Option[fn.Try[T]] {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.result
}
