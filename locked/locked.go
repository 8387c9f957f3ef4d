// Package locked guards a value behind an asynchronous lock. Waiters are
// served in FIFO order and are handed the lock through a Future instead of
// blocking.
package locked

import (
	"sync"

	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
)

// waiter is a pending Acquire call.
type waiter[T any] struct {
	ctx     async.ExecutionContext
	promise *async.Promise[*Guard[T]]
}

// Resource owns a value of type T. At most one Guard for it is live at any
// time.
type Resource[T any] struct {
	mu      sync.Mutex
	value   T
	held    bool
	waiters []waiter[T]
}

// New creates an unlocked resource holding value.
func New[T any](value T) *Resource[T] {
	return &Resource[T]{value: value}
}

// Acquire returns a future that completes with a Guard once the resource is
// free. The guard is delivered on ctx.
func (r *Resource[T]) Acquire(
	ctx async.ExecutionContext) async.Future[*Guard[T]] {

	if ctx == nil {
		ctx = async.ImmediateContext
	}

	p := async.NewPromise[*Guard[T]]()

	r.mu.Lock()
	if r.held {
		r.waiters = append(r.waiters, waiter[T]{ctx: ctx, promise: p})
		r.mu.Unlock()

		return p.Future()
	}
	r.held = true
	r.mu.Unlock()

	g := &Guard[T]{r: r}
	ctx.Execute(func() {
		p.TrySuccess(g)
	})

	return p.Future()
}

// TryAcquire returns a Guard if the resource is free right now.
func (r *Resource[T]) TryAcquire() fn.Option[*Guard[T]] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.held {
		return fn.None[*Guard[T]]()
	}
	r.held = true

	return fn.Some(&Guard[T]{r: r})
}

// Waiting returns the number of Acquire calls queued behind the current
// holder.
func (r *Resource[T]) Waiting() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.waiters)
}

// release hands the resource to the next waiter, or marks it free.
func (r *Resource[T]) release() {
	r.mu.Lock()
	if len(r.waiters) == 0 {
		r.held = false
		r.mu.Unlock()

		return
	}

	next := r.waiters[0]
	r.waiters[0] = waiter[T]{}
	r.waiters = r.waiters[1:]
	r.mu.Unlock()

	g := &Guard[T]{r: r}
	next.ctx.Execute(func() {
		next.promise.TrySuccess(g)
	})
}

// Guard is exclusive access to a Resource's value until Release is called.
type Guard[T any] struct {
	mu       sync.Mutex
	r        *Resource[T]
	released bool
}

func errReleased() error {
	return errorcodes.New(
		errorcodes.ErrCodeIllegalState, "guard already released",
	)
}

// Value returns the guarded value.
func (g *Guard[T]) Value() (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		var zero T
		return zero, errReleased()
	}

	g.r.mu.Lock()
	defer g.r.mu.Unlock()

	return g.r.value, nil
}

// Set replaces the guarded value.
func (g *Guard[T]) Set(value T) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return errReleased()
	}

	g.r.mu.Lock()
	g.r.value = value
	g.r.mu.Unlock()

	return nil
}

// Release gives up the lock. Releasing twice is an illegal-state error.
func (g *Guard[T]) Release() error {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return errReleased()
	}
	g.released = true
	g.mu.Unlock()

	g.r.release()

	return nil
}

// With acquires r, runs f with the guard on ctx and releases the guard once
// f returns, panics or fails.
func With[T, R any](r *Resource[T], ctx async.ExecutionContext,
	f func(*Guard[T]) (R, error)) async.Future[R] {

	return async.Map(r.Acquire(ctx), ctx,
		func(g *Guard[T]) (R, error) {
			defer func() {
				_ = g.Release()
			}()

			return f(g)
		},
	)
}
