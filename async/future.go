package async

import (
	"context"
	"time"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
)

// Future is the read side of a write-once asynchronous result. The zero
// value is not usable; futures are obtained from a Promise or one of the
// constructors in this package.
type Future[T any] struct {
	d *deferred[T]
}

// OnComplete registers cb to run on ctx with the result. Callbacks run in
// registration order as far as their contexts allow. A nil ctx runs the
// callback on the completing goroutine.
func (f Future[T]) OnComplete(ctx ExecutionContext, cb func(fn.Try[T])) {
	f.d.addCallback(ctx, cb)
}

// OnSuccess registers cb to run only if the future succeeds.
func (f Future[T]) OnSuccess(ctx ExecutionContext, cb func(T)) {
	f.OnComplete(ctx, func(result fn.Try[T]) {
		result.WhenSuccess(cb)
	})
}

// OnFailure registers cb to run only if the future fails.
func (f Future[T]) OnFailure(ctx ExecutionContext, cb func(error)) {
	f.OnComplete(ctx, func(result fn.Try[T]) {
		result.WhenFailure(cb)
	})
}

// IsCompleted returns true once the result is available.
func (f Future[T]) IsCompleted() bool {
	return f.d.poll().IsSome()
}

// Poll returns the result if it is available, without blocking.
func (f Future[T]) Poll() fn.Option[fn.Try[T]] {
	return f.d.poll()
}

// Done returns a channel that is closed once the result is available.
func (f Future[T]) Done() <-chan struct{} {
	return f.d.done
}

// Await blocks until the future completes or ctx is done. In the latter case
// a timeout failure wrapping the context error is returned; the future
// itself is left untouched.
func (f Future[T]) Await(ctx context.Context) fn.Try[T] {
	select {
	case <-f.d.done:
		return f.d.poll().UnsafeFromSome()

	case <-ctx.Done():
		return fn.Failure[T](errorcodes.Wrap(
			errorcodes.ErrCodeTimeout, ctx.Err(),
			"await interrupted",
		))
	}
}

// Recover returns a future that replaces a failure with the outcome of
// handler. Successes pass through unchanged.
func (f Future[T]) Recover(ctx ExecutionContext,
	handler func(error) (T, error)) Future[T] {

	p := NewPromise[T]()
	f.OnComplete(ctx, func(result fn.Try[T]) {
		p.TryComplete(fn.TryFrom(func() (T, error) {
			if result.IsSuccess() {
				return result.Unpack()
			}

			return handler(result.Err())
		}))
	})

	return p.Future()
}

// RecoverWith is like Recover but the handler returns another future whose
// outcome becomes the result.
func (f Future[T]) RecoverWith(ctx ExecutionContext,
	handler func(error) Future[T]) Future[T] {

	p := NewPromise[T]()
	f.OnComplete(ctx, func(result fn.Try[T]) {
		if result.IsSuccess() {
			p.TryComplete(result)
			return
		}

		next := fn.TryFrom(func() (Future[T], error) {
			return checkFuture(handler(result.Err()))
		})
		if next.IsFailure() {
			p.TryComplete(fn.Failure[T](next.Err()))
			return
		}

		p.TryCompleteWith(ctx, next.UnwrapOr(Future[T]{}))
	})

	return p.Future()
}

// checkFuture rejects the zero Future, which has no result cell behind it.
func checkFuture[T any](f Future[T]) (Future[T], error) {
	if f.d == nil {
		return f, errorcodes.New(
			errorcodes.ErrCodeIllegalState, "nil future",
		)
	}

	return f, nil
}

// Wait blocks until the future completes and returns its value, or its
// failure as an error.
func Wait[T any](f Future[T]) (T, error) {
	return f.Await(context.Background()).Unpack()
}

// Successful returns a future already completed with val.
func Successful[T any](val T) Future[T] {
	p := NewPromise[T]()
	_ = p.Success(val)

	return p.Future()
}

// Failed returns a future already completed with err.
func Failed[T any](err error) Future[T] {
	p := NewPromise[T]()
	_ = p.Failure(err)

	return p.Future()
}

// FromTry returns a future already completed with result. An incomplete Try
// yields a failed future.
func FromTry[T any](result fn.Try[T]) Future[T] {
	p := NewPromise[T]()
	if err := p.Complete(result); err != nil {
		_ = p.Failure(err)
	}

	return p.Future()
}

// Async runs thunk on ctx and returns a future of its outcome. A panic in
// thunk fails the future.
func Async[T any](ctx ExecutionContext, thunk func() (T, error)) Future[T] {
	p := NewPromise[T]()
	ctx.Execute(func() {
		p.TryComplete(fn.TryFrom(thunk))
	})

	return p.Future()
}

// Map returns a future of f's outcome applied to the value of fut. Failures
// of fut are propagated without calling f.
func Map[A, B any](fut Future[A], ctx ExecutionContext,
	f func(A) (B, error)) Future[B] {

	p := NewPromise[B]()
	fut.OnComplete(ctx, func(result fn.Try[A]) {
		if result.IsFailure() {
			p.TryFailure(result.Err())
			return
		}

		a, _ := result.Unpack()
		p.TryComplete(fn.TryFrom(func() (B, error) {
			return f(a)
		}))
	})

	return p.Future()
}

// FlatMap chains a computation that itself returns a future.
func FlatMap[A, B any](fut Future[A], ctx ExecutionContext,
	f func(A) Future[B]) Future[B] {

	p := NewPromise[B]()
	fut.OnComplete(ctx, func(result fn.Try[A]) {
		if result.IsFailure() {
			p.TryFailure(result.Err())
			return
		}

		a, _ := result.Unpack()
		next := fn.TryFrom(func() (Future[B], error) {
			return checkFuture(f(a))
		})
		if next.IsFailure() {
			p.TryFailure(next.Err())
			return
		}

		p.TryCompleteWith(ctx, next.UnwrapOr(Future[B]{}))
	})

	return p.Future()
}

// WithTimeout returns a future that mirrors fut unless d elapses on ctx
// first, in which case it fails with a timeout error. fut keeps running.
func WithTimeout[T any](fut Future[T], ctx ExecutionContext,
	d time.Duration) Future[T] {

	p := NewPromise[T]()
	p.TryCompleteWith(ImmediateContext, fut)

	ctx.Delay(func() {
		p.TryFailure(errorcodes.Newf(
			errorcodes.ErrCodeTimeout, "future timed out after %v",
			d,
		))
	}, d)

	return p.Future()
}
