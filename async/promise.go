package async

import (
	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
)

// Promise is the write side of a Future. It may be completed exactly once.
type Promise[T any] struct {
	d *deferred[T]
}

// NewPromise creates a pending promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{d: newDeferred[T]()}
}

// Future returns the read side of the promise. Every call returns a view of
// the same result.
func (p *Promise[T]) Future() Future[T] {
	return Future[T]{d: p.d}
}

// IsCompleted returns true once the promise holds a result.
func (p *Promise[T]) IsCompleted() bool {
	return p.d.poll().IsSome()
}

// Complete sets the result. Completing twice, or with an incomplete Try, is
// an illegal-state error and leaves the first result in place.
func (p *Promise[T]) Complete(result fn.Try[T]) error {
	return p.d.complete(result)
}

// Success completes the promise with a value.
func (p *Promise[T]) Success(val T) error {
	return p.Complete(fn.Success(val))
}

// Failure completes the promise with an error.
func (p *Promise[T]) Failure(err error) error {
	return p.Complete(fn.Failure[T](err))
}

// TryComplete sets the result unless the promise is already completed. It
// reports whether this call won.
func (p *Promise[T]) TryComplete(result fn.Try[T]) bool {
	return p.d.complete(result) == nil
}

// TrySuccess is the non-failing form of Success.
func (p *Promise[T]) TrySuccess(val T) bool {
	return p.TryComplete(fn.Success(val))
}

// TryFailure is the non-failing form of Failure.
func (p *Promise[T]) TryFailure(err error) bool {
	return p.TryComplete(fn.Failure[T](err))
}

// CompleteWith completes the promise with the outcome of other once it is
// known. The error is only reported synchronously if the promise is already
// completed at the time of the call; a later clash is logged.
func (p *Promise[T]) CompleteWith(ctx ExecutionContext, other Future[T]) error {
	if p.IsCompleted() {
		return errorcodes.New(
			errorcodes.ErrCodeIllegalState, "already completed",
		)
	}

	other.OnComplete(ctx, func(result fn.Try[T]) {
		if err := p.Complete(result); err != nil {
			log.Warnf("Dropping result of bridged future: %v", err)
		}
	})

	return nil
}

// TryCompleteWith completes the promise with the outcome of other unless it
// has been completed by someone else in the meantime.
func (p *Promise[T]) TryCompleteWith(ctx ExecutionContext, other Future[T]) {
	other.OnComplete(ctx, func(result fn.Try[T]) {
		p.TryComplete(result)
	})
}
