package async

import (
	"sync"

	"github.com/coinforge/walletcore/fn"
)

// Sequence runs steps one after another on ctx. A step is only started once
// the previous one has succeeded; the first failure fails the whole sequence
// and the remaining steps are never started.
func Sequence[T any](ctx ExecutionContext,
	steps ...func() Future[T]) Future[[]T] {

	p := NewPromise[[]T]()
	results := make([]T, 0, len(steps))

	var next func(i int)
	next = func(i int) {
		if i == len(steps) {
			p.TrySuccess(results)
			return
		}

		step := fn.TryFrom(func() (Future[T], error) {
			return checkFuture(steps[i]())
		})
		if step.IsFailure() {
			p.TryFailure(step.Err())
			return
		}

		fut, _ := step.Unpack()
		fut.OnComplete(ctx, func(result fn.Try[T]) {
			val, err := result.Unpack()
			if err != nil {
				log.Debugf("Sequence stopped at step %d: %v",
					i, err)
				p.TryFailure(err)

				return
			}

			results = append(results, val)
			next(i + 1)
		})
	}

	ctx.Execute(func() {
		next(0)
	})

	return p.Future()
}

// Sequence2 runs two steps of different types one after another, with the
// same short-circuit rule as Sequence.
func Sequence2[A, B any](ctx ExecutionContext, first func() Future[A],
	second func() Future[B]) Future[fn.T2[A, B]] {

	fa := FlatMap(Successful(fn.UnitValue), ctx,
		func(fn.Unit) Future[A] {
			return first()
		},
	)

	return FlatMap(fa, ctx, func(a A) Future[fn.T2[A, B]] {
		return Map(second(), ctx, func(b B) (fn.T2[A, B], error) {
			return fn.NewT2(a, b), nil
		})
	})
}

// ExecuteAll waits for every future and returns their values in input order.
// If any future fails the result is the first failure observed; which one
// that is depends on completion order. An empty input succeeds with an empty
// slice.
func ExecuteAll[T any](ctx ExecutionContext,
	futures ...Future[T]) Future[[]T] {

	if len(futures) == 0 {
		return Successful([]T{})
	}

	p := NewPromise[[]T]()

	var (
		mu        sync.Mutex
		results   = make([]T, len(futures))
		remaining = len(futures)
	)

	for i, fut := range futures {
		i := i
		fut.OnComplete(ctx, func(result fn.Try[T]) {
			val, err := result.Unpack()
			if err != nil {
				p.TryFailure(err)
				return
			}

			mu.Lock()
			results[i] = val
			remaining--
			done := remaining == 0
			mu.Unlock()

			if done {
				p.TrySuccess(results)
			}
		})
	}

	return p.Future()
}
