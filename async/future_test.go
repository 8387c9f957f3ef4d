package async

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// awaitTimeout bounds every blocking wait in this file so a broken future
// fails the test instead of hanging it.
const awaitTimeout = 5 * time.Second

func await[T any](t *testing.T, f Future[T]) fn.Try[T] {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), awaitTimeout)
	defer cancel()

	result := f.Await(ctx)
	require.NotErrorIs(t, result.Err(), context.DeadlineExceeded)

	return result
}

// TestPromiseCompletesOnce checks that the first completion wins and every
// later attempt is rejected without changing the result.
func TestPromiseCompletesOnce(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		first := rapid.Int().Draw(t, "first")
		second := rapid.Int().Draw(t, "second")

		p := NewPromise[int]()
		require.False(t, p.IsCompleted())
		require.True(t, p.Future().Poll().IsNone())

		require.NoError(t, p.Success(first))
		require.True(t, p.IsCompleted())

		err := p.Success(second)
		require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

		err = p.Failure(errors.New("late"))
		require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

		require.False(t, p.TrySuccess(second))
		require.False(t, p.TryFailure(errors.New("late")))

		require.Equal(t, fn.Some(fn.Success(first)), p.Future().Poll())
	})
}

// TestPromiseRejectsIncompleteResult checks that an incomplete Try cannot be
// used to complete a promise.
func TestPromiseRejectsIncompleteResult(t *testing.T) {
	t.Parallel()

	p := NewPromise[int]()

	err := p.Complete(fn.Try[int]{})
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))
	require.False(t, p.TryComplete(fn.Try[int]{}))
	require.False(t, p.IsCompleted())

	// The failed incomplete-result path must leave FromTry usable.
	fut := FromTry(fn.Try[int]{})
	require.True(t, errorcodes.Is(
		await(t, fut).Err(), errorcodes.ErrCodeIllegalState,
	))
}

// TestCallbacksRunInRegistrationOrder checks that callbacks registered both
// before and after completion run in the order they were added.
func TestCallbacksRunInRegistrationOrder(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		before := rapid.IntRange(0, 20).Draw(t, "before")
		after := rapid.IntRange(0, 20).Draw(t, "after")
		val := rapid.Int().Draw(t, "val")

		p := NewPromise[int]()
		fut := p.Future()

		var order []int
		register := func(id int) {
			fut.OnComplete(ImmediateContext, func(r fn.Try[int]) {
				if r.UnwrapOr(val+1) != val {
					t.Fatalf("callback %d saw %v", id, r)
				}
				order = append(order, id)
			})
		}

		for i := 0; i < before; i++ {
			register(i)
		}
		require.Empty(t, order)

		require.NoError(t, p.Success(val))
		require.Len(t, order, before)

		for i := before; i < before+after; i++ {
			register(i)
		}

		require.Len(t, order, before+after)
		for i, id := range order {
			require.Equal(t, i, id)
		}
	})
}

// TestCallbackAddedDuringDispatch checks that a callback registered from
// inside another callback still runs, after the one that registered it.
func TestCallbackAddedDuringDispatch(t *testing.T) {
	t.Parallel()

	p := NewPromise[string]()
	fut := p.Future()

	var order []string
	fut.OnComplete(ImmediateContext, func(fn.Try[string]) {
		order = append(order, "outer")
		fut.OnComplete(ImmediateContext, func(fn.Try[string]) {
			order = append(order, "nested")
		})
	})
	fut.OnComplete(ImmediateContext, func(fn.Try[string]) {
		order = append(order, "second")
	})

	require.NoError(t, p.Success("x"))
	require.Equal(t, []string{"outer", "second", "nested"}, order)
}

func TestOnSuccessOnFailure(t *testing.T) {
	t.Parallel()

	var (
		got    int
		gotErr error
	)

	ok := Successful(3)
	ok.OnSuccess(nil, func(v int) { got = v })
	ok.OnFailure(nil, func(err error) { gotErr = err })
	require.Equal(t, 3, got)
	require.NoError(t, gotErr)

	boom := errors.New("boom")
	Failed[int](boom).OnFailure(nil, func(err error) { gotErr = err })
	require.ErrorIs(t, gotErr, boom)
}

// TestMapFlatMap checks chaining on an already completed future.
func TestMapFlatMap(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(-1000, 1000).Draw(t, "v")

		str := Map(Successful(v), ImmediateContext,
			func(i int) (string, error) {
				return strconv.Itoa(i), nil
			},
		)
		back := FlatMap(str, ImmediateContext, func(s string) Future[int] {
			return Async(ImmediateContext, func() (int, error) {
				return strconv.Atoi(s)
			})
		})

		got, err := Wait(back)
		require.NoError(t, err)
		require.Equal(t, v, got)
	})
}

// TestMapPropagatesFailure checks that a failed source skips the mapping
// function and carries its error through unchanged.
func TestMapPropagatesFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	called := false

	mapped := Map(Failed[int](boom), ImmediateContext,
		func(i int) (int, error) {
			called = true
			return i, nil
		},
	)
	flat := FlatMap(Failed[int](boom), ImmediateContext,
		func(i int) Future[int] {
			called = true
			return Successful(i)
		},
	)

	_, err := Wait(mapped)
	require.ErrorIs(t, err, boom)
	_, err = Wait(flat)
	require.ErrorIs(t, err, boom)
	require.False(t, called)
}

// TestMapCapturesPanics checks that panics and errors raised by user
// functions turn into failures.
func TestMapCapturesPanics(t *testing.T) {
	t.Parallel()

	panicky := Map(Successful(0), ImmediateContext,
		func(i int) (int, error) {
			return 1 / i, nil
		},
	)
	require.True(t, await(t, panicky).IsFailure())

	nilFuture := FlatMap(Successful(0), ImmediateContext,
		func(int) Future[int] {
			return Future[int]{}
		},
	)
	require.True(t, errorcodes.Is(
		await(t, nilFuture).Err(), errorcodes.ErrCodeIllegalState,
	))

	failing := Async(ImmediateContext, func() (int, error) {
		return 0, errorcodes.New(errorcodes.ErrCodeInvalidFormat, "bad")
	})
	require.True(t, errorcodes.Is(
		await(t, failing).Err(), errorcodes.ErrCodeInvalidFormat,
	))
}

func TestRecover(t *testing.T) {
	t.Parallel()

	recovered := Failed[int](errors.New("x")).Recover(ImmediateContext,
		func(error) (int, error) {
			return 42, nil
		},
	)
	require.Equal(t, fn.Success(42), await(t, recovered))

	untouched := Successful(1).Recover(ImmediateContext,
		func(error) (int, error) {
			return 42, nil
		},
	)
	require.Equal(t, fn.Success(1), await(t, untouched))

	recoveredWith := Failed[int](errors.New("x")).RecoverWith(
		ImmediateContext, func(err error) Future[int] {
			return Successful(len(err.Error()))
		},
	)
	require.Equal(t, fn.Success(1), await(t, recoveredWith))

	second := errors.New("second")
	stillFailing := Failed[int](errors.New("x")).RecoverWith(
		ImmediateContext, func(error) Future[int] {
			return Failed[int](second)
		},
	)
	require.ErrorIs(t, await(t, stillFailing).Err(), second)
}

// TestAwaitContextCancellation checks that Await gives up when its context
// is done and reports a timeout wrapping the context error.
func TestAwaitContextCancellation(t *testing.T) {
	t.Parallel()

	p := NewPromise[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := p.Future().Await(ctx)
	require.ErrorIs(t, result.Err(), context.Canceled)
	require.True(t, errorcodes.Is(result.Err(), errorcodes.ErrCodeTimeout))

	// The promise itself is unaffected.
	require.False(t, p.IsCompleted())
	require.NoError(t, p.Success(1))
}

// TestAwaitFromOtherGoroutine checks that Await and Done observe a result
// set concurrently.
func TestAwaitFromOtherGoroutine(t *testing.T) {
	t.Parallel()

	p := NewPromise[int]()
	go func() {
		_ = p.Success(7)
	}()

	require.Equal(t, fn.Success(7), await(t, p.Future()))

	select {
	case <-p.Future().Done():
	default:
		t.Fatal("done channel not closed after completion")
	}
}

func TestCompleteWith(t *testing.T) {
	t.Parallel()

	src := NewPromise[int]()
	dst := NewPromise[int]()

	require.NoError(t, dst.CompleteWith(ImmediateContext, src.Future()))
	require.False(t, dst.IsCompleted())

	require.NoError(t, src.Success(5))
	require.Equal(t, fn.Success(5), await(t, dst.Future()))

	err := dst.CompleteWith(ImmediateContext, Successful(6))
	require.True(t, errorcodes.Is(err, errorcodes.ErrCodeIllegalState))

	// TryCompleteWith quietly loses against an existing result.
	dst.TryCompleteWith(ImmediateContext, Successful(6))
	require.Equal(t, fn.Success(5), await(t, dst.Future()))
}

// TestConcurrentCompletion checks that exactly one of many racing writers
// wins and every callback sees the winning value.
func TestConcurrentCompletion(t *testing.T) {
	t.Parallel()

	const writers = 16

	p := NewPromise[int]()
	fut := p.Future()

	var (
		mu   sync.Mutex
		seen []int
	)
	for i := 0; i < writers; i++ {
		fut.OnComplete(nil, func(r fn.Try[int]) {
			mu.Lock()
			seen = append(seen, r.UnwrapOr(-1))
			mu.Unlock()
		})
	}

	var (
		wg   sync.WaitGroup
		wins = make(chan int, writers)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if p.TrySuccess(i) {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
	winner := <-wins

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, writers)
	for _, v := range seen {
		require.Equal(t, winner, v)
	}
}
