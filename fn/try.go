package fn

import (
	"fmt"
	"testing"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/stretchr/testify/require"
)

// Try is the outcome of a computation that may fail. A completed Try holds
// exactly one of a success value or a failure. The zero value is incomplete,
// which is how a pending asynchronous result is represented.
type Try[T any] struct {
	complete bool
	value    T
	err      error
}

// Success creates a completed Try holding a value.
func Success[T any](val T) Try[T] {
	return Try[T]{complete: true, value: val}
}

// Failure creates a completed Try holding err. A nil error is replaced with a
// runtime error so that a failed Try always carries a cause.
func Failure[T any](err error) Try[T] {
	if err == nil {
		err = errorcodes.New(
			errorcodes.ErrCodeRuntime, "failure without cause",
		)
	}

	return Try[T]{complete: true, err: err}
}

// Failuref creates a completed Try holding a runtime error built from the
// format string.
func Failuref[T any](format string, args ...any) Try[T] {
	return Failure[T](errorcodes.Newf(
		errorcodes.ErrCodeRuntime, format, args...,
	))
}

// TryFrom runs thunk and captures its outcome. A returned error becomes the
// failure, as does a panic. Structured errors are kept as they are, anything
// else is converted to a runtime error carrying the original text.
func TryFrom[T any](thunk func() (T, error)) (result Try[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure[T](errorcodes.FromPanic(r))
		}
	}()

	val, err := thunk()
	if err != nil {
		return Failure[T](errorcodes.AsError(err))
	}

	return Success(val)
}

func incomplete() error {
	return errorcodes.New(
		errorcodes.ErrCodeIllegalState, "try is not complete",
	)
}

// IsComplete returns true once the Try holds either outcome.
func (t Try[T]) IsComplete() bool {
	return t.complete
}

// IsSuccess returns true if the Try completed with a value.
func (t Try[T]) IsSuccess() bool {
	return t.complete && t.err == nil
}

// IsFailure returns true if the Try completed with an error.
func (t Try[T]) IsFailure() bool {
	return t.complete && t.err != nil
}

// Unpack returns the value and error in the customary Go shape. An
// incomplete Try yields an illegal-state error.
func (t Try[T]) Unpack() (T, error) {
	if !t.complete {
		var zero T
		return zero, incomplete()
	}

	return t.value, t.err
}

// Value returns the success value, or an error if the Try failed or is
// incomplete.
func (t Try[T]) Value() (T, error) {
	return t.Unpack()
}

// Err returns the failure, nil on success, or an illegal-state error when the
// Try is incomplete.
func (t Try[T]) Err() error {
	if !t.complete {
		return incomplete()
	}

	return t.err
}

// UnwrapOr returns the success value or the supplied default.
func (t Try[T]) UnwrapOr(defaultValue T) T {
	if t.IsSuccess() {
		return t.value
	}

	return defaultValue
}

// UnwrapOrFail returns the success value or fails the test.
func (t Try[T]) UnwrapOrFail(tb testing.TB) T {
	tb.Helper()

	require.True(tb, t.complete, "Try[%T] is incomplete", t.value)
	require.NoError(tb, t.err)

	return t.value
}

// Option returns the success value as an Option.
func (t Try[T]) Option() Option[T] {
	if t.IsSuccess() {
		return Some(t.value)
	}

	return None[T]()
}

// WhenSuccess runs f with the value if the Try succeeded.
func (t Try[T]) WhenSuccess(f func(T)) {
	if t.IsSuccess() {
		f(t.value)
	}
}

// WhenFailure runs f with the error if the Try failed.
func (t Try[T]) WhenFailure(f func(error)) {
	if t.IsFailure() {
		f(t.err)
	}
}

// Map applies f to the success value. Failures and incomplete values pass
// through untouched.
func (t Try[T]) Map(f func(T) T) Try[T] {
	return MapTry(t, f)
}

// Recover turns a failure into a success by applying f to the error. If f
// itself panics or returns an error, that becomes the new failure.
func (t Try[T]) Recover(f func(error) (T, error)) Try[T] {
	if !t.IsFailure() {
		return t
	}

	return TryFrom(func() (T, error) {
		return f(t.err)
	})
}

// String renders the Try for debugging.
func (t Try[T]) String() string {
	switch {
	case !t.complete:
		return "Try(<incomplete>)"
	case t.err != nil:
		return fmt.Sprintf("Failure(%v)", t.err)
	default:
		return fmt.Sprintf("Success(%v)", t.value)
	}
}

// MapTry applies f to the success value of t, capturing a panic in f as a
// failure.
func MapTry[A, B any](t Try[A], f func(A) B) Try[B] {
	if !t.complete {
		return Try[B]{}
	}
	if t.err != nil {
		return Failure[B](t.err)
	}

	return TryFrom(func() (B, error) {
		return f(t.value), nil
	})
}

// FlatMapTry applies a fallible f to the success value of t.
func FlatMapTry[A, B any](t Try[A], f func(A) Try[B]) Try[B] {
	if !t.complete {
		return Try[B]{}
	}
	if t.err != nil {
		return Failure[B](t.err)
	}

	return FlattenTry(TryFrom(func() (Try[B], error) {
		return f(t.value), nil
	}))
}

// FlattenTry joins a nested Try.
func FlattenTry[A any](t Try[Try[A]]) Try[A] {
	if !t.complete {
		return Try[A]{}
	}
	if t.err != nil {
		return Failure[A](t.err)
	}

	return t.value
}

// TryFromErr wraps a conventional (value, error) pair without touching the
// error.
func TryFromErr[T any](val T, err error) Try[T] {
	if err != nil {
		return Failure[T](err)
	}

	return Success(val)
}
