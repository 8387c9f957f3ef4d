package fn

import (
	"testing"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/stretchr/testify/require"
)

// Option holds either one value or nothing. The zero value is None.
type Option[A any] struct {
	ok  bool
	val A
}

// Some wraps a.
func Some[A any](a A) Option[A] {
	return Option[A]{ok: true, val: a}
}

// None returns the empty Option.
func None[A any]() Option[A] {
	return Option[A]{}
}

// OptionFromPtr returns None for a nil pointer and Some of the pointee
// otherwise.
func OptionFromPtr[A any](a *A) Option[A] {
	if a == nil {
		return None[A]()
	}

	return Some(*a)
}

// ElimOption folds o into a B: ifNone is called for None, ifSome with the
// value otherwise.
func ElimOption[A, B any](o Option[A], ifNone func() B, ifSome func(A) B) B {
	if !o.ok {
		return ifNone()
	}

	return ifSome(o.val)
}

// IsSome reports whether o holds a value.
func (o Option[A]) IsSome() bool {
	return o.ok
}

// IsNone reports whether o is empty.
func (o Option[A]) IsNone() bool {
	return !o.ok
}

// UnwrapOr returns the value, or def if o is empty.
func (o Option[A]) UnwrapOr(def A) A {
	if !o.ok {
		return def
	}

	return o.val
}

// UnwrapOrFunc is like UnwrapOr but only computes the default when needed.
func (o Option[A]) UnwrapOrFunc(def func() A) A {
	if !o.ok {
		return def()
	}

	return o.val
}

// UnwrapOrErr returns the value, or err if o is empty.
func (o Option[A]) UnwrapOrErr(err error) (A, error) {
	if !o.ok {
		var zero A
		return zero, err
	}

	return o.val, nil
}

// UnwrapOrFail returns the value and fails the test if o is empty.
func (o Option[A]) UnwrapOrFail(t *testing.T) A {
	t.Helper()

	require.True(t, o.ok, "expected Some, got None[%T]", o.val)

	return o.val
}

// Value returns the value, or an illegal-state error if o is empty.
func (o Option[A]) Value() (A, error) {
	var zero A
	if !o.ok {
		return zero, errorcodes.Newf(
			errorcodes.ErrCodeIllegalState, "None[%T] has no value",
			zero,
		)
	}

	return o.val, nil
}

// UnsafeFromSome returns the value and panics if o is empty.
func (o Option[A]) UnsafeFromSome() A {
	if !o.ok {
		panic("fn: UnsafeFromSome on None")
	}

	return o.val
}

// WhenSome calls f with the value if there is one.
func (o Option[A]) WhenSome(f func(A)) {
	if o.ok {
		f(o.val)
	}
}

// Alt returns o if it holds a value and other otherwise.
func (o Option[A]) Alt(other Option[A]) Option[A] {
	if o.ok {
		return o
	}

	return other
}

// OrElse is like Alt but only builds the alternative when o is empty.
func (o Option[A]) OrElse(other func() Option[A]) Option[A] {
	if o.ok {
		return o
	}

	return other()
}

// SomeToSuccess turns o into a completed Try, failing with err when o is
// empty.
func (o Option[A]) SomeToSuccess(err error) Try[A] {
	if !o.ok {
		return Failure[A](err)
	}

	return Success(o.val)
}

// MapOption lifts f to operate on Options.
func MapOption[A, B any](f func(A) B) func(Option[A]) Option[B] {
	return func(o Option[A]) Option[B] {
		if !o.ok {
			return None[B]()
		}

		return Some(f(o.val))
	}
}

// FlatMapOption lifts an Option-returning f to operate on Options.
func FlatMapOption[A, B any](f func(A) Option[B]) func(Option[A]) Option[B] {
	return func(o Option[A]) Option[B] {
		if !o.ok {
			return None[B]()
		}

		return f(o.val)
	}
}

// FlattenOption collapses a nested Option. The result is None if either layer
// is.
func FlattenOption[A any](oo Option[Option[A]]) Option[A] {
	if !oo.ok {
		return None[A]()
	}

	return oo.val
}

// LiftA2Option lifts a binary f to operate on two Options. The result is None
// unless both arguments hold a value.
func LiftA2Option[A, B, C any](
	f func(A, B) C) func(Option[A], Option[B]) Option[C] {

	return func(a Option[A], b Option[B]) Option[C] {
		if !a.ok || !b.ok {
			return None[C]()
		}

		return Some(f(a.val, b.val))
	}
}

// TransposeOptTry swaps the layers of an Option[Try[A]]. None becomes a
// successful None; a failure inside Some stays a failure.
func TransposeOptTry[A any](o Option[Try[A]]) Try[Option[A]] {
	if !o.ok {
		return Success(None[A]())
	}

	return MapTry(o.val, Some[A])
}
