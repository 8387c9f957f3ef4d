package fn

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/semaphore"
)

// Number is satisfied by every built-in numeric type.
type Number interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// All reports whether pred holds for every element of s. It is true for an
// empty slice.
func All[A any](pred func(A) bool, s []A) bool {
	for i := range s {
		if !pred(s[i]) {
			return false
		}
	}

	return true
}

// Any reports whether pred holds for at least one element of s.
func Any[A any](pred func(A) bool, s []A) bool {
	return Find(pred, s).IsSome()
}

// Map applies f to every element of s.
func Map[A, B any](f func(A) B, s []A) []B {
	out := make([]B, len(s))
	for i := range s {
		out[i] = f(s[i])
	}

	return out
}

// Filter returns the elements of s for which pred holds, in order.
func Filter[A any](pred func(A) bool, s []A) []A {
	var out []A
	for _, a := range s {
		if pred(a) {
			out = append(out, a)
		}
	}

	return out
}

// Foldl reduces s from the left, starting with acc.
func Foldl[A, B any](f func(B, A) B, acc B, s []A) B {
	for _, a := range s {
		acc = f(acc, a)
	}

	return acc
}

// Foldr reduces s from the right, starting with acc.
func Foldr[A, B any](f func(A, B) B, acc B, s []A) B {
	for i := len(s) - 1; i >= 0; i-- {
		acc = f(s[i], acc)
	}

	return acc
}

// Find returns the first element of s for which pred holds.
func Find[A any](pred func(A) bool, s []A) Option[A] {
	for _, a := range s {
		if pred(a) {
			return Some(a)
		}
	}

	return None[A]()
}

// Sum adds up the elements of s.
func Sum[N Number](s []N) N {
	return Foldl(func(acc, n N) N {
		return acc + n
	}, 0, s)
}

// ForEachConc applies f to every element of s on up to GOMAXPROCS goroutines
// and returns the results in input order.
func ForEachConc[A, B any](f func(A) B, s []A) []B {
	var (
		ctx = context.Background()
		sem = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
		wg  sync.WaitGroup
		out = make([]B, len(s))
	)

	for i := range s {
		// Acquire on a background context never fails.
		_ = sem.Acquire(ctx, 1)

		wg.Add(1)
		go func(i int) {
			defer func() {
				sem.Release(1)
				wg.Done()
			}()

			out[i] = f(s[i])
		}(i)
	}
	wg.Wait()

	return out
}
