package fn

// T2 is a pair of values of possibly different types.
type T2[A, B any] struct {
	first  A
	second B
}

// NewT2 pairs a and b.
func NewT2[A, B any](a A, b B) T2[A, B] {
	return T2[A, B]{first: a, second: b}
}

// First returns the first element.
func (t T2[A, B]) First() A {
	return t.first
}

// Second returns the second element.
func (t T2[A, B]) Second() B {
	return t.second
}

// Unpack returns both elements.
func (t T2[A, B]) Unpack() (A, B) {
	return t.first, t.second
}
