package fn

// Either holds exactly one of a left or a right value.
type Either[L, R any] struct {
	left  Option[L]
	right Option[R]
}

// NewLeft returns an Either holding l.
func NewLeft[L, R any](l L) Either[L, R] {
	return Either[L, R]{left: Some(l)}
}

// NewRight returns an Either holding r.
func NewRight[L, R any](r R) Either[L, R] {
	return Either[L, R]{right: Some(r)}
}

// IsLeft reports whether e holds a left value.
func (e Either[L, R]) IsLeft() bool {
	return e.left.IsSome()
}

// IsRight reports whether e holds a right value.
func (e Either[L, R]) IsRight() bool {
	return e.right.IsSome()
}

// WhenLeft calls f if e holds a left value.
func (e Either[L, R]) WhenLeft(f func(L)) {
	e.left.WhenSome(f)
}

// WhenRight calls f if e holds a right value.
func (e Either[L, R]) WhenRight(f func(R)) {
	e.right.WhenSome(f)
}

// MapLeft returns a function applying f to the left value of an Either. A
// right value maps to None.
func MapLeft[L, R, O any](f func(L) O) func(Either[L, R]) Option[O] {
	return func(e Either[L, R]) Option[O] {
		return MapOption(f)(e.left)
	}
}
