package sqlschema

// Pair carries a (previous, next) value of the same type. It is the uniform
// vehicle for before/after comparison at every granularity: schema pair,
// table pair, column pair, index pair, foreign key pair.
type Pair[T any] struct {
	Previous T
	Next     T
}

// MakePair builds a Pair from its two slots.
func MakePair[T any](previous, next T) Pair[T] {
	return Pair[T]{Previous: previous, Next: next}
}

// MapPair applies f to both slots.
func MapPair[T, U any](p Pair[T], f func(T) U) Pair[U] {
	return Pair[U]{Previous: f(p.Previous), Next: f(p.Next)}
}

// Tuple returns the pair as (previous, next) for destructuring.
func (p Pair[T]) Tuple() (T, T) {
	return p.Previous, p.Next
}
