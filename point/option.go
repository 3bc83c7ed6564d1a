package point

// Option holds a value that may be absent. Fields typed Option[T] are only
// emitted when a value is present.
//
// telegen recognizes optional fields by the unqualified type name, so packages
// using this type declare a local alias:
//
//	type Option[T any] = point.Option[T]
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}
