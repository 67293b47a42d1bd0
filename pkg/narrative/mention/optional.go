package mention

// Opt holds a value that may be absent. The zero value is absent.
type Opt[T any] struct {
	val T
	set bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{val: v, set: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.val, o.set
}

// IsSet reports whether the value is present.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if !o.set {
		return def
	}
	return o.val
}
