package result

import "fmt"

// Option is either some value or none. The zero value is none.
type Option[T any] struct {
	value T
	some  bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, some: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.some }

// IsNone reports whether the Option is empty.
func (o Option[T]) IsNone() bool { return !o.some }

// Get returns the value and whether it was present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.some
}

// UnwrapOr returns the value or fallback when empty.
func (o Option[T]) UnwrapOr(fallback T) T {
	if !o.some {
		return fallback
	}
	return o.value
}

// OkOr converts the Option to a Result, using err for the none case.
func (o Option[T]) OkOr(err error) Result[T] {
	if !o.some {
		return Err[T](err)
	}
	return Ok(o.value)
}

// String implements fmt.Stringer as some(<value>) or none.
func (o Option[T]) String() string {
	if !o.some {
		return "none"
	}
	return fmt.Sprintf("some(%v)", o.value)
}

// MapOption applies fn to a present value.
func MapOption[T, U any](o Option[T], fn func(T) U) Option[U] {
	if !o.some {
		return None[U]()
	}
	return Some(fn(o.value))
}

// OptionAndThen chains an optional step onto a present value.
func OptionAndThen[T, U any](o Option[T], fn func(T) Option[U]) Option[U] {
	if !o.some {
		return None[U]()
	}
	return fn(o.value)
}
