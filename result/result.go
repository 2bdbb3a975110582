package result

import (
	"errors"
	"fmt"
)

// ErrNilError is stored in place of a nil error passed to Err.
var ErrNilError = errors.New("result: nil error")

// Result is either an ok value or an error. The zero value is ok with the
// zero value of T.
//
// Contract:
// - Immutability: a Result is a value type; methods never modify the receiver.
// - Exclusivity: exactly one of the variants is present. Err never returns a
// non-nil error for an ok Result.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err returns a failed Result holding err. A nil err is replaced with
// ErrNilError so the Result still settles to the error variant.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilError
	}
	return Result[T]{err: err}
}

// From builds a Result from a conventional (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Result[T]{err: err}
	}
	return Result[T]{value: v}
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.err == nil }

// IsErr reports whether the result carries an error.
func (r Result[T]) IsErr() bool { return r.err != nil }

// Get returns the value and error in Go's conventional order.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Value returns the ok value, or the zero value of T on error.
func (r Result[T]) Value() T {
	if r.err != nil {
		var zero T
		return zero
	}
	return r.value
}

// Err returns the error, or nil for an ok Result.
func (r Result[T]) Err() error { return r.err }

// UnwrapOr returns the ok value or fallback.
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// UnwrapOrElse returns the ok value or the output of fn applied to the error.
func (r Result[T]) UnwrapOrElse(fn func(error) T) T {
	if r.err != nil {
		return fn(r.err)
	}
	return r.value
}

// MapErr transforms the error of a failed Result. Ok results pass through.
func (r Result[T]) MapErr(fn func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Err[T](fn(r.err))
}

// Option discards the error and returns the value as an Option.
func (r Result[T]) Option() Option[T] {
	if r.err != nil {
		return None[T]()
	}
	return Some(r.value)
}

// Match calls onOk or onErr depending on the variant.
func (r Result[T]) Match(onOk func(T), onErr func(error)) {
	if r.err != nil {
		if onErr != nil {
			onErr(r.err)
		}
		return
	}
	if onOk != nil {
		onOk(r.value)
	}
}

// String implements fmt.Stringer as ok(<value>) or error(<message>).
func (r Result[T]) String() string {
	if r.err != nil {
		return "error(" + r.err.Error() + ")"
	}
	return fmt.Sprintf("ok(%v)", r.value)
}

// Map applies fn to the ok value. Errors pass through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(fn(r.value))
}

// AndThen chains a fallible step onto an ok value. Errors pass through
// unchanged and fn is not called.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return fn(r.value)
}

// Collect converts a slice of results into a result of a slice. It fails with
// the first error in slice order; otherwise it returns the values in order.
func Collect[T any](rs []Result[T]) Result[[]T] {
	values := make([]T, 0, len(rs))
	for _, r := range rs {
		if r.err != nil {
			return Result[[]T]{err: r.err}
		}
		values = append(values, r.value)
	}
	return Ok(values)
}

// Partition splits results into ok values and errors, preserving order
// within each group.
func Partition[T any](rs []Result[T]) ([]T, []error) {
	var (
		values []T
		errs   []error
	)
	for _, r := range rs {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		values = append(values, r.value)
	}
	return values, errs
}
