package csvjson

import "io"

// Source abstracts a pull-based stream of items.
//
// Next returns the next item, io.EOF after the last one, or any other error
// to terminate the stream; after a non-nil error the Source must not be
// advanced again. The contract is the demand-driven half of the pipeline:
// nothing upstream runs until a consumer asks for the next item, which is
// what bounds memory to one in-flight item per stage.
type Source[T any] interface {
	Next() (T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func() (T, error)

func (f SourceFunc[T]) Next() (T, error) { return f() }

// SliceSource wraps a fixed slice as a Source. Mostly useful in tests and for
// encoding pre-collected values through ArrayEncoder.
func SliceSource[T any](items []T) Source[T] {
	i := 0
	return SourceFunc[T](func() (T, error) {
		if i >= len(items) {
			var zero T
			return zero, io.EOF
		}
		v := items[i]
		i++
		return v, nil
	})
}
