package csvjson

import "io"

// ArrayEncoder serializes a Source of values into the chunks of one JSON
// array. Concatenating the chunks in emission order yields `[` + the
// comma-separated elements + `]`.
//
// Chunk discipline, chosen so a cut stream is never left with a dangling
// separator:
//
//   - the opening bracket travels in the same chunk as the first element
//     (alone only when the source is empty)
//   - every later element is one chunk, led by its comma
//   - the closing bracket is the final chunk, emitted only after the source
//     finished without error
//
// If the source fails, or an element cannot be serialized, Next returns that
// error and never emits the closing bracket: output already handed to the
// caller stands as a truncated JSON document. That is the streaming
// trade-off, not a recoverable condition.
//
// ArrayEncoder implements Source[[]byte]. Each returned chunk is freshly
// allocated and owned by the caller.
type ArrayEncoder[T any] struct {
	src Source[T]

	started      bool
	pendingClose bool
	done         bool
	err          error
}

// NewArrayEncoder returns an encoder over src. T must serialize to a JSON
// value; Records do, as does anything goccy/go-json can marshal.
func NewArrayEncoder[T any](src Source[T]) *ArrayEncoder[T] {
	return &ArrayEncoder[T]{src: src}
}

// Next returns the next output chunk, io.EOF after the closing bracket, or
// the terminal error. Pulling a chunk drives the source by at most one item.
func (e *ArrayEncoder[T]) Next() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.done {
		return nil, io.EOF
	}
	if e.pendingClose {
		e.pendingClose = false
		e.done = true
		return []byte{']'}, nil
	}

	v, err := e.src.Next()
	if err == io.EOF {
		if !e.started {
			// empty input still opens the array; the close follows as its
			// own chunk so the final-chunk invariant holds in both shapes
			e.started = true
			e.pendingClose = true
			return []byte{'['}, nil
		}
		e.done = true
		return []byte{']'}, nil
	}
	if err != nil {
		e.err = err
		return nil, e.err
	}

	data, merr := marshalValue(v)
	if merr != nil {
		e.err = Issues{{
			Code:    CodeSerializeError,
			Message: "serializing element: " + merr.Error(),
			Offset:  -1,
			Cause:   merr,
		}}
		return nil, e.err
	}

	chunk := make([]byte, 0, len(data)+1)
	if !e.started {
		e.started = true
		chunk = append(chunk, '[')
	} else {
		chunk = append(chunk, ',')
	}
	return append(chunk, data...), nil
}
