package csvjson_test

import (
	"errors"
	"io"
	"testing"

	csvjson "github.com/reoring/csvjson"
)

type item struct {
	ID string `json:"id"`
}

// chunks drains the encoder, returning every chunk as a string plus the
// terminal error (io.EOF for clean completion).
func chunks[T any](enc *csvjson.ArrayEncoder[T]) ([]string, error) {
	var out []string
	for {
		c, err := enc.Next()
		if err != nil {
			return out, err
		}
		out = append(out, string(c))
	}
}

func TestArrayEncoderEmpty(t *testing.T) {
	t.Parallel()

	enc := csvjson.NewArrayEncoder(csvjson.SliceSource[item](nil))
	got, err := chunks(enc)
	if err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
	if len(got) != 2 || got[0] != "[" || got[1] != "]" {
		t.Fatalf("want [\"[\" \"]\"], got %q", got)
	}
}

func TestArrayEncoderChunkShapes(t *testing.T) {
	t.Parallel()

	enc := csvjson.NewArrayEncoder(csvjson.SliceSource([]item{{ID: "a"}, {ID: "b"}, {ID: "c"}}))
	got, err := chunks(enc)
	if err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
	want := []string{`[{"id":"a"}`, `,{"id":"b"}`, `,{"id":"c"}`, `]`}
	if len(got) != len(want) {
		t.Fatalf("got %d chunks, want %d: %q", len(got), len(want), got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("chunk %d: got %q, want %q", i, got[i], want[i])
		}
	}
	// the opening bracket travels with the first element and every comma
	// leads its element, so any truncation point leaves no dangling comma
	for _, c := range got[:len(got)-1] {
		if c[len(c)-1] == ',' {
			t.Fatalf("chunk ends with a separator: %q", c)
		}
	}
}

func TestArrayEncoderMidStreamError(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream failure")
	n := 0
	src := csvjson.SourceFunc[item](func() (item, error) {
		n++
		if n <= 2 {
			return item{ID: "ok"}, nil
		}
		return item{}, boom
	})

	enc := csvjson.NewArrayEncoder[item](src)
	got, err := chunks(enc)
	if err != boom {
		t.Fatalf("want upstream error, got %v", err)
	}
	// both emitted elements stand, the closing bracket never arrives: the
	// concatenated output is a deliberately truncated JSON document
	joined := ""
	for _, c := range got {
		joined += c
	}
	if joined != `[{"id":"ok"},{"id":"ok"}` {
		t.Fatalf("truncated output mismatch: %q", joined)
	}
	// the error is terminal
	if _, err := enc.Next(); err != boom {
		t.Fatalf("want sticky error, got %v", err)
	}
}

func TestArrayEncoderErrorBeforeFirstElement(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad header")
	enc := csvjson.NewArrayEncoder[item](csvjson.SourceFunc[item](func() (item, error) {
		return item{}, boom
	}))
	got, err := chunks(enc)
	if err != boom {
		t.Fatalf("want upstream error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no chunk should precede the first decoded element, got %q", got)
	}
}

func TestArrayEncoderSerializeFailure(t *testing.T) {
	t.Parallel()

	// channels cannot serialize to JSON
	enc := csvjson.NewArrayEncoder(csvjson.SliceSource([]any{"fine", make(chan int)}))
	got, err := chunks(enc)
	iss, ok := csvjson.AsIssues(err)
	if !ok || iss[0].Code != csvjson.CodeSerializeError {
		t.Fatalf("want serialize_error, got %v", err)
	}
	if len(got) != 1 || got[0] != `["fine"` {
		t.Fatalf("want the first element emitted before the failure, got %q", got)
	}
}

func TestArrayEncoderIdempotentOutput(t *testing.T) {
	t.Parallel()

	records := []item{{ID: "x"}, {ID: "y"}}
	first, err1 := chunks(csvjson.NewArrayEncoder(csvjson.SliceSource(records)))
	second, err2 := chunks(csvjson.NewArrayEncoder(csvjson.SliceSource(records)))
	if err1 != io.EOF || err2 != io.EOF {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	a, b := "", ""
	for _, c := range first {
		a += c
	}
	for _, c := range second {
		b += c
	}
	if a != b {
		t.Fatalf("encoding is not reproducible: %q vs %q", a, b)
	}
}
