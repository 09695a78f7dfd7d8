package csvjson_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/iotest"

	csvjson "github.com/reoring/csvjson"
)

func TestPipelineScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opt   csvjson.ParseOptions
		want  string
	}{
		{
			name:  "emptyInput",
			input: "",
			want:  "[]",
		},
		{
			name:  "headerOnly",
			input: "field1,field2,field3",
			want:  "[]",
		},
		{
			name:  "singleRecord",
			input: "field1,field2,field3\n1,2,3",
			want:  `[{"field1":"1","field2":"2","field3":"3"}]`,
		},
		{
			name:  "multipleRecords",
			input: "field1,field2,field3\n1,2,3\n4,5,6",
			want:  `[{"field1":"1","field2":"2","field3":"3"},{"field1":"4","field2":"5","field3":"6"}]`,
		},
		{
			name:  "quotedHeaderAndField",
			input: "\"field1\",field2,field3\n1,\"2\",3",
			want:  `[{"field1":"1","field2":"2","field3":"3"}]`,
		},
		{
			name:  "newlineInsideQuotedField",
			input: "\"field1\",field2,field3\n1,\"2 &\n 3\",4",
			want:  `[{"field1":"1","field2":"2 &\n 3","field3":"4"}]`,
		},
		{
			name:  "tabDelimiter",
			input: "field1\tfield2\tfield3\n1\t2\t3",
			opt:   csvjson.ParseOptions{Delimiter: '\t'},
			want:  `[{"field1":"1","field2":"2","field3":"3"}]`,
		},
		{
			name:  "singleQuoteChar",
			input: "field1,'field2','field3'\n1,'2',3",
			opt:   csvjson.ParseOptions{Quote: '\''},
			want:  `[{"field1":"1","field2":"2","field3":"3"}]`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			p := csvjson.NewPipeline(strings.NewReader(tt.input), tt.opt)
			written, err := p.Copy(context.Background(), &buf)
			if err != nil {
				t.Fatalf("copy: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("\n got %s\nwant %s", buf.String(), tt.want)
			}
			if written != int64(buf.Len()) {
				t.Fatalf("written = %d, body = %d", written, buf.Len())
			}
		})
	}
}

// flushCounter records how many flushes reach it, one expected per chunk.
type flushCounter struct {
	bytes.Buffer
	flushes int
}

func (f *flushCounter) Flush() error {
	f.flushes++
	return nil
}

func TestPipelineFlushesPerChunk(t *testing.T) {
	t.Parallel()

	var out flushCounter
	p := csvjson.NewPipeline(strings.NewReader("a,b\n1,2\n3,4\n"), csvjson.ParseOptions{})
	if _, err := p.Copy(context.Background(), &out); err != nil {
		t.Fatalf("copy: %v", err)
	}
	// chunks: "[{...}", ",{...}", "]"
	if out.flushes != 3 {
		t.Fatalf("flushes = %d, want 3", out.flushes)
	}
	if out.String() != `[{"a":"1","b":"2"},{"a":"3","b":"4"}]` {
		t.Fatalf("body: %s", out.String())
	}
}

func TestPipelineTruncatesOnMidStreamError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := csvjson.NewPipeline(strings.NewReader("a,b\n1,2\n3,\"unterminated"), csvjson.ParseOptions{})
	written, err := p.Copy(context.Background(), &buf)
	iss, ok := csvjson.AsIssues(err)
	if !ok || iss[0].Code != csvjson.CodeMalformedRow {
		t.Fatalf("want malformed_row, got %v", err)
	}
	// the first record was already on the wire; the close bracket never is
	if buf.String() != `[{"a":"1","b":"2"}` {
		t.Fatalf("truncated output mismatch: %q", buf.String())
	}
	if written != int64(buf.Len()) || written == 0 {
		t.Fatalf("written = %d, body = %d", written, buf.Len())
	}
}

func TestPipelineErrorBeforeFirstChunk(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	// the header itself is malformed, so nothing is ever written and the
	// caller may still produce a clean error response
	p := csvjson.NewPipeline(strings.NewReader("\"a,b"), csvjson.ParseOptions{})
	written, err := p.Copy(context.Background(), &buf)
	if _, ok := csvjson.AsIssues(err); !ok {
		t.Fatalf("want Issues, got %v", err)
	}
	if written != 0 || buf.Len() != 0 {
		t.Fatalf("no output expected, got %q", buf.String())
	}
}

func TestPipelineCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	p := csvjson.NewPipeline(strings.NewReader("a,b\n1,2\n"), csvjson.ParseOptions{})
	written, err := p.Copy(ctx, &buf)
	if err != context.Canceled {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if written != 0 {
		t.Fatalf("no chunk should be written after cancellation, got %d bytes", written)
	}
}

func TestPipelineChunkedInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	input := "field1,field2\n\"a\nb\",c\nd,e\n"
	p := csvjson.NewPipeline(iotest.OneByteReader(strings.NewReader(input)), csvjson.ParseOptions{})
	if _, err := p.Copy(context.Background(), &buf); err != nil {
		t.Fatalf("copy: %v", err)
	}
	want := `[{"field1":"a\nb","field2":"c"},{"field1":"d","field2":"e"}]`
	if buf.String() != want {
		t.Fatalf("\n got %s\nwant %s", buf.String(), want)
	}
}
