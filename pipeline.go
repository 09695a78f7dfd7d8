package csvjson

import (
	"context"
	"io"
)

// Pipeline wires a Decoder into an ArrayEncoder for one request: raw CSV
// bytes in, JSON array chunks out. It holds no state beyond the two stages
// and is built fresh per request; instances never share anything, so any
// number of pipelines may run concurrently without coordination.
type Pipeline struct {
	enc *ArrayEncoder[Record]
}

// NewPipeline composes the decode→encode chain over r. The options are used
// as given; callers that accept them from the outside validate first.
func NewPipeline(r io.Reader, opt ParseOptions) *Pipeline {
	return &Pipeline{enc: NewArrayEncoder[Record](NewDecoder(r, opt))}
}

// Next implements Source[[]byte], yielding the JSON output chunk by chunk.
func (p *Pipeline) Next() ([]byte, error) {
	return p.enc.Next()
}

// flusher matches http.Flusher; errFlusher matches bufio.Writer and the
// compress codecs. Copy flushes through whichever the destination offers so
// each chunk reaches the wire before the next record is decoded.
type flusher interface{ Flush() }

type errFlusher interface{ Flush() error }

// Copy drains the pipeline into dst, one write and one flush per chunk, and
// reports the bytes written. It stops between chunks when ctx is done, which
// is how a client disconnect abandons the pipeline: buffered partial-row
// state is simply dropped with the Pipeline itself.
//
// A non-nil error with written > 0 means dst holds a truncated JSON
// document; by then the transport can no longer signal failure any other
// way.
func (p *Pipeline) Copy(ctx context.Context, dst io.Writer) (written int64, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		chunk, err := p.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := dst.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		switch f := dst.(type) {
		case errFlusher:
			if err := f.Flush(); err != nil {
				return written, err
			}
		case flusher:
			f.Flush()
		}
	}
}
