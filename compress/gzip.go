package compress

import (
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// gzipWriterPool reuses gzip writers across responses; Reset makes them as
// good as new without paying the allocation per request.
var gzipWriterPool = sync.Pool{
	New: func() any {
		w, err := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		if err != nil {
			// BestSpeed is a valid level
			panic(err)
		}
		return w
	},
}

// Gzip encodes with klauspost/compress gzip at BestSpeed: the payload is
// machine-generated JSON headed for a network hop, so favor latency over
// ratio.
var Gzip Codec = gzipCodec{}

type gzipCodec struct{}

func (gzipCodec) Name() string { return "gzip" }

func (gzipCodec) Wrap(w io.Writer) Writer {
	gz := gzipWriterPool.Get().(*gzip.Writer)
	gz.Reset(w)
	return &gzipWriter{gz: gz}
}

type gzipWriter struct {
	gz *gzip.Writer
}

func (w *gzipWriter) Write(p []byte) (int, error) { return w.gz.Write(p) }

func (w *gzipWriter) Flush() error { return w.gz.Flush() }

func (w *gzipWriter) Close() error {
	err := w.gz.Close()
	gzipWriterPool.Put(w.gz)
	w.gz = nil
	return err
}
