package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool pools zstd encoders for reuse. klauspost's encoder is
// designed to operate without allocations after a warmup, so storing it pays
// off; single-threaded keeps per-response memory predictable.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			// only reachable with invalid options
			panic(fmt.Sprintf("creating zstd encoder for pool: %v", err))
		}
		return enc
	},
}

// Zstd encodes with klauspost/compress zstd (pure Go, no cgo).
var Zstd Codec = zstdCodec{}

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) Wrap(w io.Writer) Writer {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	enc.Reset(w)
	return &zstdWriter{enc: enc}
}

type zstdWriter struct {
	enc *zstd.Encoder
}

func (w *zstdWriter) Write(p []byte) (int, error) { return w.enc.Write(p) }

func (w *zstdWriter) Flush() error { return w.enc.Flush() }

func (w *zstdWriter) Close() error {
	err := w.enc.Close()
	w.enc.Reset(nil)
	zstdEncoderPool.Put(w.enc)
	w.enc = nil
	return err
}
