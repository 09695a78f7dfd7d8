package compress

import (
	"io"
	"strings"
)

// Writer is the surface a codec hands back: Write accepts output chunks,
// Flush pushes pending compressed bytes to the underlying writer, Close
// finalizes the encoded stream. Close does not close the underlying writer.
type Writer interface {
	io.WriteCloser
	Flush() error
}

// Codec wraps an io.Writer with one content-coding.
//
// Codecs are stateless and safe for concurrent use; the Writers they return
// belong to a single response.
type Codec interface {
	// Name returns the content-coding token sent in Content-Encoding.
	Name() string
	// Wrap returns a Writer encoding into w.
	Wrap(w io.Writer) Writer
}

// Identity is the passthrough codec used when no coding was negotiated.
var Identity Codec = identityCodec{}

type identityCodec struct{}

func (identityCodec) Name() string { return "identity" }

func (identityCodec) Wrap(w io.Writer) Writer { return nopWriter{w} }

type nopWriter struct{ io.Writer }

func (nopWriter) Flush() error { return nil }
func (nopWriter) Close() error { return nil }

// Negotiate picks a codec from an Accept-Encoding header value. zstd wins
// over gzip when both are acceptable; anything else falls back to Identity.
// q-values are honored only as far as "q=0 means excluded", which is all the
// negotiation this endpoint needs.
func Negotiate(acceptEncoding string) Codec {
	var gzipOK, zstdOK bool
	for _, part := range strings.Split(acceptEncoding, ",") {
		token, q, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.Contains(q, "q=0") && !strings.Contains(q, "q=0.") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "zstd":
			zstdOK = true
		case "gzip", "*":
			gzipOK = true
		}
	}
	switch {
	case zstdOK:
		return Zstd
	case gzipOK:
		return Gzip
	default:
		return Identity
	}
}
