// Package compress provides the response content-codings the server can
// negotiate: identity, gzip and zstd.
//
// Every codec wraps the response writer with a flushable encoder so the
// per-record chunk discipline survives compression: the pipeline flushes
// after each chunk and the codec forwards whatever it has to the wire
// instead of buffering until the stream ends.
package compress
