package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/labstack/echo/v4"

	csvjson "github.com/reoring/csvjson"
	"github.com/reoring/csvjson/compress"
)

type handler struct {
	cfg Config
}

// convert streams the request's CSV document back out as a JSON array.
//
// Everything that can fail before the first output chunk — bad options, a
// missing multipart field — still becomes a clean 400 with an Issues
// payload. Once the pipeline has written anything, status and headers are
// committed; a later failure is logged with the output digest and the
// connection is aborted so the client sees the truncation.
func (h *handler) convert(c echo.Context) error {
	opt, err := parseOptions(c)
	if err != nil {
		iss, _ := csvjson.AsIssues(err)
		return c.JSON(http.StatusBadRequest, errorPayload(iss))
	}

	req := c.Request()
	if h.cfg.MaxBodyBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response().Writer, req.Body, h.cfg.MaxBodyBytes)
	}

	body, err := h.inputReader(c)
	if err != nil {
		iss, _ := csvjson.AsIssues(err)
		return c.JSON(http.StatusBadRequest, errorPayload(iss))
	}
	defer body.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if name := c.QueryParam("filename"); name != "" {
		resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	}

	codec := compress.Identity
	if h.cfg.Compression {
		codec = compress.Negotiate(req.Header.Get("Accept-Encoding"))
	}
	if codec.Name() != "identity" {
		resp.Header().Set(echo.HeaderContentEncoding, codec.Name())
	}

	out := &chunkWriter{codec: codec, resp: resp, digest: xxhash.New()}
	pipe := csvjson.NewPipeline(body, opt)

	written, err := pipe.Copy(req.Context(), out)
	if err != nil {
		if written == 0 {
			// nothing committed yet; the failure can still be a response
			resp.Header().Del(echo.HeaderContentEncoding)
			resp.Header().Del(echo.HeaderContentDisposition)
			if iss, ok := csvjson.AsIssues(err); ok {
				return c.JSON(http.StatusBadRequest, errorPayload(iss))
			}
			return c.JSON(http.StatusInternalServerError,
				errorPayload(csvjson.Issues{{Code: csvjson.CodeReadError, Message: err.Error()}}))
		}
		c.Logger().Errorf("conversion aborted after %d bytes (digest=%016x): %v",
			written, out.digest.Sum64(), err)
		// drop the connection without a terminating chunk so the truncation
		// is visible at the transport level; Recover re-raises this one
		panic(http.ErrAbortHandler)
	}

	if err := out.Close(); err != nil {
		c.Logger().Errorf("finalizing response encoding: %v", err)
		return nil
	}
	c.Logger().Debugf("converted %d bytes (digest=%016x)", written, out.digest.Sum64())
	return nil
}

// parseOptions extracts ParseOptions from the query string. Recognized
// parameters are delimiter and quote, each a single ASCII character;
// anything else is rejected here so the core never sees invalid options.
func parseOptions(c echo.Context) (csvjson.ParseOptions, error) {
	var opt csvjson.ParseOptions
	if v := c.QueryParam("delimiter"); v != "" {
		b, err := singleChar("delimiter", v)
		if err != nil {
			return opt, err
		}
		opt.Delimiter = b
	}
	if v := c.QueryParam("quote"); v != "" {
		b, err := singleChar("quote", v)
		if err != nil {
			return opt, err
		}
		opt.Quote = b
	}
	if err := opt.Validate(); err != nil {
		return opt, err
	}
	return opt, nil
}

func singleChar(name, v string) (byte, error) {
	if utf8.RuneCountInString(v) != 1 || v[0] >= 0x80 {
		return 0, csvjson.Issues{{
			Code:    csvjson.CodeInvalidOption,
			Message: fmt.Sprintf("%s must be a single ASCII character, got %q", name, v),
		}}
	}
	return v[0], nil
}

// inputReader picks the CSV byte stream: a multipart upload's configured
// field when the request is multipart/form-data, the raw body otherwise.
// Multipart parts are consumed as they arrive; nothing is spooled.
func (h *handler) inputReader(c echo.Context) (io.ReadCloser, error) {
	req := c.Request()
	ctype := req.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		return req.Body, nil
	}
	mr, err := req.MultipartReader()
	if err != nil {
		return nil, csvjson.Issues{{
			Code:    csvjson.CodeInvalidOption,
			Message: "malformed multipart body: " + err.Error(),
		}}
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, csvjson.Issues{{
				Code:    csvjson.CodeInvalidOption,
				Message: fmt.Sprintf("multipart field %q not found", h.cfg.UploadField),
			}}
		}
		if err != nil {
			return nil, csvjson.Issues{{
				Code:    csvjson.CodeInvalidOption,
				Message: "reading multipart body: " + err.Error(),
			}}
		}
		if part.FormName() == h.cfg.UploadField {
			return part, nil
		}
		part.Close()
	}
}

// chunkWriter is the response sink for Pipeline.Copy. It wraps the echo
// response with the negotiated codec on first write (so an error-free 400
// path never emits a compression header frame), tees every chunk into an
// xxhash digest for log correlation, and forwards flushes through codec and
// HTTP layers alike.
type chunkWriter struct {
	codec  compress.Codec
	resp   *echo.Response
	digest *xxhash.Digest
	cw     compress.Writer
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if w.cw == nil {
		w.cw = w.codec.Wrap(w.resp)
	}
	_, _ = w.digest.Write(p)
	return w.cw.Write(p)
}

func (w *chunkWriter) Flush() error {
	if w.cw == nil {
		return nil
	}
	if err := w.cw.Flush(); err != nil {
		return err
	}
	w.resp.Flush()
	return nil
}

// Close finalizes the codec stream. Only called on success; an aborted
// stream stays unterminated on purpose.
func (w *chunkWriter) Close() error {
	if w.cw == nil {
		return nil
	}
	err := w.cw.Close()
	w.resp.Flush()
	return err
}
