package csvjson

import (
	"fmt"
	"io"
	"unicode/utf8"
)

const readBufferSize = 4096

// Decoder is an incremental CSV reader that yields one Record per data row.
//
// The first physical row is consumed as the header and names the fields of
// every later row; it is never yielded itself. Decoding is a byte-level state
// machine over an internal read buffer: a record spanning any number of input
// chunk boundaries is assembled without ever needing the rest of the
// document, so the first Record is available as soon as its terminating
// newline has been read.
//
// Rows may be narrower than the header (trailing keys are absent from the
// Record) or wider (see ParseOptions.ExtraFields). Blank lines are skipped.
// The first malformed row, invalid UTF-8 sequence, or read failure ends the
// stream; Next never resynchronizes past an error.
//
// Decoder implements Source[Record]. It is not safe for concurrent use; each
// request owns its own instance.
type Decoder struct {
	src io.Reader
	opt ParseOptions

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	header     []string
	headerDone bool
	finished   bool
	err        error

	field    []byte
	row      []string
	sawQuote bool

	line    int
	column  int
	offset  int64
	rowLine int
}

// NewDecoder returns a Decoder reading CSV text from r under opt. Zero-value
// options parse standard comma/double-quote CSV. NewDecoder does not validate
// opt; callers that accept options from the outside run Validate first.
func NewDecoder(r io.Reader, opt ParseOptions) *Decoder {
	return &Decoder{
		src:    r,
		opt:    opt.normalize(),
		buf:    make([]byte, readBufferSize),
		line:   1,
		column: 1,
	}
}

// Next returns the next Record, io.EOF after the final row, or a terminal
// error. After a non-EOF error every later call returns the same error.
func (d *Decoder) Next() (Record, error) {
	if d.err != nil {
		return Record{}, d.err
	}
	if d.finished {
		return Record{}, io.EOF
	}
	if !d.headerDone {
		row, err := d.readDataRow()
		if err != nil {
			return Record{}, d.terminate(err)
		}
		d.header = append([]string(nil), row...)
		d.headerDone = true
	}
	row, err := d.readDataRow()
	if err != nil {
		return Record{}, d.terminate(err)
	}
	if len(row) > len(d.header) {
		if d.opt.ExtraFields == ExtraFieldsReject {
			return Record{}, d.terminate(positionedIssue(CodeMalformedRow,
				fmt.Sprintf("row has %d fields, header has %d", len(row), len(d.header)),
				d.rowLine, 1, d.offset))
		}
		row = row[:len(d.header)]
	}
	return NewRecord(d.header, append([]string(nil), row...)), nil
}

// terminate records the stream-ending error. io.EOF marks clean completion
// and stays retryable-as-EOF; anything else is sticky.
func (d *Decoder) terminate(err error) error {
	if err == io.EOF {
		d.finished = true
		return io.EOF
	}
	d.err = err
	return err
}

// readDataRow reads rows until one carries content, skipping blank lines.
func (d *Decoder) readDataRow() ([]string, error) {
	for {
		row, err := d.readRow()
		if err != nil {
			return nil, err
		}
		if len(row) == 1 && row[0] == "" && !d.sawQuote {
			continue
		}
		return row, nil
	}
}

type parseState int

const (
	stateFieldStart parseState = iota
	stateInField
	stateInQuoted
	stateAfterQuoted
)

// readRow parses one physical row into d.row. It returns io.EOF only when
// the input ends before any byte of a new row; a final row without a trailing
// newline is still returned in full.
func (d *Decoder) readRow() ([]string, error) {
	d.row = d.row[:0]
	d.field = d.field[:0]
	d.sawQuote = false
	d.rowLine = d.line
	st := stateFieldStart

	for {
		b, ok, err := d.peek()
		if err != nil {
			return nil, d.readFailure(err)
		}
		if !ok {
			switch st {
			case stateFieldStart:
				if len(d.row) == 0 {
					return nil, io.EOF
				}
				// trailing delimiter at EOF supplies a final empty field
				if err := d.endField(); err != nil {
					return nil, err
				}
				return d.row, nil
			case stateInQuoted:
				return nil, positionedIssue(CodeMalformedRow,
					"unterminated quoted field at end of input", d.line, d.column, d.offset)
			default:
				if err := d.endField(); err != nil {
					return nil, err
				}
				return d.row, nil
			}
		}

		switch st {
		case stateFieldStart:
			switch b {
			case d.opt.Quote:
				d.advance()
				d.sawQuote = true
				st = stateInQuoted
			case d.opt.Delimiter:
				d.advance()
				if err := d.endField(); err != nil {
					return nil, err
				}
			case '\n':
				d.advance()
				if err := d.endField(); err != nil {
					return nil, err
				}
				return d.row, nil
			case '\r':
				consumed, err := d.consumeCRLF()
				if err != nil {
					return nil, err
				}
				if consumed {
					if err := d.endField(); err != nil {
						return nil, err
					}
					return d.row, nil
				}
				d.field = append(d.field, '\r')
				st = stateInField
			default:
				d.advance()
				d.field = append(d.field, b)
				st = stateInField
			}

		case stateInField:
			switch b {
			case d.opt.Delimiter:
				d.advance()
				if err := d.endField(); err != nil {
					return nil, err
				}
				st = stateFieldStart
			case '\n':
				d.advance()
				if err := d.endField(); err != nil {
					return nil, err
				}
				return d.row, nil
			case '\r':
				consumed, err := d.consumeCRLF()
				if err != nil {
					return nil, err
				}
				if consumed {
					if err := d.endField(); err != nil {
						return nil, err
					}
					return d.row, nil
				}
				d.field = append(d.field, '\r')
			default:
				// a quote inside an unquoted field is literal text
				d.advance()
				d.field = append(d.field, b)
			}

		case stateInQuoted:
			if b == d.opt.Quote {
				d.advance()
				nb, nok, err := d.peek()
				if err != nil {
					return nil, d.readFailure(err)
				}
				if nok && nb == d.opt.Quote {
					// doubled quote is an escaped quote character
					d.advance()
					d.field = append(d.field, d.opt.Quote)
					continue
				}
				st = stateAfterQuoted
				continue
			}
			// embedded delimiters, newlines and carriage returns are data
			d.advance()
			d.field = append(d.field, b)

		case stateAfterQuoted:
			switch b {
			case d.opt.Delimiter:
				d.advance()
				if err := d.endField(); err != nil {
					return nil, err
				}
				st = stateFieldStart
			case '\n':
				d.advance()
				if err := d.endField(); err != nil {
					return nil, err
				}
				return d.row, nil
			case '\r':
				consumed, err := d.consumeCRLF()
				if err != nil {
					return nil, err
				}
				if consumed {
					if err := d.endField(); err != nil {
						return nil, err
					}
					return d.row, nil
				}
				return nil, positionedIssue(CodeMalformedRow,
					"unexpected character after closing quote", d.line, d.column, d.offset)
			default:
				return nil, positionedIssue(CodeMalformedRow,
					"unexpected character after closing quote", d.line, d.column, d.offset)
			}
		}
	}
}

// consumeCRLF is called with an unconsumed '\r' at the buffer head. It
// consumes "\r\n" and reports true, or consumes the lone '\r' and reports
// false so the caller can treat it as field data.
func (d *Decoder) consumeCRLF() (bool, error) {
	d.advance()
	nb, nok, err := d.peek()
	if err != nil {
		return false, d.readFailure(err)
	}
	if nok && nb == '\n' {
		d.advance()
		return true, nil
	}
	return false, nil
}

// endField validates and appends the accumulated field to the current row.
func (d *Decoder) endField() error {
	if !utf8.Valid(d.field) {
		return positionedIssue(CodeInvalidEncoding,
			"field contains invalid UTF-8", d.line, d.column, d.offset)
	}
	d.row = append(d.row, string(d.field))
	d.field = d.field[:0]
	return nil
}

func (d *Decoder) readFailure(err error) error {
	return Issues{{
		Code:    CodeReadError,
		Message: "reading input: " + err.Error(),
		Line:    d.line,
		Column:  d.column,
		Offset:  d.offset,
		Cause:   err,
	}}
}

// peek returns the next input byte without consuming it. ok is false at end
// of input; err carries upstream read failures other than io.EOF.
func (d *Decoder) peek() (b byte, ok bool, err error) {
	for d.bufPos >= d.bufLen {
		if d.bufErr != nil {
			if d.bufErr == io.EOF {
				return 0, false, nil
			}
			return 0, false, d.bufErr
		}
		n, rerr := d.src.Read(d.buf)
		d.bufPos, d.bufLen, d.bufErr = 0, n, rerr
	}
	return d.buf[d.bufPos], true, nil
}

// advance consumes the byte previously returned by peek and keeps the
// line/column/offset counters current.
func (d *Decoder) advance() {
	b := d.buf[d.bufPos]
	d.bufPos++
	d.offset++
	if b == '\n' {
		d.line++
		d.column = 1
	} else {
		d.column++
	}
}
