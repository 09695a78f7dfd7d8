package csvjson

import "fmt"

// Default parse characters, applied when ParseOptions fields are left zero.
const (
	DefaultDelimiter byte = ','
	DefaultQuote     byte = '"'
)

// ExtraFieldPolicy decides what happens to row values beyond the header width.
type ExtraFieldPolicy int

const (
	// ExtraFieldsDrop silently discards values past the last header name.
	ExtraFieldsDrop ExtraFieldPolicy = iota
	// ExtraFieldsReject fails the row with CodeMalformedRow.
	ExtraFieldsReject
)

// ParseOptions configures a Decoder. The zero value parses standard CSV.
type ParseOptions struct {
	// Delimiter separates fields. Default is ','.
	Delimiter byte
	// Quote opens and closes a quoted field. Default is '"'.
	Quote byte
	// ExtraFields controls rows wider than the header. Default drops extras.
	ExtraFields ExtraFieldPolicy
}

// normalize fills in defaults. Callers keep the original value; the Decoder
// works on the normalized copy.
func (o ParseOptions) normalize() ParseOptions {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.Quote == 0 {
		o.Quote = DefaultQuote
	}
	return o
}

// Validate rejects option combinations the decoder cannot parse under.
// The HTTP layer calls this before a pipeline starts so violations can still
// become a clean 400 response.
func (o ParseOptions) Validate() error {
	n := o.normalize()
	if n.Delimiter >= 0x80 {
		return singleIssue(CodeInvalidOption, "delimiter must be a single ASCII character")
	}
	if n.Quote >= 0x80 {
		return singleIssue(CodeInvalidOption, "quote must be a single ASCII character")
	}
	if n.Delimiter == n.Quote {
		return singleIssue(CodeInvalidOption,
			fmt.Sprintf("delimiter and quote must differ, both are %q", n.Delimiter))
	}
	if n.Delimiter == '\n' || n.Delimiter == '\r' || n.Quote == '\n' || n.Quote == '\r' {
		return singleIssue(CodeInvalidOption, "delimiter and quote must not be line terminators")
	}
	return nil
}
