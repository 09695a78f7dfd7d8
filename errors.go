package csvjson

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidOption   = "invalid_option"
	CodeInvalidEncoding = "invalid_encoding"
	CodeMalformedRow    = "malformed_row"
	CodeSerializeError  = "serialize_error"
	CodeReadError       = "read_error"
)

// Issue represents a single decode or encode failure.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Line and Column locate the failure in the input text (1-based).
	// Zero when the failure is not tied to a position, e.g. option errors.
	Line   int   `json:"line,omitempty"`
	Column int   `json:"column,omitempty"`
	Offset int64 `json:"offset,omitempty"` // byte offset in the input; -1 when unknown
	Cause  error `json:"-"`                // optional underlying error
}

// Issues is a collection of failures that implements error.
//
// The pipeline fails fast, so in practice a sequence carries a single Issue;
// the slice form keeps the HTTP error payload shape stable.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Line > 0 {
			fmt.Fprintf(b, "%s at line %d, column %d: %s", it.Code, it.Line, it.Column, it.Message)
		} else {
			fmt.Fprintf(b, "%s: %s", it.Code, it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the first underlying cause so Issues participates in
// errors.Is/errors.As chains.
func (iss Issues) Unwrap() error {
	for _, it := range iss {
		if it.Cause != nil {
			return it.Cause
		}
	}
	return nil
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func singleIssue(code, message string) Issues {
	return Issues{{Code: code, Message: message, Offset: -1}}
}

func positionedIssue(code, message string, line, column int, offset int64) Issues {
	return Issues{{Code: code, Message: message, Line: line, Column: column, Offset: offset}}
}
