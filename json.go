package csvjson

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// marshalValue serializes v without HTML escaping, so field text like "&"
// survives byte-for-byte. goccy's Encoder mirrors encoding/json here,
// including the trailing newline, which we trim.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	b := buf.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	return b, nil
}
