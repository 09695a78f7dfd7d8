package csvjson

import "bytes"

// Record is one decoded CSV data row: an ordered field-name→value mapping.
// Iteration and serialization order match the header row, not map order, so
// output is deterministic and byte-identical across repeated encodes.
//
// A Record is immutable after the Decoder yields it and is not retained by
// the pipeline once encoded.
type Record struct {
	names  []string
	values []string
}

// NewRecord builds a Record from parallel name/value slices. Values beyond
// len(names) are ignored; names beyond len(values) are absent from the
// record, mirroring the short-row policy of the Decoder.
func NewRecord(names, values []string) Record {
	if len(values) > len(names) {
		values = values[:len(names)]
	}
	return Record{names: names[:len(values)], values: values}
}

// Len reports the number of fields present in the record.
func (r Record) Len() int { return len(r.values) }

// Field returns the name/value pair at position i in header order.
func (r Record) Field(i int) (name, value string) {
	return r.names[i], r.values[i]
}

// Get returns the value for a field name and whether it was present.
func (r Record) Get(name string) (string, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return "", false
}

// MarshalJSON serializes the record as a JSON object with keys in header
// order. Individual strings go through goccy/go-json so escaping matches the
// rest of the output.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(2 + 16*len(r.values))
	buf.WriteByte('{')
	for i := range r.values {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalValue(r.names[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalValue(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
