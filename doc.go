package csvjson

// Package csvjson converts CSV documents into JSON arrays as a stream: input
// bytes are consumed chunk by chunk and output chunks are emitted per record,
// so memory stays bounded regardless of document size.
//
// The package provides:
//
// - A pull-based Source contract (Next returns the next item or io.EOF)
// - Decoder: an incremental CSV state machine yielding header-keyed Records
// - ArrayEncoder: a generic JSON array chunk producer over any Source
// - A stable error model via Issues (code, line/column, byte offset)
//
// Design policy:
// - Keep only public APIs in the root package; put the HTTP edge under internal/.
// - Response content-codings live under compress/, the server binary under cmd/csvjson.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	dec := csvjson.NewDecoder(r, csvjson.ParseOptions{})
//	enc := csvjson.NewArrayEncoder[csvjson.Record](dec)
//	for {
//		chunk, err := enc.Next()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			// already-written output is truncated; see Issues for detail
//			return err
//		}
//		w.Write(chunk)
//	}
