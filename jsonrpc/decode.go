package jsonrpc

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/wirecall/wirecall"
)

// decodeValue reads one self-delimiting JSON value from dec into v.
//
// An end-of-stream before any token of a value is returned as a bare io.EOF
// so callers can classify it against their call boundary; an end-of-stream
// mid-value, and every other parse failure, is a serialization error.
func decodeValue(dec *json.Decoder, v any) error {
	err := dec.Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return io.EOF
	default:
		return wirecall.WrapError(wirecall.KindSerialization, err, "cannot decode json value")
	}
}
