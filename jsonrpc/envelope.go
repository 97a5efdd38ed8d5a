package jsonrpc

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/wirecall/wirecall"
)

// Version is the protocol version stamped on every request envelope.
const Version = "2.0"

// requestEnvelope is the JSON-RPC 2.0 request object. Params is always
// present, as an empty object for zero-parameter calls.
type requestEnvelope struct {
	Version string                     `json:"jsonrpc"`
	Method  string                     `json:"method"`
	Params  map[string]json.RawMessage `json:"params"`
	ID      string                     `json:"id"`
}

// marshalRequest consumes TX state into the serialized request envelope.
// The id is a fresh UUID in canonical lowercase hyphenated form; it is not
// tracked for correlation.
func marshalRequest(state *TXState) ([]byte, error) {
	body, err := json.Marshal(requestEnvelope{
		Version: Version,
		Method:  state.method,
		Params:  state.params,
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, wirecall.WrapError(wirecall.KindSerialization, err, "cannot encode request")
	}
	return body, nil
}
