/*
	Package jsonrpc implements the wirecall transport contract over JSON-RPC
	2.0 request objects.

	Requests are standard JSON-RPC 2.0 envelopes with by-name params and a
	fresh UUID id. Responses are the bare JSON encoding of the result value,
	with no envelope: calls on a channel are strictly serial, so each
	response pairs with the most recently finalized request and ids are
	never consulted for correlation. Consecutive messages on one channel are
	concatenated JSON values with no framing.

	Transport is the blocking flavor; AsyncTransport is the context-aware
	client flavor over the same state types and wire format.
*/
package jsonrpc

import (
	"encoding/json"
	"io"

	"github.com/wirecall/wirecall"
)

// TXState accumulates one outgoing call: the method name and the by-name
// parameter object. It is created by BeginCall with a non-nil parameter map,
// so the params value is an object by construction.
type TXState struct {
	method string
	params map[string]json.RawMessage
}

// RXState holds one received request for parameter extraction. The held
// value is read-only; parsed params are cached so re-reads of a parameter
// return equal values.
type RXState struct {
	req    map[string]json.RawMessage
	params map[string]json.RawMessage
}

// paramsObject returns the parsed params object of the received request,
// parsing it on first use.
func (s *RXState) paramsObject() (map[string]json.RawMessage, error) {
	if s.params != nil {
		return s.params, nil
	}
	raw, ok := s.req["params"]
	if !ok {
		return nil, wirecall.NewError(wirecall.KindSerialization, "request has no params field")
	}
	var params map[string]json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, wirecall.WrapError(wirecall.KindSerialization, err, "request params is not an object")
	}
	if params == nil {
		params = map[string]json.RawMessage{}
	}
	s.params = params
	return params, nil
}

// Transport is a blocking JSON-RPC transport over any flushable byte
// channel (local socket, internet socket, pipe, in-memory buffer). It can
// act as the client or the server side of a connection, one call at a time.
// It is not safe for concurrent use.
type Transport struct {
	channel wirecall.Channel
	dec     *json.Decoder
}

var (
	_ wirecall.ClientTransport[*TXState] = (*Transport)(nil)
	_ wirecall.ServerTransport[*RXState] = (*Transport)(nil)
)

// New returns a Transport owning the given channel. The channel must not be
// used by anything else for the transport's lifetime: the transport's read
// buffer spans messages.
func New(channel wirecall.Channel) *Transport {
	return &Transport{
		channel: channel,
		dec:     json.NewDecoder(channel),
	}
}

// BeginCall returns TX state for a call to the given method. No I/O is
// performed.
func (t *Transport) BeginCall(method wirecall.MethodID) (*TXState, error) {
	return beginCall(method), nil
}

// AddParam encodes value and records it under name. No I/O is performed.
func (t *Transport) AddParam(state *TXState, name string, value any) error {
	return addParam(state, name, value)
}

// Finalize writes the full JSON-RPC request object to the channel and
// flushes it.
func (t *Transport) Finalize(state *TXState) error {
	body, err := marshalRequest(state)
	if err != nil {
		return err
	}
	return writeValue(t.channel, body)
}

// ReceiveResponse reads one JSON value from the channel and decodes it into
// result. An end-of-stream while awaiting a response is a serialization
// failure: the client is mid-call, not between calls.
func (t *Transport) ReceiveResponse(result any) error {
	err := decodeValue(t.dec, result)
	if err == io.EOF {
		return wirecall.NewError(wirecall.KindSerialization, "channel closed before response")
	}
	return err
}

// ReceiveCall reads one request from the channel, validates its shape, and
// returns the method name along with RX state holding the full request.
// A clean end-of-stream before any byte of a new request yields
// KindTransportEOF.
func (t *Transport) ReceiveCall() (wirecall.PartialMethodID, *RXState, error) {
	var req map[string]json.RawMessage
	if err := decodeValue(t.dec, &req); err != nil {
		if err == io.EOF {
			return wirecall.PartialMethodID{}, nil, wirecall.NewError(wirecall.KindTransportEOF, "channel closed between calls")
		}
		return wirecall.PartialMethodID{}, nil, err
	}
	rawMethod, ok := req["method"]
	if !ok {
		return wirecall.PartialMethodID{}, nil, wirecall.NewError(wirecall.KindSerialization, "request has no method field")
	}
	var method string
	if err := json.Unmarshal(rawMethod, &method); err != nil {
		return wirecall.PartialMethodID{}, nil, wirecall.WrapError(wirecall.KindSerialization, err, "request method is not a string")
	}
	logger.Printf("received call: %s", method)
	return wirecall.MethodName(method), &RXState{req: req}, nil
}

// ReadParam decodes the named parameter of the received request into out.
func (t *Transport) ReadParam(state *RXState, name string, out any) error {
	params, err := state.paramsObject()
	if err != nil {
		return err
	}
	raw, ok := params[name]
	if !ok {
		return wirecall.Errorf(wirecall.KindSerialization, "parameters do not contain %q", name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return wirecall.WrapError(wirecall.KindSerialization, err, "cannot decode parameter "+name)
	}
	return nil
}

// SendResponse writes the JSON encoding of value to the channel and flushes
// it. The response carries no envelope.
func (t *Transport) SendResponse(value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return wirecall.WrapError(wirecall.KindSerialization, err, "cannot encode response")
	}
	return writeValue(t.channel, body)
}

// beginCall and addParam are shared verbatim between the blocking and async
// flavors; only the I/O-performing operations differ.

func beginCall(method wirecall.MethodID) *TXState {
	return &TXState{
		method: method.Name,
		params: map[string]json.RawMessage{},
	}
}

func addParam(state *TXState, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return wirecall.WrapError(wirecall.KindSerialization, err, "cannot encode parameter "+name)
	}
	state.params[name] = raw
	return nil
}

// writeValue puts one serialized JSON value on the wire: a single write, a
// single flush, no framing.
func writeValue(channel wirecall.Channel, body []byte) error {
	if _, err := channel.Write(body); err != nil {
		return wirecall.WrapError(wirecall.KindSerialization, err, "cannot write to underlying channel")
	}
	if err := channel.Flush(); err != nil {
		return wirecall.WrapError(wirecall.KindSerialization, err, "cannot flush underlying channel")
	}
	return nil
}
