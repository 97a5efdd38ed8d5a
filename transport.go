package wirecall

import (
	"context"
	"fmt"
	"io"
)

// MethodID identifies a method at a call site: a fixed name plus an opaque
// numeric tag. Transports are free to put either on the wire; the JSON
// transport only uses the name.
type MethodID struct {
	Name string
	Num  uint32
}

// PartialMethodID identifies a received method by whichever of the name or
// the numeric tag the transport could recover from the wire.
type PartialMethodID struct {
	name   string
	num    uint32
	byName bool
}

// MethodName returns a PartialMethodID carrying a method name.
func MethodName(name string) PartialMethodID {
	return PartialMethodID{name: name, byName: true}
}

// MethodNum returns a PartialMethodID carrying a numeric method tag.
func MethodNum(num uint32) PartialMethodID {
	return PartialMethodID{num: num}
}

// Name returns the method name, if this ID carries one.
func (id PartialMethodID) Name() (string, bool) {
	return id.name, id.byName
}

// Num returns the numeric method tag, if this ID carries one.
func (id PartialMethodID) Num() (uint32, bool) {
	return id.num, !id.byName
}

func (id PartialMethodID) String() string {
	if id.byName {
		return id.name
	}
	return fmt.Sprintf("#%d", id.num)
}

// Channel is a bidirectional byte conduit: any socket, pipe or in-memory
// buffer that can be read, written and flushed. A transport owns its channel
// for the transport's lifetime.
type Channel interface {
	io.Reader
	io.Writer
	Flush() error
}

// ClientTransport is the client-side capability set of a call transport,
// parameterized by the transport's per-call TX state type.
//
// One call is a strict sequence: BeginCall, zero or more AddParams, exactly
// one Finalize, exactly one ReceiveResponse. A new call may begin only after
// the previous response has been received. A transport instance is not safe
// for concurrent use.
type ClientTransport[TX any] interface {
	// BeginCall returns fresh TX state for a call to the given method.
	// No I/O is performed.
	BeginCall(method MethodID) (TX, error)

	// AddParam encodes value and records it under name in the TX state.
	// No I/O is performed.
	AddParam(state TX, name string, value any) error

	// Finalize consumes the TX state, writes the full request to the
	// channel and flushes it.
	Finalize(state TX) error

	// ReceiveResponse reads one response from the channel and decodes it
	// into result, which must be a pointer.
	ReceiveResponse(result any) error
}

// ServerTransport is the server-side capability set of a call transport,
// parameterized by the transport's per-call RX state type.
//
// The server is single-call-at-a-time on a given channel: ReceiveCall, then
// ReadParam as needed, then exactly one SendResponse.
type ServerTransport[RX any] interface {
	// ReceiveCall reads one request from the channel and returns the
	// method identity along with RX state for parameter extraction. If
	// the channel ends cleanly before any byte of a new request, the
	// returned error has KindTransportEOF.
	ReceiveCall() (PartialMethodID, RX, error)

	// ReadParam decodes the named parameter of the received call into
	// out, which must be a pointer. Parameters may be read in any order;
	// re-reads return equal values.
	ReadParam(state RX, name string, out any) error

	// SendResponse writes the encoded value to the channel and flushes it.
	SendResponse(value any) error
}

// AsyncClientTransport mirrors ClientTransport with context-aware
// operations. Only Finalize and ReceiveResponse block on channel I/O; the
// other operations accept a context for uniformity but never suspend.
//
// Finalize returns a finalization token that is handed back to
// ReceiveResponse. Cancelling an in-flight operation leaves the channel in
// an indeterminate state; the channel must then be discarded.
type AsyncClientTransport[TX, Final any] interface {
	BeginCall(ctx context.Context, method MethodID) (TX, error)
	AddParam(ctx context.Context, state TX, name string, value any) error
	Finalize(ctx context.Context, state TX) (Final, error)
	ReceiveResponse(ctx context.Context, token Final, result any) error
}
