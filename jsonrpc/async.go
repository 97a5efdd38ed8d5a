package jsonrpc

import (
	"context"
	"encoding/json"
	"io"

	"github.com/wirecall/wirecall"
)

// Final is the finalization token carried from Finalize into
// ReceiveResponse. Response correlation is implicit on a dedicated channel,
// so the token is empty.
type Final struct{}

// AsyncTransport is the context-aware client flavor of Transport. It shares
// the TX state type and the wire format with the blocking flavor; only the
// I/O-performing operations differ.
//
// A single instance must not have two of its blocking operations in flight
// at once. Cancelling an in-flight operation leaves the channel in an
// indeterminate state (possibly mid-message); the channel must then be
// discarded.
type AsyncTransport struct {
	channel wirecall.Channel
	dec     *json.Decoder
}

var _ wirecall.AsyncClientTransport[*TXState, Final] = (*AsyncTransport)(nil)

// NewAsync returns an AsyncTransport owning the given channel.
func NewAsync(channel wirecall.Channel) *AsyncTransport {
	return &AsyncTransport{
		channel: channel,
		dec:     json.NewDecoder(channel),
	}
}

// BeginCall returns TX state for a call to the given method. It never
// suspends.
func (t *AsyncTransport) BeginCall(_ context.Context, method wirecall.MethodID) (*TXState, error) {
	return beginCall(method), nil
}

// AddParam encodes value and records it under name. It never suspends.
func (t *AsyncTransport) AddParam(_ context.Context, state *TXState, name string, value any) error {
	return addParam(state, name, value)
}

// Finalize serializes the full request to memory, then writes the buffer to
// the channel in one operation and flushes.
func (t *AsyncTransport) Finalize(ctx context.Context, state *TXState) (Final, error) {
	body, err := marshalRequest(state)
	if err != nil {
		return Final{}, err
	}
	return Final{}, t.await(ctx, func() error {
		return writeValue(t.channel, body)
	})
}

// ReceiveResponse streams one JSON value from the channel into result.
func (t *AsyncTransport) ReceiveResponse(ctx context.Context, _ Final, result any) error {
	return t.await(ctx, func() error {
		err := decodeValue(t.dec, result)
		if err == io.EOF {
			return wirecall.NewError(wirecall.KindSerialization, "channel closed before response")
		}
		return err
	})
}

// await runs op on its own goroutine and waits for it to finish or for the
// context to be done. A cancelled op keeps running until its channel I/O
// returns; its result is discarded.
func (t *AsyncTransport) await(ctx context.Context, op func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- op()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
